package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks caller-fixable input problems.
	ErrValidation = errors.New("incomplete data")
	// ErrNotFound means there is no telemetry yet. It is not a failure.
	ErrNotFound = errors.New("no data yet")
	// ErrStore wraps persistence failures and timeouts.
	ErrStore = errors.New("store failure")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
