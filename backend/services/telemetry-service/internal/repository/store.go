package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

// ErrNoRows is returned when a table holds no reading to answer with.
var ErrNoRows = errors.New("repository: no rows")

// NormalizeZone maps nil and the process-local zone to UTC. Both stores and
// the aggregation clock go through it so they agree on where a day starts.
func NormalizeZone(loc *time.Location) *time.Location {
	if loc == nil || loc == time.Local || loc.String() == "Local" {
		return time.UTC
	}
	return loc
}

// Table names one of the append-only reading tables.
type Table string

const (
	TablePanel Table = "panel"
	TableBeban Table = "beban"
)

// Validate guards the table name before it is interpolated into SQL.
func (t Table) Validate() error {
	switch t {
	case TablePanel, TableBeban:
		return nil
	default:
		return fmt.Errorf("repository: unknown table %q", string(t))
	}
}

// ReadingStore is the read/write surface the services need from persistence.
type ReadingStore interface {
	// InsertPair appends one panel and one beban row, both or neither.
	InsertPair(ctx context.Context, panel, beban models.Reading) error
	// Latest returns the most recently inserted row of table.
	Latest(ctx context.Context, table Table) (models.Reading, error)
	// DailyTotals sums power per calendar day in loc, newest day first.
	DailyTotals(ctx context.Context, table Table, loc *time.Location, limit int) ([]models.DailyTotal, error)
	// Stats aggregates power over rows recorded in [from, to).
	Stats(ctx context.Context, table Table, from, to time.Time) (models.PowerStats, error)
}
