package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
	"pltsmonitor/backend/services/telemetry-service/internal/repository"
)

const defaultStoreTimeout = 5 * time.Second

// Clock returns the current wall-clock time.
type Clock func() time.Time

// IngestRecorder observes ingestion outcomes.
type IngestRecorder interface {
	ObserveIngest(result string)
}

// IngestService validates and stores panel+beban reading pairs.
type IngestService struct {
	store    repository.ReadingStore
	clock    Clock
	timeout  time.Duration
	recorder IngestRecorder
	logger   *zap.Logger
}

// IngestOption customises IngestService.
type IngestOption func(*IngestService)

// WithIngestClock overrides the clock used to stamp rows.
func WithIngestClock(clock Clock) IngestOption {
	return func(s *IngestService) { s.clock = clock }
}

// WithIngestTimeout bounds each store call.
func WithIngestTimeout(timeout time.Duration) IngestOption {
	return func(s *IngestService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithIngestRecorder reports outcomes to recorder.
func WithIngestRecorder(recorder IngestRecorder) IngestOption {
	return func(s *IngestService) { s.recorder = recorder }
}

// NewIngestService returns service instance.
func NewIngestService(store repository.ReadingStore, logger *zap.Logger, opts ...IngestOption) *IngestService {
	s := &IngestService{
		store:   store,
		clock:   time.Now,
		timeout: defaultStoreTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores the pair stamped with the current time. Both halves must be
// present and finite; otherwise nothing is written.
func (s *IngestService) Submit(ctx context.Context, pair models.ReadingPair) error {
	if err := validatePair(pair); err != nil {
		s.observe("invalid")
		return err
	}

	now := s.clock()
	panel, beban := *pair.Panel, *pair.Beban
	panel.RecordedAt = now
	beban.RecordedAt = now

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.InsertPair(ctx, panel, beban); err != nil {
		s.observe("store_error")
		s.logger.Error("failed to store reading pair", zap.String("op", "insert_pair"), zap.Error(err))
		return storeError("insert_pair", err)
	}
	s.observe("ok")
	return nil
}

func (s *IngestService) observe(result string) {
	if s.recorder != nil {
		s.recorder.ObserveIngest(result)
	}
}

func validatePair(pair models.ReadingPair) error {
	if pair.Panel == nil || pair.Beban == nil {
		return ErrValidation
	}
	if err := validateReading("panel", *pair.Panel); err != nil {
		return err
	}
	return validateReading("beban", *pair.Beban)
}

func validateReading(side string, r models.Reading) error {
	fields := map[string]float64{"voltage": r.Voltage, "current": r.Current, "power": r.Power}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s.%s is not a finite number", ErrValidation, side, name)
		}
	}
	return nil
}
