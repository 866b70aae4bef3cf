package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
	"pltsmonitor/backend/services/telemetry-service/internal/repository"
)

const (
	DefaultDailyEnergyDays = 7
	maxDailyEnergyDays     = 366
)

// PeakHorizon selects the rows peak_power and avg_load are computed over.
type PeakHorizon string

const (
	// HorizonLatest uses only the latest panel/beban pair, so peak and average
	// collapse to the latest values. This is what existing dashboards expect.
	HorizonLatest PeakHorizon = "latest"
	// HorizonToday uses every row recorded today.
	HorizonToday PeakHorizon = "today"
)

// ParsePeakHorizon validates a configured horizon name.
func ParsePeakHorizon(raw string) (PeakHorizon, error) {
	switch h := PeakHorizon(raw); h {
	case "":
		return HorizonLatest, nil
	case HorizonLatest, HorizonToday:
		return h, nil
	default:
		return "", fmt.Errorf("unknown peak horizon %q", raw)
	}
}

// AggregationService derives dashboard figures from stored readings.
// Nothing is cached; every call reads the store.
type AggregationService struct {
	store         repository.ReadingStore
	clock         Clock
	loc           *time.Location
	horizon       PeakHorizon
	batteryHealth int
	timeout       time.Duration
	logger        *zap.Logger
}

// AggregationOption customises AggregationService.
type AggregationOption func(*AggregationService)

// WithAggregationClock overrides the clock that decides what "today" is.
func WithAggregationClock(clock Clock) AggregationOption {
	return func(s *AggregationService) { s.clock = clock }
}

// WithLocation sets the time zone calendar days are cut in.
func WithLocation(loc *time.Location) AggregationOption {
	return func(s *AggregationService) {
		if loc != nil {
			s.loc = repository.NormalizeZone(loc)
		}
	}
}

// WithPeakHorizon selects the peak/avg horizon.
func WithPeakHorizon(h PeakHorizon) AggregationOption {
	return func(s *AggregationService) { s.horizon = h }
}

// WithBatteryHealth overrides the battery_health placeholder.
func WithBatteryHealth(v int) AggregationOption {
	return func(s *AggregationService) { s.batteryHealth = v }
}

// WithAggregationTimeout bounds each store call.
func WithAggregationTimeout(timeout time.Duration) AggregationOption {
	return func(s *AggregationService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewAggregationService returns service instance.
func NewAggregationService(store repository.ReadingStore, logger *zap.Logger, opts ...AggregationOption) *AggregationService {
	s := &AggregationService{
		store:         store,
		clock:         time.Now,
		loc:           time.UTC,
		horizon:       HorizonLatest,
		batteryHealth: models.BatteryHealthPlaceholder,
		timeout:       defaultStoreTimeout,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LatestReading returns the latest panel and beban rows, or ErrNotFound if
// either table is still empty.
func (s *AggregationService) LatestReading(ctx context.Context) (models.LatestPair, error) {
	panel, beban, err := s.latestIndependentPair(ctx)
	if err != nil {
		return models.LatestPair{}, err
	}
	return models.LatestPair{
		Panel: electrical(panel),
		Beban: electrical(beban),
	}, nil
}

// latestIndependentPair picks the newest panel row and the newest beban row
// separately. The two are not correlated by timestamp, so under concurrent
// ingestion they may come from different submissions. Known approximation;
// callers only depend on this function, not on how the pair is chosen.
func (s *AggregationService) latestIndependentPair(ctx context.Context) (models.Reading, models.Reading, error) {
	panel, err := s.latest(ctx, repository.TablePanel)
	if err != nil {
		return models.Reading{}, models.Reading{}, err
	}
	beban, err := s.latest(ctx, repository.TableBeban)
	if err != nil {
		return models.Reading{}, models.Reading{}, err
	}
	return panel, beban, nil
}

func (s *AggregationService) latest(ctx context.Context, table repository.Table) (models.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reading, err := s.store.Latest(ctx, table)
	if errors.Is(err, repository.ErrNoRows) {
		return models.Reading{}, ErrNotFound
	}
	if err != nil {
		op := "latest_" + string(table)
		s.logger.Error("failed to read latest reading", zap.String("op", op), zap.Error(err))
		return models.Reading{}, storeError(op, err)
	}
	return reading, nil
}

// DailyEnergy returns kWh per day for the newest daysBack days that have panel
// rows, newest first. daysBack <= 0 means the default of 7.
func (s *AggregationService) DailyEnergy(ctx context.Context, daysBack int) ([]models.DailyEnergyPoint, error) {
	if daysBack <= 0 {
		daysBack = DefaultDailyEnergyDays
	}
	if daysBack > maxDailyEnergyDays {
		daysBack = maxDailyEnergyDays
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	totals, err := s.store.DailyTotals(ctx, repository.TablePanel, s.loc, daysBack)
	if err != nil {
		s.logger.Error("failed to read daily totals", zap.String("op", "daily_energy"), zap.Error(err))
		return nil, storeError("daily_energy", err)
	}

	points := make([]models.DailyEnergyPoint, 0, len(totals))
	for _, total := range totals {
		points = append(points, models.DailyEnergyPoint{
			Date:      total.Date,
			EnergyKWh: KilowattHours(total.SumPower),
		})
	}
	return points, nil
}

// DashboardMetrics builds the dashboard snapshot. An empty history yields an
// empty snapshot and no error.
func (s *AggregationService) DashboardMetrics(ctx context.Context) (models.DashboardSnapshot, error) {
	panel, beban, err := s.latestIndependentPair(ctx)
	if errors.Is(err, ErrNotFound) {
		return models.DashboardSnapshot{}, nil
	}
	if err != nil {
		return models.DashboardSnapshot{}, err
	}

	from, to := s.todayWindow()
	panelToday, err := s.stats(ctx, repository.TablePanel, from, to)
	if err != nil {
		return models.DashboardSnapshot{}, err
	}
	bebanToday, err := s.stats(ctx, repository.TableBeban, from, to)
	if err != nil {
		return models.DashboardSnapshot{}, err
	}

	batteryHealth := s.batteryHealth
	snapshot := models.DashboardSnapshot{
		PowerProduce:  floatPtr(panel.Power),
		PowerLoad:     floatPtr(beban.Power),
		BatteryHealth: &batteryHealth,
	}
	if panelToday.Count > 0 {
		snapshot.EnergyToday = floatPtr(KilowattHours(panelToday.Sum))
	}
	// Mirrors SQL NULL arithmetic: a side with no rows today voids the difference.
	if panelToday.Count > 0 && bebanToday.Count > 0 {
		snapshot.NetEnergy = floatPtr(NetKilowattHours(panelToday.Sum, bebanToday.Sum))
	}
	snapshot.PeakPower, snapshot.AvgLoad = s.joinHorizon(panel, beban, panelToday, bebanToday)
	return snapshot, nil
}

// joinHorizon returns peak panel power and average load over the configured horizon.
func (s *AggregationService) joinHorizon(panel, beban models.Reading, panelToday, bebanToday models.PowerStats) (*float64, *float64) {
	if s.horizon != HorizonToday {
		return floatPtr(RoundHalfAwayFromZero(panel.Power, 2)), floatPtr(RoundHalfAwayFromZero(beban.Power, 2))
	}
	var peak, avg *float64
	if panelToday.Count > 0 {
		peak = floatPtr(RoundHalfAwayFromZero(panelToday.Max, 2))
	}
	if bebanToday.Count > 0 {
		avg = floatPtr(RoundHalfAwayFromZero(bebanToday.Avg, 2))
	}
	return peak, avg
}

func (s *AggregationService) stats(ctx context.Context, table repository.Table, from, to time.Time) (models.PowerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.store.Stats(ctx, table, from, to)
	if err != nil {
		op := "stats_" + string(table)
		s.logger.Error("failed to read power stats", zap.String("op", op), zap.Error(err))
		return models.PowerStats{}, storeError(op, err)
	}
	return stats, nil
}

func (s *AggregationService) todayWindow() (time.Time, time.Time) {
	now := s.clock().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

func electrical(r models.Reading) models.Electrical {
	return models.Electrical{Voltage: r.Voltage, Current: r.Current, Power: r.Power}
}

func floatPtr(v float64) *float64 {
	return &v
}
