package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/hub"
	"pltsmonitor/backend/services/telemetry-service/internal/models"
	"pltsmonitor/backend/services/telemetry-service/internal/repository"
)

func TestFacadeTrackerRoundTrip(t *testing.T) {
	store := repository.NewMemoryStore()
	h := hub.New(zap.NewNop(), hub.WithClock(func() time.Time { return today }), hub.WithLocation(time.UTC))
	f := NewFacade(NewIngestService(store, zap.NewNop()), newAggregation(store), h)

	sample := f.PublishTracker(models.TrackerInput{ServoX: 45, LDR4: 700})
	assert.Equal(t, models.TrackerSample{ServoX: 45, LDR4: 700, Waktu: "12:00:00"}, sample)
	assert.Equal(t, sample, f.TrackerSample())

	sub := f.SubscribeTracker()
	defer sub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	first, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, first)
}

func TestFacadeReadingsRoundTrip(t *testing.T) {
	store := repository.NewMemoryStore()
	h := hub.New(zap.NewNop())
	f := NewFacade(NewIngestService(store, zap.NewNop(), WithIngestClock(fixedClock(today))), newAggregation(store), h)
	ctx := context.Background()

	err := f.SubmitReading(ctx, models.ReadingPair{Panel: &models.Reading{Power: 1}})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.SubmitReading(ctx, models.ReadingPair{
		Panel: &models.Reading{Voltage: 12, Current: 2, Power: 24},
		Beban: &models.Reading{Voltage: 12, Current: 1, Power: 12},
	}))

	latest, err := f.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24.0, latest.Panel.Power)

	points, err := f.DailyEnergy(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []models.DailyEnergyPoint{{Date: "2024-06-01", EnergyKWh: 0.02}}, points)

	snapshot, err := f.DashboardMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.01, *snapshot.NetEnergy)
}
