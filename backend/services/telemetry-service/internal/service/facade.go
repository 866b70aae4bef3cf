package service

import (
	"context"

	"pltsmonitor/backend/services/telemetry-service/internal/hub"
	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

// Facade is the single entry point transports use.
type Facade struct {
	ingest      *IngestService
	aggregation *AggregationService
	hub         *hub.Hub
}

// NewFacade composes the services.
func NewFacade(ingest *IngestService, aggregation *AggregationService, h *hub.Hub) *Facade {
	return &Facade{ingest: ingest, aggregation: aggregation, hub: h}
}

// SubmitReading stores a panel+beban pair.
func (f *Facade) SubmitReading(ctx context.Context, pair models.ReadingPair) error {
	return f.ingest.Submit(ctx, pair)
}

// Latest returns the latest panel and beban readings.
func (f *Facade) Latest(ctx context.Context) (models.LatestPair, error) {
	return f.aggregation.LatestReading(ctx)
}

// DailyEnergy returns up to limit days of produced energy.
func (f *Facade) DailyEnergy(ctx context.Context, limit int) ([]models.DailyEnergyPoint, error) {
	return f.aggregation.DailyEnergy(ctx, limit)
}

// DashboardMetrics returns the dashboard snapshot.
func (f *Facade) DashboardMetrics(ctx context.Context) (models.DashboardSnapshot, error) {
	return f.aggregation.DashboardMetrics(ctx)
}

// PublishTracker makes in the current tracker sample and broadcasts it.
func (f *Facade) PublishTracker(in models.TrackerInput) models.TrackerSample {
	return f.hub.Publish(in.Sample())
}

// TrackerSample returns the current tracker sample.
func (f *Facade) TrackerSample() models.TrackerSample {
	return f.hub.Current()
}

// SubscribeTracker registers a real-time viewer.
func (f *Facade) SubscribeTracker() *hub.Subscription {
	return f.hub.Subscribe()
}
