package app

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	libmqtt "pltsmonitor/backend/libs/mqtt"
	libredis "pltsmonitor/backend/libs/redis"
	"pltsmonitor/backend/services/telemetry-service/internal/auth"
	"pltsmonitor/backend/services/telemetry-service/internal/config"
	"pltsmonitor/backend/services/telemetry-service/internal/db"
	httpserver "pltsmonitor/backend/services/telemetry-service/internal/http"
	"pltsmonitor/backend/services/telemetry-service/internal/http/handlers"
	"pltsmonitor/backend/services/telemetry-service/internal/http/middleware"
	"pltsmonitor/backend/services/telemetry-service/internal/hub"
	"pltsmonitor/backend/services/telemetry-service/internal/metrics"
	"pltsmonitor/backend/services/telemetry-service/internal/mqttin"
	"pltsmonitor/backend/services/telemetry-service/internal/relay"
	"pltsmonitor/backend/services/telemetry-service/internal/repository"
	"pltsmonitor/backend/services/telemetry-service/internal/service"
	"pltsmonitor/backend/services/telemetry-service/internal/ws"
)

const mqttDisconnectQuiesceMs = 250

// App wires telemetry service dependencies.
type App struct {
	server  *httpserver.Server
	handler http.Handler
	hub     *hub.Hub
	manager *ws.Manager
	relay   *relay.Relay
	db      *sql.DB
	redis   *redis.Client
	mqtt    paho.Client
	logger  *zap.Logger
}

// New constructs application components.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	store, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	horizon, err := service.ParsePeakHorizon(cfg.Metrics.PeakHorizon)
	if err != nil {
		return nil, err
	}

	a.hub = hub.New(logger, hub.WithQueueSize(cfg.Hub.QueueSize), hub.WithLocation(loc))
	m := metrics.New(a.hub)

	ingest := service.NewIngestService(store, logger,
		service.WithIngestTimeout(cfg.StoreTimeout()),
		service.WithIngestRecorder(m),
	)
	aggregation := service.NewAggregationService(store, logger,
		service.WithLocation(loc),
		service.WithPeakHorizon(horizon),
		service.WithBatteryHealth(cfg.Metrics.BatteryHealth),
		service.WithAggregationTimeout(cfg.StoreTimeout()),
	)
	facade := service.NewFacade(ingest, aggregation, a.hub)

	if cfg.Redis.Addr != "" {
		a.redis, err = libredis.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		a.relay = relay.NewRelay(a.redis, cfg.Redis.Channel, a.hub, logger)
		a.hub.OnPublish(a.relay.Forward)
	}

	if cfg.MQTT.Broker != "" {
		listener := mqttin.NewListener(cfg.MQTT.Topic, facade, logger)
		a.mqtt, err = libmqtt.NewMQTTClient(cfg.MQTT.Broker, cfg.MQTT.ClientID, listener.OnConnect)
		if err != nil {
			return nil, err
		}
	}

	var sessionAuth auth.Authorizer = auth.OpenAuthorizer{}
	if strings.TrimSpace(cfg.Auth.JWTSecret) != "" {
		sessionAuth = auth.NewJWTAuthorizer(cfg.Auth.JWTSecret, cfg.Auth.CookieName)
	}
	guards := httpserver.Guards{
		Device:     middleware.DeviceKey(cfg.Ingest.DeviceKeyHash),
		Admin:      middleware.RequireAuthorized(auth.RequireRole(sessionAuth, auth.RoleAdmin)),
		Instrument: m.Instrument,
	}
	if cfg.Auth.Enabled {
		guards.Viewer = middleware.RequireAuthorized(sessionAuth)
	}

	a.manager = ws.NewManager(cfg.PingInterval())
	wsServer := ws.NewServer(a.manager, facade, cfg.WriteTimeout(), logger)
	data := handlers.NewDataHandlers(facade, logger)
	tracker := handlers.NewTrackerHandlers(facade, logger)

	adminStatus := handlers.NewAdminHandler(a.hub, a.manager, handlers.AdminSettings{
		Timezone:          loc.String(),
		PeakHorizon:       string(horizon),
		BatteryHealth:     cfg.Metrics.BatteryHealth,
		AuthEnabled:       cfg.Auth.Enabled,
		DeviceKeyRequired: strings.TrimSpace(cfg.Ingest.DeviceKeyHash) != "",
		RelayEnabled:      a.relay != nil,
		MQTTEnabled:       a.mqtt != nil,
	}, logger)

	routes := httpserver.Routes{
		Root:             http.HandlerFunc(handlers.Root),
		SubmitData:       http.HandlerFunc(data.Submit),
		LatestData:       http.HandlerFunc(data.Latest),
		History:          http.HandlerFunc(data.History),
		DashboardMetrics: http.HandlerFunc(data.Dashboard),
		UpdateServo:      http.HandlerFunc(tracker.Update),
		Servo:            http.HandlerFunc(tracker.Current),
		Session:          handlers.NewSessionHandler(sessionAuth, logger),
		AdminStatus:      adminStatus,
		WebSocket:        http.HandlerFunc(wsServer.HandleWS),
		Health:           http.HandlerFunc(handlers.Health),
		Metrics:          m.Handler(),
	}

	a.handler = httpserver.NewRouter(routes, guards)
	a.server = httpserver.NewServer(cfg.HTTPAddress(), a.handler, logger,
		gorillahandlers.RecoveryHandler(
			gorillahandlers.RecoveryLogger(zap.NewStdLog(logger)),
			gorillahandlers.PrintRecoveryStack(true),
		),
		cors(cfg.CORS.AllowedOrigins),
	)

	ok = true
	return a, nil
}

func (a *App) openStore(cfg *config.Config) (repository.ReadingStore, error) {
	if cfg.Database.Driver == config.DriverMemory {
		a.logger.Warn("using in-memory reading store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	}
	sqlDB, err := db.NewPostgres(cfg.Database.DSN, cfg.StoreTimeout())
	if err != nil {
		return nil, err
	}
	a.db = sqlDB
	return repository.NewReadingRepository(sqlDB), nil
}

func cors(origins []string) func(http.Handler) http.Handler {
	opts := []gorillahandlers.CORSOption{
		gorillahandlers.AllowedOrigins(origins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.DeviceKeyHeader}),
	}
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if !wildcard {
		opts = append(opts, gorillahandlers.AllowCredentials())
	}
	return gorillahandlers.CORS(opts...)
}

// Run serves HTTP, pings viewers and runs the relay until ctx ends or one fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Run(gctx)
	})
	g.Go(func() error {
		a.manager.Start(gctx)
		return nil
	})
	if a.relay != nil {
		g.Go(func() error {
			return a.relay.Run(gctx)
		})
	}
	return g.Wait()
}

// Close releases resources.
func (a *App) Close() {
	if a.mqtt != nil {
		a.mqtt.Disconnect(mqttDisconnectQuiesceMs)
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
