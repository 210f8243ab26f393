package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/skill-ladder/app/eventbus"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/auth"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder"
	"github.com/Black-And-White-Club/skill-ladder/app/observability"
	"github.com/Black-And-White-Club/skill-ladder/app/observability/attr"
	"github.com/Black-And-White-Club/skill-ladder/config"
	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App holds the wired modules and their shared infrastructure.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Clock         clockwork.Clock

	AuthModule   *auth.Module
	LadderModule *ladder.Module
}

// NewApp connects to Postgres and the event bus and builds every module.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	app := &App{
		Config:        cfg,
		Observability: obs,
		Clock:         clockwork.NewRealClock(),
	}

	db, err := OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	app.DB = db

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS, obs.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	app.AuthModule, err = auth.NewModule(ctx, cfg, obs, app.Clock)
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to initialize auth module: %w", err)
	}

	app.LadderModule, err = ladder.NewLadderModule(ctx, cfg, obs, db, bus.Publisher(), app.AuthModule.GetService(), app.Clock)
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to initialize ladder module: %w", err)
	}

	obs.Logger.InfoContext(ctx, "Application initialized",
		attr.String("auth_mode", cfg.Auth.Mode),
		attr.Bool("async_reprojection", cfg.Ladder.AsyncReprojection),
		attr.Bool("nats", cfg.NATS.URL != ""),
	)
	return app, nil
}

// OpenDB opens a bun handle over pgdriver and checks the connection.
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Router returns the public HTTP handler: the ladder API plus health and
// metrics endpoints.
func (app *App) Router() http.Handler {
	r := app.LadderModule.Router(app.Clock)
	r.Get("/healthz", app.handleHealth)
	r.Handle("/metrics", app.Observability.MetricsHandler())
	return r
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := app.DB.PingContext(ctx); err != nil {
		app.Observability.Logger.WarnContext(ctx, "Health check failed", attr.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (app *App) closeInfra() {
	if app.EventBus != nil {
		_ = app.EventBus.Close()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}
