package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "plant_monitor/docs"
	"plant_monitor/internal/backend"
	"plant_monitor/internal/chart"
	"plant_monitor/internal/config"
	"plant_monitor/internal/handlers"
	"plant_monitor/internal/logger"
	"plant_monitor/internal/repository"
	"plant_monitor/internal/repository/db"
	"plant_monitor/internal/server"
	"plant_monitor/internal/service"
	"plant_monitor/internal/telemetry"
)

const configDir = "configs"

// @title                       Plant Monitor API
// @version                     1.0
// @description                 Plant list, registration and telemetry dashboard over the plant backend.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load config.yml
	cfg, err := config.Load(configDir)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	// open DB
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	opts, err := serviceOptions(cfg)
	if err != nil {
		log.Fatalw("invalid dashboard config", "err", err)
	}

	// Zone-less backend timestamps are read on the dashboard's calendar.
	api, err := backend.NewClient(backend.Config{
		BaseURL:  cfg.Backend.BaseURL,
		Timeout:  cfg.Backend.Timeout,
		Location: opts.Transformer.Location,
	}, log.Named("backend"))
	if err != nil {
		log.Fatalw("invalid backend config", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, api, opts, log)
	apiHandler := handlers.NewHandler(services, log.Named("http"))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Janitor.Run(ctx, cfg.Sessions.SweepInterval)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server_started", "port", cfg.Port, "backend", cfg.Backend.BaseURL)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	path := cfg.DB.Path
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		path = "app.db"
	}
	return db.InitDB(path)
}

func serviceOptions(cfg *config.Config) (service.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{
		SigningKey:    cfg.Auth.SigningKey,
		TokenTTL:      cfg.Auth.TokenTTL,
		DefaultWindow: cfg.Dashboard.DefaultWindowDays,
		Transformer:   telemetry.Transformer{Layout: cfg.Dashboard.LabelLayout, Location: loc},
		Chart:         chart.Renderer{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
		// Date ranges are computed on the dashboard's calendar.
		Now: func() time.Time { return time.Now().In(loc) },
	}, nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines and open dashboards
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
