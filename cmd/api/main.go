package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mabteam/poimap/internal/adapters/http"
	"github.com/mabteam/poimap/internal/adapters/memory"
	natsadapter "github.com/mabteam/poimap/internal/adapters/nats"
	"github.com/mabteam/poimap/internal/adapters/postgres"
	"github.com/mabteam/poimap/internal/adapters/valkey"
	"github.com/mabteam/poimap/internal/clustering"
	"github.com/mabteam/poimap/internal/core/ports"
	"github.com/mabteam/poimap/internal/core/presenter"
	"github.com/mabteam/poimap/internal/core/usecases"
	"github.com/mabteam/poimap/internal/pkg/config"
	"github.com/mabteam/poimap/internal/pkg/logging"
	"github.com/mabteam/poimap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("poimap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint, cfg.Telemetry.SampleRatio)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	deps := &http.Dependencies{}

	// POI store
	var store ports.POIStore
	if cfg.Database.InMemory() {
		slog.Warn("using in-memory POI store, data is lost on restart")
		store = memory.NewStore()
	} else {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)
		store = postgres.NewPOIRepo(db)
		deps.DB = db
	}

	// Cache
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Password, cfg.Valkey.DB); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// NATS
	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		deps.NATS = pub.Conn()
	}

	// Use cases
	engine := clustering.NewEngine()
	engine.Radius = cfg.Clustering.Radius
	engine.TileSize = cfg.Clustering.TileSize
	engine.MinZoom = cfg.Clustering.MinZoom
	engine.MaxZoom = cfg.Clustering.MaxZoom
	engine.MergeUntilStable = cfg.Clustering.MergePass

	pres := presenter.New()
	pres.BaseRadius = cfg.Clustering.BaseRadius
	pres.MaxRadius = cfg.Clustering.MaxRadius

	mapSvc := usecases.NewMapService(store, engine, pres)
	sessions := usecases.NewSessions(mapSvc, cfg.Server.SessionIdleTimeout())
	go sessions.Run(ctx, time.Minute)

	poiSvc := usecases.NewPOIService(store, cache, publisher)

	// Changes made by other instances invalidate the local cache.
	if cache != nil && publisher != nil {
		host, _ := os.Hostname()
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "poimap-api-"+host)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribePOIChanges(ctx, poiSvc.HandleEvent); err != nil {
				slog.Warn("subscribe poi changes", "error", err)
			}
		}
	}

	deps.Map = mapSvc
	deps.Sessions = sessions
	deps.POIs = poiSvc

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // batch imports
		AppName:      "POI Map API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "store", cfg.Database.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
