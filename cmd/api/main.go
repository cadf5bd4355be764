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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/kulturapass/kulturapass/internal/adapters/http"
	natsadapter "github.com/kulturapass/kulturapass/internal/adapters/nats"
	"github.com/kulturapass/kulturapass/internal/adapters/osrm"
	"github.com/kulturapass/kulturapass/internal/adapters/valkey"
	"github.com/kulturapass/kulturapass/internal/core/ports"
	"github.com/kulturapass/kulturapass/internal/core/usecases"
	"github.com/kulturapass/kulturapass/internal/pkg/config"
	"github.com/kulturapass/kulturapass/internal/pkg/logging"
	"github.com/kulturapass/kulturapass/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("kulturapass-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{PlanStats: usecases.NewPlanStatsService()}

	// Optional collaborators stay nil interfaces when unavailable.
	var (
		cache     ports.CacheService
		publisher ports.EventPublisher
		routing   ports.RoutingBackend
	)

	// Cache
	vc, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// NATS
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
		deps.NATS = natsConn
	}

	// Plan statistics fed from the event stream
	if pub != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeRoutePlanned(ctx, deps.PlanStats.Record); err != nil {
				slog.Warn("subscribe route planned", "error", err)
			}
		}
	}

	// Routing backend
	if cfg.Routing.BaseURL != "" {
		routing = osrm.New(cfg.Routing.BaseURL, cfg.Routing.Timeout())
		slog.Info("routing backend configured", "base_url", cfg.Routing.BaseURL)
	} else {
		slog.Info("routing backend disabled; plans carry no road geometry")
	}

	deps.Routes = usecases.NewRouteService(routing, cache, publisher, usecases.RouteServiceConfig{
		DefaultProfile: cfg.Routing.DefaultProfile,
		PlanCacheTTL:   cfg.Routing.PlanCacheTTL,
	})

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "KulturaPass Route API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.kulturapass.eus",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
