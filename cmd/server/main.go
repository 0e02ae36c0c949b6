package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/router"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	rule, err := repository.ParseOverlapRule(cfg.OverlapRule)
	if err != nil {
		logger.Error("invalid BOOKING_OVERLAP_RULE", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// In-memory state lives for the lifetime of the process.
	rooms := repository.NewRoomRepo()
	customers := repository.NewCustomerRepo()
	ledger := repository.NewBookingRepo(customers, rule)

	var pub service.EventPublisher = service.NopPublisher{}
	if cfg.Events.Enabled {
		p := queue.NewPublisher(queue.PublisherConfig{
			URL:         cfg.Events.BrokerURL(),
			Queue:       cfg.Events.Queue,
			Buffer:      cfg.Events.PublishBuffer,
			DialTimeout: cfg.Events.DialTimeout,
		}, logger)
		defer p.Close()
		pub = p
		if cfg.Events.ConsumerEnabled {
			consumer := &queue.Consumer{
				URL:    cfg.Events.BrokerURL(),
				Queue:  cfg.Events.Queue,
				LogDir: cfg.Events.LogDir,
				Logger: logger,
			}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("booking consumer stopped", "error", err)
				}
			}()
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unavailable; caching and rate limiting disabled", "addr", cfg.Redis.Address())
	} else {
		defer rdb.Close()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.JSONSerializer = handler.JSONSerializer{}
	e.Use(echomw.Recover())
	e.Use(requestLogger(logger))

	router.RegisterRoutes(e, router.Deps{
		Bookings: handler.NewBookingHandler(
			service.NewBookingService(rooms, ledger, pub, logger),
			service.NewQueryService(rooms, customers, ledger),
			logger,
		),
		Redis:         rdb,
		Cache:         cfg.Cache,
		RateLimit:     cfg.RateLimit,
		OverlapRule:   rule.String(),
		EventsEnabled: cfg.Events.Enabled,
		Logger:        logger,
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "overlap_rule", rule.String())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// newLogger returns a text logger for local development and a JSON logger
// everywhere else.
func newLogger(env string) *slog.Logger {
	if env == "dev" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// requestLogger logs one line per request through logger.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, "request", slog.Group("http", attrs...), slog.String("error", v.Error.Error()))
				return nil
			}
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", slog.Group("http", attrs...))
			return nil
		},
	})
}
