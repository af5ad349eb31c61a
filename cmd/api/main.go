package main

import (
	"context"
	"fmt"
	"time"

	"github.com/LWENA27/sms-getway/internal/api"
	"github.com/LWENA27/sms-getway/internal/api/v1"
	"github.com/LWENA27/sms-getway/internal/api/validator"
	"github.com/LWENA27/sms-getway/internal/config"
	"github.com/LWENA27/sms-getway/internal/logging"
	"github.com/LWENA27/sms-getway/internal/metrics"
	"github.com/LWENA27/sms-getway/internal/service"
	"github.com/LWENA27/sms-getway/pkg/database"
	"github.com/LWENA27/sms-getway/pkg/httpclient"
	"github.com/LWENA27/sms-getway/pkg/procedure"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const collectInterval = 15 * time.Second

type healthChecks []metrics.HealthCheck

func main() {
	fx.New(
		fx.Provide(
			config.LoadAPI,
			logging.NewLogger,
			newRegistry,
			newMetrics,
			newCaller,
			fx.Annotate(newFallback, fx.As(new(service.ProcedureInvoker))),
			service.NewRelayService,
			newValidator,
			v1.NewHandler,
			api.NewApp,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(startServer, startOps),
	).Run()
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.NewMetrics(reg)
}

func newValidator(m *metrics.Metrics) validator.IXValidator {
	return validator.NewXValidator(playground.New(), m)
}

// newCaller picks the procedure transport. The sql driver also owns the
// database pool and its health check.
func newCaller(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, lc fx.Lifecycle) (procedure.Caller, healthChecks, error) {
	switch cfg.Procedure.Driver {
	case procedure.DriverPostgREST:
		client := httpclient.NewHTTPClient(cfg.Procedure.Timeout,
			httpclient.WithDefaultHeaders(procedure.ServiceHeaders(cfg.Procedure.ServiceKey)))

		logger.Info("Using PostgREST procedure driver", zap.String("url", cfg.Procedure.URL))
		return procedure.NewPostgREST(cfg.Procedure, client), nil, nil

	case procedure.DriverSQL:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := database.NewConnection(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}

		caller, err := procedure.NewSQL(db)
		if err != nil {
			return nil, nil, err
		}

		collector := metrics.NewDatabaseMetricsCollector(m, logger, db)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				collector.Start(collectInterval)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				collector.Stop()
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		})

		logger.Info("Using SQL procedure driver", zap.String("dialect", db.Dialector.Name()))
		return caller, healthChecks{collector.HealthCheck}, nil

	default:
		return nil, nil, fmt.Errorf("unknown procedure driver %q", cfg.Procedure.Driver)
	}
}

func newFallback(caller procedure.Caller, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *procedure.Fallback {
	return procedure.NewFallback(caller, cfg.Procedure.CallTargets(), logger, m)
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler, cfg.API.BasePath)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := app.Listen(cfg.API.Port); err != nil {
					logger.Error("Relay API stopped", zap.Error(err))
				}
			}()
			logger.Info("Relay API listening",
				zap.String("port", cfg.API.Port),
				zap.String("base_path", cfg.API.BasePath))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func startOps(reg *prometheus.Registry, m *metrics.Metrics, checks healthChecks, cfg *config.Config,
	logger *zap.Logger, lc fx.Lifecycle) {
	ops := metrics.NewOpsApp(reg, "relay-api", checks...)
	system := metrics.NewSystemCollector(m, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			system.Start(collectInterval)
			go func() {
				if err := ops.Listen(cfg.Ops.Port); err != nil {
					logger.Error("Ops listener stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			system.Stop()
			return ops.ShutdownWithContext(ctx)
		},
	})
}
