package main

import (
	"context"
	"time"

	"github.com/LWENA27/sms-getway/internal/bridge"
	"github.com/LWENA27/sms-getway/internal/channel"
	"github.com/LWENA27/sms-getway/internal/config"
	"github.com/LWENA27/sms-getway/internal/logging"
	"github.com/LWENA27/sms-getway/internal/metrics"
	"github.com/LWENA27/sms-getway/pkg/modem"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.Provide(
			config.LoadBridge,
			logging.NewLogger,
			newRegistry,
			newMetrics,
			newModem,
			fx.Annotate(bridge.NewModemPlatform, fx.As(new(bridge.Platform))),
			newBridge,
			newDispatcher,
			channel.NewHandler,
			channel.NewApp,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(startChannel, startOps),
	).Run()
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func newMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.NewMetrics(reg)
}

func newModem(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) *modem.Modem {
	m := modem.New(cfg.Modem, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return m.Close()
		},
	})
	return m
}

func newBridge(platform bridge.Platform, logger *zap.Logger, m *metrics.Metrics) *bridge.Bridge {
	return bridge.New(platform, logger, m)
}

func newDispatcher(b *bridge.Bridge) channel.Dispatcher {
	return b
}

func startChannel(app *fiber.App, handler *channel.Handler, cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) {
	channel.SetupRoutes(app, handler)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := app.Listen(cfg.Bridge.Address); err != nil {
					logger.Error("Method channel stopped", zap.Error(err))
				}
			}()
			logger.Info("Method channel listening",
				zap.String("address", cfg.Bridge.Address),
				zap.String("path", channel.Path),
				zap.String("device", cfg.Modem.Device))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func startOps(reg *prometheus.Registry, m *metrics.Metrics, cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) {
	if cfg.Bridge.OpsAddress == "" {
		return
	}

	ops := metrics.NewOpsApp(reg, "sms-bridge")
	system := metrics.NewSystemCollector(m, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			system.Start(15 * time.Second)
			go func() {
				if err := ops.Listen(cfg.Bridge.OpsAddress); err != nil {
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
