package logging

import (
	"fmt"

	"github.com/LWENA27/sms-getway/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// MaskKey keeps a short prefix of an API key for correlation.
func MaskKey(key string) string {
	const visible = 4
	if key == "" {
		return ""
	}
	if len(key) <= visible {
		return "****"
	}
	return key[:visible] + "****"
}
