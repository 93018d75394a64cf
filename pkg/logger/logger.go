package logger

import (
	"context"
	"strings"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/configs"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func GetLogger(lifecycle fx.Lifecycle, config *configs.Config) (*zap.Logger, error) {

	l, err := New(config.Log.Level, config.Log.Format)
	if err != nil {
		return nil, err
	}

	lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Sync fails on stdout for some terminals, nothing to recover
			_ = l.Sync()
			return nil
		},
	})

	return l, nil
}

func New(level string, format string) (*zap.Logger, error) {

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if strings.ToLower(format) == "console" {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
