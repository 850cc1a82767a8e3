package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/jobsift/internal/version"
)

// ServiceName is attached to every log entry as the "service" field.
const ServiceName = "jobsift"

// NewLogger creates a zap logger for the given environment.
// prod writes JSON, local/dev/docker write colored console output, test
// discards everything. A non-empty level overrides the environment default.
func NewLogger(env string, levelOverride ...string) (*zap.Logger, error) {
	if env == "test" {
		return zap.NewNop(), nil
	}

	var level string
	if len(levelOverride) > 0 {
		level = levelOverride[0]
	}
	cfg, err := newConfig(env, level)
	if err != nil {
		return nil, err
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

func newConfig(env, level string) (zap.Config, error) {
	var cfg zap.Config
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return zap.Config{}, fmt.Errorf("unknown environment %q for logger", env)
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.InitialFields = map[string]any{
		"service": ServiceName,
		"env":     env,
		"version": version.Version,
	}
	return cfg, nil
}
