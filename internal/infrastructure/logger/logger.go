package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON production logger with fields attached to every entry.
// Entries carry their time under the "timestamp" key in ISO8601, e.g.
// {"level":"info","timestamp":"2024-03-15T10:00:00.000Z","msg":"..."}.
// An unparsable level falls back to info.
func New(level string, fields ...zap.Field) (*zap.Logger, error) {
	l, err := productionConfig(level).Build()
	if err != nil {
		return nil, err
	}
	return l.With(fields...), nil
}

func productionConfig(level string) zap.Config {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
