package bbecs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DangerosoDavo/bbecs/config"
)

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to Logger. A nil logger discards output.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return zapLogger{sugar: l.Sugar()}
}

func (l zapLogger) With(key string, value any) Logger {
	return zapLogger{sugar: l.sugar.With(key, value)}
}

func (l zapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l zapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l zapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

// NewLogger builds a zap logger from the logging settings. "json" selects the
// production encoder, anything else a colored console encoder.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
