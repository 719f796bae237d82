package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select how a viewsync process logs.
type Options struct {
	Level       string
	Development bool
	// Process names the binary ("renderer" or "host"); it is stamped on
	// every line together with the pid.
	Process string
	Output  []string
}

// Logger is the process root logger. Subsystems take children from
// Component.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// New builds a logger. Development mode writes colored console lines and
// keeps stack traces; production writes JSON.
func New(opts Options) (*Logger, error) {
	level, err := zap.ParseAtomicLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
	}
	if len(opts.Output) == 0 {
		opts.Output = []string{"stdout"}
	}

	zapCfg := zap.Config{
		Level:             level,
		Development:       opts.Development,
		Encoding:          "json",
		EncoderConfig:     zap.NewProductionEncoderConfig(),
		OutputPaths:       opts.Output,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !opts.Development,
	}
	zapCfg.EncoderConfig.TimeKey = "time"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.Development {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var fields []zap.Field
	if opts.Process != "" {
		fields = append(fields, zap.String("process", opts.Process))
	}
	fields = append(fields, zap.Int("pid", os.Getpid()))

	logger, err := zapCfg.Build(zap.Fields(fields...))
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger, level: level}, nil
}

// FromConfig builds the root logger for process. An unknown level falls
// back to info and is reported on the new logger.
func FromConfig(level string, development bool, process string) *Logger {
	opts := Options{Level: level, Development: development, Process: process}
	if opts.Level == "" {
		opts.Level = "info"
		if development {
			opts.Level = "debug"
		}
	}

	logger, err := New(opts)
	if err == nil {
		return logger
	}

	opts.Level = "info"
	if logger, fallbackErr := New(opts); fallbackErr == nil {
		logger.Warn("falling back to info logging", zap.Error(err))
		return logger
	}
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// Level reports the current minimum level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Component returns a named child logger for one subsystem.
func (l *Logger) Component(name string) *zap.Logger {
	if l == nil || l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger.Named(name)
}
