// Package logger wraps zap with environment-driven setup and per-component
// named loggers. LOG_LEVEL and LOG_FORMAT select level and encoder; the
// default is INFO on a human-readable console encoder.
package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFormat selects the log encoder.
type LogFormat string

const (
	// FormatConsole is the human-readable console format.
	FormatConsole LogFormat = "CONSOLE"
	// FormatJSON is the structured JSON format.
	FormatJSON LogFormat = "JSON"
)

var initOnce sync.Once

func getLogLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// New creates a zap logger with the given level and format.
func New(logLevel string, logFormat LogFormat) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	if logFormat == FormatJSON {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = timeEncoder
		encoderConfig.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.AddSync(os.Stdout),
		zap.NewAtomicLevelAt(getLogLevel(logLevel)),
	)
	return zap.New(core)
}

// Initialize sets up the global logger from the environment. Safe to call
// more than once; only the first call takes effect.
func Initialize() {
	initOnce.Do(func() {
		level := getEnv("LOG_LEVEL", "INFO")
		format := LogFormat(strings.ToUpper(getEnv("LOG_FORMAT", string(FormatConsole))))
		if format != FormatConsole && format != FormatJSON {
			format = FormatConsole
		}
		zap.ReplaceGlobals(New(level, format))
	})
}

// For returns a named logger for a component, initializing the global logger
// if needed.
func For(component string) *zap.SugaredLogger {
	Initialize()
	return zap.S().Named(component)
}

// Sync flushes buffered log entries.
func Sync() error {
	return zap.L().Sync()
}
