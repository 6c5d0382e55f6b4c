package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

var (
	mu       sync.Mutex
	sugar    *zap.SugaredLogger
	minLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// initLogger builds the global zap logger on first use: production config
// writing JSON to stderr, level wired to the shared atomic level so
// SetLevel works before or after the first log call.
func initLogger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if sugar == nil {
		cfg := zap.NewProductionConfig()
		cfg.Level = minLevel
		logger, err := cfg.Build(zap.WithCaller(false))
		if err != nil {
			logger = zap.NewNop()
		}
		sugar = logger.Sugar()
	}
	return sugar
}

func SetLevel(l Level) {
	switch l {
	case LevelDebug:
		minLevel.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		minLevel.SetLevel(zapcore.InfoLevel)
	case LevelError:
		minLevel.SetLevel(zapcore.ErrorLevel)
	}
}

func Debug(msg string, kv ...any) {
	initLogger().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	initLogger().Infow(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	initLogger().Errorw(msg, extended...)
}

// Sync flushes buffered log entries; call before process exit.
func Sync() {
	_ = initLogger().Sync()
}
