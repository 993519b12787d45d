package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	mu         sync.Mutex
	logger     zerolog.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write to stderr with timestamps.
// Default minimum level is INFO; SetLevel can lower it.
func initLogger() {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = consoleTimeFormat
		zerolog.ErrorFieldName = "err"

		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat}
		logger = zerolog.New(cw).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
}

func SetLevel(l Level) {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(parseLevel(l))
}

func parseLevel(l Level) zerolog.Level {
	switch Level(strings.ToUpper(strings.TrimSpace(string(l)))) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func Debug(msg string, kv ...any) {
	initLogger()
	mu.Lock()
	e := logger.Debug()
	mu.Unlock()
	emit(e, msg, kv)
}

func Info(msg string, kv ...any) {
	initLogger()
	mu.Lock()
	e := logger.Info()
	mu.Unlock()
	emit(e, msg, kv)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	mu.Lock()
	e := logger.Error().Err(err)
	mu.Unlock()
	emit(e, msg, kv)
}

// emit appends kv as alternating key/value pairs. Non-string keys are
// skipped; an odd trailing value is ignored.
func emit(e *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
