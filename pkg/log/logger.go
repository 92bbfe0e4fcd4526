package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger zerolog.Logger
var once sync.Once

type Option func(*settings)

type settings struct {
	fileName string
	console  bool
	level    zerolog.Level
}

// WithFileLogger adds a rotated file sink.
func WithFileLogger(fileName string) Option {
	return func(s *settings) {
		s.fileName = fileName
	}
}

func WithConsoleLogger() Option {
	return func(s *settings) {
		s.console = true
	}
}

func WithLevel(level zerolog.Level) Option {
	return func(s *settings) {
		s.level = level
	}
}

// Init configures the process-wide logger. Only the first call takes effect.
func Init(serviceName string, opts ...Option) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		s := &settings{level: zerolog.InfoLevel}
		for _, opt := range opts {
			opt(s)
		}

		writers := make([]io.Writer, 0, 2)
		if s.console {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			})
		}
		if s.fileName != "" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   s.fileName,
				MaxSize:    5,
				MaxBackups: 10,
				MaxAge:     14,
				Compress:   true,
			})
		}
		if len(writers) == 0 {
			writers = append(writers, os.Stdout)
		}

		logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(s.level).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
	})
}

func GetLogger() zerolog.Logger {
	return logger
}
