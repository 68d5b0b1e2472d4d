package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global zerolog logger: human-readable console output in
// development, JSON lines otherwise.
func Setup(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	var out io.Writer = os.Stderr
	level := zerolog.InfoLevel
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Writer adapts the global logger for libraries that want an io.Writer
// (e.g. the GORM logger).
type Writer struct {
	Level zerolog.Level
}

func (w Writer) Write(p []byte) (int, error) {
	n := len(p)
	for n > 0 && (p[n-1] == '\n' || p[n-1] == '\r') {
		n--
	}
	log.WithLevel(w.Level).Msg(string(p[:n]))
	return len(p), nil
}

// Printf satisfies gorm's logger.Writer.
func (w Writer) Printf(format string, args ...interface{}) {
	log.WithLevel(w.Level).Msgf(format, args...)
}
