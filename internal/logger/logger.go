package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the process logger and installs it as the zerolog global.
// Development gets a colored console writer; everything else gets JSON.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var l zerolog.Logger
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		l = zerolog.New(os.Stdout)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}

	l = l.With().Timestamp().Str("service", "binfleet-backend").Logger()
	log.Logger = l
	return l
}
