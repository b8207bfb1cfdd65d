// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global zerolog logger. Development gets a readable
// console writer, every other environment gets JSON lines.
func Init(serviceName, env string) {
	InitWithWriter(serviceName, env, os.Stdout)
}

// InitWithWriter is Init with an explicit output.
func InitWithWriter(serviceName, env string, out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("service", serviceName).
			Logger()
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}

	log.Logger = zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
