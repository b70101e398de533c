// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the level, format and destination of log output.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	Output string `yaml:"output"` // stderr, stdout, file or none
	File   string `yaml:"file"`
}

var Logger = zerolog.Nop()

// Init initializes the global logger with the provided configuration.
// The returned closer releases the log file, if one was opened.
func Init(config Config) (io.Closer, error) {
	level := zerolog.InfoLevel
	if config.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level '%s': %w", config.Level, err)
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer
	var closer io.Closer = nopCloser{}
	switch strings.ToLower(config.Output) {
	case "none":
		Logger = zerolog.Nop()
		log.Logger = Logger
		return closer, nil
	case "stdout":
		output = os.Stdout
	case "file":
		if dir := filepath.Dir(config.File); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		file, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file '%s': %w", config.File, err)
		}
		output = file
		closer = file
	default:
		output = os.Stderr
	}

	if strings.ToLower(config.Format) != "json" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    config.Output == "file",
		}
	}

	Logger = zerolog.New(output).With().
		Timestamp().
		Logger()
	log.Logger = Logger

	Logger.Debug().
		Str("level", level.String()).
		Str("format", config.Format).
		Str("output", config.Output).
		Msg("logger initialized")

	return closer, nil
}

// Named returns a child logger tagged with a component name.
func Named(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
