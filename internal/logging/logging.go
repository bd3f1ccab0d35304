package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures New. Zero values mean info level, text output and
// stderr.
type Options struct {
	Level  string
	Format string
	Out    io.Writer
}

// New creates a logger for the CLI. The JSON format uses timestamp, level
// and message keys so lines can be shipped to a log aggregator unchanged.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	switch opts.Format {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", opts.Format, FormatText, FormatJSON)
	}

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	logger.SetLevel(level)

	return logger, nil
}

// LevelFromFlags applies -d/--debug and -q/--quiet over the configured
// level.
func LevelFromFlags(debug, quiet bool, configured string) string {
	switch {
	case debug:
		return logrus.DebugLevel.String()
	case quiet:
		return logrus.ErrorLevel.String()
	case configured != "":
		return configured
	default:
		return logrus.InfoLevel.String()
	}
}
