package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New creates the run logger. Output is leveled key/value text, one line per entry.
func New(w io.Writer, level string) (*log.Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "h1b",
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	}), nil
}

// MustNew is like New but panics on an invalid level. Use it with constant levels.
func MustNew(w io.Writer, level string) *log.Logger {
	logger, err := New(w, level)
	if err != nil {
		panic(err)
	}
	return logger
}
