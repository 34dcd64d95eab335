package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// NewLogger creates an hclog logger for one named component of the
// toolchain (e.g. "gdre-export", "gdre-extract"). In non-JSON mode, output
// lines are tagged with that component's own name rather than a single
// fixed banner, so extract and export output interleaved on the same
// terminal stays attributable to its source.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv("GDRE_JSON_LOG") == "1"

	if !jsonFormat {
		output = newLinePrefixWriter(fmt.Sprintf("%s: ", name), output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// GetLogLevel returns the configured log level from the environment,
// defaulting to "warn" so a batch export doesn't spam stderr.
func GetLogLevel() string {
	level := os.Getenv("GDRE_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	return level
}
