package observability

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/switchyard/pkg/contextkeys"
)

// LogFormat selects the logrus formatter
type LogFormat string

const (
	// FormatText renders human-readable lines with full timestamps
	FormatText LogFormat = "text"
	// FormatJSON renders one JSON object per line
	FormatJSON LogFormat = "json"
)

// NewLogger creates a logrus logger writing to output (stdout when nil)
func NewLogger(level logrus.Level, format LogFormat, output io.Writer) *logrus.Logger {
	if output == nil {
		output = os.Stdout
	}

	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetLevel(level)

	switch format {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// ParseLogLevel parses a level name, falling back to info
func ParseLogLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// ParseLogFormat parses a format name, falling back to text
func ParseLogFormat(format string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(format), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// WithLogger stores a request-scoped entry in the context
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return contextkeys.WithLogger(ctx, entry)
}

// FromContext returns the request-scoped entry, or an entry on the standard
// logger annotated with the request ID when none was stored.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := contextkeys.GetLogger(ctx); ok {
		return entry
	}

	entry := logrus.NewEntry(logrus.StandardLogger())
	if requestID := contextkeys.GetRequestID(ctx); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}
