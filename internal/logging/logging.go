// Package logging builds the logrus logger used by the enrollment server.
// Every entry passes through a PrivacyHook that redacts credentials and
// replaces personal data with salted fingerprints.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New returns a logger with the privacy hook installed.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	level := strings.TrimSpace(opts.Level)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	logger.AddHook(NewPrivacyHook())
	return logger, nil
}

type requestIDKey struct{}

// NewRequestID returns a fresh request id.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID stores id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns logger scoped with the request id of ctx, if any.
func FromContext(ctx context.Context, logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if id := RequestID(ctx); id != "" {
		return logger.WithField("request_id", id)
	}
	return logger
}
