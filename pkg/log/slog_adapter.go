package log

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strings"
)

// SlogAdapter writes resolution events to an slog.Logger.
// Useful for development when you want to see resolutions in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
// Failed resolutions are written at Warn level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("event_id", event.ID),
		slog.String("kind", event.Kind.String()),
		slog.String("outcome", event.Outcome.String()),
		slog.Int("offset", event.Offset),
	}

	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}
	if event.Field != "" {
		attrs = append(attrs, slog.String("field", event.Field))
	}
	if len(event.Payload) > 0 {
		attrs = append(attrs, slog.String("payload", hex.EncodeToString(event.Payload)))
	}
	if len(event.Tags) > 0 {
		attrs = append(attrs, slog.String("tags", strings.Join(event.Tags, ",")))
	}
	if event.Value != "" {
		attrs = append(attrs, slog.String("value", event.Value))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}

	level := slog.LevelDebug
	if event.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "resolution", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
