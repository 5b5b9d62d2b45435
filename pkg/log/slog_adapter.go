package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("category", event.Category.String()),
	}

	if event.PortID != "" {
		attrs = append(attrs, slog.String("port", event.PortID))
	}
	if event.UniverseID != 0 {
		attrs = append(attrs, slog.Uint64("universe", uint64(event.UniverseID)))
	}

	switch {
	case event.Binding != nil:
		attrs = append(attrs, slog.String("action", event.Binding.Action.String()))
		if event.Binding.Previous != 0 {
			attrs = append(attrs, slog.Uint64("previous", uint64(event.Binding.Previous)))
		}
	case event.DMX != nil:
		attrs = append(attrs,
			slog.String("direction", event.DMX.Direction.String()),
			slog.Int("channels", event.DMX.Frame.Size()),
			slog.Bool("ok", event.DMX.OK),
		)
	case event.Device != nil:
		attrs = append(attrs,
			slog.String("action", event.Device.Action.String()),
			slog.Uint64("plugin_id", uint64(event.Device.PluginID)),
			slog.Uint64("device_id", uint64(event.Device.DeviceID)),
			slog.String("name", event.Device.Name),
			slog.Int("ports", event.Device.Ports),
		)
	case event.Error != nil:
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "event", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
