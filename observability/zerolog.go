package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologObserver emits events through a zerolog.Logger. It is the preferred
// backend for high-frequency emitters such as the coordinator's heartbeat
// loop, where zerolog's pre-allocated encoder avoids the per-call formatting
// cost of the "slog" observer.
type ZerologObserver struct {
	logger zerolog.Logger
}

// NewZerologObserver creates a ZerologObserver that emits to the given logger.
func NewZerologObserver(logger zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{logger: logger}
}

func (o *ZerologObserver) OnEvent(_ context.Context, event Event) {
	zlevel := zerologLevel(event.Level)
	evt := o.logger.WithLevel(zlevel)
	if evt == nil {
		return
	}

	evt = evt.Str("source", event.Source).Time("timestamp", event.Timestamp)
	for k, v := range event.Data {
		evt = evt.Interface(k, v)
	}
	evt.Msg(string(event.Type))
}

// Name identifies this observer in the registry.
func (o *ZerologObserver) Name() string { return "zerolog" }

func zerologLevel(l Level) zerolog.Level {
	switch {
	case l <= 8:
		return zerolog.DebugLevel
	case l <= 12:
		return zerolog.InfoLevel
	case l <= 16:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
