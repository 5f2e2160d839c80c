package observability

import (
	"context"
	"log/slog"
)

// SlogObserver emits events to a slog.Logger. Event levels are mapped via
// SlogLevel, the event type becomes the log message, and Data keys are
// flattened as top-level slog attributes.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver that emits to the given logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

// OnEvent logs event, hoisting "run_id" to a fixed leading attribute
// position (ahead of the rest of Data, whose map order is unspecified) so
// that multiple llmctl runs sharing one log stream stay greppable by run.
func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Data)+2)
	attrs = append(attrs, slog.String("source", event.Source))
	if runID, ok := event.Data["run_id"]; ok {
		attrs = append(attrs, slog.Any("run_id", runID))
	}
	for k, v := range event.Data {
		if k == "run_id" {
			continue
		}
		attrs = append(attrs, slog.Any(k, v))
	}

	o.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}

// Name identifies this observer in the registry.
func (o *SlogObserver) Name() string { return "slog" }
