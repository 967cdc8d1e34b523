// Package progress defines the event sink for research step
// transitions. Reporters are a pure observability side channel: they
// never block and never affect orchestration outcome.
package progress

import (
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"go.uber.org/zap"
)

// Reporter receives every step transition of a research session.
type Reporter interface {
	Emit(step schemas.ResearchStep)
}

// Nop discards all events. It is the default sink.
type Nop struct{}

func (Nop) Emit(schemas.ResearchStep) {}

// ZapReporter logs step transitions.
type ZapReporter struct {
	logger *zap.Logger
}

// NewZapReporter creates a logging reporter.
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	return &ZapReporter{logger: logger}
}

func (r *ZapReporter) Emit(step schemas.ResearchStep) {
	r.logger.Info("research step",
		zap.String("id", step.ID),
		zap.String("type", string(step.Type)),
		zap.String("status", string(step.Status)),
		zap.String("title", step.Title))
}

// ChannelReporter streams step events to a channel consumer. Sends are
// non-blocking; events are dropped when the consumer falls behind.
type ChannelReporter struct {
	ch chan schemas.ResearchStep
}

// NewChannelReporter creates a channel reporter with the given buffer.
func NewChannelReporter(buffer int) *ChannelReporter {
	return &ChannelReporter{ch: make(chan schemas.ResearchStep, buffer)}
}

func (r *ChannelReporter) Emit(step schemas.ResearchStep) {
	select {
	case r.ch <- step:
	default:
		// Consumer lagging; drop rather than stall the pipeline.
	}
}

// Steps returns the receive side of the event stream.
func (r *ChannelReporter) Steps() <-chan schemas.ResearchStep { return r.ch }

// Close closes the event stream. Emit must not be called after Close.
func (r *ChannelReporter) Close() { close(r.ch) }

// Multi fans one event out to several reporters.
type Multi []Reporter

func (m Multi) Emit(step schemas.ResearchStep) {
	for _, r := range m {
		r.Emit(step)
	}
}
