// Package notify defines the sink that receives user-facing outcome
// events from the storefront services. Rendering is the caller's
// concern; the services only describe what happened.
package notify

import "go.uber.org/zap"

// Level classifies an event for the presentation layer.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Event is a single user-facing outcome.
type Event struct {
	Level   Level
	Code    string
	Message string
}

// Sink receives events emitted by the services.
type Sink interface {
	Publish(event Event)
}

// ZapSink logs events through a structured logger.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a sink backed by the given logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Publish(event Event) {
	fields := []zap.Field{
		zap.String("code", event.Code),
		zap.String("level", string(event.Level)),
	}

	switch event.Level {
	case LevelError:
		s.logger.Error(event.Message, fields...)
	case LevelWarning:
		s.logger.Warn(event.Message, fields...)
	default:
		s.logger.Info(event.Message, fields...)
	}
}

// Discard drops every event. Useful in tests.
type Discard struct{}

func (Discard) Publish(Event) {}
