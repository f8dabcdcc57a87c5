package notification

import (
	"context"
	"log/slog"
)

const (
	// KindAccountCreated announces a freshly bootstrapped account.
	KindAccountCreated = "account_created"
	// KindDeviceRegistered announces a device registered with a vendor.
	KindDeviceRegistered = "device_registered"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
	Attributes  map[string]string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	attrs := []any{
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("body", message.Body),
	}
	for k, v := range message.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	n.logger.InfoContext(ctx, "notification", attrs...)
	return nil
}

// Recorder keeps sent messages in memory. Intended for tests.
type Recorder struct {
	Messages []Message
}

// Send appends the message.
func (r *Recorder) Send(_ context.Context, message Message) error {
	r.Messages = append(r.Messages, message)
	return nil
}

// Last returns the most recent message, or the zero Message.
func (r *Recorder) Last() Message {
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}
