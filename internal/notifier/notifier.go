package notifier

import (
	"context"
	"errors"

	"RSIMonitor/internal/model"

	"github.com/rs/zerolog"
)

// ErrNotificationFailed wraps every transport or authentication failure.
var ErrNotificationFailed = errors.New("notification failed")

// Notifier delivers a rendered alert to one recipient.
type Notifier interface {
	Send(ctx context.Context, recipient string, msg model.Message) error
	Name() string
}

// LogNotifier writes alerts to the log instead of delivering them.
type LogNotifier struct {
	Log zerolog.Logger
}

// NewLogNotifier creates a log-only notifier for dry runs.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{Log: log}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(_ context.Context, recipient string, msg model.Message) error {
	n.Log.Info().
		Str("recipient", recipient).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("dry run, alert not delivered")
	return nil
}
