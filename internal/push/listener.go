package push

import (
	"log/slog"

	"github.com/parkwatch/parkwatch/pkg/domain"
)

// Listener is the foreground message handler. It only logs: while the
// application itself is in front of the user there is no OS
// notification to show, and rendering in-app banners is the UI's call,
// not the pipeline's.
type Listener struct {
	log *slog.Logger
}

// NewListener creates a log-only foreground listener.
func NewListener(log *slog.Logger) *Listener {
	return &Listener{log: log}
}

// Handle records the message and deliberately does nothing else.
func (l *Listener) Handle(msg domain.Message) {
	l.log.Info("message received in foreground", "title", msg.Title(), "body", msg.Body())
}
