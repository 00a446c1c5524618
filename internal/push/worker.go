// Package push implements the notification pipeline: registering this
// installation's delivery token with the backend and running the
// background worker that turns incoming messages into OS notifications.
package push

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/parkwatch/parkwatch/internal/notify"
	"github.com/parkwatch/parkwatch/pkg/domain"
)

const (
	// notificationTag is the fixed grouping category for every
	// notification the worker renders.
	notificationTag = "parking-notification"

	// seenTTL bounds how long a notification ID suppresses duplicates.
	// Re-delivery of the same message after the window shows again.
	seenTTL = 5 * time.Minute
)

// Worker consumes the provider's message stream and renders each unseen
// message as an OS notification. One worker handles all message shapes;
// fields missing from a message fall back per domain.Message.
type Worker struct {
	provider Provider
	notifier notify.Notifier
	webURL   string
	log      *slog.Logger

	seen *seenSet
	now  func() time.Time

	ready     chan struct{}
	readyOnce sync.Once

	// OnMessage, when set before Run, observes every message that
	// passed deduplication. Used to surface arrivals in the UI.
	OnMessage func(domain.Message)
}

// NewWorker creates a worker over the given provider and notifier.
// webURL is the application origin opened on notification activation.
func NewWorker(provider Provider, notifier notify.Notifier, webURL string, log *slog.Logger) *Worker {
	return &Worker{
		provider: provider,
		notifier: notifier,
		webURL:   strings.TrimRight(webURL, "/"),
		log:      log,
		seen:     newSeenSet(seenTTL),
		now:      time.Now,
		ready:    make(chan struct{}),
	}
}

// Ready returns a channel that is closed once the worker is subscribed
// and able to receive messages. Token registration waits on it instead
// of guessing at startup timing.
func (w *Worker) Ready() <-chan struct{} {
	return w.ready
}

// Run subscribes to the message stream and processes it until the
// context is canceled or the stream closes. It returns the subscribe
// error, or nil on a clean shutdown.
func (w *Worker) Run(ctx context.Context) error {
	ch, err := w.provider.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("push worker: %w", err)
	}
	w.readyOnce.Do(func() { close(w.ready) })
	w.log.Info("push worker subscribed")

	for msg := range ch {
		w.handle(msg)
	}
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("push worker: message stream closed")
}

// handle deduplicates and renders one message. The dedup ID combines
// the resolved title with the wall-clock receipt time, so distinct
// messages sharing a title that land on the same millisecond collapse
// into one notification.
func (w *Worker) handle(msg domain.Message) {
	title := msg.Title()
	id := title + "-" + strconv.FormatInt(w.now().UnixMilli(), 10)
	if !w.seen.Insert(id) {
		w.log.Debug("duplicate notification suppressed", "id", id)
		return
	}

	n := notify.Notification{
		Tag:       notificationTag,
		Title:     title,
		Body:      msg.Body(),
		TargetURL: w.targetURL(msg),
	}
	if err := w.notifier.Notify(n); err != nil {
		w.log.Warn("could not render notification", "title", title, "error", err)
	} else {
		w.log.Info("notification shown", "title", title)
	}
	if w.OnMessage != nil {
		w.OnMessage(msg)
	}
}

// targetURL resolves a message's click target against the application
// origin. An already-absolute target is returned as-is. Desktop
// notification backends do not report clicks, so the resolved URL
// rides along on the notification for the UI to open.
func (w *Worker) targetURL(msg domain.Message) string {
	target := msg.TargetURL()
	if strings.Contains(target, "://") {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return w.webURL + target
}
