// Package notify renders OS-level notifications.
package notify

import "github.com/gen2brain/beeep"

// Notification is a single OS notification to render. Tag is a fixed
// category identifier; platforms that group by tag collapse duplicates
// carrying the same one.
type Notification struct {
	Tag       string
	Title     string
	Body      string
	TargetURL string // opened on activation where the platform reports clicks
}

// Notifier renders notifications.
type Notifier interface {
	Notify(n Notification) error
}

// Desktop renders through the host desktop's notification system.
type Desktop struct{}

// NewDesktop returns a desktop notifier.
func NewDesktop() *Desktop {
	beeep.AppName = "parkwatch"
	return &Desktop{}
}

// Notify shows an OS notification. Desktop backends do not report
// activation, so TargetURL is carried for the caller's benefit only.
func (d *Desktop) Notify(n Notification) error {
	return beeep.Notify(n.Title, n.Body, "")
}
