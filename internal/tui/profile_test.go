package tui

import (
	"strings"
	"testing"

	"github.com/parkwatch/parkwatch/pkg/domain"
)

func TestProfileOpenTarget(t *testing.T) {
	m := newProfileModel(nil, "http://localhost:3000", true)

	if got := m.openTarget(); got != "http://localhost:3000" {
		t.Errorf("openTarget() with no notifications = %q, want web app root", got)
	}

	m.notes = append(m.notes, domain.Message{
		Data: &domain.MessageData{Title: "first", URL: "/tickets/7"},
	})
	m.notes = append(m.notes, domain.Message{
		Data: &domain.MessageData{Title: "second", URL: "/tickets/42"},
	})
	if got := m.openTarget(); got != "http://localhost:3000/tickets/42" {
		t.Errorf("openTarget() = %q, want latest notification target", got)
	}

	// A notification without a URL falls back to the application root.
	m.notes = append(m.notes, domain.Message{
		Notification: &domain.NotificationFields{Title: "third"},
	})
	if got := m.openTarget(); got != "http://localhost:3000/" {
		t.Errorf("openTarget() = %q, want root path", got)
	}

	// An absolute target is opened as-is, never prefixed.
	m.notes = append(m.notes, domain.Message{
		Data: &domain.MessageData{Title: "fourth", URL: "https://payments.example/fine/9"},
	})
	if got := m.openTarget(); got != "https://payments.example/fine/9" {
		t.Errorf("openTarget() = %q, want the absolute URL untouched", got)
	}
}

func TestProfileViewListsNotificationsNewestFirst(t *testing.T) {
	user := &domain.User{Name: "Jan", Surname: "Kowalski", Email: "jan@example.com"}
	m := newProfileModel(user, "http://localhost:3000", true)
	m.height = 40

	m.notes = append(m.notes, domain.Message{
		Notification: &domain.NotificationFields{Title: "older"},
	})
	m.notes = append(m.notes, domain.Message{
		Notification: &domain.NotificationFields{Title: "newer"},
	})

	view := m.View()
	if !strings.Contains(view, "Jan Kowalski") {
		t.Error("view missing user name")
	}
	iOlder := strings.Index(view, "older")
	iNewer := strings.Index(view, "newer")
	if iOlder < 0 || iNewer < 0 {
		t.Fatalf("view missing notification titles:\n%s", view)
	}
	if iNewer > iOlder {
		t.Error("notifications not listed newest first")
	}
}
