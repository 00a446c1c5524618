package tui

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/parkwatch/parkwatch/pkg/domain"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// localExpiry converts a ticket's stored UTC expiry to local date and
// time strings. On a malformed record it falls back to the raw values.
func localExpiry(t domain.Ticket) (string, string) {
	date, tm, err := domain.ExpiryToLocal(t.Date, t.Time, time.Local)
	if err != nil {
		return t.Date, t.Time
	}
	return date, tm
}

// untilExpiry returns how far in the future a ticket's expiry is.
// Negative means already expired.
func untilExpiry(t domain.Ticket, now time.Time) time.Duration {
	exp, err := time.ParseInLocation("2006-01-02 15:04", t.Date+" "+trimSeconds(t.Time), time.UTC)
	if err != nil {
		return 0
	}
	return exp.Sub(now)
}

// untilLabel renders a time-to-expiry as a short human label.
func untilLabel(d time.Duration) string {
	switch {
	case d <= 0:
		return "expired"
	case d < time.Minute:
		return "<1m left"
	case d < time.Hour:
		return fmt.Sprintf("%dm left", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh left", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd left", int(d.Hours()/24))
	}
}

func trimSeconds(tm string) string {
	if len(tm) > 5 {
		return tm[:5]
	}
	return tm
}
