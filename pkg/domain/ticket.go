package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Ticket represents a parking ticket. The backend owns the record; the
// client only holds transient copies for display and editing. Date and
// Time are stored in UTC and converted to local time for rendering.
type Ticket struct {
	ID            int    `json:"id"`
	VehicleNumber string `json:"vehicle_number"`
	Location      string `json:"location"`
	Date          string `json:"date"` // YYYY-MM-DD, UTC
	Time          string `json:"time"` // HH:MM or HH:MM:SS, UTC
	ImageBase64   string `json:"image_base64,omitempty"`
}

// Image upload constraints.
const MaxImageBytes = 5 << 20 // 5 MB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidationError is a client-side field validation failure. It blocks
// submission before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidateVehicleNumber checks the 2-20 character bound on the trimmed value.
func ValidateVehicleNumber(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return &ValidationError{Field: "vehicle number", Reason: "required"}
	case utf8.RuneCountInString(s) < 2:
		return &ValidationError{Field: "vehicle number", Reason: "must be at least 2 characters"}
	case utf8.RuneCountInString(s) > 20:
		return &ValidationError{Field: "vehicle number", Reason: "must be at most 20 characters"}
	}
	return nil
}

// ValidateLocation checks the 3-100 character bound on the trimmed value.
func ValidateLocation(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return &ValidationError{Field: "location", Reason: "required"}
	case utf8.RuneCountInString(s) < 3:
		return &ValidationError{Field: "location", Reason: "must be at least 3 characters"}
	case utf8.RuneCountInString(s) > 100:
		return &ValidationError{Field: "location", Reason: "must be at most 100 characters"}
	}
	return nil
}

// ValidateExpiryDate checks that date is a local YYYY-MM-DD day within
// [today, Dec 31 of the current year + 10].
func ValidateExpiryDate(date string, now time.Time) error {
	if date == "" {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	d, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return &ValidationError{Field: "date", Reason: "invalid format (want YYYY-MM-DD)"}
	}
	year := d.Year()
	if year < 1000 || year > 9999 {
		return &ValidationError{Field: "date", Reason: "year must have 4 digits"}
	}
	if year < now.Year() {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("year must not be earlier than %d", now.Year())}
	}
	if year > now.Year()+10 {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("year must not be later than %d", now.Year()+10)}
	}
	if date < now.Format(dateLayout) {
		return &ValidationError{Field: "date", Reason: "must not be in the past"}
	}
	return nil
}

// ValidateExpiryTime checks the HH:MM format and, when date is today,
// that the time is strictly later than the current local time.
func ValidateExpiryTime(date, tm string, now time.Time) error {
	if tm == "" {
		return &ValidationError{Field: "time", Reason: "required"}
	}
	if !timePattern.MatchString(tm) {
		return &ValidationError{Field: "time", Reason: "invalid format (want HH:MM)"}
	}
	if date == now.Format(dateLayout) && padHour(tm) <= now.Format(timeLayout) {
		return &ValidationError{Field: "time", Reason: fmt.Sprintf("must be later than %s for today's date", now.Format(timeLayout))}
	}
	return nil
}

// ValidateImageFile checks the optional ticket photo: extension in
// {jpg, jpeg, png, gif} and size at most 5 MB. An empty name means no
// image and is valid.
func ValidateImageFile(name string, size int64) error {
	if name == "" {
		return nil
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 || !allowedImageExts[strings.ToLower(name[idx:])] {
		return &ValidationError{Field: "image", Reason: "only JPG, JPEG, PNG and GIF files are allowed"}
	}
	if size > MaxImageBytes {
		return &ValidationError{Field: "image", Reason: "must be at most 5 MB"}
	}
	return nil
}

// ExpiryToUTC converts a local-time date + HH:MM pair to its UTC
// representation for transmission to the backend.
func ExpiryToUTC(date, tm string, loc *time.Location) (string, string, error) {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+padHour(normalizeTime(tm)), loc)
	if err != nil {
		return "", "", fmt.Errorf("parse local expiry: %w", err)
	}
	u := t.UTC()
	return u.Format(dateLayout), u.Format(timeLayout), nil
}

// ExpiryToLocal converts a stored UTC date + time pair back to local
// time for display. It is the inverse of ExpiryToUTC for a stable
// timezone.
func ExpiryToLocal(date, tm string, loc *time.Location) (string, string, error) {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+padHour(normalizeTime(tm)), time.UTC)
	if err != nil {
		return "", "", fmt.Errorf("parse UTC expiry: %w", err)
	}
	l := t.In(loc)
	return l.Format(dateLayout), l.Format(timeLayout), nil
}

// normalizeTime trims an optional seconds component; the backend
// serializes times as HH:MM:SS.
func normalizeTime(tm string) string {
	if len(tm) > 5 {
		return tm[:5]
	}
	return tm
}

// padHour zero-pads a single-digit hour ("9:30" -> "09:30") so values
// line up with the "15:04" clock format for comparison and parsing.
func padHour(tm string) string {
	if strings.IndexByte(tm, ':') == 1 {
		return "0" + tm
	}
	return tm
}
