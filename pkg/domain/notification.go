package domain

// Default notification text used when a message carries neither a
// notification block nor data fields.
const (
	DefaultNotificationTitle = "New notification"
	DefaultNotificationBody  = "You have a new notification"
)

// Message is a push message as delivered by the notification provider.
// Either block may be absent; display falls back notification -> data
// -> defaults.
type Message struct {
	Notification *NotificationFields `json:"notification,omitempty"`
	Data         *MessageData        `json:"data,omitempty"`
}

// NotificationFields is the display block of a push message.
type NotificationFields struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// MessageData is the data block of a push message.
type MessageData struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Title resolves the display title through the fallback chain.
func (m Message) Title() string {
	if m.Notification != nil && m.Notification.Title != "" {
		return m.Notification.Title
	}
	if m.Data != nil && m.Data.Title != "" {
		return m.Data.Title
	}
	return DefaultNotificationTitle
}

// Body resolves the display body through the fallback chain.
func (m Message) Body() string {
	if m.Notification != nil && m.Notification.Body != "" {
		return m.Notification.Body
	}
	if m.Data != nil && m.Data.Body != "" {
		return m.Data.Body
	}
	return DefaultNotificationBody
}

// TargetURL returns the path a notification click should open, "/" when
// the message does not name one.
func (m Message) TargetURL() string {
	if m.Data != nil && m.Data.URL != "" {
		return m.Data.URL
	}
	return "/"
}
