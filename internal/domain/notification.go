package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType controls how a notification is presented.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// DefaultNotificationDuration applies when a notification has no duration.
const DefaultNotificationDuration = 5 * time.Second

// Notification is emitted to the user outside the request/response flow.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Duration  time.Duration    `json:"-"`
	CreatedAt time.Time        `json:"createdAt"`
}

// MarshalJSON writes the duration in milliseconds.
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		DurationMS int64 `json:"duration"`
	}{alias: alias(n), DurationMS: n.Duration.Milliseconds()})
}

// ExpiresAt returns when the notification stops being shown.
func (n Notification) ExpiresAt() time.Time {
	d := n.Duration
	if d <= 0 {
		d = DefaultNotificationDuration
	}
	return n.CreatedAt.Add(d)
}

// TaskStartingNotification is sent once when a task auto-starts.
func TaskStartingNotification(t Task, now time.Time) Notification {
	return Notification{
		Title:     "🚀 Task Starting!",
		Message:   fmt.Sprintf(`"%s" is starting now`, t.Title),
		Type:      NotificationInfo,
		Duration:  6 * time.Second,
		CreatedAt: now,
	}
}
