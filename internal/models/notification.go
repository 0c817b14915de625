package models

import "time"

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	RecipientID uint       `json:"recipient_id" gorm:"index"`
	Icon        string     `json:"icon" gorm:"size:100"`
	Title       string     `json:"title" gorm:"size:200"`
	Message     string     `json:"message"`
	Active      time.Time  `json:"active" gorm:"index"`
	Expires     *time.Time `json:"expires,omitempty" gorm:"index"`
	Dismissed   bool       `json:"dismissed" gorm:"default:false;index"`
}

// Expired reports whether the notification is past its expiry at the given
// instant. Expiry is independent of the dismissed flag.
func (n *Notification) Expired(now time.Time) bool {
	return n.Expires != nil && !n.Expires.After(now)
}

// SaveNotificationRequest is the body for creating or updating a notification
type SaveNotificationRequest struct {
	Icon    string     `json:"icon" validate:"required,max=100"`
	Title   string     `json:"title" validate:"required,max=200"`
	Message string     `json:"message" validate:"required"`
	Active  *time.Time `json:"active,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
}

// NotificationList is the envelope for paginated notification listings.
// TotalCount reflects the filtered set, independent of the page window.
type NotificationList struct {
	Data       []Notification `json:"data"`
	TotalCount int64          `json:"totalCount"`
}
