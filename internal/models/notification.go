package models

import "time"

// Notification types
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMeetup  = "meetup"
	NotificationFriend  = "friend"
	NotificationMessage = "message"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Type            string    `json:"type" gorm:"size:30;index"`
	ActorID         string    `json:"actorId" gorm:"size:64;index"`
	RecipientID     string    `json:"recipientId" gorm:"size:64;index"`
	TargetID        string    `json:"targetId"`                         // post ID, conversation ID, user ID
	TargetType      string    `json:"targetType" gorm:"size:20"`        // post, conversation, user
	PreviewImageURL string    `json:"previewImageUrl"`
	Message         string    `json:"message"`
	IsRead          bool      `json:"isRead" gorm:"default:false;index"`
	CreatedAt       time.Time `json:"createdAt" gorm:"index"`
}

// GroupedNotifications buckets a recipient's notifications by age.
type GroupedNotifications struct {
	Today     []Notification `json:"today"`
	Yesterday []Notification `json:"yesterday"`
	ThisWeek  []Notification `json:"thisWeek"`
	Older     []Notification `json:"older"`
}
