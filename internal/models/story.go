package models

import "time"

// Story is one user's set of items, visible until ExpiresAt.
type Story struct {
	ID        string      `json:"id" firestore:"-" bson:"-"`
	UserID    string      `json:"userId" firestore:"userId" bson:"userId"`
	Items     []StoryItem `json:"items" firestore:"items" bson:"items"`
	ExpiresAt time.Time   `json:"expiresAt" firestore:"expiresAt" bson:"expiresAt"`
	CreatedAt time.Time   `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (s *Story) SetID(id string) { s.ID = id }

// StoryItem represents a single item in a story
type StoryItem struct {
	ID        string    `json:"id" firestore:"id" bson:"id"`
	Type      string    `json:"type" firestore:"type" bson:"type"` // "image" or "video"
	URL       string    `json:"url" firestore:"url" bson:"url"`
	Duration  int64     `json:"duration" firestore:"duration" bson:"duration"` // seconds
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

// StoryView groups a story with its author and whether the caller has seen it.
type StoryView struct {
	Story
	Author *UserCompact `json:"author,omitempty"`
	Seen   bool         `json:"seen"`
}

// StorySeen tracks which stories a user has seen (PostgreSQL)
type StorySeen struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	StoryID string    `json:"storyId" gorm:"size:64;index;uniqueIndex:idx_story_user_seen"`
	UserID  string    `json:"userId" gorm:"size:64;index;uniqueIndex:idx_story_user_seen"`
	SeenAt  time.Time `json:"seenAt"`
}

// StoryReaction tracks reactions to stories (PostgreSQL)
type StoryReaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoryID   string    `json:"storyId" gorm:"size:64;index"`
	UserID    string    `json:"userId" gorm:"size:64;index"`
	Reaction  string    `json:"reaction" gorm:"size:16"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	MediaURL string `json:"mediaUrl" validate:"required,url"`
	Type     string `json:"type" validate:"required,oneof=image video"`
	Duration int64  `json:"duration" validate:"omitempty,min=1,max=60"`
}

type StoryReactionRequest struct {
	Reaction string `json:"reaction" validate:"required,min=1,max=16"`
}
