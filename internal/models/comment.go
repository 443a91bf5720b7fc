package models

import "time"

// Comment lives in the posts/{postId}/comments child collection.
type Comment struct {
	ID        string    `json:"id" firestore:"-" bson:"-"`
	PostID    string    `json:"postId" firestore:"postId" bson:"postId"`
	UserID    string    `json:"userId" firestore:"userId" bson:"userId"`
	Username  string    `json:"username" firestore:"username" bson:"username"`
	Text      string    `json:"text" firestore:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (c *Comment) SetID(id string) { c.ID = id }

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
