package models

import "time"

// Post types and visibilities accepted by the API.
const (
	PostTypeImage = "image"
	PostTypeVideo = "video"
	PostTypeReel  = "reel"

	VisibilityFriends = "friends"
	VisibilityPublic  = "public"
)

// Post is a content item stored in the posts collection. Likes holds the ids of
// the users who liked it and LikesCount is maintained alongside it.
type Post struct {
	ID            string    `json:"id" firestore:"-" bson:"-"`
	UserID        string    `json:"userId" firestore:"userId" bson:"userId"`
	Type          string    `json:"type" firestore:"type" bson:"type"`
	ContentURL    string    `json:"contentUrl" firestore:"contentUrl" bson:"contentUrl"`
	Caption       string    `json:"caption" firestore:"caption" bson:"caption"`
	Visibility    string    `json:"visibility" firestore:"visibility" bson:"visibility"`
	Likes         []string  `json:"likes" firestore:"likes" bson:"likes"`
	LikesCount    int64     `json:"likesCount" firestore:"likesCount" bson:"likesCount"`
	CommentsCount int64     `json:"commentsCount" firestore:"commentsCount" bson:"commentsCount"`
	Hashtags      []string  `json:"hashtags" firestore:"hashtags" bson:"hashtags"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (p *Post) SetID(id string) { p.ID = id }

// PostView is a post decorated with the caller's liked/saved state and its author.
type PostView struct {
	Post
	Author  *UserCompact `json:"author,omitempty"`
	IsLiked bool         `json:"isLiked"`
	IsSaved bool         `json:"isSaved"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Type       string   `json:"type" validate:"required,oneof=image video reel"`
	ContentURL string   `json:"contentUrl" validate:"required,url"`
	Caption    string   `json:"caption" validate:"max=2200"`
	Visibility string   `json:"visibility" validate:"omitempty,oneof=friends public"`
	Hashtags   []string `json:"hashtags" validate:"omitempty,max=30,dive,min=1,max=100"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Caption    *string  `json:"caption,omitempty" validate:"omitempty,max=2200"`
	Visibility string   `json:"visibility,omitempty" validate:"omitempty,oneof=friends public"`
	Hashtags   []string `json:"hashtags,omitempty" validate:"omitempty,max=30,dive,min=1,max=100"`
}
