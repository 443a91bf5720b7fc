package models

// MeetupIdea is one AI suggestion for meeting up around a post.
type MeetupIdea struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	SuggestedLocation string `json:"suggestedLocation"`
}

type MeetupRequest struct {
	Caption     string `json:"caption" validate:"max=2200"`
	ContentType string `json:"contentType" validate:"omitempty,oneof=image video reel"`
}

type CaptionRequest struct {
	Description string `json:"description" validate:"required,max=1000"`
}

type MagicReplyRequest struct {
	LastMessage string `json:"lastMessage" validate:"required,max=2000"`
	Context     string `json:"context" validate:"max=2000"`
}
