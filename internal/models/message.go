package models

import "time"

// Conversation is a direct-message thread between participants. Messages are
// stored in its messages child collection.
type Conversation struct {
	ID            string    `json:"id" firestore:"-" bson:"-"`
	Participants  []string  `json:"participants" firestore:"participants" bson:"participants"`
	LastMessage   string    `json:"lastMessage" firestore:"lastMessage" bson:"lastMessage"`
	LastSenderID  string    `json:"lastSenderId" firestore:"lastSenderId" bson:"lastSenderId"`
	LastMessageAt time.Time `json:"lastMessageAt" firestore:"lastMessageAt" bson:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (c *Conversation) SetID(id string) { c.ID = id }

// HasParticipant reports whether uid takes part in the conversation.
func (c *Conversation) HasParticipant(uid string) bool {
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

type Message struct {
	ID        string    `json:"id" firestore:"-" bson:"-"`
	SenderID  string    `json:"senderId" firestore:"senderId" bson:"senderId"`
	Text      string    `json:"text" firestore:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (m *Message) SetID(id string) { m.ID = id }

type StartConversationRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}
