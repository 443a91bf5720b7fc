package repositories

import (
	"context"
	"errors"
	"slices"
	"time"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
)

// MessageRepository stores direct-message conversations and their messages.
type MessageRepository interface {
	GetOrCreateConversation(ctx context.Context, a, b string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id, uid string) (*models.Conversation, error)
	ListConversations(ctx context.Context, uid string, limit int) ([]models.Conversation, error)
	SendMessage(ctx context.Context, conversationID string, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
}

type StoreMessageRepository struct {
	store store.Store
}

func NewStoreMessageRepository(s store.Store) *StoreMessageRepository {
	return &StoreMessageRepository{store: s}
}

// ConversationID is the id of the one-to-one conversation between a and b,
// independent of argument order.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

func messagesOf(conversationID string) string {
	return store.Sub(models.CollectionConversations, conversationID, models.SubcollectionMessages)
}

func (r *StoreMessageRepository) GetOrCreateConversation(ctx context.Context, a, b string) (*models.Conversation, error) {
	if a == b {
		return nil, apperrors.InvalidOperation("you can't message yourself")
	}
	id := ConversationID(a, b)
	conv, err := store.GetAs[models.Conversation](ctx, r.store, models.CollectionConversations, id)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, storeError("getConversation", "conversation", err)
	}

	participants := []string{a, b}
	slices.Sort(participants)
	_, err = r.store.Create(ctx, models.CollectionConversations, id, map[string]any{
		"participants":  participants,
		"lastMessage":   "",
		"lastSenderId":  "",
		"lastMessageAt": time.Now().UTC(),
	})
	if err != nil {
		return nil, storeError("createConversation", "conversation", err)
	}
	conv, err = store.GetAs[models.Conversation](ctx, r.store, models.CollectionConversations, id)
	return conv, storeError("getConversation", "conversation", err)
}

// GetConversation only returns conversations uid takes part in.
func (r *StoreMessageRepository) GetConversation(ctx context.Context, id, uid string) (*models.Conversation, error) {
	conv, err := store.GetAs[models.Conversation](ctx, r.store, models.CollectionConversations, id)
	if err != nil {
		return nil, storeError("getConversation", "conversation", err)
	}
	if !conv.HasParticipant(uid) {
		return nil, apperrors.NotFound("conversation")
	}
	return conv, nil
}

// ListConversations returns uid's conversations, most recently active first.
func (r *StoreMessageRepository) ListConversations(ctx context.Context, uid string, limit int) ([]models.Conversation, error) {
	q := store.NewQuery().
		Where("participants", store.OpArrayContains, uid).
		Order("lastMessageAt", store.Desc).
		Take(limit)
	convs, err := store.FindAs[models.Conversation](ctx, r.store, models.CollectionConversations, q)
	if err != nil {
		return nil, storeError("listConversations", "conversation", err)
	}
	return convs, nil
}

// SendMessage appends msg and updates the conversation's last-message fields.
func (r *StoreMessageRepository) SendMessage(ctx context.Context, conversationID string, msg *models.Message) error {
	id, err := r.store.Create(ctx, messagesOf(conversationID), "", map[string]any{
		"senderId": msg.SenderID,
		"text":     msg.Text,
	})
	if err != nil {
		return storeError("sendMessage", "message", err)
	}
	err = r.store.Update(ctx, models.CollectionConversations, conversationID,
		store.Set("lastMessage", msg.Text),
		store.Set("lastSenderId", msg.SenderID),
		store.ServerTimestamp("lastMessageAt"),
		store.ServerTimestamp("updatedAt"),
	)
	if err != nil {
		return storeError("sendMessage", "conversation", err)
	}
	created, err := store.GetAs[models.Message](ctx, r.store, messagesOf(conversationID), id)
	if err != nil {
		return storeError("sendMessage", "message", err)
	}
	*msg = *created
	return nil
}

// ListMessages returns the latest messages of a conversation, newest first.
func (r *StoreMessageRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	q := store.NewQuery().Order("createdAt", store.Desc).Take(limit)
	msgs, err := store.FindAs[models.Message](ctx, r.store, messagesOf(conversationID), q)
	if err != nil {
		return nil, storeError("listMessages", "message", err)
	}
	return msgs, nil
}
