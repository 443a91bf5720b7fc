// Package ai produces meetup ideas, captions and chat replies from a text
// generator, falling back to fixed suggestions whenever generation fails.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/metrics"
	"github.com/anonto42/moments/backend/internal/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

var (
	fallbackMeetups = []models.MeetupIdea{
		{Title: "Coffee Hangout", Description: "Let's grab a coffee and catch up!", SuggestedLocation: "Local Cafe"},
		{Title: "Walk in the Park", Description: "Fresh air and good conversation.", SuggestedLocation: "Central Park"},
		{Title: "Dinner Night", Description: "Try that new place we talked about.", SuggestedLocation: "Downtown Bistro"},
	}
	fallbackCaption = "Great times with great people!"
	fallbackReplies = []string{"That sounds awesome!", "Count me in!", "Tell me more!"}
)

var meetupSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":             {Type: genai.TypeString},
			"description":       {Type: genai.TypeString},
			"suggestedLocation": {Type: genai.TypeString},
		},
		Required: []string{"title", "description", "suggestedLocation"},
	},
}

var repliesSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: &genai.Schema{Type: genai.TypeString},
}

// Suggester wraps a Generator. With a nil Generator every call returns the
// fallback suggestions.
type Suggester struct {
	gen Generator
}

func NewSuggester(gen Generator) *Suggester {
	return &Suggester{gen: gen}
}

func (s *Suggester) SuggestMeetupIdeas(ctx context.Context, caption, contentType string) []models.MeetupIdea {
	prompt := fmt.Sprintf("Based on this post caption: %q (which is a %s), suggest 3 fun, creative, and specific real-world meetup ideas for friends. Keep them short and catchy.", caption, contentType)

	var ideas []models.MeetupIdea
	if err := s.generateJSON(ctx, "meetup", prompt, meetupSchema, &ideas); err != nil || len(ideas) == 0 {
		return fallback("meetup", err, fallbackMeetups)
	}
	return ideas
}

func (s *Suggester) GenerateCaption(ctx context.Context, description string) string {
	if s.gen == nil {
		return fallback("caption", nil, fallbackCaption)
	}
	prompt := fmt.Sprintf("Generate a short, authentic, and engaging social media caption for a photo with this description: %q. No hashtags, just friendly vibes.", description)
	text, err := s.gen.Generate(ctx, prompt, nil)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		return fallback("caption", err, fallbackCaption)
	}
	return text
}

// MagicReplies suggests short replies to lastMessage.
func (s *Suggester) MagicReplies(ctx context.Context, lastMessage, history string) []string {
	prompt := fmt.Sprintf("Context: You are chatting with a friend. They just said: %q. Conversation history/context: %q. Suggest 3 short, friendly, and natural-sounding replies.", lastMessage, history)

	var replies []string
	if err := s.generateJSON(ctx, "reply", prompt, repliesSchema, &replies); err != nil || len(replies) == 0 {
		return fallback("reply", err, fallbackReplies)
	}
	return replies
}

func (s *Suggester) generateJSON(ctx context.Context, kind, prompt string, schema *genai.Schema, dst any) error {
	if s.gen == nil {
		return nil
	}
	text, err := s.gen.Generate(ctx, prompt, schema)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		text = "[]"
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return fmt.Errorf("parsing %s response: %w", kind, err)
	}
	return nil
}

func fallback[T any](kind string, err error, value T) T {
	metrics.Get().AIFallbacksTotal.WithLabelValues(kind).Inc()
	if err != nil {
		logger.Log.Warn("AI generation failed, using fallback", zap.String("kind", kind), zap.Error(err))
	}
	return value
}
