package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/moments/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
	schemas []*genai.Schema
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, schema *genai.Schema) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.schemas = append(f.schemas, schema)
	return f.text, f.err
}

func TestMeetupIdeasParsesResponse(t *testing.T) {
	gen := &fakeGenerator{text: `[{"title":"Sunset Picnic","description":"Blankets and snacks","suggestedLocation":"Riverside"}]`}
	ideas := NewSuggester(gen).SuggestMeetupIdeas(context.Background(), "golden hour", "image")

	require.Len(t, ideas, 1)
	assert.Equal(t, models.MeetupIdea{Title: "Sunset Picnic", Description: "Blankets and snacks", SuggestedLocation: "Riverside"}, ideas[0])
	assert.Contains(t, gen.prompts[0], `"golden hour"`)
	assert.Equal(t, meetupSchema, gen.schemas[0])
}

func TestMeetupIdeasFallbacks(t *testing.T) {
	for name, gen := range map[string]Generator{
		"error":       &fakeGenerator{err: errors.New("quota exceeded")},
		"unparsable":  &fakeGenerator{text: "not json"},
		"empty":       &fakeGenerator{text: ""},
		"no provider": nil,
	} {
		ideas := NewSuggester(gen).SuggestMeetupIdeas(context.Background(), "", "reel")
		assert.Equal(t, fallbackMeetups, ideas, name)
	}
}

func TestGenerateCaption(t *testing.T) {
	caption := NewSuggester(&fakeGenerator{text: "  Beach day with the crew \n"}).GenerateCaption(context.Background(), "beach")
	assert.Equal(t, "Beach day with the crew", caption)

	caption = NewSuggester(&fakeGenerator{err: errors.New("down")}).GenerateCaption(context.Background(), "beach")
	assert.Equal(t, "Great times with great people!", caption)

	caption = NewSuggester(nil).GenerateCaption(context.Background(), "beach")
	assert.Equal(t, "Great times with great people!", caption)
}

func TestMagicReplies(t *testing.T) {
	gen := &fakeGenerator{text: `["Yes!","When?","I'm in"]`}
	replies := NewSuggester(gen).MagicReplies(context.Background(), "Pizza tonight?", "planning dinner")
	assert.Equal(t, []string{"Yes!", "When?", "I'm in"}, replies)
	assert.Equal(t, repliesSchema, gen.schemas[0])

	replies = NewSuggester(&fakeGenerator{text: "{}"}).MagicReplies(context.Background(), "hi", "")
	assert.Equal(t, []string{"That sounds awesome!", "Count me in!", "Tell me more!"}, replies)
}
