package handlers

import (
	"net/http"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const defaultStoryDuration = 5

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	storyRepository repositories.StoryRepository
	userRepository  repositories.UserRepository
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyRepo repositories.StoryRepository, userRepo repositories.UserRepository) *StoryHandler {
	return &StoryHandler{
		storyRepository: storyRepo,
		userRepository:  userRepo,
	}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.GET("/stories/:id", h.GetStory)
	g.POST("/stories", h.CreateStory)
	g.POST("/stories/:id/seen", h.MarkAsSeen)
	g.POST("/stories/:id/react", h.ReactToStory)
}

// GetStories returns the active stories of the caller and the users they
// follow. The caller's own story is returned separately.
func (h *StoryHandler) GetStories(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	userIDs := []string{uid}
	profile, err := h.userRepository.GetProfile(ctx, uid)
	if err != nil && !apperrors.IsNotFound(err) {
		return httpError(err)
	}
	if profile != nil {
		userIDs = append(userIDs, profile.Following...)
	}

	stories, err := h.storyRepository.GetStoriesByUserIDs(ctx, userIDs)
	if err != nil {
		return httpError(err)
	}

	authorIDs := make([]string, len(stories))
	storyIDs := make([]string, len(stories))
	for i, s := range stories {
		authorIDs[i] = s.UserID
		storyIDs[i] = s.ID
	}
	cards, err := compactProfiles(c, h.userRepository, authorIDs)
	if err != nil {
		return httpError(err)
	}
	seen, err := h.storyRepository.GetSeenStoryIDs(uid, storyIDs)
	if err != nil {
		return httpError(err)
	}

	var currentUserStory *models.StoryView
	otherStories := make([]models.StoryView, 0, len(stories))
	for _, s := range stories {
		view := models.StoryView{Story: s, Seen: seen[s.ID]}
		if card, ok := cards[s.UserID]; ok {
			view.Author = &card
		}
		if s.UserID == uid {
			if currentUserStory == nil {
				currentUserStory = &view
			}
			continue
		}
		otherStories = append(otherStories, view)
	}

	return success(c, http.StatusOK, echo.Map{
		"stories":          otherStories,
		"currentUserStory": currentUserStory,
	})
}

// GetStory returns a single story
func (h *StoryHandler) GetStory(c echo.Context) error {
	ctx := c.Request().Context()
	story, err := h.storyRepository.GetStoryByID(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	view := models.StoryView{Story: *story}
	if author, err := h.userRepository.GetProfile(ctx, story.UserID); err == nil {
		card := author.ToCompact()
		view.Author = &card
	}
	if uid := getUserIDFromContext(c); uid != "" {
		seen, err := h.storyRepository.GetSeenStoryIDs(uid, []string{story.ID})
		if err == nil {
			view.Seen = seen[story.ID]
		}
	}

	return success(c, http.StatusOK, echo.Map{"story": view})
}

// CreateStory creates a new single-item story that expires after a day
func (h *StoryHandler) CreateStory(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	duration := req.Duration
	if duration == 0 {
		duration = defaultStoryDuration
	}

	story := &models.Story{
		UserID: uid,
		Items: []models.StoryItem{{
			Type:     req.Type,
			URL:      req.MediaURL,
			Duration: duration,
		}},
	}
	if err := h.storyRepository.CreateStory(c.Request().Context(), story); err != nil {
		return httpError(err)
	}

	return success(c, http.StatusCreated, echo.Map{"story": story})
}

// MarkAsSeen marks a story as seen; repeating it is a no-op
func (h *StoryHandler) MarkAsSeen(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	storyID := c.Param("id")

	if _, err := h.storyRepository.GetStoryByID(c.Request().Context(), storyID); err != nil {
		return httpError(err)
	}
	if err := h.storyRepository.MarkSeen(&models.StorySeen{StoryID: storyID, UserID: uid}); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"seen": true})
}

// ReactToStory adds a reaction to a story
func (h *StoryHandler) ReactToStory(c echo.Context) error {
	uid, err := requireUser(c)
	if err != nil {
		return err
	}
	storyID := c.Param("id")

	var req models.StoryReactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.storyRepository.GetStoryByID(c.Request().Context(), storyID); err != nil {
		return httpError(err)
	}
	reaction := &models.StoryReaction{
		StoryID:  storyID,
		UserID:   uid,
		Reaction: req.Reaction,
	}
	if err := h.storyRepository.AddReaction(reaction); err != nil {
		return httpError(err)
	}
	return success(c, http.StatusOK, echo.Map{"reaction": reaction})
}
