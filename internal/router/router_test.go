package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/middleware"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store/memory"
	"github.com/anonto42/moments/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "router-test-secret"

type APISuite struct {
	suite.Suite
	mode  ledger.Mode
	e     *echo.Echo
	store *memory.Store
}

func TestAPISuite(t *testing.T) {
	for _, mode := range []ledger.Mode{ledger.ModeDirect, ledger.ModeCompensating, ledger.ModeTransactional} {
		t.Run(string(mode), func(t *testing.T) {
			suite.Run(t, &APISuite{mode: mode})
		})
	}
}

func (s *APISuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { _ = sqlDB.Close() })

	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.store = memory.New(memory.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))

	s.e = echo.New()
	s.e.Validator = validators.NewValidator()
	SetupMiddleware(s.e)
	s.Require().NoError(SetupRoutes(s.e, Deps{
		Store:      s.store,
		Postgres:   db,
		Auth:       middleware.JWTAuthMiddleware(testSecret),
		JWTSecret:  testSecret,
		LedgerMode: s.mode,
	}))
}

func (s *APISuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type session struct {
	token string
	uid   string
}

func (s *APISuite) signup(username string) session {
	rec := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":       username + "@example.com",
		"password":    "correct-horse",
		"displayName": "User " + username,
		"username":    username,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[struct {
		Token string             `json:"token"`
		User  models.UserProfile `json:"user"`
	}](s.T(), rec)
	s.Require().NotEmpty(resp.Token)
	return session{token: resp.Token, uid: resp.User.UID}
}

func (s *APISuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestAuthFlow() {
	alice := s.signup("alice")

	rec := s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "ALICE@example.com", "password": "another-pass", "displayName": "Alice 2", "username": "alice2",
	})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "bad@example.com", "password": "another-pass", "displayName": "Bad", "username": "Not Valid",
	})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": "alice@example.com", "password": "wrong-pass"})
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"email": "alice@example.com", "password": "correct-horse"})
	s.Require().Equal(http.StatusOK, rec.Code)
	token := decode[map[string]string](s.T(), rec)["token"]

	rec = s.do(http.MethodGet, "/api/v1/profile", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	profile := decode[models.UserProfile](s.T(), rec)
	s.Equal(alice.uid, profile.UID)
	s.Equal("alice", profile.Username)

	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/profile", "", nil).Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"idToken": "x"})
	s.Equal(http.StatusNotImplemented, rec.Code)
}

func (s *APISuite) TestProfileUpdate() {
	alice := s.signup("alice")
	s.signup("bob")

	rec := s.do(http.MethodPut, "/api/v1/profile", alice.token, map[string]string{"bio": "hello", "username": "alice_k"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("alice_k", decode[models.UserProfile](s.T(), rec).Username)

	rec = s.do(http.MethodPut, "/api/v1/profile", alice.token, map[string]string{"username": "bob"})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/users/nobody", alice.token, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestLikeFlow() {
	alice := s.signup("alice")
	bob := s.signup("bob")

	rec := s.do(http.MethodPost, "/api/v1/posts", alice.token, map[string]string{
		"type": "image", "contentUrl": "https://cdn.example.com/a.jpg", "caption": "sunset",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[models.Post](s.T(), rec)
	s.Equal(models.VisibilityFriends, post.Visibility)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/likes", bob.token, nil).Code)
	rec = s.do(http.MethodGet, "/api/v1/notifications/unread-count", alice.token, nil)
	s.Equal(float64(1), decode[envelope[map[string]any]](s.T(), rec).Data["count"])

	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/likes", bob.token, nil).Code)
	rec = s.do(http.MethodGet, "/api/v1/posts/"+post.ID+"/likes/count", bob.token, nil)
	s.Equal(float64(1), decode[map[string]any](s.T(), rec)["likesCount"])

	rec = s.do(http.MethodGet, "/api/v1/posts/"+post.ID+"/likes/status", bob.token, nil)
	s.Equal(true, decode[map[string]any](s.T(), rec)["hasLiked"])

	s.Require().Equal(http.StatusOK, s.do(http.MethodDelete, "/api/v1/posts/"+post.ID+"/likes", bob.token, nil).Code)
	s.Equal(http.StatusConflict, s.do(http.MethodDelete, "/api/v1/posts/"+post.ID+"/likes", bob.token, nil).Code)
	rec = s.do(http.MethodGet, "/api/v1/posts/"+post.ID+"/likes/count", bob.token, nil)
	s.Equal(float64(0), decode[map[string]any](s.T(), rec)["likesCount"])
	rec = s.do(http.MethodGet, "/api/v1/notifications/unread-count", alice.token, nil)
	s.Equal(float64(1), decode[envelope[map[string]any]](s.T(), rec).Data["count"])

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/posts/missing/likes", bob.token, nil).Code)
}

func (s *APISuite) TestFollowAndFeed() {
	alice := s.signup("alice")
	bob := s.signup("bob")
	carol := s.signup("carol")

	rec := s.do(http.MethodPost, "/api/v1/posts", bob.token, map[string]string{"type": "video", "contentUrl": "https://cdn.example.com/b.mp4"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	bobPost := decode[models.Post](s.T(), rec)
	rec = s.do(http.MethodPost, "/api/v1/posts", carol.token, map[string]string{"type": "image", "contentUrl": "https://cdn.example.com/c.jpg"})
	s.Require().Equal(http.StatusCreated, rec.Code)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/users/"+alice.uid+"/follow", alice.token, nil).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/users/"+bob.uid+"/follow", alice.token, nil).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/users/"+alice.uid+"/follow", bob.token, nil).Code)

	rec = s.do(http.MethodGet, "/api/v1/users/"+bob.uid+"/follow", alice.token, nil)
	s.Equal(true, decode[envelope[map[string]any]](s.T(), rec).Data["following"])

	rec = s.do(http.MethodGet, "/api/v1/users/"+bob.uid+"/followers", alice.token, nil)
	followers := decode[[]models.UserCompact](s.T(), rec)
	s.Require().Len(followers, 1)
	s.Equal(alice.uid, followers[0].UID)

	rec = s.do(http.MethodGet, "/api/v1/users/"+alice.uid+"/mutual", alice.token, nil)
	mutual := decode[[]models.UserCompact](s.T(), rec)
	s.Require().Len(mutual, 1)
	s.Equal("bob", mutual[0].Username)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/posts/"+bobPost.ID+"/save", alice.token, nil).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/posts/"+bobPost.ID+"/likes", alice.token, nil).Code)

	rec = s.do(http.MethodGet, "/api/v1/feed", alice.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	feed := decode[envelope[struct {
		Posts []models.PostView `json:"posts"`
	}]](s.T(), rec).Data.Posts
	s.Require().Len(feed, 1)
	s.Equal(bobPost.ID, feed[0].ID)
	s.True(feed[0].IsLiked)
	s.True(feed[0].IsSaved)
	s.Require().NotNil(feed[0].Author)
	s.Equal("bob", feed[0].Author.Username)

	s.Require().Equal(http.StatusOK, s.do(http.MethodDelete, "/api/v1/users/"+bob.uid+"/follow", alice.token, nil).Code)
	rec = s.do(http.MethodGet, "/api/v1/profile", alice.token, nil)
	s.EqualValues(0, decode[models.UserProfile](s.T(), rec).FollowingCount)
}

func (s *APISuite) TestSearch() {
	s.signup("sam")
	s.signup("sara")
	s.signup("bsara")
	tom := s.signup("tom")

	rec := s.do(http.MethodGet, "/api/v1/users/search?q=SA", tom.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var names []string
	for _, u := range decode[[]models.UserCompact](s.T(), rec) {
		names = append(names, u.Username)
	}
	s.Equal([]string{"sam", "sara"}, names)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/users/search", tom.token, nil).Code)
}

func (s *APISuite) TestPostOwnership() {
	alice := s.signup("alice")
	bob := s.signup("bob")

	rec := s.do(http.MethodPost, "/api/v1/posts", alice.token, map[string]string{"type": "reel", "contentUrl": "https://cdn.example.com/r.mp4", "visibility": "public"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	post := decode[models.Post](s.T(), rec)

	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/api/v1/posts/"+post.ID, bob.token, nil).Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodPut, "/api/v1/posts/"+post.ID, bob.token, map[string]string{"caption": "mine"}).Code)

	rec = s.do(http.MethodGet, "/api/v1/reels", bob.token, nil)
	s.Len(decode[[]models.Post](s.T(), rec), 1)
	rec = s.do(http.MethodGet, "/api/v1/posts/public", bob.token, nil)
	s.Len(decode[[]models.Post](s.T(), rec), 1)

	rec = s.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", bob.token, map[string]string{"text": "nice"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[models.Comment](s.T(), rec)
	s.Equal("bob", comment.Username)
	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/api/v1/posts/"+post.ID+"/comments/"+comment.ID, alice.token, nil).Code)
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/posts/"+post.ID+"/comments/"+comment.ID, bob.token, nil).Code)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/posts/"+post.ID, alice.token, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/posts/"+post.ID, alice.token, nil).Code)
}

func (s *APISuite) TestMessaging() {
	alice := s.signup("alice")
	bob := s.signup("bob")
	mallory := s.signup("mallory")

	rec := s.do(http.MethodPost, "/api/v1/conversations", alice.token, map[string]string{"participantId": bob.uid})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	conv := decode[envelope[struct {
		Conversation models.Conversation `json:"conversation"`
	}]](s.T(), rec).Data.Conversation

	path := "/api/v1/conversations/" + conv.ID + "/messages"
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, path, bob.token, map[string]string{"text": "hi alice"}).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, path, mallory.token, map[string]string{"text": "hey"}).Code)

	rec = s.do(http.MethodGet, path, alice.token, nil)
	msgs := decode[envelope[struct {
		Messages []models.Message `json:"messages"`
	}]](s.T(), rec).Data.Messages
	s.Require().Len(msgs, 1)
	s.Equal("hi alice", msgs[0].Text)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/conversations", alice.token, map[string]string{"participantId": alice.uid}).Code)
}

func (s *APISuite) TestAIFallbacks() {
	alice := s.signup("alice")

	rec := s.do(http.MethodPost, "/api/v1/ai/caption", alice.token, map[string]string{"description": "beach day"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotEmpty(decode[envelope[map[string]string]](s.T(), rec).Data["caption"])

	rec = s.do(http.MethodPost, "/api/v1/ai/replies", alice.token, map[string]string{"lastMessage": "dinner?"})
	s.Require().Equal(http.StatusOK, rec.Code)
	replies := decode[envelope[map[string][]string]](s.T(), rec).Data["replies"]
	s.Len(replies, 3)
}

func (s *APISuite) TestFollowKeepsCountersExact() {
	alice := s.signup("alice")
	bob := s.signup("bob")

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/users/ghost/follow", alice.token, nil).Code)
	s.Equal(http.StatusConflict, s.do(http.MethodDelete, "/api/v1/users/"+bob.uid+"/follow", alice.token, nil).Code)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/users/"+bob.uid+"/follow", alice.token, nil).Code)
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/users/"+bob.uid+"/follow", alice.token, nil).Code)

	rec := s.do(http.MethodGet, "/api/v1/profile", alice.token, nil)
	me := decode[models.UserProfile](s.T(), rec)
	s.Equal([]string{bob.uid}, me.Following)
	s.EqualValues(1, me.FollowingCount)

	rec = s.do(http.MethodGet, "/api/v1/users/"+bob.uid, alice.token, nil)
	s.EqualValues(1, decode[models.UserProfile](s.T(), rec).FollowersCount)
}
