package seed

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/anonto42/moments/backend/internal/ledger"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/repositories"
	"github.com/anonto42/moments/backend/internal/store"
	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
)

var handleChars = regexp.MustCompile(`[^a-z0-9._]+`)

// Options sizes a seeding run.
type Options struct {
	Users           int
	PostsPerUser    int
	FollowsPerUser  int
	LikesPerPost    int
	CommentsPerPost int
}

// DefaultOptions is a small graph suited to local development.
var DefaultOptions = Options{
	Users:           20,
	PostsPerUser:    3,
	FollowsPerUser:  5,
	LikesPerPost:    4,
	CommentsPerPost: 2,
}

// Result counts what a run wrote.
type Result struct {
	Users    int `json:"users"`
	Posts    int `json:"posts"`
	Follows  int `json:"follows"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// Seeder writes fake profiles, posts and interactions. Follows and likes go
// through the ledgers so membership sets and counters agree.
type Seeder struct {
	users      repositories.UserRepository
	posts      repositories.PostRepository
	comments   repositories.CommentRepository
	engagement *ledger.Engagement
	graph      *ledger.Graph
	faker      *gofakeit.Faker
}

// NewSeeder creates a seeder over s. A zero seed picks a random one.
func NewSeeder(s store.Store, mode ledger.Mode, seed uint64) *Seeder {
	posts := repositories.NewStorePostRepository(s)
	return &Seeder{
		users:      repositories.NewStoreUserRepository(s),
		posts:      posts,
		comments:   repositories.NewStoreCommentRepository(s, posts),
		engagement: ledger.NewEngagement(s, mode),
		graph:      ledger.NewGraph(s, mode),
		faker:      gofakeit.New(seed),
	}
}

// Seed creates opts.Users profiles, then their posts, follows, likes and comments.
func (s *Seeder) Seed(ctx context.Context, opts Options) (Result, error) {
	var res Result

	logger.Log.Info("Creating users...", zap.Int("count", opts.Users))
	users, err := s.seedUsers(ctx, opts.Users)
	if err != nil {
		return res, fmt.Errorf("failed to seed users: %w", err)
	}
	res.Users = len(users)

	logger.Log.Info("Creating posts...")
	var postIDs []string
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			id, err := s.seedPost(ctx, u)
			if err != nil {
				return res, fmt.Errorf("failed to seed posts: %w", err)
			}
			postIDs = append(postIDs, id)
		}
	}
	res.Posts = len(postIDs)

	logger.Log.Info("Creating follows...")
	for _, u := range users {
		for _, target := range s.pick(users, opts.FollowsPerUser, u.UID) {
			if err := s.graph.Follow(ctx, u.UID, target.UID); err != nil {
				return res, fmt.Errorf("failed to seed follows: %w", err)
			}
			res.Follows++
		}
	}

	logger.Log.Info("Creating likes and comments...")
	for _, postID := range postIDs {
		for _, liker := range s.pick(users, opts.LikesPerPost, "") {
			if err := s.engagement.Like(ctx, postID, liker.UID); err != nil {
				return res, fmt.Errorf("failed to seed likes: %w", err)
			}
			res.Likes++
		}
		for i := 0; i < opts.CommentsPerPost; i++ {
			author := users[s.faker.IntRange(0, len(users)-1)]
			err := s.comments.AddComment(ctx, &models.Comment{
				PostID:   postID,
				UserID:   author.UID,
				Username: author.Username,
				Text:     s.faker.HipsterSentence(),
			})
			if err != nil {
				return res, fmt.Errorf("failed to seed comments: %w", err)
			}
			res.Comments++
		}
	}

	return res, nil
}

func (s *Seeder) seedUsers(ctx context.Context, n int) ([]models.UserProfile, error) {
	users := make([]models.UserProfile, 0, n)
	for i := 0; i < n; i++ {
		handle := handleChars.ReplaceAllString(strings.ToLower(s.faker.Username()), "")
		if len(handle) > 24 {
			handle = handle[:24]
		}
		// The index suffix keeps handles unique across the run.
		handle = fmt.Sprintf("%s%d", handle, i)

		profile, _, err := s.users.EnsureProfile(ctx, &models.UserProfile{
			UID:         s.faker.UUID(),
			Email:       handle + "@" + s.faker.DomainName(),
			DisplayName: s.faker.Name(),
			Username:    handle,
			Avatar:      fmt.Sprintf("https://i.pravatar.cc/300?u=%s", handle),
			Bio:         s.faker.HipsterSentence(),
		})
		if err != nil {
			return nil, err
		}
		users = append(users, *profile)
	}
	return users, nil
}

func (s *Seeder) seedPost(ctx context.Context, author models.UserProfile) (string, error) {
	postType := s.faker.RandomString([]string{models.PostTypeImage, models.PostTypeVideo, models.PostTypeReel})
	visibility := s.faker.RandomString([]string{models.VisibilityFriends, models.VisibilityFriends, models.VisibilityPublic})

	post := &models.Post{
		UserID:     author.UID,
		Type:       postType,
		ContentURL: fmt.Sprintf("https://picsum.photos/seed/%s/1080/1350", s.faker.UUID()),
		Caption:    s.faker.HipsterSentence(),
		Visibility: visibility,
		Hashtags:   []string{s.faker.Word(), s.faker.Word()},
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return "", err
	}
	return post.ID, nil
}

// pick returns up to n distinct users other than exclude.
func (s *Seeder) pick(users []models.UserProfile, n int, exclude string) []models.UserProfile {
	candidates := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		if u.UID != exclude {
			candidates = append(candidates, u)
		}
	}
	s.faker.ShuffleAnySlice(candidates)
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}
