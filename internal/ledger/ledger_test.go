package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/anonto42/moments/backend/internal/errors"
	"github.com/anonto42/moments/backend/internal/logger"
	"github.com/anonto42/moments/backend/internal/models"
	"github.com/anonto42/moments/backend/internal/store"
	"github.com/anonto42/moments/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errUnavailable = errors.New("store unavailable")

// faultyStore counts calls and fails the ones its hooks reject.
type faultyStore struct {
	store.Store
	mu         sync.Mutex
	updates    int
	gets       int
	failUpdate func(collection, id string) error
	failGet    func(collection, id string) error
}

func (f *faultyStore) Update(ctx context.Context, collection, id string, updates ...store.Update) error {
	f.mu.Lock()
	f.updates++
	hook := f.failUpdate
	f.mu.Unlock()
	if hook != nil {
		if err := hook(collection, id); err != nil {
			return err
		}
	}
	return f.Store.Update(ctx, collection, id, updates...)
}

func (f *faultyStore) Get(ctx context.Context, collection, id string) (store.Snapshot, error) {
	f.mu.Lock()
	f.gets++
	hook := f.failGet
	f.mu.Unlock()
	if hook != nil {
		if err := hook(collection, id); err != nil {
			return nil, err
		}
	}
	return f.Store.Get(ctx, collection, id)
}

func failOn(target string) func(string, string) error {
	return func(_, id string) error {
		if id == target {
			return errUnavailable
		}
		return nil
	}
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memory.New()}
}

func seedPost(t *testing.T, s store.Store, id string, likes []string, count int64) {
	t.Helper()
	_, err := s.Create(context.Background(), models.CollectionPosts, id, map[string]any{
		"userId":        "author",
		"type":          models.PostTypeImage,
		"visibility":    models.VisibilityFriends,
		"likes":         likes,
		"likesCount":    count,
		"commentsCount": 0,
	})
	require.NoError(t, err)
}

func seedUser(t *testing.T, s store.Store, uid, username string, followers, following []string, followersCount, followingCount int64) {
	t.Helper()
	_, err := s.Create(context.Background(), models.CollectionUsers, uid, map[string]any{
		"uid":            uid,
		"username":       username,
		"displayName":    username,
		"followers":      followers,
		"following":      following,
		"followersCount": followersCount,
		"followingCount": followingCount,
	})
	require.NoError(t, err)
}

func getPost(t *testing.T, s store.Store, id string) *models.Post {
	t.Helper()
	p, err := store.GetAs[models.Post](context.Background(), s, models.CollectionPosts, id)
	require.NoError(t, err)
	return p
}

func getUser(t *testing.T, s store.Store, uid string) *models.UserProfile {
	t.Helper()
	u, err := store.GetAs[models.UserProfile](context.Background(), s, models.CollectionUsers, uid)
	require.NoError(t, err)
	return u
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":              ModeDirect,
		"direct":        ModeDirect,
		" Compensating": ModeCompensating,
		"TRANSACTIONAL": ModeTransactional,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("eventual")
	assert.Error(t, err)
}

func TestLikeUnlikeScenario(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedPost(t, s, "p1", []string{"u1", "u2"}, 124)
	e := NewEngagement(s, ModeDirect)

	require.NoError(t, e.Like(ctx, "p1", "uX"))
	p := getPost(t, s, "p1")
	assert.Contains(t, p.Likes, "uX")
	assert.EqualValues(t, 125, p.LikesCount)
	liked, err := e.HasLiked(ctx, "p1", "uX")
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, e.Unlike(ctx, "p1", "uX"))
	p = getPost(t, s, "p1")
	assert.NotContains(t, p.Likes, "uX")
	assert.EqualValues(t, 124, p.LikesCount)
	liked, err = e.HasLiked(ctx, "p1", "uX")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestHasLikedAbsentPostIsFalse(t *testing.T) {
	e := NewEngagement(memory.New(), ModeDirect)
	liked, err := e.HasLiked(context.Background(), "missing", "u1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestHasLikedStoreFailureIsRemoteFailure(t *testing.T) {
	s := newFaultyStore()
	s.failGet = failOn("p1")
	e := NewEngagement(s, ModeDirect)

	_, err := e.HasLiked(context.Background(), "p1", "u1")
	assert.True(t, apperrors.IsRemoteFailure(err))
	assert.ErrorIs(t, err, errUnavailable)
}

func TestLikeAbsentPostIsNotFound(t *testing.T) {
	e := NewEngagement(memory.New(), ModeDirect)
	err := e.Like(context.Background(), "missing", "u1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLikeStoreFailureIsRemoteFailure(t *testing.T) {
	s := newFaultyStore()
	seedPost(t, s, "p1", []string{}, 0)
	s.failUpdate = failOn("p1")

	err := NewEngagement(s, ModeDirect).Like(context.Background(), "p1", "u1")
	assert.True(t, apperrors.IsRemoteFailure(err))
	assert.EqualValues(t, 0, getPost(t, s, "p1").LikesCount)
}

func TestRepeatedLikeDirectModeDoubleCounts(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedPost(t, s, "p1", []string{}, 0)
	e := NewEngagement(s, ModeDirect)

	require.NoError(t, e.Like(ctx, "p1", "u1"))
	require.NoError(t, e.Like(ctx, "p1", "u1"))

	p := getPost(t, s, "p1")
	assert.Equal(t, []string{"u1"}, p.Likes)
	assert.EqualValues(t, 2, p.LikesCount)
}

func TestRepeatedLikeTransactionalModeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seedPost(t, s, "p1", []string{}, 0)
	e := NewEngagement(s, ModeTransactional)

	require.NoError(t, e.Like(ctx, "p1", "u1"))
	require.NoError(t, e.Like(ctx, "p1", "u1"))
	assert.EqualValues(t, 1, getPost(t, s, "p1").LikesCount)

	require.NoError(t, e.Unlike(ctx, "p1", "u1"))
	require.NoError(t, e.Unlike(ctx, "p1", "u1"))
	p := getPost(t, s, "p1")
	assert.Empty(t, p.Likes)
	assert.EqualValues(t, 0, p.LikesCount)

	assert.True(t, apperrors.IsNotFound(e.Like(ctx, "missing", "u1")))
}

type GraphSuite struct {
	suite.Suite
	ctx   context.Context
	store *faultyStore
}

func (s *GraphSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newFaultyStore()
	seedUser(s.T(), s.store, "u1", "sam", []string{}, []string{}, 0, 820)
	seedUser(s.T(), s.store, "u2", "sara", []string{}, []string{}, 1200, 0)
	seedUser(s.T(), s.store, "u3", "bsara", []string{}, []string{}, 0, 0)
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphSuite))
}

func (s *GraphSuite) TestFollowScenario() {
	g := NewGraph(s.store, ModeDirect)
	s.Require().NoError(g.Follow(s.ctx, "u1", "u2"))

	u1 := getUser(s.T(), s.store, "u1")
	u2 := getUser(s.T(), s.store, "u2")
	s.EqualValues(821, u1.FollowingCount)
	s.EqualValues(1201, u2.FollowersCount)
	s.Contains(u1.Following, "u2")
	s.Contains(u2.Followers, "u1")

	following, err := g.IsFollowing(s.ctx, "u1", "u2")
	s.Require().NoError(err)
	s.True(following)
}

func (s *GraphSuite) TestSelfFollowMakesNoRemoteCall() {
	for _, mode := range []Mode{ModeDirect, ModeCompensating, ModeTransactional} {
		g := NewGraph(s.store, mode)
		before := s.store.updates

		err := g.Follow(s.ctx, "u1", "u1")
		s.True(apperrors.IsInvalidOperation(err), mode)
		err = g.Unfollow(s.ctx, "u1", "u1")
		s.True(apperrors.IsInvalidOperation(err), mode)

		s.Equal(before, s.store.updates, mode)
	}
	u1 := getUser(s.T(), s.store, "u1")
	s.Empty(u1.Following)
	s.EqualValues(820, u1.FollowingCount)
}

func (s *GraphSuite) TestFollowUnfollowRoundTrip() {
	for _, mode := range []Mode{ModeDirect, ModeCompensating, ModeTransactional} {
		g := NewGraph(s.store, mode)
		s.Require().NoError(g.Follow(s.ctx, "u1", "u2"))
		s.Require().NoError(g.Unfollow(s.ctx, "u1", "u2"))

		u1 := getUser(s.T(), s.store, "u1")
		u2 := getUser(s.T(), s.store, "u2")
		s.Empty(u1.Following, mode)
		s.Empty(u2.Followers, mode)
		s.EqualValues(820, u1.FollowingCount, mode)
		s.EqualValues(1200, u2.FollowersCount, mode)

		following, err := g.IsFollowing(s.ctx, "u1", "u2")
		s.Require().NoError(err)
		s.False(following)
	}
}

func (s *GraphSuite) TestIsFollowingAbsentActor() {
	following, err := NewGraph(s.store, ModeDirect).IsFollowing(s.ctx, "ghost", "u1")
	s.Require().NoError(err)
	s.False(following)
}

func (s *GraphSuite) TestDirectModeLeavesPartialFollow() {
	s.store.failUpdate = failOn("u2")
	err := NewGraph(s.store, ModeDirect).Follow(s.ctx, "u1", "u2")

	s.True(apperrors.IsRemoteFailure(err))
	s.ErrorIs(err, ErrPartialWrite)
	s.ErrorIs(err, errUnavailable)

	u1 := getUser(s.T(), s.store, "u1")
	u2 := getUser(s.T(), s.store, "u2")
	s.Contains(u1.Following, "u2")
	s.EqualValues(821, u1.FollowingCount)
	s.Empty(u2.Followers)
	s.EqualValues(1200, u2.FollowersCount)
}

func (s *GraphSuite) TestDirectModeFirstWriteFailureTouchesNothing() {
	s.store.failUpdate = failOn("u1")
	err := NewGraph(s.store, ModeDirect).Follow(s.ctx, "u1", "u2")

	s.True(apperrors.IsRemoteFailure(err))
	s.NotErrorIs(err, ErrPartialWrite)
	s.Equal(1, s.store.updates)
	s.EqualValues(1200, getUser(s.T(), s.store, "u2").FollowersCount)
}

func (s *GraphSuite) TestCompensatingModeUndoesFirstWrite() {
	s.store.failUpdate = failOn("u2")
	err := NewGraph(s.store, ModeCompensating).Follow(s.ctx, "u1", "u2")

	s.True(apperrors.IsRemoteFailure(err))
	s.NotErrorIs(err, ErrPartialWrite)

	u1 := getUser(s.T(), s.store, "u1")
	s.Empty(u1.Following)
	s.EqualValues(820, u1.FollowingCount)
}

func (s *GraphSuite) TestCompensatingModeReportsFailedUndo() {
	calls := 0
	s.store.failUpdate = func(_, id string) error {
		calls++
		if calls > 1 {
			return errUnavailable
		}
		return nil
	}
	err := NewGraph(s.store, ModeCompensating).Follow(s.ctx, "u1", "u2")

	s.True(apperrors.IsRemoteFailure(err))
	s.ErrorIs(err, ErrPartialWrite)
	s.Contains(getUser(s.T(), s.store, "u1").Following, "u2")
}

func (s *GraphSuite) TestTransactionalModeIsAllOrNothing() {
	g := NewGraph(s.store, ModeTransactional)

	err := g.Follow(s.ctx, "u1", "ghost")
	s.True(apperrors.IsNotFound(err))
	u1 := getUser(s.T(), s.store, "u1")
	s.Empty(u1.Following)
	s.EqualValues(820, u1.FollowingCount)

	s.Require().NoError(g.Follow(s.ctx, "u1", "u2"))
	s.Require().NoError(g.Follow(s.ctx, "u1", "u2"))
	s.EqualValues(821, getUser(s.T(), s.store, "u1").FollowingCount)
	s.EqualValues(1201, getUser(s.T(), s.store, "u2").FollowersCount)
}

func (s *GraphSuite) TestTransactionalModeRepairsHalfFollow() {
	s.store.failUpdate = failOn("u2")
	s.Require().Error(NewGraph(s.store, ModeDirect).Follow(s.ctx, "u1", "u2"))
	s.store.failUpdate = nil

	s.Require().NoError(NewGraph(s.store, ModeTransactional).Follow(s.ctx, "u1", "u2"))
	u1 := getUser(s.T(), s.store, "u1")
	u2 := getUser(s.T(), s.store, "u2")
	s.EqualValues(821, u1.FollowingCount)
	s.EqualValues(1201, u2.FollowersCount)
	s.Equal([]string{"u1"}, u2.Followers)
}

func (s *GraphSuite) TestFollowersSkipsMissingMembers() {
	g := NewGraph(s.store, ModeDirect)
	s.Require().NoError(g.Follow(s.ctx, "u1", "u2"))
	s.Require().NoError(g.Follow(s.ctx, "u3", "u2"))
	s.Require().NoError(s.store.Update(s.ctx, models.CollectionUsers, "u2",
		store.ArrayUnion("followers", "deleted-user")))

	followers, err := g.Followers(s.ctx, "u2")
	s.Require().NoError(err)
	s.Len(followers, 2)
	s.Equal("u1", followers[0].UID)
	s.Equal("u3", followers[1].UID)

	following, err := g.Following(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(following, 1)
	s.Equal("sara", following[0].Username)
}

func (s *GraphSuite) TestFollowersAbsentUserIsEmpty() {
	followers, err := NewGraph(s.store, ModeDirect).Followers(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Empty(followers)
}

func (s *GraphSuite) TestFollowersSeqStopsEarlyAndSurfacesErrors() {
	g := NewGraph(s.store, ModeDirect)
	s.Require().NoError(g.Follow(s.ctx, "u1", "u2"))
	s.Require().NoError(g.Follow(s.ctx, "u3", "u2"))

	before := s.store.gets
	for range g.FollowersSeq(s.ctx, "u2") {
		break
	}
	s.Equal(before+2, s.store.gets)

	s.store.failGet = failOn("u3")
	_, err := g.Followers(s.ctx, "u2")
	s.True(apperrors.IsRemoteFailure(err))
}

func (s *GraphSuite) TestMutualFriends() {
	g := NewGraph(s.store, ModeDirect)
	s.Require().NoError(g.Follow(s.ctx, "u1", "u2"))
	s.Require().NoError(g.Follow(s.ctx, "u2", "u1"))
	s.Require().NoError(g.Follow(s.ctx, "u1", "u3"))

	mutual, err := g.MutualFriends(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal([]string{"u2"}, mutual)

	mutual, err = g.MutualFriends(s.ctx, "u3")
	s.Require().NoError(err)
	s.Empty(mutual)

	mutual, err = g.MutualFriends(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Empty(mutual)
}

func (s *GraphSuite) TestSearchByHandlePrefix() {
	seedUser(s.T(), s.store, "u4", "salt", nil, nil, 0, 0)
	seedUser(s.T(), s.store, "u5", "sb", nil, nil, 0, 0)
	g := NewGraph(s.store, ModeDirect)

	users, err := g.SearchByHandlePrefix(s.ctx, "SA", 10)
	s.Require().NoError(err)
	var handles []string
	for _, u := range users {
		handles = append(handles, u.Username)
	}
	s.Equal([]string{"salt", "sam", "sara"}, handles)
	s.NotContains(handles, "bsara")

	users, err = g.SearchByHandlePrefix(s.ctx, "sa", 2)
	s.Require().NoError(err)
	s.Len(users, 2)

	users, err = g.SearchByHandlePrefix(s.ctx, "zz", 0)
	s.Require().NoError(err)
	s.Empty(users)
}

func TestReconcilerRepairsDrift(t *testing.T) {
	for _, mode := range []Mode{ModeDirect, ModeTransactional} {
		ctx := context.Background()
		s := memory.New()
		seedPost(t, s, "p1", []string{"u1", "u2"}, 5)
		seedPost(t, s, "p2", []string{"u1"}, 1)
		seedUser(t, s, "u1", "sam", []string{"u1", "u2"}, []string{"u2"}, 7, 1)
		seedUser(t, s, "u2", "sara", []string{"u1"}, []string{"u1"}, 1, 1)

		report, err := NewReconciler(s, mode).WithPageSize(1).Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, report.PostsScanned, mode)
		assert.Equal(t, 1, report.PostsRepaired, mode)
		assert.Equal(t, 2, report.UsersScanned, mode)
		assert.Equal(t, 1, report.UsersRepaired, mode)

		assert.EqualValues(t, 2, getPost(t, s, "p1").LikesCount)
		u1 := getUser(t, s, "u1")
		assert.Equal(t, []string{"u2"}, u1.Followers)
		assert.EqualValues(t, 1, u1.FollowersCount)
		assert.EqualValues(t, 1, u1.FollowingCount)
	}
}

func TestReconcilerSurfacesStoreFailure(t *testing.T) {
	s := newFaultyStore()
	seedPost(t, s, "p1", []string{"u1"}, 3)
	s.failUpdate = failOn("p1")

	_, err := NewReconciler(s, ModeDirect).Run(context.Background())
	assert.True(t, apperrors.IsRemoteFailure(err))
}

func TestReconcilerLogsRepairedDocuments(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	s := memory.New()
	seedPost(t, s, "p1", []string{"u1"}, 4)
	seedPost(t, s, "p2", []string{"u1"}, 1)

	_, err := NewReconciler(s, ModeDirect).Run(context.Background())
	require.NoError(t, err)

	repaired := logs.FilterMessage("Counters repaired").All()
	require.Len(t, repaired, 1)
	fields := repaired[0].ContextMap()
	assert.Equal(t, models.CollectionPosts, fields["collection"])
	assert.Equal(t, "p1", fields["id"])
}
