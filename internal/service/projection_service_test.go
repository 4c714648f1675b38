package service

import (
	"Ripple/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type feedKey struct {
	userID uint64
	postID uint64
}

type fakeFeedRepo struct {
	rows map[feedKey]*model.FeedRow
}

func newFakeFeedRepo() *fakeFeedRepo {
	return &fakeFeedRepo{rows: make(map[feedKey]*model.FeedRow)}
}

func (r *fakeFeedRepo) CreateFeedRows(_ context.Context, rows []*model.FeedRow) error {
	for _, row := range rows {
		k := feedKey{userID: row.UserID, postID: row.PostID}
		if _, ok := r.rows[k]; ok {
			continue
		}
		r.rows[k] = row
	}
	return nil
}

func (r *fakeFeedRepo) GetUserFeed(_ context.Context, userID uint64, limit int) ([]*model.FeedRow, error) {
	rows := make([]*model.FeedRow, 0)
	for k, row := range r.rows {
		if k.userID == userID && len(rows) < limit {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *fakeFeedRepo) CountFeedRowsByPost(_ context.Context, postID uint64) (int64, error) {
	var count int64
	for k := range r.rows {
		if k.postID == postID {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	users map[uint64]*model.UserProjection
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]*model.UserProjection)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.UserProjection) error {
	if _, ok := r.users[user.ID]; ok {
		return nil
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserById(_ context.Context, id uint64) (*model.UserProjection, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetAllUserIDs(_ context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeUserRepo) IncrPostsCount(_ context.Context, userID uint64, delta int64) error {
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PostsCount += delta
	return nil
}

func (r *fakeUserRepo) IncrLikeTotals(_ context.Context, likerID, authorID uint64, delta int64) error {
	if u, ok := r.users[likerID]; ok {
		u.TotalLikesGiven += delta
	}
	if u, ok := r.users[authorID]; ok {
		u.TotalLikesReceived += delta
	}
	return nil
}

type projectionTestEnv struct {
	postRepo   *fakePostRepo
	feedRepo   *fakeFeedRepo
	userRepo   *fakeUserRepo
	popularity PopularityService
	svc        ProjectionService
}

func newProjectionTestEnv() *projectionTestEnv {
	env := &projectionTestEnv{
		postRepo:   newFakePostRepo(),
		feedRepo:   newFakeFeedRepo(),
		userRepo:   newFakeUserRepo(),
		popularity: NewPopularityService(),
	}
	env.svc = NewProjectionService(env.postRepo, env.feedRepo, env.userRepo, env.popularity)
	return env
}

func (env *projectionTestEnv) addUsers(t *testing.T, ids ...uint64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, env.svc.ProjectUserCreated(context.Background(), id, "user", "", time.Now()))
	}
}

func TestProjectPostCreatedFansOutToAllUsers(t *testing.T) {
	env := newProjectionTestEnv()
	ctx := context.Background()
	env.addUsers(t, 1, 2, 3)

	err := env.svc.ProjectPostCreated(ctx, 100, 1, "alice", "hello", "", time.Now())
	require.NoError(t, err)

	count, err := env.feedRepo.CountFeedRowsByPost(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// 扇出行带去范式化字段
	row := env.feedRepo.rows[feedKey{userID: 2, postID: 100}]
	require.NotNil(t, row)
	assert.Equal(t, "alice", row.AuthorName)
	assert.Equal(t, "hello", row.Content)

	// 扇出集合在创建时固定，新用户不回填
	env.addUsers(t, 4)
	count, err = env.feedRepo.CountFeedRowsByPost(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestProjectPostCreatedSeedsPopularity(t *testing.T) {
	env := newProjectionTestEnv()
	env.addUsers(t, 1)

	err := env.svc.ProjectPostCreated(context.Background(), 100, 1, "alice", "hello", "", time.Now())
	require.NoError(t, err)

	post := env.postRepo.posts[100]
	require.NotNil(t, post)
	assert.InDelta(t, 20.0, post.PopularityScore, 0.01)
	assert.Equal(t, int64(1), env.userRepo.users[1].PostsCount)
}

func TestProjectPostCreatedHealsMissingAuthor(t *testing.T) {
	env := newProjectionTestEnv()
	ctx := context.Background()

	// 作者的 UserCreated 事件尚未到达
	err := env.svc.ProjectPostCreated(ctx, 100, 9, "bob", "first", "", time.Now())
	require.NoError(t, err)

	author := env.userRepo.users[9]
	require.NotNil(t, author)
	assert.Equal(t, "bob", author.Name)
	assert.Equal(t, int64(1), author.PostsCount)
}

func TestProjectPostCreatedIdempotentFanOut(t *testing.T) {
	env := newProjectionTestEnv()
	ctx := context.Background()
	env.addUsers(t, 1, 2)

	now := time.Now()
	require.NoError(t, env.svc.ProjectPostCreated(ctx, 100, 1, "alice", "hello", "", now))
	require.NoError(t, env.svc.ProjectPostCreated(ctx, 100, 1, "alice", "hello", "", now))

	count, err := env.feedRepo.CountFeedRowsByPost(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestLikeUnlikeBalance(t *testing.T) {
	env := newProjectionTestEnv()
	ctx := context.Background()
	env.addUsers(t, 1, 2)
	require.NoError(t, env.svc.ProjectPostCreated(ctx, 100, 1, "alice", "hello", "", time.Now()))

	// 3 赞 1 取消
	for i := 0; i < 3; i++ {
		require.NoError(t, env.svc.ProjectPostLiked(ctx, 100, 2))
	}
	require.NoError(t, env.svc.ProjectPostUnliked(ctx, 100, 2))

	assert.Equal(t, int64(2), env.postRepo.posts[100].LikeCount)
	assert.Equal(t, int64(2), env.userRepo.users[2].TotalLikesGiven)
	assert.Equal(t, int64(2), env.userRepo.users[1].TotalLikesReceived)
}

func TestLikeUnknownPostPropagatesError(t *testing.T) {
	env := newProjectionTestEnv()

	err := env.svc.ProjectPostLiked(context.Background(), 404, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLikeCountNeverNegative(t *testing.T) {
	env := newProjectionTestEnv()
	ctx := context.Background()
	env.addUsers(t, 1, 2)
	require.NoError(t, env.svc.ProjectPostCreated(ctx, 100, 1, "alice", "hello", "", time.Now()))

	require.NoError(t, env.svc.ProjectPostUnliked(ctx, 100, 2))
	assert.Equal(t, int64(0), env.postRepo.posts[100].LikeCount)
}

func TestProjectUserCreatedIdempotent(t *testing.T) {
	env := newProjectionTestEnv()
	ctx := context.Background()

	require.NoError(t, env.svc.ProjectUserCreated(ctx, 1, "alice", "a@example.com", time.Now()))
	require.NoError(t, env.svc.ProjectUserCreated(ctx, 1, "alice-again", "a@example.com", time.Now()))

	assert.Equal(t, "alice", env.userRepo.users[1].Name)
	assert.Len(t, env.userRepo.users, 1)
}
