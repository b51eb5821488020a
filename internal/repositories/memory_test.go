package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newUser(t *testing.T, r *MemoryUserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:    username + "@example.com",
		Username: username,
		Name:     username,
		Password: "hash",
	}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

// seedPost stores p with explicit timestamps so ordering is deterministic.
func seedPost(s *MemoryStore, owner primitive.ObjectID, minutes int, desc string, tags ...string) models.Post {
	p := models.Post{
		ID:               primitive.NewObjectID(),
		UserID:           owner,
		DreamDescription: desc,
		Tags:             append([]string{}, tags...),
		Likes:            []primitive.ObjectID{},
		CreatedAt:        base.Add(time.Duration(minutes) * time.Minute),
		UpdatedAt:        base.Add(time.Duration(minutes) * time.Minute),
	}
	s.mu.Lock()
	s.posts[p.ID] = p
	s.mu.Unlock()
	return p
}

func ids(views []models.PostView) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestMemoryUsers_CreateRejectsDuplicates(t *testing.T) {
	users := NewMemoryStore().Users()
	ctx := context.Background()
	newUser(t, users, "luna")

	err := users.Create(ctx, &models.User{Email: "luna@example.com", Username: "other"})
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)
	assert.ErrorIs(t, err, ErrDuplicate)

	err = users.Create(ctx, &models.User{Email: "new@example.com", Username: "luna"})
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "username", dup.Field)
}

func TestMemoryUsers_FollowingIsASet(t *testing.T) {
	users := NewMemoryStore().Users()
	ctx := context.Background()
	a := newUser(t, users, "alice")
	b := newUser(t, users, "bob")

	added, err := users.AddFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = users.AddFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := users.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{b.ID}, got.Following)

	followers, err := users.ListFollowers(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, a.ID, followers[0].ID)
	assert.Empty(t, followers[0].Password)

	removed, err := users.RemoveFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = users.RemoveFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryUsers_ReturnedValuesAreCopies(t *testing.T) {
	users := NewMemoryStore().Users()
	ctx := context.Background()
	a := newUser(t, users, "alice")
	b := newUser(t, users, "bob")
	_, err := users.AddFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)

	got, err := users.FindByID(ctx, a.ID)
	require.NoError(t, err)
	got.Following[0] = primitive.NewObjectID()
	got.Name = "mallory"

	again, err := users.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.Following[0])
	assert.Equal(t, "alice", again.Name)
}

func TestMemoryUsers_List(t *testing.T) {
	users := NewMemoryStore().Users()
	for _, name := range []string{"a1", "a2", "a3"} {
		newUser(t, users, name)
	}

	all, err := users.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, u := range all {
		assert.Empty(t, u.Password)
	}

	two, err := users.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, all[:2], two)
}

func TestMemoryUsers_Profile(t *testing.T) {
	s := NewMemoryStore()
	users := s.Users()
	ctx := context.Background()
	a := newUser(t, users, "alice")
	b := newUser(t, users, "bob")
	_, err := users.AddFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)

	older := seedPost(s, a.ID, 1, "older")
	newer := seedPost(s, a.ID, 2, "newer")
	seedPost(s, b.ID, 3, "not mine")
	require.NoError(t, s.Collections().Create(ctx, &models.Collection{PostID: older.ID, UserID: a.ID}))

	profile, err := users.Profile(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Password)
	require.Len(t, profile.Posts, 2)
	assert.Equal(t, newer.ID, profile.Posts[0].ID)
	assert.Equal(t, older.ID, profile.Posts[1].ID)
	assert.Len(t, profile.Collections, 1)
	assert.Equal(t, []primitive.ObjectID{b.ID}, profile.Followers)

	_, err = users.Profile(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPosts_Find(t *testing.T) {
	s := NewMemoryStore()
	users := s.Users()
	a := newUser(t, users, "alice")
	b := newUser(t, users, "bob")

	p1 := seedPost(s, a.ID, 1, "Flying over the SEA", "flight")
	p2 := seedPost(s, b.ID, 2, "Lost teeth", "fear", "seaside")
	p3 := seedPost(s, b.ID, 3, "Exam panic")

	// p1 gets the newest update
	s.mu.Lock()
	bumped := s.posts[p1.ID]
	bumped.UpdatedAt = base.Add(time.Hour)
	s.posts[p1.ID] = bumped
	s.mu.Unlock()

	tests := []struct {
		name string
		q    PostQuery
		want []primitive.ObjectID
	}{
		{"all by creation", PostQuery{}, []primitive.ObjectID{p3.ID, p2.ID, p1.ID}},
		{"all by update", PostQuery{SortBy: SortUpdatedAt}, []primitive.ObjectID{p1.ID, p3.ID, p2.ID}},
		{"owner filter", PostQuery{OwnerIDs: []primitive.ObjectID{b.ID}}, []primitive.ObjectID{p3.ID, p2.ID}},
		{"search matches description and tags", PostQuery{Search: "sea"}, []primitive.ObjectID{p2.ID, p1.ID}},
		{"search is literal", PostQuery{Search: "s.a"}, []primitive.ObjectID{}},
		{"skip and limit", PostQuery{Skip: 1, Limit: 1}, []primitive.ObjectID{p2.ID}},
		{"skip past end", PostQuery{Skip: 10}, []primitive.ObjectID{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := s.Posts().Find(context.Background(), tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(views))
		})
	}
}

func TestMemoryPosts_FindWithOwner(t *testing.T) {
	s := NewMemoryStore()
	a := newUser(t, s.Users(), "alice")
	seedPost(s, a.ID, 1, "dream")
	orphan := seedPost(s, primitive.NewObjectID(), 2, "orphan")

	views, err := s.Posts().Find(context.Background(), PostQuery{WithOwner: true})
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, orphan.ID, views[0].ID)
	assert.Nil(t, views[0].UserID.User)
	assert.Equal(t, orphan.UserID, views[0].UserID.ID)
	require.NotNil(t, views[1].UserID.User)
	assert.Equal(t, "alice", views[1].UserID.User.Username)
	assert.Equal(t, a.ID, views[1].UserID.ID)

	plain, err := s.Posts().Find(context.Background(), PostQuery{})
	require.NoError(t, err)
	assert.Nil(t, plain[0].UserID.User)
	assert.Equal(t, orphan.UserID, plain[0].Unjoined().UserID)
}

func TestMemoryPosts_ToggleLike(t *testing.T) {
	s := NewMemoryStore()
	posts := s.Posts()
	ctx := context.Background()
	liker := primitive.NewObjectID()
	p := seedPost(s, primitive.NewObjectID(), 1, "dream")

	liked, err := posts.ToggleLike(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{liker}, liked.Likes)
	assert.True(t, liked.UpdatedAt.After(p.UpdatedAt))

	byLiker, err := posts.Find(ctx, PostQuery{LikedBy: &liker})
	require.NoError(t, err)
	assert.Len(t, byLiker, 1)

	unliked, err := posts.ToggleLike(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)

	_, err = posts.ToggleLike(ctx, primitive.NewObjectID(), liker)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPosts_CreateDefaults(t *testing.T) {
	posts := NewMemoryStore().Posts()
	p := &models.Post{UserID: primitive.NewObjectID(), DreamDescription: "dream"}
	require.NoError(t, posts.Create(context.Background(), p))

	assert.False(t, p.ID.IsZero())
	assert.False(t, p.DateTime.IsZero())
	assert.NotNil(t, p.Tags)
	assert.NotNil(t, p.Likes)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestMemoryCollections(t *testing.T) {
	s := NewMemoryStore()
	collections := s.Collections()
	ctx := context.Background()
	owner := newUser(t, s.Users(), "alice")
	p := seedPost(s, owner.ID, 1, "dream")
	user := primitive.NewObjectID()

	c := &models.Collection{PostID: p.ID, UserID: user}
	require.NoError(t, collections.Create(ctx, c))
	assert.ErrorIs(t, collections.Create(ctx, &models.Collection{PostID: p.ID, UserID: user}), ErrDuplicate)

	views, err := collections.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].PostID.Post)
	assert.Equal(t, p.ID, views[0].PostID.ID)
	assert.Equal(t, "alice", views[0].PostID.Post.UserID.User.Username)

	_, err = collections.DeleteOwned(ctx, c.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := collections.DeleteOwned(ctx, c.ID, user)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)

	_, err = collections.DeleteOwned(ctx, c.ID, user)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryComments_OldestFirstWithAuthor(t *testing.T) {
	s := NewMemoryStore()
	comments := s.Comments()
	ctx := context.Background()
	author := newUser(t, s.Users(), "alice")
	postID := primitive.NewObjectID()

	first := &models.Comment{PostID: postID, UserID: author.ID, CommentContent: "first"}
	second := &models.Comment{PostID: postID, UserID: author.ID, CommentContent: "second"}
	require.NoError(t, comments.Create(ctx, first))
	require.NoError(t, comments.Create(ctx, second))
	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: primitive.NewObjectID(), UserID: author.ID}))

	views, err := comments.ListByPost(ctx, postID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "first", views[0].CommentContent)
	assert.Equal(t, "second", views[1].CommentContent)
	require.NotNil(t, views[0].UserID.User)
	assert.Equal(t, "alice", views[0].UserID.User.Username)

	n, err := comments.DeleteByPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	views, err = comments.ListByPost(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, views)
}
