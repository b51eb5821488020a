package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"flying", []string{"flying"}},
		{"flying, sea ,  night", []string{"flying", "sea", "night"}},
		{"lucid dream,fear", []string{"luciddream", "fear"}},
		{"a,,b, ,", []string{"a", "b"}},
		{"<b>bold</b>,x", []string{"bold", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.raw))
		})
	}
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	alice := f.signUp(t, "alice")
	when := time.Date(2024, 3, 1, 4, 0, 0, 0, time.FixedZone("X", 3600))

	post, err := f.feed.CreatePost(context.Background(), alice, PostInput{
		DreamDescription: "  <i>Flying</i> over Lisbon ",
		ImageURL:         "data:image/png;base64,AAAA",
		DreamStory:       "<p>I was <em>flying</em></p><script>x()</script>",
		DateTime:         &when,
		Location:         "Lisbon",
		Tags:             "flying, city",
		Emotions:         "joy",
	})
	require.NoError(t, err)

	assert.Equal(t, alice, post.UserID)
	assert.Equal(t, "Flying over Lisbon", post.DreamDescription)
	assert.Equal(t, "<p>I was <em>flying</em></p>", post.DreamStory)
	assert.Equal(t, []string{"flying", "city"}, post.Tags)
	assert.True(t, post.DateTime.Equal(when))
	assert.Equal(t, f.images.uploaded[0], post.ImageURL)
	assert.Empty(t, post.Likes)

	stored, err := f.store.Posts().FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ImageURL, stored.ImageURL)
}

func TestCreatePost_Rejects(t *testing.T) {
	f := newFixture(t)
	alice := f.signUp(t, "alice")

	tests := []struct {
		name string
		in   PostInput
		want error
	}{
		{"no image", PostInput{DreamDescription: "dream"}, ErrInvalidPost},
		{"no description", PostInput{ImageURL: "data:image/png;base64,AAAA"}, ErrInvalidPost},
		{"markup-only description", PostInput{DreamDescription: "<br>", ImageURL: "data:image/png;base64,AAAA"}, ErrInvalidPost},
		{"upload fails", PostInput{DreamDescription: "dream", ImageURL: "bad-source"}, ErrImageUpload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.feed.CreatePost(context.Background(), alice, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	posts, err := f.feed.OwnPosts(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	post := f.post(t, alice, "Flying", "sky")
	originalImage := post.ImageURL

	// same image: nothing is re-uploaded
	updated, err := f.feed.UpdatePost(ctx, alice, post.ID, PostInput{
		DreamDescription: "Flying higher",
		ImageURL:         originalImage,
		Tags:             "sky, clouds",
	})
	require.NoError(t, err)
	assert.Equal(t, "Flying higher", updated.DreamDescription)
	assert.Equal(t, []string{"sky", "clouds"}, updated.Tags)
	assert.Equal(t, originalImage, updated.ImageURL)
	assert.Len(t, f.images.uploaded, 1)
	assert.Empty(t, f.images.deleted)

	// new image: old one is deleted, new one stored
	updated, err = f.feed.UpdatePost(ctx, alice, post.ID, PostInput{
		DreamDescription: "Flying higher",
		ImageURL:         "https://images.test/new.png",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{originalImage}, f.images.deleted)
	assert.Equal(t, f.images.uploaded[1], updated.ImageURL)

	view, err := f.feed.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURL, view.ImageURL)
	assert.Equal(t, "Flying higher", view.DreamDescription)
}

func TestUpdatePost_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	bob := f.signUp(t, "bob")
	post := f.post(t, alice, "Flying", "")
	in := PostInput{DreamDescription: "hijacked", ImageURL: post.ImageURL}

	_, err := f.feed.UpdatePost(ctx, bob, post.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.feed.UpdatePost(ctx, alice, primitive.NewObjectID(), in)
	assert.ErrorIs(t, err, ErrPostNotFound)

	f.images.deleteErr = errors.New("bucket unavailable")
	_, err = f.feed.UpdatePost(ctx, alice, post.ID, PostInput{DreamDescription: "x", ImageURL: "https://images.test/other.png"})
	assert.ErrorIs(t, err, ErrImageDelete)

	stored, err := f.feed.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flying", stored.DreamDescription)
}

func TestUpdatePost_InvalidImageKeepsStoredOne(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		putErr      error
		want        error
		wantDeleted int
	}{
		{"unsupported source", "bad-source", nil, storage.ErrUnsupportedSource, 0},
		{"storage write fails", "https://images.test/new.png", errors.New("bucket full"), ErrImageUpload, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			alice := f.signUp(t, "alice")
			post := f.post(t, alice, "Flying", "")
			f.images.putErr = tt.putErr

			_, err := f.feed.UpdatePost(ctx, alice, post.ID, PostInput{DreamDescription: "Flying higher", ImageURL: tt.source})
			assert.ErrorIs(t, err, ErrImageUpload)
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, f.images.deleted, tt.wantDeleted)

			stored, err := f.feed.PostByID(ctx, post.ID)
			require.NoError(t, err)
			assert.Equal(t, "Flying", stored.DreamDescription)
			if tt.wantDeleted == 0 {
				assert.Equal(t, post.ImageURL, stored.ImageURL)
			}
		})
	}
}

func TestDeletePost_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	bob := f.signUp(t, "bob")
	post := f.post(t, alice, "Flying", "")
	other := f.post(t, alice, "Falling", "")

	_, err := f.feed.Collect(ctx, bob, post.ID)
	require.NoError(t, err)
	_, err = f.feed.Collect(ctx, bob, other.ID)
	require.NoError(t, err)
	_, err = f.feed.Comment(ctx, bob, post.ID, "lovely")
	require.NoError(t, err)

	_, err = f.feed.DeletePost(ctx, bob, post.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := f.feed.DeletePost(ctx, alice, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.ID)
	assert.Equal(t, []string{post.ImageURL}, f.images.deleted)

	_, err = f.feed.PostByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	collections, err := f.store.Collections().ListByUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, other.ID, collections[0].PostID.ID)

	comments, err := f.store.Comments().ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = f.feed.DeletePost(ctx, alice, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	bob := f.signUp(t, "bob")
	post := f.post(t, alice, "Flying", "")

	liked, err := f.feed.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{bob}, liked.Likes)

	liked, err = f.feed.ToggleLike(ctx, alice, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{bob, alice}, liked.Likes)

	unliked, err := f.feed.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{alice}, unliked.Likes)

	_, err = f.feed.ToggleLike(ctx, bob, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCollect_Uncollect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	bob := f.signUp(t, "bob")
	post := f.post(t, alice, "Flying", "")

	c, err := f.feed.Collect(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, c.PostID)
	assert.Equal(t, bob, c.UserID)

	_, err = f.feed.Collect(ctx, bob, post.ID)
	assert.ErrorIs(t, err, ErrAlreadyCollected)

	_, err = f.feed.Collect(ctx, bob, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.feed.Uncollect(ctx, alice, c.ID)
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	removed, err := f.feed.Uncollect(ctx, bob, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, removed.ID)

	// collectable again once removed
	_, err = f.feed.Collect(ctx, bob, post.ID)
	assert.NoError(t, err)
}

func TestComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	bob := f.signUp(t, "bob")
	post := f.post(t, alice, "Flying", "")

	_, err := f.feed.Comment(ctx, bob, post.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyComment)
	_, err = f.feed.Comment(ctx, bob, post.ID, "<script>x()</script>")
	assert.ErrorIs(t, err, ErrEmptyComment)
	_, err = f.feed.Comment(ctx, bob, primitive.NewObjectID(), "hi")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.feed.Comment(ctx, bob, post.ID, "first")
	require.NoError(t, err)
	_, err = f.feed.Comment(ctx, alice, post.ID, "second")
	require.NoError(t, err)

	thread, err := f.feed.PostComments(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, thread.Post.UserID.User)
	assert.Equal(t, "alice", thread.Post.UserID.User.Username)
	require.Len(t, thread.Comments, 2)
	assert.Equal(t, "first", thread.Comments[0].CommentContent)
	assert.Equal(t, "bob", thread.Comments[0].UserID.User.Username)
	assert.Equal(t, "second", thread.Comments[1].CommentContent)

	_, err = f.feed.PostComments(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestFollowedPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	bob := f.signUp(t, "bob")
	carol := f.signUp(t, "carol")

	a := f.post(t, alice, "alice dream", "")
	b := f.post(t, bob, "bob dream", "")
	f.post(t, carol, "carol dream", "")
	require.NoError(t, f.social.Follow(ctx, alice, bob))

	posts, err := f.feed.FollowedPosts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{b.ID, a.ID}, postIDs(posts))
	for _, p := range posts {
		assert.NotNil(t, p.UserID.User)
	}

	require.NoError(t, f.social.Unfollow(ctx, alice, bob))
	posts, err = f.feed.FollowedPosts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a.ID}, postIDs(posts))

	_, err = f.feed.FollowedPosts(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestReadViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	bob := f.signUp(t, "bob")

	var created []*models.Post
	for i := 0; i < 10; i++ {
		owner := alice
		if i%2 == 1 {
			owner = bob
		}
		created = append(created, f.post(t, owner, "dream", ""))
	}
	tagged := f.post(t, bob, "Underwater city", "Ocean, blue")

	t.Run("recent newest first", func(t *testing.T) {
		posts, err := f.feed.RecentPosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 11)
		assert.Equal(t, tagged.ID, posts[0].ID)
		assert.Equal(t, created[0].ID, posts[10].ID)
	})

	t.Run("infinite pages of nine", func(t *testing.T) {
		first, page, err := f.feed.InfinitePosts(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, page)
		assert.Len(t, first, InfinitePageSize)

		second, page, err := f.feed.InfinitePosts(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, page)
		assert.Len(t, second, 2)
		assert.Equal(t, created[0].ID, second[1].ID)

		third, _, err := f.feed.InfinitePosts(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, third)
	})

	t.Run("search by tag", func(t *testing.T) {
		posts, err := f.feed.SearchPosts(ctx, "ocean")
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{tagged.ID}, postIDs(posts))

		all, err := f.feed.SearchPosts(ctx, "  ")
		require.NoError(t, err)
		assert.Len(t, all, 11)

		none, err := f.feed.SearchPosts(ctx, "volcano")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("user posts", func(t *testing.T) {
		posts, err := f.feed.UserPosts(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, posts, 5)
		for _, p := range posts {
			assert.Equal(t, alice, p.UserID.ID)
			assert.Equal(t, "alice", p.UserID.User.Username)
		}
	})

	t.Run("own posts have no owner join", func(t *testing.T) {
		posts, err := f.feed.OwnPosts(ctx, bob)
		require.NoError(t, err)
		assert.Len(t, posts, 6)
		assert.Nil(t, posts[0].UserID.User)
		assert.Equal(t, bob, posts[0].UserID.ID)
	})
}

func TestCurrentUserProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice")
	bob := f.signUp(t, "bob")

	own := f.post(t, alice, "mine", "")
	liked := f.post(t, bob, "liked", "")
	saved := f.post(t, bob, "saved", "")
	_, err := f.feed.ToggleLike(ctx, alice, liked.ID)
	require.NoError(t, err)
	_, err = f.feed.Collect(ctx, alice, saved.ID)
	require.NoError(t, err)

	profile, err := f.feed.CurrentUserProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Empty(t, profile.Password)
	require.Len(t, profile.Posts, 1)
	assert.Equal(t, own.ID, profile.Posts[0].ID)
	assert.Equal(t, alice, profile.Posts[0].UserID)
	require.Len(t, profile.Liked, 1)
	assert.Equal(t, liked.ID, profile.Liked[0].ID)
	assert.Equal(t, "bob", profile.Liked[0].UserID.User.Username)
	require.Len(t, profile.Collections, 1)
	assert.Equal(t, saved.ID, profile.Collections[0].PostID.ID)
	require.NotNil(t, profile.Collections[0].PostID.Post)
	assert.Equal(t, "bob", profile.Collections[0].PostID.Post.UserID.User.Username)

	_, err = f.feed.CurrentUserProfile(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
