package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/internal/repositories"
	"github.com/anonto42/dreamscape/backend/pkg/sanitize"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	RecentLimit      = 20
	InfinitePageSize = 9
)

// FeedService owns posts and everything hanging off them: likes,
// collections, comments and the read views.
type FeedService struct {
	users       repositories.UserRepository
	posts       repositories.PostRepository
	comments    repositories.CommentRepository
	collections repositories.CollectionRepository
	images      ImageStore
	log         *zap.Logger
}

func NewFeedService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	collections repositories.CollectionRepository,
	images ImageStore,
	log *zap.Logger,
) *FeedService {
	return &FeedService{
		users:       users,
		posts:       posts,
		comments:    comments,
		collections: collections,
		images:      images,
		log:         log,
	}
}

// PostInput carries the fields of a create or update request.
type PostInput struct {
	DreamDescription string
	ImageURL         string
	InterpretedDream string
	DreamStory       string
	DateTime         *time.Time
	Location         string
	Tags             string
	Emotions         string
}

func PostInputFromRequest(req models.PostRequest) PostInput {
	return PostInput{
		DreamDescription: req.DreamDescription,
		ImageURL:         req.ImageURL,
		InterpretedDream: req.InterpretedDream,
		DreamStory:       req.DreamStory,
		DateTime:         req.DateTime,
		Location:         req.Location,
		Tags:             req.Tags,
		Emotions:         req.Emotions,
	}
}

// ParseTags turns "a, b ,c" into [a b c]. All spaces are removed and empty
// entries dropped.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(strings.ReplaceAll(raw, " ", ""), ",") {
		if t = sanitize.Plain(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// apply copies the sanitized text fields of in onto p.
func (in PostInput) apply(p *models.Post) error {
	p.DreamDescription = sanitize.Plain(in.DreamDescription)
	if p.DreamDescription == "" {
		return fmt.Errorf("%w: dreamDescription is required", ErrInvalidPost)
	}
	p.InterpretedDream = sanitize.Text(in.InterpretedDream)
	p.DreamStory = sanitize.Text(in.DreamStory)
	p.Location = sanitize.Plain(in.Location)
	p.Tags = ParseTags(in.Tags)
	p.Emotions = sanitize.Plain(in.Emotions)
	if in.DateTime != nil && !in.DateTime.IsZero() {
		p.DateTime = in.DateTime.UTC()
	}
	return nil
}

// CreatePost uploads the image and stores the new dream entry.
func (s *FeedService) CreatePost(ctx context.Context, owner primitive.ObjectID, in PostInput) (*models.Post, error) {
	if strings.TrimSpace(in.ImageURL) == "" {
		return nil, fmt.Errorf("%w: imageUrl is required", ErrInvalidPost)
	}
	post := &models.Post{UserID: owner}
	if err := in.apply(post); err != nil {
		return nil, err
	}

	img, err := s.images.Load(ctx, in.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageUpload, err)
	}
	if post.ImageURL, err = s.images.Put(ctx, img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageUpload, err)
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *FeedService) post(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return p, err
}

// ownedPost loads a post the caller must own: absent is ErrPostNotFound,
// someone else's is ErrForbidden.
func (s *FeedService) ownedPost(ctx context.Context, caller, id primitive.ObjectID) (*models.Post, error) {
	p, err := s.post(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != caller {
		return nil, ErrForbidden
	}
	return p, nil
}

// UpdatePost replaces the owner-editable fields. A changed image is loaded
// and validated first, then the stored one is deleted and the new one put.
// Any failure up to the delete leaves the stored image in place.
func (s *FeedService) UpdatePost(ctx context.Context, caller, postID primitive.ObjectID, in PostInput) (*models.Post, error) {
	post, err := s.ownedPost(ctx, caller, postID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(post); err != nil {
		return nil, err
	}

	if in.ImageURL != "" && in.ImageURL != post.ImageURL {
		img, err := s.images.Load(ctx, in.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrImageUpload, err)
		}
		if err := s.images.Delete(ctx, post.ImageURL); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageDelete, err)
		}
		if post.ImageURL, err = s.images.Put(ctx, img); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrImageUpload, err)
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post, its image, and every collection and comment
// referencing it.
func (s *FeedService) DeletePost(ctx context.Context, caller, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.ownedPost(ctx, caller, postID)
	if err != nil {
		return nil, err
	}

	if err := s.images.Delete(ctx, post.ImageURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDelete, err)
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	collections, err := s.collections.DeleteByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("delete collections of post %s: %w", postID.Hex(), err)
	}
	comments, err := s.comments.DeleteByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("delete comments of post %s: %w", postID.Hex(), err)
	}
	s.log.Info("post deleted",
		zap.String("postId", postID.Hex()),
		zap.Int64("collections", collections),
		zap.Int64("comments", comments))
	return post, nil
}

// ToggleLike flips the caller's like on a post and returns the post.
func (s *FeedService) ToggleLike(ctx context.Context, user, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.ToggleLike(ctx, postID, user)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}

// Collect bookmarks a post for the caller.
func (s *FeedService) Collect(ctx context.Context, user, postID primitive.ObjectID) (*models.Collection, error) {
	if _, err := s.post(ctx, postID); err != nil {
		return nil, err
	}
	c := &models.Collection{PostID: postID, UserID: user}
	if err := s.collections.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyCollected
		}
		return nil, err
	}
	return c, nil
}

// Uncollect removes one of the caller's bookmarks by the bookmark's own id.
func (s *FeedService) Uncollect(ctx context.Context, user, collectionID primitive.ObjectID) (*models.Collection, error) {
	c, err := s.collections.DeleteOwned(ctx, collectionID, user)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCollectionNotFound
	}
	return c, err
}

// Comment adds a comment to an existing post.
func (s *FeedService) Comment(ctx context.Context, user, postID primitive.ObjectID, content string) (*models.Comment, error) {
	content = sanitize.Text(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if _, err := s.post(ctx, postID); err != nil {
		return nil, err
	}
	c := &models.Comment{PostID: postID, UserID: user, CommentContent: content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// OwnPosts lists the caller's posts without the owner join.
func (s *FeedService) OwnPosts(ctx context.Context, user primitive.ObjectID) ([]models.PostView, error) {
	return s.posts.Find(ctx, repositories.PostQuery{OwnerIDs: []primitive.ObjectID{user}})
}

// RecentPosts returns the newest posts across all users.
func (s *FeedService) RecentPosts(ctx context.Context) ([]models.PostView, error) {
	return s.posts.Find(ctx, repositories.PostQuery{
		SortBy:    repositories.SortCreatedAt,
		Limit:     RecentLimit,
		WithOwner: true,
	})
}

// InfinitePosts pages through all posts by last update. Pages start at 1.
func (s *FeedService) InfinitePosts(ctx context.Context, page int) ([]models.PostView, int, error) {
	if page < 1 {
		page = 1
	}
	posts, err := s.posts.Find(ctx, repositories.PostQuery{
		SortBy:    repositories.SortUpdatedAt,
		Skip:      int64(page-1) * InfinitePageSize,
		Limit:     InfinitePageSize,
		WithOwner: true,
	})
	return posts, page, err
}

// SearchPosts matches term case-insensitively against description, story,
// location and tags. An empty term matches everything.
func (s *FeedService) SearchPosts(ctx context.Context, term string) ([]models.PostView, error) {
	return s.posts.Find(ctx, repositories.PostQuery{
		Search:    strings.TrimSpace(term),
		SortBy:    repositories.SortUpdatedAt,
		WithOwner: true,
	})
}

func (s *FeedService) PostByID(ctx context.Context, id primitive.ObjectID) (*models.PostView, error) {
	post, err := s.posts.FindView(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (s *FeedService) UserPosts(ctx context.Context, owner primitive.ObjectID) ([]models.PostView, error) {
	return s.posts.Find(ctx, repositories.PostQuery{
		OwnerIDs:  []primitive.ObjectID{owner},
		SortBy:    repositories.SortCreatedAt,
		WithOwner: true,
	})
}

// FollowedPosts returns posts by the viewer and everyone the viewer follows.
func (s *FeedService) FollowedPosts(ctx context.Context, viewer primitive.ObjectID) ([]models.PostView, error) {
	u, err := s.users.FindByID(ctx, viewer)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	owners := append([]primitive.ObjectID{viewer}, u.Following...)
	return s.posts.Find(ctx, repositories.PostQuery{
		OwnerIDs:  owners,
		SortBy:    repositories.SortCreatedAt,
		WithOwner: true,
	})
}

// PostComments returns a post and its comments, oldest first.
func (s *FeedService) PostComments(ctx context.Context, postID primitive.ObjectID) (*models.PostComments, error) {
	post, err := s.PostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &models.PostComments{Post: post, Comments: comments}, nil
}

// CurrentUserProfile aggregates the caller's account, own posts, liked posts
// and collections.
func (s *FeedService) CurrentUserProfile(ctx context.Context, user primitive.ObjectID) (*models.CurrentUserProfile, error) {
	u, err := s.users.FindByID(ctx, user)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	own, err := s.posts.Find(ctx, repositories.PostQuery{OwnerIDs: []primitive.ObjectID{user}})
	if err != nil {
		return nil, err
	}
	liked, err := s.posts.Find(ctx, repositories.PostQuery{LikedBy: &user, WithOwner: true})
	if err != nil {
		return nil, err
	}
	collections, err := s.collections.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	u.Password = ""
	profile := &models.CurrentUserProfile{
		User:        *u,
		Posts:       make([]models.Post, 0, len(own)),
		Liked:       liked,
		Collections: collections,
	}
	for _, p := range own {
		profile.Posts = append(profile.Posts, p.Unjoined())
	}
	return profile, nil
}
