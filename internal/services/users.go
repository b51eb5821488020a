package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/internal/repositories"
	"github.com/anonto42/dreamscape/backend/pkg/sanitize"
	"github.com/anonto42/dreamscape/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ImageStore persists images and returns their stable public URLs. Load
// only resolves and validates a source; nothing is stored until Put.
type ImageStore interface {
	Load(ctx context.Context, source string) (*storage.Image, error)
	Put(ctx context.Context, img *storage.Image) (string, error)
	UploadBytes(ctx context.Context, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

type UserService struct {
	users  repositories.UserRepository
	images ImageStore
	log    *zap.Logger
}

func NewUserService(users repositories.UserRepository, images ImageStore, log *zap.Logger) *UserService {
	return &UserService{users: users, images: images, log: log}
}

// ListUsers returns every user for n == "all", otherwise the first n.
func (s *UserService) ListUsers(ctx context.Context, n string) ([]models.User, error) {
	if n == "all" {
		return s.users.List(ctx, 0)
	}
	limit, err := strconv.ParseInt(n, 10, 64)
	if err != nil || limit < 1 {
		return nil, ErrInvalidCount
	}
	return s.users.List(ctx, limit)
}

// Profile returns a user with posts, collections and follower ids joined.
func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	profile, err := s.users.Profile(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return profile, err
}

type ProfileInput struct {
	Name  *string
	Bio   *string
	Image []byte
}

// UpdateProfile changes name, bio and optionally the profile picture. Only
// the owner may update a profile.
func (s *UserService) UpdateProfile(ctx context.Context, caller, id primitive.ObjectID, in ProfileInput) (*models.User, error) {
	if caller != id {
		return nil, ErrForbidden
	}
	current, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var update models.ProfileUpdate
	if in.Name != nil {
		name := sanitize.Plain(*in.Name)
		update.Name = &name
	}
	if in.Bio != nil {
		bio := sanitize.Text(*in.Bio)
		update.Bio = &bio
	}
	if len(in.Image) > 0 {
		url, err := s.images.UploadBytes(ctx, in.Image)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrImageUpload, err)
		}
		update.ProfilePicture = &url
	}

	updated, err := s.users.UpdateProfile(ctx, id, update)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if update.ProfilePicture != nil && current.ProfilePicture != "" {
		if err := s.images.Delete(ctx, current.ProfilePicture); err != nil {
			s.log.Warn("failed to remove previous profile picture",
				zap.String("userId", id.Hex()), zap.Error(err))
		}
	}
	return updated, nil
}
