package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SocialService mutates and enumerates the follow graph. A user's following
// set lives on the user document itself.
type SocialService struct {
	users repositories.UserRepository
}

func NewSocialService(users repositories.UserRepository) *SocialService {
	return &SocialService{users: users}
}

func (s *SocialService) pair(ctx context.Context, actor, target primitive.ObjectID) (*models.User, error) {
	if _, err := s.user(ctx, actor); err != nil {
		return nil, err
	}
	return s.user(ctx, target)
}

func (s *SocialService) user(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Follow adds target to actor's following set. Following someone twice is an
// error rather than a no-op.
func (s *SocialService) Follow(ctx context.Context, actor, target primitive.ObjectID) error {
	if actor == target {
		return ErrCannotFollowSelf
	}
	targetUser, err := s.pair(ctx, actor, target)
	if err != nil {
		return err
	}
	added, err := s.users.AddFollowing(ctx, actor, target)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("User [%s] is %w", targetUser.Name, ErrAlreadyFollowing)
	}
	return nil
}

// Unfollow removes target from actor's following set.
func (s *SocialService) Unfollow(ctx context.Context, actor, target primitive.ObjectID) error {
	targetUser, err := s.pair(ctx, actor, target)
	if err != nil {
		return err
	}
	removed, err := s.users.RemoveFollowing(ctx, actor, target)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("User %s is %w", targetUser.Name, ErrNotFollowing)
	}
	return nil
}

// ListFollowing resolves the users id follows.
func (s *SocialService) ListFollowing(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	u, err := s.user(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.users.ListByIDs(ctx, u.Following)
}

// ListFollowers returns every user whose following set contains id.
func (s *SocialService) ListFollowers(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	if _, err := s.user(ctx, id); err != nil {
		return nil, err
	}
	return s.users.ListFollowers(ctx, id)
}
