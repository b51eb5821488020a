package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account stored in the users collection
type User struct {
	ID             primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username       string               `json:"username" bson:"username"`
	Name           string               `json:"name" bson:"name"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	ProfilePicture string               `json:"profilePicture" bson:"profilePicture"`
	Bio            string               `json:"bio" bson:"bio"`
	Following      []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsFollowing reports whether target is in the user's following set.
func (u *User) IsFollowing(target primitive.ObjectID) bool {
	for _, id := range u.Following {
		if id == target {
			return true
		}
	}
	return false
}

// UserCompact is the public projection of a user attached to posts, comments and collections
type UserCompact struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	Username       string             `json:"username" bson:"username"`
	Name           string             `json:"name" bson:"name"`
	ProfilePicture string             `json:"profilePicture" bson:"profilePicture"`
}

// ToCompact converts a User to its public projection
func (u *User) ToCompact() *UserCompact {
	return &UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
	}
}

// AuthUser is the user projection returned on sign-in
type AuthUser struct {
	ID             primitive.ObjectID   `json:"id"`
	Username       string               `json:"username"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	ProfilePicture string               `json:"profilePicture"`
	Bio            string               `json:"bio"`
	Following      []primitive.ObjectID `json:"following"`
}

// ToAuthUser strips the credential from a User
func (u *User) ToAuthUser() AuthUser {
	following := u.Following
	if following == nil {
		following = []primitive.ObjectID{}
	}
	return AuthUser{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
		Following:      following,
	}
}

// UserProfile is a user joined with its posts, collections and follower ids
type UserProfile struct {
	User        `bson:",inline"`
	Posts       []Post               `json:"posts" bson:"posts"`
	Collections []Collection         `json:"collections" bson:"collections"`
	Followers   []primitive.ObjectID `json:"followers" bson:"followers"`
}

// CurrentUserProfile is the signed-in user's own aggregated view
type CurrentUserProfile struct {
	User        `bson:",inline"`
	Posts       []Post           `json:"posts"`
	Liked       []PostView       `json:"liked"`
	Collections []CollectionView `json:"collections"`
}

// ProfileUpdate carries the mutable profile fields; nil fields are left untouched
type ProfileUpdate struct {
	Name           *string
	Bio            *string
	ProfilePicture *string
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=50"`
	Username string `json:"username" validate:"required,min=2,max=30"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}
