package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection represents a user's bookmark of a post. (postId, userId) is unique.
type Collection struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PostID    primitive.ObjectID `json:"postId" bson:"postId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CollectionView is a bookmark with the collected post, and that post's
// owner, joined into postId
type CollectionView struct {
	Collection `bson:",inline"`
	PostID     PostRef `json:"postId" bson:"postId"`
}

type CollectRequest struct {
	PostID string `json:"postId" validate:"required"`
}

type UncollectRequest struct {
	PostCollectionID string `json:"postCollectionId" validate:"required"`
}
