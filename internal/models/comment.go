package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post
type Comment struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PostID         primitive.ObjectID `json:"postId" bson:"postId"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	CommentContent string             `json:"commentContent" bson:"commentContent"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CommentView is a comment with its author joined into userId
type CommentView struct {
	Comment `bson:",inline"`
	UserID  UserRef `json:"userId" bson:"userId"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID         string `json:"postId" validate:"required"`
	CommentContent string `json:"commentContent" validate:"required"`
}
