package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a dream entry stored in MongoDB
type Post struct {
	ID               primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	UserID           primitive.ObjectID   `json:"userId" bson:"userId"`
	DreamDescription string               `json:"dreamDescription" bson:"dreamDescription"`
	ImageURL         string               `json:"imageUrl" bson:"imageUrl"`
	InterpretedDream string               `json:"interpretedDream" bson:"interpretedDream"`
	DreamStory       string               `json:"dreamStory" bson:"dreamStory"`
	DateTime         time.Time            `json:"dateTime" bson:"dateTime"`
	Location         string               `json:"location" bson:"location"`
	Tags             []string             `json:"tags" bson:"tags"`
	Emotions         string               `json:"emotions" bson:"emotions"`
	Likes            []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt        time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// PostView is a post as read back from a feed. UserID shadows Post.UserID
// and carries the owner's public projection when the owner was joined.
type PostView struct {
	Post   `bson:",inline"`
	UserID UserRef `json:"userId" bson:"userId"`
}

// NewPostView wraps p with an unjoined owner reference.
func NewPostView(p Post) PostView {
	return PostView{Post: p, UserID: UserRef{ID: p.UserID}}
}

// Unjoined returns the stored post with its owner id restored.
func (v PostView) Unjoined() Post {
	p := v.Post
	p.UserID = v.UserID.ID
	return p
}

// PostComments is a post together with its comment thread
type PostComments struct {
	Post     *PostView     `json:"post"`
	Comments []CommentView `json:"postComments"`
}

// PostRequest is the body accepted by create and update. Tags arrive as a
// comma separated string.
type PostRequest struct {
	PostID           string     `json:"postId"`
	DreamDescription string     `json:"dreamDescription" validate:"required"`
	ImageURL         string     `json:"imageUrl" validate:"required"`
	InterpretedDream string     `json:"interpretedDream"`
	DreamStory       string     `json:"dreamStory"`
	DateTime         *time.Time `json:"dateTime"`
	Location         string     `json:"location"`
	Tags             string     `json:"tags"`
	Emotions         string     `json:"emotions"`
}

type PostIDRequest struct {
	PostID string `json:"postId" validate:"required"`
}
