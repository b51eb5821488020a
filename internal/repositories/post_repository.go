package repositories

import (
	"context"
	"time"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindView(ctx context.Context, id primitive.ObjectID) (*models.PostView, error)
	Find(ctx context.Context, q PostQuery) ([]models.PostView, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ToggleLike adds userID to the post's likes, or removes it when present,
	// and returns the post after the change.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(postsCollection)}
}

// Create inserts a new post. Tags and likes are never stored as null.
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.DateTime.IsZero() {
		post.DateTime = now
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// FindByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// FindView retrieves a post with its owner joined
func (r *MongoPostRepository) FindView(ctx context.Context, id primitive.ObjectID) (*models.PostView, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}, lookupUser("userId")...)

	views, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

// Find runs a filtered, sorted and paginated post query
func (r *MongoPostRepository) Find(ctx context.Context, q PostQuery) ([]models.PostView, error) {
	return r.aggregate(ctx, postPipeline(q))
}

func (r *MongoPostRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.PostView, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.PostView{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Update replaces the owner-editable fields of an existing post
func (r *MongoPostRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	if post.Tags == nil {
		post.Tags = []string{}
	}
	update := bson.M{
		"$set": bson.M{
			"dreamDescription": post.DreamDescription,
			"imageUrl":         post.ImageURL,
			"interpretedDream": post.InterpretedDream,
			"dreamStory":       post.DreamStory,
			"dateTime":         post.DateTime,
			"location":         post.Location,
			"tags":             post.Tags,
			"emotions":         post.Emotions,
			"updatedAt":        post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a post by ID from MongoDB
func (r *MongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleLike flips the user's like with one atomic pipeline update
func (r *MongoPostRepository) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": postID}, toggleLikeUpdate(userID), opts).Decode(&post)
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}
