package repositories

import (
	"context"
	"time"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionRepository stores post bookmarks
type CollectionRepository interface {
	// Create returns ErrDuplicate when the user already collected the post.
	Create(ctx context.Context, c *models.Collection) error
	// DeleteOwned removes a bookmark by its own id, only if userID owns it.
	DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) (*models.Collection, error)
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	// ListByUser returns the user's bookmarks with the collected post and the
	// post owner resolved.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollectionView, error)
}

// MongoCollectionRepository implements CollectionRepository for MongoDB
type MongoCollectionRepository struct {
	collection *mongo.Collection
}

func NewMongoCollectionRepository(db *mongo.Database) *MongoCollectionRepository {
	return &MongoCollectionRepository{collection: db.Collection(collectionsCollection)}
}

func (r *MongoCollectionRepository) Create(ctx context.Context, c *models.Collection) error {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, c)
	return translateWriteError(err)
}

func (r *MongoCollectionRepository) DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) (*models.Collection, error) {
	var deleted models.Collection
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id, "userId": userID}).Decode(&deleted)
	if err != nil {
		return nil, notFound(err)
	}
	return &deleted, nil
}

func (r *MongoCollectionRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoCollectionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CollectionView, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: userID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}, joinOne(postsCollection, "postId", pipelineToArray(lookupUser("userId")))...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	views := []models.CollectionView{}
	if err = cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}
