package repositories

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
)

// PostQuery selects and orders posts. Zero values mean "no constraint";
// Limit 0 returns every match.
type PostQuery struct {
	OwnerIDs  []primitive.ObjectID
	LikedBy   *primitive.ObjectID
	Search    string
	SortBy    string
	Skip      int64
	Limit     int64
	WithOwner bool
}

func (q PostQuery) sortField() string {
	if q.SortBy == SortUpdatedAt {
		return SortUpdatedAt
	}
	return SortCreatedAt
}

// searchFields are matched case-insensitively by a search term. A regex
// against the tags array matches when any element matches.
var searchFields = []string{"dreamDescription", "dreamStory", "location", "tags"}

// searchFilter matches term as a literal, case-insensitive substring.
func searchFilter(term string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := make(bson.A, 0, len(searchFields))
	for _, f := range searchFields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

func postFilter(q PostQuery) bson.M {
	filter := bson.M{}
	if len(q.OwnerIDs) > 0 {
		filter["userId"] = bson.M{"$in": q.OwnerIDs}
	}
	if q.LikedBy != nil {
		filter["likes"] = *q.LikedBy
	}
	if q.Search != "" {
		for k, v := range searchFilter(q.Search) {
			filter[k] = v
		}
	}
	return filter
}

// compactUserProjection keeps only the public user fields.
var compactUserProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "username", Value: 1},
	{Key: "name", Value: 1},
	{Key: "profilePicture", Value: 1},
}

// joinOne replaces the id stored in field with the document it references
// in from, run through inner. A dangling reference keeps the bare id.
func joinOne(from, field string, inner bson.A) mongo.Pipeline {
	joined := "_joined_" + field
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "localField", Value: field},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: inner},
			{Key: "as", Value: joined},
		}}},
		{{Key: "$set", Value: bson.D{{Key: field, Value: bson.D{{Key: "$ifNull", Value: bson.A{
			bson.D{{Key: "$first", Value: "$" + joined}},
			"$" + field,
		}}}}}}},
		{{Key: "$unset", Value: joined}},
	}
}

// lookupUser joins the public projection of the user referenced by field.
func lookupUser(field string) mongo.Pipeline {
	return joinOne(usersCollection, field, bson.A{bson.D{{Key: "$project", Value: compactUserProjection}}})
}

func pipelineToArray(p mongo.Pipeline) bson.A {
	out := make(bson.A, 0, len(p))
	for _, stage := range p {
		out = append(out, stage)
	}
	return out
}

func postPipeline(q PostQuery) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: postFilter(q)}},
		{{Key: "$sort", Value: bson.D{{Key: q.sortField(), Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if q.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: q.Skip}})
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	if q.WithOwner {
		pipeline = append(pipeline, lookupUser("userId")...)
	}
	return pipeline
}

// toggleLikeUpdate flips userID's membership in likes within a single
// document update, so concurrent toggles from different users never
// overwrite each other.
func toggleLikeUpdate(userID primitive.ObjectID) mongo.Pipeline {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
				bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: likes},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
				}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
}

// userProfilePipeline joins a user's posts, collections and follower ids.
func userProfilePipeline(id primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: postsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "userId"},
			{Key: "pipeline", Value: bson.A{bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}}}},
			{Key: "as", Value: "posts"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "userId"},
			{Key: "as", Value: "collections"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "let", Value: bson.D{{Key: "userId", Value: "$_id"}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$in", Value: bson.A{"$$userId", bson.D{{Key: "$ifNull", Value: bson.A{"$following", bson.A{}}}}}},
				}}}}},
				bson.D{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}}}},
			}},
			{Key: "as", Value: "followers"},
		}}},
		{{Key: "$set", Value: bson.D{{Key: "followers", Value: "$followers._id"}}}},
		{{Key: "$project", Value: bson.D{{Key: "password", Value: 0}}}},
		{{Key: "$limit", Value: 1}},
	}
}
