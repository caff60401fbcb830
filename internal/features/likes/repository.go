package likes

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles database interactions for the likes feature
type Repository struct {
	collection *mongo.Collection
}

// NewRepository creates repository and ensures indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("likes")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			// Prevents duplicate likes
			Keys: bson.D{
				{Key: "postId", Value: 1},
				{Key: "userId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "postId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	})

	return &Repository{collection: collection}
}

// CreateLike inserts a like. Returns false when the like already existed,
// so callers skip the counter bump and notification on repeats.
func (r *Repository) CreateLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	like := &Like{
		ID:        primitive.NewObjectID(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, like)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// DeleteLike removes a like. Returns false when there was nothing to remove.
func (r *Repository) DeleteLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{
		"postId": postID,
		"userId": userID,
	})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// ExistsLike checks if a like relationship exists
func (r *Repository) ExistsLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"postId": postID,
		"userId": userID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLikers retrieves users who liked a post, newest first
func (r *Repository) GetLikers(ctx context.Context, postID primitive.ObjectID, page, limit int) ([]Like, int64, error) {
	filter := bson.M{"postId": postID}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var likes []Like
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return likes, total, nil
}

// GetUserLikedPosts batch checks which of the posts a user has liked
func (r *Repository) GetUserLikedPosts(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	if len(postIDs) == 0 {
		return make(map[primitive.ObjectID]bool), nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"userId": userID,
		"postId": bson.M{"$in": postIDs},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []Like
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}

	result := make(map[primitive.ObjectID]bool)
	for _, like := range likes {
		result[like.PostID] = true
	}

	return result, nil
}
