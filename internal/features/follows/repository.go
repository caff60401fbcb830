package follows

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles database interactions for the follows feature
type Repository struct {
	collection *mongo.Collection
}

// NewRepository creates repository and ensures indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("follows")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			// Prevents duplicate follows
			Keys: bson.D{
				{Key: "followerId", Value: 1},
				{Key: "followingId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			// Followers of a user, newest first
			Keys: bson.D{
				{Key: "followingId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			// Who a user follows, newest first
			Keys: bson.D{
				{Key: "followerId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	})

	return &Repository{collection: collection}
}

// CreateFollow inserts a follow edge. Returns false when it already existed.
func (r *Repository) CreateFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	follow := &Follow{
		ID:          primitive.NewObjectID(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, follow)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// DeleteFollow removes a follow edge. Returns false when there was nothing
// to remove.
func (r *Repository) DeleteFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{
		"followerId":  followerID,
		"followingId": followingID,
	})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// ExistsFollow checks if a follow relationship exists
func (r *Repository) ExistsFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"followerId":  followerID,
		"followingId": followingID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowStatus checks both directions of the relationship
func (r *Repository) GetFollowStatus(ctx context.Context, userID, targetID primitive.ObjectID) (isFollowing bool, isFollowedBy bool, err error) {
	isFollowing, err = r.ExistsFollow(ctx, userID, targetID)
	if err != nil {
		return false, false, err
	}

	isFollowedBy, err = r.ExistsFollow(ctx, targetID, userID)
	if err != nil {
		return false, false, err
	}

	return isFollowing, isFollowedBy, nil
}

// GetFollowers retrieves followers of a user with pagination
func (r *Repository) GetFollowers(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]Follow, int64, error) {
	return r.list(ctx, bson.M{"followingId": userID}, page, limit)
}

// GetFollowing retrieves users that a user follows with pagination
func (r *Repository) GetFollowing(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]Follow, int64, error) {
	return r.list(ctx, bson.M{"followerId": userID}, page, limit)
}

func (r *Repository) list(ctx context.Context, filter bson.M, page, limit int) ([]Follow, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var follows []Follow
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return follows, total, nil
}

// GetFollowingIDs batch checks which of the targets the user follows
func (r *Repository) GetFollowingIDs(ctx context.Context, userID primitive.ObjectID, targetIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	if len(targetIDs) == 0 {
		return make(map[primitive.ObjectID]bool), nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"followerId":  userID,
		"followingId": bson.M{"$in": targetIDs},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make(map[primitive.ObjectID]bool)
	for cursor.Next(ctx) {
		var follow Follow
		if err := cursor.Decode(&follow); err == nil {
			result[follow.FollowingID] = true
		}
	}

	return result, nil
}

// GetAllFollowingIDs returns every user id the given user follows; the home
// feed queries posts against this set
func (r *Repository) GetAllFollowingIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"followerId": userID},
		options.Find().SetProjection(bson.M{"followingId": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var follows []Follow
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(follows))
	for i, f := range follows {
		ids[i] = f.FollowingID
	}

	return ids, nil
}
