package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("posts")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "deletedAt", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "deletedAt", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	})

	return &Repository{collection: collection}
}

// CreatePost inserts a new post
func (r *Repository) CreatePost(ctx context.Context, post *Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	post.LikeCount = 0
	post.CommentCount = 0

	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a live post by id
func (r *Repository) GetPostByID(ctx context.Context, postID primitive.ObjectID) (*Post, error) {
	var post Post
	err := r.collection.FindOne(ctx, bson.M{
		"_id":       postID,
		"deletedAt": nil,
	}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: post %s", apperrors.ErrNotFound, postID.Hex())
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByIDs batch fetches live posts preserving no particular order
func (r *Repository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"_id":       bson.M{"$in": ids},
		"deletedAt": nil,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByUser retrieves a user's posts, newest first
func (r *Repository) ListByUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]Post, int64, error) {
	filter := bson.M{
		"userId":    userID,
		"deletedAt": nil,
	}
	return r.list(ctx, filter, page, limit)
}

// ListByUsers retrieves posts by any of the given users, newest first. This
// backs the home feed.
func (r *Repository) ListByUsers(ctx context.Context, userIDs []primitive.ObjectID, before time.Time, limit int) ([]Post, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"userId":    bson.M{"$in": userIDs},
		"deletedAt": nil,
		"createdAt": bson.M{"$lt": before},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListRecent retrieves the newest posts across all users, for the discover
// feed
func (r *Repository) ListRecent(ctx context.Context, page, limit int) ([]Post, int64, error) {
	return r.list(ctx, bson.M{"deletedAt": nil}, page, limit)
}

func (r *Repository) list(ctx context.Context, filter bson.M, page, limit int) ([]Post, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var posts []Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// UpdatePost updates fields on a live post
func (r *Repository) UpdatePost(ctx context.Context, postID primitive.ObjectID, updates bson.M) error {
	updates["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": postID, "deletedAt": nil},
		bson.M{"$set": updates},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: post %s", apperrors.ErrNotFound, postID.Hex())
	}
	return nil
}

// SoftDeletePost marks a post deleted without touching its comments
func (r *Repository) SoftDeletePost(ctx context.Context, postID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": postID, "deletedAt": nil},
		bson.M{"$set": bson.M{"deletedAt": time.Now(), "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: post %s", apperrors.ErrNotFound, postID.Hex())
	}
	return nil
}

// IncrementLikeCount adjusts the like counter, flooring at zero
func (r *Repository) IncrementLikeCount(ctx context.Context, postID primitive.ObjectID, delta int) error {
	return r.incrementCounter(ctx, postID, "likeCount", delta)
}

// IncrementCommentCount adjusts the comment counter, flooring at zero
func (r *Repository) IncrementCommentCount(ctx context.Context, postID primitive.ObjectID, delta int) error {
	return r.incrementCounter(ctx, postID, "commentCount", delta)
}

func (r *Repository) incrementCounter(ctx context.Context, postID primitive.ObjectID, field string, delta int) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": postID},
		bson.M{
			"$inc": bson.M{field: delta},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}

	// Concurrent decrements can race below zero; clamp after the fact
	if delta < 0 {
		_, _ = r.collection.UpdateOne(ctx,
			bson.M{"_id": postID, field: bson.M{"$lt": 0}},
			bson.M{"$set": bson.M{field: 0}},
		)
	}

	return nil
}

// SetLinkPreview attaches a scraped preview to a post. Fired from the async
// scrape, so a vanished post is not an error.
func (r *Repository) SetLinkPreview(ctx context.Context, postID primitive.ObjectID, preview *LinkPreview) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": postID, "deletedAt": nil},
		bson.M{"$set": bson.M{"linkPreview": preview}},
	)
	return err
}
