package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devlink-social/devlink/internal/threads"
	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("comments")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			// Top-level listing: parentId is nil for roots
			Keys: bson.D{
				{Key: "postId", Value: 1},
				{Key: "parentId", Value: 1},
				{Key: "deletedAt", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			// Reply listing for one parent
			Keys: bson.D{
				{Key: "parentId", Value: 1},
				{Key: "deletedAt", Value: 1},
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

// CreateComment inserts a comment. For replies the parent must exist and sit
// above the depth ceiling; the parent's reply count is bumped after insert.
func (r *Repository) CreateComment(ctx context.Context, comment *Comment) error {
	if comment.ParentID != nil {
		parent, err := r.GetCommentByID(ctx, *comment.ParentID)
		if err != nil {
			return err
		}
		if parent.PostID != comment.PostID {
			return fmt.Errorf("%w: parent comment belongs to another post", apperrors.ErrNotFound)
		}
		comment.Depth = parent.Depth + 1
		if comment.Depth > threads.MaxDepth {
			return apperrors.ErrDepthExceeded
		}
	} else {
		comment.Depth = 0
	}

	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	comment.ReplyCount = 0
	comment.IsEdited = false

	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return err
	}

	if comment.ParentID != nil {
		if err := r.incrementReplyCount(ctx, *comment.ParentID, 1); err != nil {
			return err
		}
	}

	return nil
}

// GetCommentByID retrieves a live comment by id
func (r *Repository) GetCommentByID(ctx context.Context, commentID primitive.ObjectID) (*Comment, error) {
	var comment Comment
	err := r.collection.FindOne(ctx, bson.M{
		"_id":       commentID,
		"deletedAt": nil,
	}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: comment %s", apperrors.ErrNotFound, commentID.Hex())
		}
		return nil, err
	}
	return &comment, nil
}

// ListTopLevel retrieves one page of a post's top-level comments, newest
// first, plus the total top-level count
func (r *Repository) ListTopLevel(ctx context.Context, postID primitive.ObjectID, page, limit int) ([]Comment, int64, error) {
	filter := bson.M{
		"postId":    postID,
		"parentId":  nil,
		"deletedAt": nil,
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var comments []Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// ListReplies retrieves all direct replies of a comment, newest first
func (r *Repository) ListReplies(ctx context.Context, parentID primitive.ObjectID) ([]Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{
		"parentId":  parentID,
		"deletedAt": nil,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateComment updates fields on a live comment
func (r *Repository) UpdateComment(ctx context.Context, commentID primitive.ObjectID, updates bson.M) error {
	updates["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": commentID, "deletedAt": nil},
		bson.M{"$set": updates},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: comment %s", apperrors.ErrNotFound, commentID.Hex())
	}
	return nil
}

// SoftDeleteComment soft deletes a single comment and reconciles its
// parent's reply count. Descendants keep their documents but become
// unreachable once the parent stops listing.
func (r *Repository) SoftDeleteComment(ctx context.Context, comment *Comment) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": comment.ID, "deletedAt": nil},
		bson.M{"$set": bson.M{"deletedAt": time.Now(), "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: comment %s", apperrors.ErrNotFound, comment.ID.Hex())
	}

	if comment.ParentID != nil {
		if err := r.incrementReplyCount(ctx, *comment.ParentID, -1); err != nil {
			return err
		}
	}

	return nil
}

// incrementReplyCount adjusts a comment's direct-reply counter, flooring at
// zero after decrements
func (r *Repository) incrementReplyCount(ctx context.Context, commentID primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": commentID},
		bson.M{
			"$inc": bson.M{"replyCount": delta},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}

	if delta < 0 {
		_, _ = r.collection.UpdateOne(ctx,
			bson.M{"_id": commentID, "replyCount": bson.M{"$lt": 0}},
			bson.M{"$set": bson.M{"replyCount": 0}},
		)
	}

	return nil
}
