package notifications

import (
	"context"
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
	collection := db.Collection("notifications")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "recipientId", Value: 1},
				{Key: "isRead", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			// Supports the idempotence probe on re-processed mentions
			Keys: bson.D{
				{Key: "recipientId", Value: 1},
				{Key: "senderId", Value: 1},
				{Key: "type", Value: 1},
				{Key: "postId", Value: 1},
			},
		},
	})

	return &Repository{collection: collection}
}

// Create inserts a single notification
func (r *Repository) Create(ctx context.Context, notification *Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	notification.IsRead = false

	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// CreateMany batch inserts notifications
func (r *Repository) CreateMany(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	docs := make([]interface{}, len(notifications))
	for i := range notifications {
		notifications[i].ID = primitive.NewObjectID()
		notifications[i].CreatedAt = time.Now()
		notifications[i].IsRead = false
		docs[i] = notifications[i]
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// FindExisting reports whether a notification of the given kind already
// exists between the pair for the post, read or not. Used to keep edits
// from re-notifying the same mention.
func (r *Repository) FindExisting(ctx context.Context, recipientID, senderID primitive.ObjectID, kind string, postID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"recipientId": recipientID,
		"senderId":    senderID,
		"type":        kind,
		"postId":      postID,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByID retrieves a notification by id
func (r *Repository) GetByID(ctx context.Context, notificationID primitive.ObjectID) (*Notification, error) {
	var notification Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": notificationID}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: notification %s", apperrors.ErrNotFound, notificationID.Hex())
		}
		return nil, err
	}
	return &notification, nil
}

// ListForUser retrieves a user's notifications, unread first, newest first
// within each read state
func (r *Repository) ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int) ([]Notification, int64, error) {
	filter := bson.M{"recipientId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}

	opts := options.Find().
		SetSort(bson.D{
			{Key: "isRead", Value: 1},
			{Key: "createdAt", Value: -1},
		}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// CountUnread counts unread notifications for a user
func (r *Repository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"recipientId": userID,
		"isRead":      false,
	})
}

// MarkAsRead marks a single notification as read
func (r *Repository) MarkAsRead(ctx context.Context, notificationID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": notificationID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: notification %s", apperrors.ErrNotFound, notificationID.Hex())
	}
	return nil
}

// MarkAllAsRead marks every unread notification for a user as read
func (r *Repository) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"recipientId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
