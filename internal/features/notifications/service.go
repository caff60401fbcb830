package notifications

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/mentions"
)

// Store is the subset of Repository the service writes through. Tests
// supply an in-memory fake.
type Store interface {
	Create(ctx context.Context, notification *Notification) error
	FindExisting(ctx context.Context, recipientID, senderID primitive.ObjectID, kind string, postID primitive.ObjectID) (bool, error)
}

// Service creates notifications for social events. It is also the sink the
// mention pipeline fans out through.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateNotification persists a mention notification. Part of the sink
// contract used by mentions.Processor.
func (s *Service) CreateNotification(ctx context.Context, n mentions.Notice) error {
	return s.store.Create(ctx, &Notification{
		RecipientID: n.RecipientID,
		SenderID:    n.SenderID,
		Type:        n.Type,
		PostID:      n.PostID,
		CommentID:   n.CommentID,
		Preview:     n.Preview,
	})
}

// FindExistingNotification reports whether the same mention has already been
// delivered, so edits never re-notify. Part of the sink contract.
func (s *Service) FindExistingNotification(ctx context.Context, recipientID, senderID primitive.ObjectID, kind string, postID primitive.ObjectID) (bool, error) {
	return s.store.FindExisting(ctx, recipientID, senderID, kind, postID)
}

// NotifyComment tells a post owner about a new comment. Skipped when the
// commenter owns the post or was already notified via a mention in the same
// comment.
func (s *Service) NotifyComment(ctx context.Context, postOwnerID, senderID, postID primitive.ObjectID, commentID primitive.ObjectID, content string, mentioned []primitive.ObjectID) error {
	if postOwnerID == senderID {
		return nil
	}
	for _, id := range mentioned {
		if id == postOwnerID {
			return nil
		}
	}

	return s.store.Create(ctx, &Notification{
		RecipientID: postOwnerID,
		SenderID:    senderID,
		Type:        TypeComment,
		PostID:      postID,
		CommentID:   &commentID,
		Preview:     truncate(content, 100),
	})
}

// NotifyLike tells a post owner their post was liked. Callers invoke this
// only when a like was actually created, so un-like/re-like churn is handled
// upstream.
func (s *Service) NotifyLike(ctx context.Context, postOwnerID, senderID, postID primitive.ObjectID, preview string) error {
	if postOwnerID == senderID {
		return nil
	}

	exists, err := s.store.FindExisting(ctx, postOwnerID, senderID, TypeLike, postID)
	if err == nil && exists {
		return nil
	}

	return s.store.Create(ctx, &Notification{
		RecipientID: postOwnerID,
		SenderID:    senderID,
		Type:        TypeLike,
		PostID:      postID,
		Preview:     truncate(preview, 100),
	})
}

// NotifyFollow tells a user they gained a follower
func (s *Service) NotifyFollow(ctx context.Context, targetID, senderID primitive.ObjectID) error {
	if targetID == senderID {
		return nil
	}

	exists, err := s.store.FindExisting(ctx, targetID, senderID, TypeFollow, primitive.NilObjectID)
	if err == nil && exists {
		return nil
	}

	return s.store.Create(ctx, &Notification{
		RecipientID: targetID,
		SenderID:    senderID,
		Type:        TypeFollow,
	})
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
