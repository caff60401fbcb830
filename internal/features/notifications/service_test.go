package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/mentions"
)

type memStore struct {
	created []Notification
}

func (m *memStore) Create(_ context.Context, n *Notification) error {
	m.created = append(m.created, *n)
	return nil
}

func (m *memStore) FindExisting(_ context.Context, recipientID, senderID primitive.ObjectID, kind string, postID primitive.ObjectID) (bool, error) {
	for _, n := range m.created {
		if n.RecipientID == recipientID && n.SenderID == senderID && n.Type == kind && n.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

func TestService_SinkContract(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	recipient := primitive.NewObjectID()
	sender := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	err := svc.CreateNotification(context.Background(), mentions.Notice{
		RecipientID: recipient,
		SenderID:    sender,
		Type:        mentions.KindMentionInPost,
		PostID:      postID,
		Preview:     "hey @you",
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	require.Equal(t, TypeMentionInPost, store.created[0].Type)

	exists, err := svc.FindExistingNotification(context.Background(), recipient, sender, TypeMentionInPost, postID)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = svc.FindExistingNotification(context.Background(), recipient, sender, TypeMentionInComment, postID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestNotifyComment_SkipsOwnerAndMentioned(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	owner := primitive.NewObjectID()
	postID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()

	// Self-comment: no notification
	err := svc.NotifyComment(context.Background(), owner, owner, postID, commentID, "note to self", nil)
	require.NoError(t, err)
	require.Empty(t, store.created)

	// Owner already mentioned in the comment: mention notification wins
	sender := primitive.NewObjectID()
	err = svc.NotifyComment(context.Background(), owner, sender, postID, commentID, "hi", []primitive.ObjectID{owner})
	require.NoError(t, err)
	require.Empty(t, store.created)

	err = svc.NotifyComment(context.Background(), owner, sender, postID, commentID, "plain reply", nil)
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	require.Equal(t, TypeComment, store.created[0].Type)
	require.Equal(t, &commentID, store.created[0].CommentID)
}

func TestNotifyLike_IdempotentPerPostPair(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	owner := primitive.NewObjectID()
	sender := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	require.NoError(t, svc.NotifyLike(context.Background(), owner, sender, postID, "great post"))
	require.NoError(t, svc.NotifyLike(context.Background(), owner, sender, postID, "great post"))
	require.Len(t, store.created, 1)

	// Self-like never notifies
	require.NoError(t, svc.NotifyLike(context.Background(), owner, owner, postID, "great post"))
	require.Len(t, store.created, 1)
}

func TestNotifyFollow(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	target := primitive.NewObjectID()
	sender := primitive.NewObjectID()

	require.NoError(t, svc.NotifyFollow(context.Background(), target, sender))
	require.NoError(t, svc.NotifyFollow(context.Background(), target, sender))
	require.Len(t, store.created, 1)
	require.Equal(t, TypeFollow, store.created[0].Type)
	require.True(t, store.created[0].PostID.IsZero())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 100))
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	got := truncate(string(long), 100)
	require.Len(t, got, 100)
	require.Equal(t, "...", got[97:])
}
