package mentions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

func markup(handle string) string {
	return Delim + handle + Delim
}

func TestExtractHandles(t *testing.T) {
	text := "Thanks " + markup("Alice") + " and " + markup("bob") + " and again " + markup("alice")
	handles := ExtractHandles(text)
	require.Equal(t, []string{"alice", "bob"}, handles)
}

func TestExtractHandles_NoMatches(t *testing.T) {
	require.Empty(t, ExtractHandles("plain text with @raw trigger and no markup"))
}

func TestExtractHandles_UnterminatedMarkup(t *testing.T) {
	// Missing closing delimiter must not match.
	text := Delim + "alice is talking about " + markup("bob")
	require.Equal(t, []string{"bob"}, ExtractHandles(text))
}

func TestExtractHandles_AdjacentMentions(t *testing.T) {
	text := markup("alice") + markup("bob")
	require.Equal(t, []string{"alice", "bob"}, ExtractHandles(text))
}

func TestStoreMarkupRenderDisplayRoundTrip(t *testing.T) {
	stored := StoreMarkup("hey @alice, nice work")
	require.True(t, ContainsMarkup(stored))

	display := RenderDisplay(stored)
	require.Contains(t, display, "@alice")
	require.NotContains(t, display, Delim)
}

type spyDirectory struct {
	calls   int
	users   map[string]primitive.ObjectID
	failing bool
}

func (d *spyDirectory) FindUsersByHandles(_ context.Context, handles []string) (map[string]primitive.ObjectID, error) {
	d.calls++
	if d.failing {
		return nil, errors.New("connection refused")
	}
	out := make(map[string]primitive.ObjectID)
	for _, h := range handles {
		if id, ok := d.users[h]; ok {
			out[h] = id
		}
	}
	return out, nil
}

type spySink struct {
	created  []Notice
	existing map[string]bool
}

func sinkKey(recipient, sender primitive.ObjectID, kind string, postID primitive.ObjectID) string {
	return recipient.Hex() + "/" + sender.Hex() + "/" + kind + "/" + postID.Hex()
}

func (s *spySink) CreateNotification(_ context.Context, n Notice) error {
	if s.existing == nil {
		s.existing = make(map[string]bool)
	}
	s.created = append(s.created, n)
	s.existing[sinkKey(n.RecipientID, n.SenderID, n.Type, n.PostID)] = true
	return nil
}

func (s *spySink) FindExistingNotification(_ context.Context, recipientID, senderID primitive.ObjectID, kind string, postID primitive.ObjectID) (bool, error) {
	return s.existing[sinkKey(recipientID, senderID, kind, postID)], nil
}

func TestResolveHandles_EmptyInputSkipsLookup(t *testing.T) {
	dir := &spyDirectory{}
	p := NewProcessor(dir, &spySink{})

	resolved, err := p.ResolveHandles(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, resolved)
	require.Zero(t, dir.calls)
}

func TestResolveHandles_DropsUnknownHandles(t *testing.T) {
	bob := primitive.NewObjectID()
	dir := &spyDirectory{users: map[string]primitive.ObjectID{"bob": bob}}
	p := NewProcessor(dir, &spySink{})

	resolved, err := p.ResolveHandles(context.Background(), []string{"bob", "ghost"})
	require.NoError(t, err)
	require.Equal(t, []ResolvedMention{{Handle: "bob", RecipientID: bob}}, resolved)
	require.Equal(t, 1, dir.calls)
}

func TestResolveHandles_DirectoryFailureIsTransient(t *testing.T) {
	p := NewProcessor(&spyDirectory{failing: true}, &spySink{})

	_, err := p.ResolveHandles(context.Background(), []string{"bob"})
	require.ErrorIs(t, err, apperrors.ErrTransientIO)
}

func TestBuildNotifications_SkipsSelfMention(t *testing.T) {
	author := primitive.NewObjectID()
	postID := primitive.NewObjectID()
	sink := &spySink{}
	p := NewProcessor(&spyDirectory{}, sink)

	created, err := p.BuildNotifications(context.Background(), author, []ResolvedMention{
		{Handle: "me", RecipientID: author},
	}, postID, nil, "hi")
	require.NoError(t, err)
	require.Zero(t, created)
	require.Empty(t, sink.created)
}

func TestBuildNotifications_Idempotent(t *testing.T) {
	author := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	postID := primitive.NewObjectID()
	sink := &spySink{}
	p := NewProcessor(&spyDirectory{}, sink)

	resolved := []ResolvedMention{{Handle: "bob", RecipientID: bob}}

	created, err := p.BuildNotifications(context.Background(), author, resolved, postID, nil, "hi")
	require.NoError(t, err)
	require.Equal(t, 1, created)

	// Re-processing the same mention set (an edit) creates nothing new.
	created, err = p.BuildNotifications(context.Background(), author, resolved, postID, nil, "hi")
	require.NoError(t, err)
	require.Zero(t, created)
	require.Len(t, sink.created, 1)
}

func TestProcess_EndToEnd(t *testing.T) {
	author := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	postID := primitive.NewObjectID()
	dir := &spyDirectory{users: map[string]primitive.ObjectID{"bob": bob}}
	sink := &spySink{}
	p := NewProcessor(dir, sink)

	text := "Thanks " + markup("bob") + " and " + markup("BOB") + " for the help"
	created := p.Process(context.Background(), author, text, postID, nil)

	require.Equal(t, 1, created)
	require.Len(t, sink.created, 1)
	require.Equal(t, bob, sink.created[0].RecipientID)
	require.Equal(t, KindMentionInPost, sink.created[0].Type)
	require.Equal(t, postID, sink.created[0].PostID)
}

func TestProcess_DirectoryOutageIsSilent(t *testing.T) {
	p := NewProcessor(&spyDirectory{failing: true}, &spySink{})

	created := p.Process(context.Background(), primitive.NewObjectID(), markup("bob"), primitive.NewObjectID(), nil)
	require.Zero(t, created)
}
