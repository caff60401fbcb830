package mentions

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

// Notification type constants for mention fan-out.
const (
	KindMentionInPost    = "mention_in_post"
	KindMentionInComment = "mention_in_comment"
)

// ResolvedMention is a handle that mapped to an existing account at
// resolution time. Resolution is a snapshot: later handle changes or account
// deletions do not retroactively invalidate notifications already created.
type ResolvedMention struct {
	Handle      string
	RecipientID primitive.ObjectID
}

// Directory is the identity lookup collaborator. Matching is a
// case-insensitive exact match on the lowercased handle.
type Directory interface {
	FindUsersByHandles(ctx context.Context, handles []string) (map[string]primitive.ObjectID, error)
}

// Notice is the notification record the processor emits.
type Notice struct {
	RecipientID primitive.ObjectID
	SenderID    primitive.ObjectID
	Type        string
	PostID      primitive.ObjectID
	CommentID   *primitive.ObjectID
	Preview     string
}

// Sink is the notification store collaborator. FindExisting is the
// idempotence probe: re-processing an edited post must not re-notify a
// recipient who already holds a live notification for the same
// (recipient, sender, type, post) tuple.
type Sink interface {
	CreateNotification(ctx context.Context, n Notice) error
	FindExistingNotification(ctx context.Context, recipientID, senderID primitive.ObjectID, kind string, postID primitive.ObjectID) (bool, error)
}

type Processor struct {
	dir  Directory
	sink Sink
}

func NewProcessor(dir Directory, sink Sink) *Processor {
	return &Processor{dir: dir, sink: sink}
}

// ResolveHandles maps extracted handles to recipient identities with a single
// batched directory lookup. Handles with no matching account are silently
// dropped. An empty input short-circuits without I/O. A directory failure is
// reported as ErrTransientIO; callers on the post-save path should degrade to
// "no mentions resolved" rather than failing the save.
func (p *Processor) ResolveHandles(ctx context.Context, handles []string) ([]ResolvedMention, error) {
	if len(handles) == 0 {
		return nil, nil
	}

	idsByHandle, err := p.dir.FindUsersByHandles(ctx, handles)
	if err != nil {
		return nil, fmt.Errorf("%w: directory lookup: %v", apperrors.ErrTransientIO, err)
	}

	var resolved []ResolvedMention
	for _, handle := range handles {
		if id, ok := idsByHandle[handle]; ok {
			resolved = append(resolved, ResolvedMention{Handle: handle, RecipientID: id})
		}
	}

	return resolved, nil
}

// BuildNotifications emits one notification per resolved recipient, excluding
// the author (self-mentions never notify). The sink is probed first so that
// edits retaining the same mention do not produce duplicates. Returns the
// number of notifications actually created.
func (p *Processor) BuildNotifications(ctx context.Context, authorID primitive.ObjectID, resolved []ResolvedMention, postID primitive.ObjectID, commentID *primitive.ObjectID, preview string) (int, error) {
	kind := KindMentionInPost
	if commentID != nil {
		kind = KindMentionInComment
	}

	created := 0
	for _, m := range resolved {
		if m.RecipientID == authorID {
			continue
		}

		exists, err := p.sink.FindExistingNotification(ctx, m.RecipientID, authorID, kind, postID)
		if err != nil {
			return created, fmt.Errorf("%w: notification probe: %v", apperrors.ErrTransientIO, err)
		}
		if exists {
			continue
		}

		notice := Notice{
			RecipientID: m.RecipientID,
			SenderID:    authorID,
			Type:        kind,
			PostID:      postID,
			CommentID:   commentID,
			Preview:     preview,
		}
		if err := p.sink.CreateNotification(ctx, notice); err != nil {
			return created, fmt.Errorf("%w: notification create: %v", apperrors.ErrTransientIO, err)
		}
		created++
	}

	return created, nil
}

// Process runs the whole pipeline for freshly stored text: extract, resolve,
// fan out. Directory or sink failures are swallowed here by design; mentions
// are a best-effort enhancement and must never block a post or comment from
// saving. The created count is returned for logging.
func (p *Processor) Process(ctx context.Context, authorID primitive.ObjectID, text string, postID primitive.ObjectID, commentID *primitive.ObjectID) int {
	handles := ExtractHandles(text)
	resolved, err := p.ResolveHandles(ctx, handles)
	if err != nil {
		return 0
	}

	created, _ := p.BuildNotifications(ctx, authorID, resolved, postID, commentID, previewOf(text))
	return created
}

// previewOf truncates rendered text for the notification preview line.
func previewOf(text string) string {
	display := RenderDisplay(text)
	if len(display) <= 100 {
		return display
	}
	return display[:97] + "..."
}
