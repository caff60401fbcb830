package comments

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/threads"
)

// ThreadStore adapts the comment service to the thread assembler's store
// contract for one acting user. Authorization therefore lives here, not in
// the assembler.
type ThreadStore struct {
	service *Service
	actorID primitive.ObjectID
}

var _ threads.Store = (*ThreadStore)(nil)

// NewThreadStore builds a store view bound to the acting user
func NewThreadStore(service *Service, actorID primitive.ObjectID) *ThreadStore {
	return &ThreadStore{service: service, actorID: actorID}
}

func (ts *ThreadStore) ListTopLevelComments(ctx context.Context, postID primitive.ObjectID, page, pageSize int) (*threads.Page, error) {
	comms, total, err := ts.service.repo.ListTopLevel(ctx, postID, page, pageSize)
	if err != nil {
		return nil, err
	}

	nodes, err := ts.service.hydrateAuthors(ctx, comms)
	if err != nil {
		return nil, err
	}

	return &threads.Page{Items: nodes, TotalCount: total}, nil
}

func (ts *ThreadStore) ListReplies(ctx context.Context, commentID primitive.ObjectID) ([]*threads.Node, error) {
	comms, err := ts.service.repo.ListReplies(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return ts.service.hydrateAuthors(ctx, comms)
}

func (ts *ThreadStore) CreateComment(ctx context.Context, postID primitive.ObjectID, parentID *primitive.ObjectID, authorID primitive.ObjectID, text string) (*threads.Node, error) {
	comment, err := ts.service.Create(ctx, postID, parentID, authorID, text)
	if err != nil {
		return nil, err
	}

	nodes, err := ts.service.hydrateAuthors(ctx, []Comment{*comment})
	if err != nil || len(nodes) == 0 {
		// The write succeeded; return an unhydrated node rather than failing
		return &threads.Node{
			ID:         comment.ID,
			ParentID:   comment.ParentID,
			Author:     threads.Tombstone(authorID),
			Text:       text,
			CreatedAt:  comment.CreatedAt,
			Depth:      comment.Depth,
			ReplyCount: 0,
		}, nil
	}
	return nodes[0], nil
}

func (ts *ThreadStore) UpdateCommentText(ctx context.Context, commentID primitive.ObjectID, text string) error {
	_, err := ts.service.Edit(ctx, commentID, ts.actorID, text)
	return err
}

func (ts *ThreadStore) DeleteComment(ctx context.Context, commentID primitive.ObjectID) error {
	return ts.service.Delete(ctx, commentID, ts.actorID)
}
