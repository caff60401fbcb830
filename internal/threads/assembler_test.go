package threads

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

// fakeStore is an in-memory Store with switchable failure modes and a gate
// for exercising the concurrent-expand path.
type fakeStore struct {
	mu           sync.Mutex
	topLevel     []*Node
	replies      map[primitive.ObjectID][]*Node
	replyCalls   map[primitive.ObjectID]int
	createErr    error
	updateErr    error
	deleteErr    error
	listGate     chan struct{}
	createdDepth map[primitive.ObjectID]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		replies:      make(map[primitive.ObjectID][]*Node),
		replyCalls:   make(map[primitive.ObjectID]int),
		createdDepth: make(map[primitive.ObjectID]int),
	}
}

func (s *fakeStore) ListTopLevelComments(_ context.Context, _ primitive.ObjectID, page, pageSize int) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := (page - 1) * pageSize
	if start >= len(s.topLevel) {
		return &Page{TotalCount: int64(len(s.topLevel))}, nil
	}
	end := start + pageSize
	if end > len(s.topLevel) {
		end = len(s.topLevel)
	}
	return &Page{Items: s.topLevel[start:end], TotalCount: int64(len(s.topLevel))}, nil
}

func (s *fakeStore) ListReplies(_ context.Context, commentID primitive.ObjectID) ([]*Node, error) {
	s.mu.Lock()
	s.replyCalls[commentID]++
	gate := s.listGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replies[commentID], nil
}

func (s *fakeStore) CreateComment(_ context.Context, _ primitive.ObjectID, parentID *primitive.ObjectID, _ primitive.ObjectID, _ string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	n := &Node{ID: primitive.NewObjectID(), ParentID: parentID, CreatedAt: time.Now()}
	return n, nil
}

func (s *fakeStore) UpdateCommentText(_ context.Context, _ primitive.ObjectID, _ string) error {
	return s.updateErr
}

func (s *fakeStore) DeleteComment(_ context.Context, _ primitive.ObjectID) error {
	return s.deleteErr
}

func node(depth, replyCount int) *Node {
	return &Node{
		ID:         primitive.NewObjectID(),
		Depth:      depth,
		ReplyCount: replyCount,
		CreatedAt:  time.Now(),
	}
}

func author() Author {
	return Author{ID: primitive.NewObjectID(), Handle: "alice", DisplayName: "Alice"}
}

func TestLoadTopLevelReplacesAndAppends(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 3; i++ {
		store.topLevel = append(store.topLevel, node(0, 0))
	}

	a := NewAssembler(store, primitive.NewObjectID(), 2)

	first, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Len(t, a.TopLevel(), 2)
	require.EqualValues(t, 3, a.Total())

	second, err := a.LoadTopLevel(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Len(t, a.TopLevel(), 3)

	// Page 1 again replaces rather than duplicating.
	_, err = a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, a.TopLevel(), 2)
}

func TestExpandNoRepliesSkipsFetch(t *testing.T) {
	store := newFakeStore()
	leaf := node(0, 0)
	store.topLevel = []*Node{leaf}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)

	children, err := a.Expand(context.Background(), leaf.ID)
	require.NoError(t, err)
	require.Empty(t, children)
	require.Zero(t, store.replyCalls[leaf.ID])

	got, ok := a.Node(leaf.ID)
	require.True(t, ok)
	require.True(t, got.Expanded)
}

func TestExpandAttachesRepliesWithDepth(t *testing.T) {
	store := newFakeStore()
	parent := node(0, 2)
	store.topLevel = []*Node{parent}
	store.replies[parent.ID] = []*Node{node(0, 0), node(0, 0)}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)

	children, err := a.Expand(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	for _, c := range children {
		require.Equal(t, 1, c.Depth)
		require.Equal(t, parent.ID, *c.ParentID)
	}
	require.Equal(t, 1, store.replyCalls[parent.ID])

	// A second expand reuses the cached children.
	again, err := a.Expand(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Len(t, again, 2)
	require.Equal(t, 1, store.replyCalls[parent.ID])
}

func TestConcurrentExpandSingleFetch(t *testing.T) {
	store := newFakeStore()
	parent := node(0, 3)
	store.topLevel = []*Node{parent}
	store.replies[parent.ID] = []*Node{node(0, 0), node(0, 0), node(0, 0)}
	store.listGate = make(chan struct{})

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)

	type result struct {
		children []*Node
		err      error
	}
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			children, err := a.Expand(context.Background(), parent.ID)
			results <- result{children, err}
		}()
	}

	// Let both callers reach the fetch before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(store.listGate)

	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.Len(t, r.children, 3)
	}
	require.Equal(t, 1, store.replyCalls[parent.ID])
}

func TestAddNodeTopLevelPrepends(t *testing.T) {
	store := newFakeStore()
	store.topLevel = []*Node{node(0, 0)}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)

	added, err := a.AddNode(context.Background(), nil, "first!", author())
	require.NoError(t, err)

	top := a.TopLevel()
	require.Len(t, top, 2)
	require.Equal(t, added.ID, top[0].ID)
	require.Equal(t, 0, added.Depth)
	require.EqualValues(t, 2, a.Total())
}

func TestAddNodeReplyIncrementsParent(t *testing.T) {
	store := newFakeStore()
	parent := node(0, 0)
	store.topLevel = []*Node{parent}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)

	added, err := a.AddNode(context.Background(), &parent.ID, "reply", author())
	require.NoError(t, err)
	require.Equal(t, 1, added.Depth)

	got, _ := a.Node(parent.ID)
	require.Equal(t, 1, got.ReplyCount)
	require.Len(t, got.Children, 1)
	require.Equal(t, added.ID, got.Children[0].ID)
}

func TestAddNodeDepthCap(t *testing.T) {
	store := newFakeStore()
	root := node(0, 0)
	store.topLevel = []*Node{root}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)

	// Build a chain down to the cap.
	parentID := root.ID
	for i := 1; i <= MaxDepth; i++ {
		added, err := a.AddNode(context.Background(), &parentID, "down", author())
		require.NoError(t, err)
		require.Equal(t, i, added.Depth)
		parentID = added.ID
	}

	capped, _ := a.Node(parentID)
	require.False(t, capped.CanReply())

	_, err = a.AddNode(context.Background(), &parentID, "too deep", author())
	require.ErrorIs(t, err, apperrors.ErrDepthExceeded)

	// Rejected locally: no optimistic insert happened.
	got, _ := a.Node(parentID)
	require.Zero(t, got.ReplyCount)
	require.Empty(t, got.Children)
}

func TestAddNodeRollbackOnFailure(t *testing.T) {
	store := newFakeStore()
	parent := node(0, 0)
	store.topLevel = []*Node{parent}
	store.createErr = errors.New("network is down")

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)

	_, err = a.AddNode(context.Background(), &parent.ID, "offline reply", author())
	require.ErrorIs(t, err, apperrors.ErrTransientIO)

	got, _ := a.Node(parent.ID)
	require.Zero(t, got.ReplyCount)
	require.Empty(t, got.Children)
}

func TestDeleteNodeDecrementsParentFloored(t *testing.T) {
	store := newFakeStore()
	parent := node(0, 1)
	store.topLevel = []*Node{parent}
	child := node(0, 0)
	store.replies[parent.ID] = []*Node{child}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)
	_, err = a.Expand(context.Background(), parent.ID)
	require.NoError(t, err)

	require.NoError(t, a.DeleteNode(context.Background(), child.ID))

	got, _ := a.Node(parent.ID)
	require.Zero(t, got.ReplyCount)
	require.Empty(t, got.Children)

	_, ok := a.Node(child.ID)
	require.False(t, ok)
}

func TestDeleteNodeCountNeverNegative(t *testing.T) {
	store := newFakeStore()
	// A stale denormalized count: the parent claims one reply but the
	// listing returns two.
	parent := node(0, 1)
	store.topLevel = []*Node{parent}
	first, second := node(0, 0), node(0, 0)
	store.replies[parent.ID] = []*Node{first, second}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)
	_, err = a.Expand(context.Background(), parent.ID)
	require.NoError(t, err)

	require.NoError(t, a.DeleteNode(context.Background(), first.ID))
	require.NoError(t, a.DeleteNode(context.Background(), second.ID))

	got, _ := a.Node(parent.ID)
	require.Zero(t, got.ReplyCount)
}

func TestDeleteNodeRollbackOnFailure(t *testing.T) {
	store := newFakeStore()
	parent := node(0, 1)
	store.topLevel = []*Node{parent}
	child := node(0, 0)
	store.replies[parent.ID] = []*Node{child}
	store.deleteErr = errors.New("timeout")

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)
	_, err = a.Expand(context.Background(), parent.ID)
	require.NoError(t, err)

	err = a.DeleteNode(context.Background(), child.ID)
	require.ErrorIs(t, err, apperrors.ErrTransientIO)

	// No partial revert: node is back in place and the count is restored.
	got, _ := a.Node(parent.ID)
	require.Equal(t, 1, got.ReplyCount)
	require.Len(t, got.Children, 1)
	require.Equal(t, child.ID, got.Children[0].ID)
}

func TestEditNodeInPlaceAndRollback(t *testing.T) {
	store := newFakeStore()
	target := node(0, 0)
	store.topLevel = []*Node{target}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	_, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, a.EditNode(context.Background(), target.ID, "edited"))
	got, _ := a.Node(target.ID)
	require.Equal(t, "edited", got.Text)

	store.updateErr = apperrors.ErrUnauthorized
	err = a.EditNode(context.Background(), target.ID, "someone else's edit")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	got, _ = a.Node(target.ID)
	require.Equal(t, "edited", got.Text)
}

func TestCloseStopsApplyingResults(t *testing.T) {
	store := newFakeStore()
	store.topLevel = []*Node{node(0, 0)}

	a := NewAssembler(store, primitive.NewObjectID(), 0)
	a.Close()

	items, err := a.LoadTopLevel(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	// The result reached its caller but the discarded tree stayed empty.
	require.Empty(t, a.TopLevel())
}
