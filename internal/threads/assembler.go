// Package threads reconstructs a navigable comment tree from DevLink's flat
// comment collection. The backend returns one level at a time (top-level
// comments, or one comment's direct replies) plus a denormalized reply count
// per node; the Assembler merges those pages into an in-memory tree and
// applies local mutations optimistically, rolling back on failure.
package threads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

// MaxDepth is the deepest permitted reply nesting level. A node at MaxDepth
// cannot be replied to; the check runs locally before any network call.
const MaxDepth = 5

// DefaultPageSize matches the comment listing endpoints.
const DefaultPageSize = 20

// Author carries the display identity attached to a node. Deleted marks a
// tombstone: the comment text survives, the identity fields are blanked.
type Author struct {
	ID          primitive.ObjectID
	Handle      string
	DisplayName string
	AvatarURL   string
	Deleted     bool
}

// Tombstone builds the placeholder author for an account that no longer
// exists.
func Tombstone(id primitive.ObjectID) Author {
	return Author{ID: id, Deleted: true}
}

// Node is one comment or reply in the assembled tree. Children stays empty
// until the node is expanded.
type Node struct {
	ID         primitive.ObjectID
	ParentID   *primitive.ObjectID
	Author     Author
	Text       string
	CreatedAt  time.Time
	Depth      int
	ReplyCount int
	Children   []*Node
	Expanded   bool

	fetched     bool
	provisional bool
}

// CanReply reports whether the reply affordance should be offered for this
// node.
func (n *Node) CanReply() bool {
	return n.Depth < MaxDepth
}

// Page is one page of top-level comments.
type Page struct {
	Items      []*Node
	TotalCount int64
}

// Store is the comment store collaborator. Listings are ordered newest-first
// by creation time; ties keep the store's return order. Authorization for
// update/delete is the store's responsibility; it surfaces ErrUnauthorized,
// which the assembler propagates without masking.
type Store interface {
	ListTopLevelComments(ctx context.Context, postID primitive.ObjectID, page, pageSize int) (*Page, error)
	ListReplies(ctx context.Context, commentID primitive.ObjectID) ([]*Node, error)
	CreateComment(ctx context.Context, postID primitive.ObjectID, parentID *primitive.ObjectID, authorID primitive.ObjectID, text string) (*Node, error)
	UpdateCommentText(ctx context.Context, commentID primitive.ObjectID, text string) error
	DeleteComment(ctx context.Context, commentID primitive.ObjectID) error
}

// Assembler holds the tree for one post while its comment section is open.
// Discard it (Close) when the viewer navigates away; in-flight results for a
// closed assembler are returned to their caller but never applied.
type Assembler struct {
	store    Store
	postID   primitive.ObjectID
	pageSize int

	mu       sync.Mutex
	topLevel []*Node
	total    int64
	index    map[primitive.ObjectID]*Node
	closed   bool

	flight singleflight.Group
}

func NewAssembler(store Store, postID primitive.ObjectID, pageSize int) *Assembler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Assembler{
		store:    store,
		postID:   postID,
		pageSize: pageSize,
		index:    make(map[primitive.ObjectID]*Node),
	}
}

// LoadTopLevel fetches one page of top-level comments, newest first. Page 1
// replaces the current sequence, later pages append.
func (a *Assembler) LoadTopLevel(ctx context.Context, page int) ([]*Node, error) {
	if page < 1 {
		page = 1
	}

	pg, err := a.store.ListTopLevelComments(ctx, a.postID, page, a.pageSize)
	if err != nil {
		return nil, classify(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return pg.Items, nil
	}

	if page == 1 {
		a.topLevel = nil
		a.index = make(map[primitive.ObjectID]*Node)
	}
	for _, n := range pg.Items {
		a.topLevel = append(a.topLevel, n)
		a.index[n.ID] = n
	}
	a.total = pg.TotalCount

	return pg.Items, nil
}

// Expand fetches the direct replies of nodeID and attaches them. A node with
// no replies expands without a network call. Concurrent expands of the same
// unexpanded node collapse into a single fetch; every caller observes the
// same result.
func (a *Assembler) Expand(ctx context.Context, nodeID primitive.ObjectID) ([]*Node, error) {
	a.mu.Lock()
	node, ok := a.index[nodeID]
	if !ok {
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: comment %s", apperrors.ErrNotFound, nodeID.Hex())
	}
	if node.fetched {
		node.Expanded = true
		children := node.Children
		a.mu.Unlock()
		return children, nil
	}
	if node.ReplyCount == 0 {
		node.fetched = true
		node.Expanded = true
		a.mu.Unlock()
		return nil, nil
	}
	a.mu.Unlock()

	v, err, _ := a.flight.Do(nodeID.Hex(), func() (interface{}, error) {
		return a.store.ListReplies(ctx, nodeID)
	})
	if err != nil {
		return nil, classify(err)
	}
	replies := v.([]*Node)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return replies, nil
	}
	node, ok = a.index[nodeID]
	if !ok {
		// Parent was deleted while the fetch was in flight.
		return replies, nil
	}
	if !node.fetched {
		node.Children = replies
		node.fetched = true
		parentID := node.ID
		for _, child := range replies {
			child.ParentID = &parentID
			child.Depth = node.Depth + 1
			a.index[child.ID] = child
		}
	}
	node.Expanded = true
	return node.Children, nil
}

// AddNode inserts a comment optimistically: the provisional node is visible
// immediately, then its identity is replaced with server-assigned values once
// the create confirms. On failure the insertion is rolled back in one step
// and the error surfaced. A reply that would exceed MaxDepth is rejected
// before any network call.
func (a *Assembler) AddNode(ctx context.Context, parentID *primitive.ObjectID, text string, author Author) (*Node, error) {
	a.mu.Lock()
	depth := 0
	var parent *Node
	if parentID != nil {
		var ok bool
		parent, ok = a.index[*parentID]
		if !ok {
			a.mu.Unlock()
			return nil, fmt.Errorf("%w: parent comment %s", apperrors.ErrNotFound, parentID.Hex())
		}
		depth = parent.Depth + 1
		if depth > MaxDepth {
			a.mu.Unlock()
			return nil, apperrors.ErrDepthExceeded
		}
	}

	provisional := &Node{
		ID:          primitive.NewObjectID(),
		ParentID:    parentID,
		Author:      author,
		Text:        text,
		CreatedAt:   time.Now(),
		Depth:       depth,
		fetched:     true,
		provisional: true,
	}
	if parent == nil {
		a.topLevel = append([]*Node{provisional}, a.topLevel...)
		a.total++
	} else {
		parent.Children = append([]*Node{provisional}, parent.Children...)
		parent.ReplyCount++
	}
	a.index[provisional.ID] = provisional
	a.mu.Unlock()

	created, err := a.store.CreateComment(ctx, a.postID, parentID, author.ID, text)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.removeLocked(provisional.ID)
		return nil, classify(err)
	}
	if a.closed {
		return created, nil
	}

	delete(a.index, provisional.ID)
	provisional.ID = created.ID
	provisional.CreatedAt = created.CreatedAt
	provisional.provisional = false
	a.index[provisional.ID] = provisional

	return provisional, nil
}

// DeleteNode removes a node from wherever it resides and reconciles its
// parent's reply count (floored at zero). The node's own subtree is simply
// dropped from view; the backend owns cascade policy for descendants.
func (a *Assembler) DeleteNode(ctx context.Context, nodeID primitive.ObjectID) error {
	a.mu.Lock()
	node, ok := a.index[nodeID]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("%w: comment %s", apperrors.ErrNotFound, nodeID.Hex())
	}

	prevCount := 0
	if node.ParentID != nil {
		if p, ok := a.index[*node.ParentID]; ok {
			prevCount = p.ReplyCount
		}
	}
	parent, pos := a.removeLocked(nodeID)
	a.mu.Unlock()

	err := a.store.DeleteComment(ctx, nodeID)
	if err == nil {
		return nil
	}

	// Restore the pre-mutation snapshot in one step.
	a.mu.Lock()
	defer a.mu.Unlock()
	if parent == nil {
		a.topLevel = insertAt(a.topLevel, pos, node)
		a.total++
	} else {
		parent.Children = insertAt(parent.Children, pos, node)
		parent.ReplyCount = prevCount
	}
	a.reindexSubtree(node)
	return classify(err)
}

// EditNode replaces a node's text in place, preserving position, depth, and
// children. The old text is restored if the store rejects the update.
func (a *Assembler) EditNode(ctx context.Context, nodeID primitive.ObjectID, newText string) error {
	a.mu.Lock()
	node, ok := a.index[nodeID]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("%w: comment %s", apperrors.ErrNotFound, nodeID.Hex())
	}
	oldText := node.Text
	node.Text = newText
	a.mu.Unlock()

	err := a.store.UpdateCommentText(ctx, nodeID, newText)
	if err == nil {
		return nil
	}

	a.mu.Lock()
	node.Text = oldText
	a.mu.Unlock()
	return classify(err)
}

// Close marks the assembler as discarded. In-flight results arriving after
// Close are handed to their callers but no longer applied to the tree.
func (a *Assembler) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
}

// TopLevel returns the current top-level sequence.
func (a *Assembler) TopLevel() []*Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Node, len(a.topLevel))
	copy(out, a.topLevel)
	return out
}

// Total returns the server-reported top-level comment count, adjusted by
// local optimistic mutations.
func (a *Assembler) Total() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// Node looks up a node anywhere in the tree.
func (a *Assembler) Node(id primitive.ObjectID) (*Node, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.index[id]
	return n, ok
}

// removeLocked detaches the node with the given id, decrements its parent's
// reply count (floored at zero), and unindexes the node's subtree. Returns
// the former parent (nil for top-level) and the position the node held.
func (a *Assembler) removeLocked(id primitive.ObjectID) (*Node, int) {
	node, ok := a.index[id]
	if !ok {
		return nil, -1
	}

	if node.ParentID == nil {
		for i, n := range a.topLevel {
			if n.ID == id {
				a.topLevel = append(a.topLevel[:i:i], a.topLevel[i+1:]...)
				if a.total > 0 {
					a.total--
				}
				a.unindexSubtree(node)
				return nil, i
			}
		}
		a.unindexSubtree(node)
		return nil, -1
	}

	parent, ok := a.index[*node.ParentID]
	if !ok {
		delete(a.index, id)
		return nil, -1
	}
	for i, n := range parent.Children {
		if n.ID == id {
			parent.Children = append(parent.Children[:i:i], parent.Children[i+1:]...)
			if parent.ReplyCount > 0 {
				parent.ReplyCount--
			}
			a.unindexSubtree(node)
			return parent, i
		}
	}
	delete(a.index, id)
	return parent, -1
}

func (a *Assembler) unindexSubtree(n *Node) {
	delete(a.index, n.ID)
	for _, c := range n.Children {
		a.unindexSubtree(c)
	}
}

func (a *Assembler) reindexSubtree(n *Node) {
	a.index[n.ID] = n
	for _, c := range n.Children {
		a.reindexSubtree(c)
	}
}

func insertAt(s []*Node, i int, n *Node) []*Node {
	if i < 0 || i > len(s) {
		return append(s, n)
	}
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = n
	return s
}

// classify converts store failures into the error kinds callers handle.
// Known kinds pass through unmasked; anything else is a transient I/O
// failure, retryable by the caller.
func classify(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrDepthExceeded),
		errors.Is(err, apperrors.ErrTransientIO):
		return err
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrTransientIO, err)
	}
}
