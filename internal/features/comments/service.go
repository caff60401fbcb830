package comments

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devlink-social/devlink/internal/features/auth"
	"github.com/devlink-social/devlink/internal/features/notifications"
	"github.com/devlink-social/devlink/internal/features/posts"
	"github.com/devlink-social/devlink/internal/mentions"
	"github.com/devlink-social/devlink/internal/threads"
	apperrors "github.com/devlink-social/devlink/pkg/errors"
)

// Service owns comment writes: persistence, post counters, mention fan-out,
// and the owner notification. Both the REST handlers and the thread store
// adapter go through it so the side effects fire exactly once.
type Service struct {
	repo                *Repository
	postsRepo           *posts.Repository
	authRepo            *auth.Repository
	notificationService *notifications.Service
	mentionProcessor    *mentions.Processor
}

func NewService(repo *Repository, postsRepo *posts.Repository, authRepo *auth.Repository, notificationService *notifications.Service) *Service {
	return &Service{
		repo:                repo,
		postsRepo:           postsRepo,
		authRepo:            authRepo,
		notificationService: notificationService,
		mentionProcessor:    mentions.NewProcessor(authRepo, notificationService),
	}
}

// Create persists a comment (content arrives in display form and is stored
// as markup) and fans out notifications. Notification failures never fail
// the save.
func (s *Service) Create(ctx context.Context, postID primitive.ObjectID, parentID *primitive.ObjectID, authorID primitive.ObjectID, content string) (*Comment, error) {
	post, err := s.postsRepo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		PostID:   postID,
		UserID:   authorID,
		ParentID: parentID,
		Content:  mentions.StoreMarkup(content),
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.postsRepo.IncrementCommentCount(ctx, postID, 1); err != nil {
		log.Printf("Failed to bump comment count on %s: %v", postID.Hex(), err)
	}

	mentioned := s.fanOutMentions(ctx, authorID, comment)

	if err := s.notificationService.NotifyComment(ctx, post.UserID, authorID, postID, comment.ID, mentions.RenderDisplay(comment.Content), mentioned); err != nil {
		log.Printf("Failed to notify post owner of comment %s: %v", comment.ID.Hex(), err)
	}

	return comment, nil
}

// Edit replaces a comment's content. Only the author may edit. Mentions are
// re-processed; previously notified handles stay silent.
func (s *Service) Edit(ctx context.Context, commentID, actorID primitive.ObjectID, content string) (*Comment, error) {
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, apperrors.ErrUnauthorized
	}

	comment.Content = mentions.StoreMarkup(content)
	comment.IsEdited = true

	if err := s.repo.UpdateComment(ctx, commentID, bson.M{
		"content":  comment.Content,
		"isEdited": true,
	}); err != nil {
		return nil, err
	}

	s.fanOutMentions(ctx, actorID, comment)

	return comment, nil
}

// Delete soft deletes a comment. The author or the post owner may delete.
func (s *Service) Delete(ctx context.Context, commentID, actorID primitive.ObjectID) error {
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != actorID {
		post, err := s.postsRepo.GetPostByID(ctx, comment.PostID)
		if err != nil || post.UserID != actorID {
			return apperrors.ErrUnauthorized
		}
	}

	if err := s.repo.SoftDeleteComment(ctx, comment); err != nil {
		return err
	}

	if err := s.postsRepo.IncrementCommentCount(ctx, comment.PostID, -1); err != nil {
		log.Printf("Failed to drop comment count on %s: %v", comment.PostID.Hex(), err)
	}

	return nil
}

// fanOutMentions runs the mention pipeline and returns the recipient ids so
// the comment notification can skip anyone already pinged
func (s *Service) fanOutMentions(ctx context.Context, authorID primitive.ObjectID, comment *Comment) []primitive.ObjectID {
	handles := mentions.ExtractHandles(comment.Content)
	if len(handles) == 0 {
		return nil
	}

	resolved, err := s.mentionProcessor.ResolveHandles(ctx, handles)
	if err != nil {
		// Directory outage: the comment still saves, mentions degrade to text
		log.Printf("Mention resolution failed for comment %s: %v", comment.ID.Hex(), err)
		return nil
	}

	preview := mentions.RenderDisplay(comment.Content)
	if _, err := s.mentionProcessor.BuildNotifications(ctx, authorID, resolved, comment.PostID, &comment.ID, preview); err != nil {
		log.Printf("Mention fan-out failed for comment %s: %v", comment.ID.Hex(), err)
	}

	ids := make([]primitive.ObjectID, len(resolved))
	for i, m := range resolved {
		ids[i] = m.RecipientID
	}
	return ids
}

// hydrateAuthors maps comments onto thread nodes with author identities
// resolved in one batched query. Missing accounts become tombstones.
func (s *Service) hydrateAuthors(ctx context.Context, comms []Comment) ([]*threads.Node, error) {
	if len(comms) == 0 {
		return nil, nil
	}

	authorIDs := make([]primitive.ObjectID, 0)
	seen := make(map[primitive.ObjectID]bool)
	for _, c := range comms {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			authorIDs = append(authorIDs, c.UserID)
		}
	}

	users, err := s.authRepo.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	userMap := make(map[primitive.ObjectID]*auth.User)
	for i := range users {
		userMap[users[i].ID] = &users[i]
	}

	nodes := make([]*threads.Node, len(comms))
	for i, c := range comms {
		author := threads.Tombstone(c.UserID)
		if u, ok := userMap[c.UserID]; ok {
			author = threads.Author{
				ID:          u.ID,
				Handle:      u.Username,
				DisplayName: u.DisplayName,
				AvatarURL:   u.AvatarURL,
			}
		}

		nodes[i] = &threads.Node{
			ID:         c.ID,
			ParentID:   c.ParentID,
			Author:     author,
			Text:       mentions.RenderDisplay(c.Content),
			CreatedAt:  c.CreatedAt,
			Depth:      c.Depth,
			ReplyCount: c.ReplyCount,
		}
	}

	return nodes, nil
}
