package comment

import (
	"context"
	"database/sql"
	"errors"
	"mutsamarket/domain"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/events"
	"mutsamarket/pkg/httperror"
	"mutsamarket/pkg/pagination"
	"time"
)

// PageSize is the fixed number of comments per page.
const PageSize = 25

// ReplyOutcome reports which path of AddReply applied.
type ReplyOutcome int

const (
	ReplyRejected ReplyOutcome = iota
	ReplySetByAuthor
	ReplyOverwrittenByOwner
)

type Options struct {
	Service   string
	Publisher events.Publisher
}

type Store struct {
	repository Repository
	users      UserResolver
	publisher  events.Publisher
	service    string
}

func NewStore(repository Repository, users UserResolver, opts Options) *Store {
	return &Store{
		repository: repository,
		users:      users,
		publisher:  opts.Publisher,
		service:    opts.Service,
	}
}

// Enroll attaches a new comment by principal to an existing item.
func (s *Store) Enroll(ctx context.Context, dto Payload, itemID int64, principal auth.Principal) (View, error) {
	if _, err := s.repository.GetItem(ctx, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return View{}, httperror.NotFound("comment.create.item_not_found", "Item not found", nil)
		}
		return View{}, httperror.InternalServerError("comment.create.item_lookup_failed", "Failed to retrieve item", err)
	}

	author, err := s.users.Resolve(ctx, principal)
	if err != nil {
		return View{}, err
	}

	c := domain.Comment{
		ItemID:   itemID,
		UserID:   author.ID,
		Content:  dto.Content,
		Username: author.Username,
	}
	if err := s.repository.CreateComment(ctx, &c); err != nil {
		return View{}, httperror.InternalServerError("comment.create.create_failed", "An error occurred while creating the comment", err)
	}

	events.Emit(ctx, s.publisher, s.service, events.CommentCreatedEvent, events.CommentCreatedPayload{
		ID:        c.ID,
		ItemID:    itemID,
		Author:    author.Username,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	})

	return ViewOf(c), nil
}

func (s *Store) ReadPage(ctx context.Context, page int, itemID int64) (pagination.Page[View], error) {
	req := pagination.Of(page, PageSize)

	comments, err := s.repository.GetItemComments(ctx, itemID, req.Limit(), req.Offset())
	if err != nil {
		return pagination.Page[View]{}, httperror.InternalServerError("comment.index.failed", "Failed to retrieve comments", err)
	}

	total, err := s.repository.CountItemComments(ctx, itemID)
	if err != nil {
		return pagination.Page[View]{}, httperror.InternalServerError("comment.index.count_failed", "Failed to count comments", err)
	}

	return pagination.Map(pagination.New(comments, req, total), ViewOf), nil
}

// Update replaces the content of a comment written by principal.
func (s *Store) Update(ctx context.Context, itemID, commentID int64, dto Payload, principal auth.Principal) error {
	ok, err := s.repository.UpdateUserComment(ctx, commentID, itemID, principal.Name(), dto.Content)
	if err != nil {
		return httperror.InternalServerError("comment.update.update_failed", "An error occurred while updating the comment", err)
	}
	if !ok {
		return httperror.NotFound("comment.update.not_found", "Comment not found", nil)
	}

	events.Emit(ctx, s.publisher, s.service, events.CommentUpdatedEvent, events.CommentUpdatedPayload{
		ID:        commentID,
		ItemID:    itemID,
		Content:   dto.Content,
		UpdatedAt: time.Now().UTC(),
	})

	return nil
}

// AddReply sets the reply of a comment. The first reply belongs to the
// comment's author; once a reply exists only the item's owner may replace it.
func (s *Store) AddReply(ctx context.Context, itemID, commentID int64, dto ReplyPayload, principal auth.Principal) (ReplyOutcome, error) {
	current, err := s.repository.GetItemComment(ctx, itemID, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReplyRejected, httperror.NotFound("comment.reply.not_found", "Comment not found", nil)
		}
		return ReplyRejected, httperror.InternalServerError("comment.reply.lookup_failed", "Failed to retrieve comment", err)
	}

	outcome := ReplyOverwrittenByOwner
	apply := s.repository.SetOwnerReply
	if !current.HasReply() {
		outcome = ReplySetByAuthor
		apply = s.repository.SetAuthorReply
	}

	ok, err := apply(ctx, commentID, itemID, principal.Name(), dto.Reply)
	if err != nil {
		return ReplyRejected, httperror.InternalServerError("comment.reply.update_failed", "Failed to save reply", err)
	}
	if !ok {
		return ReplyRejected, nil
	}

	events.Emit(ctx, s.publisher, s.service, events.CommentRepliedEvent, events.CommentRepliedPayload{
		ID:        commentID,
		ItemID:    itemID,
		RepliedBy: principal.Name(),
		Outcome:   int(outcome),
		Reply:     dto.Reply,
		RepliedAt: time.Now().UTC(),
	})

	return outcome, nil
}

// Delete removes a comment written by principal and reports whether one was removed.
func (s *Store) Delete(ctx context.Context, itemID, commentID int64, principal auth.Principal) (bool, error) {
	deleted, err := s.repository.DeleteUserComment(ctx, commentID, itemID, principal.Name())
	if err != nil {
		return false, httperror.InternalServerError("comment.destroy.failed", "Failed to delete comment", err)
	}

	if deleted {
		events.Emit(ctx, s.publisher, s.service, events.CommentDeletedEvent, events.CommentDeletedPayload{
			ID:        commentID,
			ItemID:    itemID,
			Author:    principal.Name(),
			DeletedAt: time.Now().UTC(),
		})
	}

	return deleted, nil
}
