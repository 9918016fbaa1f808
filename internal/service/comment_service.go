package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/atendehq/helpdesk/internal/access"
	"github.com/atendehq/helpdesk/internal/cache"
	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/events"
	"github.com/atendehq/helpdesk/internal/repository"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// CommentService manages ticket comments. The internal flag is forced off
// for non-staff authors rather than rejected, so clients cannot leak a
// note by mislabeling it.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	logs       repository.TicketLogRepository
	tx         TxRunner
	dispatcher events.Dispatcher
	cache      *cache.TicketCache
	logger     *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(
	comments repository.CommentRepository,
	tickets repository.TicketRepository,
	logs repository.TicketLogRepository,
	tx TxRunner,
	dispatcher events.Dispatcher,
	ticketCache *cache.TicketCache,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		comments:   comments,
		tickets:    tickets,
		logs:       logs,
		tx:         tx,
		dispatcher: dispatcher,
		cache:      ticketCache,
		logger:     logger,
	}
}

// AddComment appends a comment to the ticket and bumps its updated_at.
func (s *CommentService) AddComment(ctx context.Context, actor *domain.User, ticketID, content string, internal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment must not be empty", nil)
	}
	if len(content) > domain.MaxCommentLength {
		return nil, apperrors.NewValidationError("comment too long", map[string]any{
			"max_length": domain.MaxCommentLength,
			"length":     len(content),
		})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanComment(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if internal && !access.CanCreateInternalComment(actor) {
		internal = false
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    content,
		IsInternal: internal,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionCommentAdded,
			Details:  commentLogDetails(content, comment.IsInternal, "Nota interna adicionada"),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	notify := s.counterpart(actor, ticket)
	s.publish(ctx, events.Event{
		Type:         events.EventCommentAdded,
		TicketID:     ticket.ID,
		ActorID:      actor.ID,
		NotifyUserID: notify,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
			Preview:    commentLogDetails(content, comment.IsInternal, ""),
		},
	})
	return comment, nil
}

// ListComments returns a ticket's comments visible to the actor. Internal
// notes are filtered out for non-staff viewers.
func (s *CommentService) ListComments(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, access.CanSeeInternalComments(actor))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// UpdateComment edits a comment's body. Authors and admins only; the
// internal flag never changes after creation.
func (s *CommentService) UpdateComment(ctx context.Context, actor *domain.User, commentID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment must not be empty", nil)
	}
	if len(content) > domain.MaxCommentLength {
		return nil, apperrors.NewValidationError("comment too long", map[string]any{
			"max_length": domain.MaxCommentLength,
			"length":     len(content),
		})
	}

	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditComment(actor, comment) {
		return nil, apperrors.NewForbidden("only the author or an admin may edit a comment")
	}

	comment.Content = content
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Update(ctx, comment); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: comment.TicketID,
			Action:   domain.ActionCommentUpdated,
			Details:  commentLogDetails(content, comment.IsInternal, "Nota interna atualizada"),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateAll(ctx)
	return comment, nil
}

// DeleteComment removes a comment. Authors and admins only.
func (s *CommentService) DeleteComment(ctx context.Context, actor *domain.User, commentID string) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !access.CanEditComment(actor, comment) {
		return apperrors.NewForbidden("only the author or an admin may delete a comment")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Delete(ctx, comment.ID); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: comment.TicketID,
			Action:   domain.ActionCommentDeleted,
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	s.cache.InvalidateAll(ctx)
	return nil
}

func (s *CommentService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *CommentService) loadComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// commentLogDetails renders the activity-log detail for a comment
// mutation. The log is visible to everyone with ticket access, so
// internal note content never goes in; only the neutral placeholder does.
func commentLogDetails(content string, internal bool, placeholder string) string {
	if internal {
		return placeholder
	}
	return preview(content, 120)
}

func (s *CommentService) counterpart(actor *domain.User, ticket *domain.Ticket) *string {
	if actor.ID != ticket.CreatedBy {
		creator := ticket.CreatedBy
		return &creator
	}
	if ticket.AssignedTo != nil {
		assignee := *ticket.AssignedTo
		return &assignee
	}
	return nil
}

func (s *CommentService) publish(ctx context.Context, event events.Event) {
	s.cache.InvalidateAll(ctx)
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
