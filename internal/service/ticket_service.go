package service

import (
	"context"
	"errors"
	"fmt"
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

// TxRunner executes a function inside a persistence transaction. The
// production implementation is persistence.TxManager; tests substitute a
// pass-through.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TicketService coordinates the ticket lifecycle: every mutation runs the
// access predicate first, applies the change together with its audit log
// entry in one transaction, then publishes the event that drives
// notifications and cache invalidation.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	logs        repository.TicketLogRepository
	users       repository.UserRepository
	tx          TxRunner
	dispatcher  events.Dispatcher
	cache       *cache.TicketCache
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	LogRepo        repository.TicketLogRepository
	UserRepo       repository.UserRepository
	Tx             TxRunner
	Dispatcher     events.Dispatcher
	Cache          *cache.TicketCache
	Logger         *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		logs:        deps.LogRepo,
		users:       deps.UserRepo,
		tx:          deps.Tx,
		dispatcher:  deps.Dispatcher,
		cache:       deps.Cache,
		logger:      deps.Logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// TicketUpdateInput carries optional field updates. Non-staff callers may
// only change priority and category on their own tickets.
type TicketUpdateInput struct {
	Title    *string
	Priority *domain.TicketPriority
	Category *domain.TicketCategory
}

// TicketListFilter describes listing filters; scoping by role happens
// inside the service.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketDetail aggregates a ticket with its visible comments and attachments.
type TicketDetail struct {
	Ticket      *domain.Ticket
	Comments    []domain.Comment
	Attachments []domain.Attachment
	Logs        []domain.TicketLog
}

// CreateTicket opens a ticket for the actor. Status is always OPEN and
// assignment empty regardless of input.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", map[string]any{
			"title":       title == "",
			"description": description == "",
		})
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(input.Priority)})
	}
	category := input.Category
	if category == "" || !category.Valid() {
		category = domain.CategoryOther
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    category,
		CreatedBy:   actor.ID,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionTicketCreated,
			Details:  fmt.Sprintf("Chamado aberto: %s", ticket.Title),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.afterMutation(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets visible to the actor. USER-role callers are
// scoped to tickets they created or are assigned to.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Categories: filter.Categories,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if !access.CanViewAllTickets(actor) {
		viewerID := actor.ID
		repoFilter.ViewerID = &viewerID
	}

	key := listCacheKey(actor, repoFilter)
	var cached []domain.Ticket
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Set(ctx, key, tickets)
	return tickets, nil
}

// GetTicket loads a ticket with comments and attachments visible to the
// actor. Internal comments are stripped for non-staff viewers.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*TicketDetail, error) {
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
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	logs, err := s.logs.ListByTicket(ctx, ticket.ID, 0, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &TicketDetail{
		Ticket:      ticket,
		Comments:    comments,
		Attachments: attachments,
		Logs:        logs,
	}, nil
}

// UpdateTicket applies field-limited edits. Owners may change priority and
// category of their own tickets; staff may also retitle.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	changes := []string{}
	if input.Title != nil {
		if !actor.Role.IsStaff() {
			return nil, apperrors.NewForbidden("only staff may retitle tickets")
		}
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title must not be empty", nil)
		}
		ticket.Title = title
		changes = append(changes, "title")
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(*input.Priority)})
		}
		ticket.Priority = *input.Priority
		changes = append(changes, "priority")
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": string(*input.Category)})
		}
		ticket.Category = *input.Category
		changes = append(changes, "category")
	}
	if len(changes) == 0 {
		return ticket, nil
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionTicketUpdated,
			Details:  fmt.Sprintf("Campos alterados: %s", strings.Join(changes, ", ")),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	// Pure field edits are internal bookkeeping; no notification owed.
	s.cache.InvalidateAll(ctx)
	return ticket, nil
}

// ForwardTicket assigns the ticket to a target user and moves it to
// IN_PROGRESS unless an explicit override status is given. Staff only.
func (s *TicketService) ForwardTicket(ctx context.Context, actor *domain.User, ticketID, assigneeID string, statusOverride *domain.TicketStatus) (*domain.Ticket, error) {
	if !access.CanForwardTicket(actor) {
		return nil, apperrors.NewForbidden("only coordinators and admins may forward tickets")
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.IsActive {
		return nil, apperrors.NewNotFound("assignee", map[string]any{"user_id": assigneeID})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	newStatus := domain.TicketStatusInProgress
	if statusOverride != nil {
		if !statusOverride.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(*statusOverride)})
		}
		newStatus = *statusOverride
	}
	if ticket.Status != newStatus && !domain.CanTransition(ticket.Status, newStatus) && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("illegal status transition", map[string]any{
			"from": string(ticket.Status),
			"to":   string(newStatus),
		})
	}

	ticket.AssignedTo = &assignee.ID
	ticket.Status = newStatus

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionTicketForwarded,
			Details:  fmt.Sprintf("Encaminhado para %s", assignee.Name),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	creator := ticket.CreatedBy
	s.afterMutation(ctx, events.Event{
		Type:         events.EventTicketForwarded,
		TicketID:     ticket.ID,
		ActorID:      actor.ID,
		NotifyUserID: &creator,
		Payload: events.TicketForwardedPayload{
			AssignedTo: assignee.ID,
			Status:     ticket.Status,
		},
	})
	return ticket, nil
}

// RespondTicket records an agent response as a public comment and moves
// the ticket to IN_PROGRESS. The description stays untouched.
func (s *TicketService) RespondTicket(ctx context.Context, actor *domain.User, ticketID, response string) (*domain.Ticket, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperrors.NewValidationError("response must not be empty", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	isAssignee := ticket.AssignedTo != nil && *ticket.AssignedTo == actor.ID
	if !isAssignee && !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("only the assignee or staff may respond")
	}

	oldStatus := ticket.Status
	if ticket.Status != domain.TicketStatusInProgress {
		if !domain.CanTransition(ticket.Status, domain.TicketStatusInProgress) && actor.Role != domain.RoleAdmin {
			return nil, apperrors.NewValidationError("illegal status transition", map[string]any{
				"from": string(ticket.Status),
				"to":   string(domain.TicketStatusInProgress),
			})
		}
		ticket.Status = domain.TicketStatusInProgress
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    response,
		IsInternal: false,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		if ticket.Status != oldStatus {
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return err
			}
		} else if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionTicketResponded,
			Details:  preview(response, 120),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	creator := ticket.CreatedBy
	s.afterMutation(ctx, events.Event{
		Type:         events.EventTicketResponded,
		TicketID:     ticket.ID,
		ActorID:      actor.ID,
		NotifyUserID: &creator,
		Payload: events.CommentAddedPayload{
			CommentID: comment.ID,
			Preview:   preview(response, 120),
		},
	})
	return ticket, nil
}

// ReturnToCoordination clears the assignment and reopens the ticket.
// Usable by the current assignee or staff.
func (s *TicketService) ReturnToCoordination(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	isAssignee := ticket.AssignedTo != nil && *ticket.AssignedTo == actor.ID
	if !isAssignee && !actor.Role.IsStaff() {
		return nil, apperrors.NewForbidden("only the assignee or staff may return a ticket")
	}
	if ticket.Status != domain.TicketStatusOpen &&
		!domain.CanTransition(ticket.Status, domain.TicketStatusOpen) &&
		actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("illegal status transition", map[string]any{
			"from": string(ticket.Status),
			"to":   string(domain.TicketStatusOpen),
		})
	}

	ticket.AssignedTo = nil
	ticket.Status = domain.TicketStatusOpen
	ticket.ClosedAt = nil

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionTicketReturned,
			Details:  "Devolvido para a coordenação",
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	creator := ticket.CreatedBy
	s.afterMutation(ctx, events.Event{
		Type:         events.EventTicketReturned,
		TicketID:     ticket.ID,
		ActorID:      actor.ID,
		NotifyUserID: &creator,
	})
	return ticket, nil
}

// UpdateStatus moves the ticket along the state machine. Admins may leave
// terminal states; everyone else is bound by the transition table.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Status == newStatus {
		return ticket, nil
	}
	if !domain.CanTransition(ticket.Status, newStatus) && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("illegal status transition", map[string]any{
			"from": string(ticket.Status),
			"to":   string(newStatus),
		})
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if newStatus == domain.TicketStatusClosed || newStatus == domain.TicketStatusCancelled {
		now := time.Now()
		ticket.ClosedAt = &now
	} else {
		ticket.ClosedAt = nil
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.logs.Append(ctx, &domain.TicketLog{
			TicketID: ticket.ID,
			Action:   domain.ActionStatusChanged,
			Details:  fmt.Sprintf("%s -> %s", oldStatus, newStatus),
			UserID:   actor.ID,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	notify := s.counterpart(actor, ticket)
	s.afterMutation(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketID:     ticket.ID,
		ActorID:      actor.ID,
		NotifyUserID: notify,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// DeleteTicket hard-deletes a ticket. Admin only.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only admins may delete tickets")
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	s.cache.InvalidateAll(ctx)
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// counterpart names the other party on a ticket: creator when staff or the
// assignee acted, assignee otherwise.
func (s *TicketService) counterpart(actor *domain.User, ticket *domain.Ticket) *string {
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

func (s *TicketService) afterMutation(ctx context.Context, event events.Event) {
	s.cache.InvalidateAll(ctx)
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func listCacheKey(actor *domain.User, filter repository.TicketFilter) string {
	scope := "all"
	if filter.ViewerID != nil {
		scope = *filter.ViewerID
	}
	search := ""
	if filter.SearchTerm != nil {
		search = *filter.SearchTerm
	}
	return fmt.Sprintf("list:%s:%v:%v:%v:%s:%d:%d",
		scope, filter.Statuses, filter.Priorities, filter.Categories, search, filter.Limit, filter.Offset)
}

// preview truncates to at most max runes, never splitting a multi-byte
// character mid-sequence.
func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
