package dto

import (
	"time"

	"github.com/atendehq/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
}

// UpdateTicketRequest payload; omitted fields are left unchanged. Status
// changes go through the dedicated status endpoint.
type UpdateTicketRequest struct {
	Title    *string                `json:"title"`
	Priority *domain.TicketPriority `json:"priority"`
	Category *domain.TicketCategory `json:"category"`
}

// ForwardTicketRequest payload.
type ForwardTicketRequest struct {
	AssigneeID string               `json:"assignee_id"`
	Status     *domain.TicketStatus `json:"status"`
}

// RespondTicketRequest payload.
type RespondTicketRequest struct {
	Response string `json:"response"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketSummary response for listings.
type TicketSummary struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	Category      domain.TicketCategory `json:"category"`
	CategoryLabel string                `json:"category_label"`
	CreatedBy     string                `json:"created_by"`
	AssignedTo    *string               `json:"assigned_to"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides the full ticket view.
type TicketDetailResponse struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	Category      domain.TicketCategory `json:"category"`
	CategoryLabel string                `json:"category_label"`
	CreatedBy     string                `json:"created_by"`
	AssignedTo    *string               `json:"assigned_to"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	ClosedAt      *time.Time            `json:"closed_at"`
	Comments      []CommentResponse     `json:"comments"`
	Attachments   []AttachmentResponse  `json:"attachments"`
	Logs          []TicketLogResponse   `json:"logs"`
}

// TicketLogResponse represents an activity log entry.
type TicketLogResponse struct {
	ID        string           `json:"id"`
	Action    domain.LogAction `json:"action"`
	Details   string           `json:"details,omitempty"`
	UserID    string           `json:"user_id"`
	CreatedAt time.Time        `json:"created_at"`
}

// TicketSummaryFromDomain maps a ticket to its listing shape.
func TicketSummaryFromDomain(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:            ticket.ID,
		Title:         ticket.Title,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		Category:      ticket.Category,
		CategoryLabel: ticket.Category.Label(),
		CreatedBy:     ticket.CreatedBy,
		AssignedTo:    ticket.AssignedTo,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}
