package events

import (
	"time"

	"github.com/atendehq/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketForwarded     EventType = "ticket_forwarded"
	EventTicketResponded     EventType = "ticket_responded"
	EventTicketReturned      EventType = "ticket_returned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventCommentAdded        EventType = "comment_added"
	EventAttachmentAdded     EventType = "attachment_added"
	EventAttachmentDeleted   EventType = "attachment_deleted"
)

// Event represents a domain event emitted by services. NotifyUserID names
// the counterpart of the acting user on the ticket; nil means no
// notification is owed for this event.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketID     string      `json:"ticket_id"`
	ActorID      string      `json:"actor_id"`
	NotifyUserID *string     `json:"notify_user_id,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Category domain.TicketCategory `json:"category"`
}

// TicketForwardedPayload payload.
type TicketForwardedPayload struct {
	AssignedTo string              `json:"assigned_to"`
	Status     domain.TicketStatus `json:"status"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  string `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}

// AttachmentPayload covers added and deleted attachment events.
type AttachmentPayload struct {
	AttachmentID string `json:"attachment_id"`
	OriginalName string `json:"original_name"`
	SizeBytes    int64  `json:"size_bytes"`
}
