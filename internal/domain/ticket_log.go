package domain

import "time"

// LogAction tags a ticket log entry with the mutation it records.
type LogAction string

const (
	ActionTicketCreated        LogAction = "TICKET_CREATED"
	ActionTicketUpdated        LogAction = "TICKET_UPDATED"
	ActionStatusChanged        LogAction = "STATUS_CHANGED"
	ActionTicketForwarded      LogAction = "TICKET_FORWARDED"
	ActionTicketResponded      LogAction = "TICKET_RESPONDED"
	ActionTicketReturned       LogAction = "TICKET_RETURNED"
	ActionCommentAdded         LogAction = "COMMENT_ADDED"
	ActionCommentUpdated       LogAction = "COMMENT_UPDATED"
	ActionCommentDeleted       LogAction = "COMMENT_DELETED"
	ActionAttachmentAdded      LogAction = "ATTACHMENT_ADDED"
	ActionAttachmentDeleted    LogAction = "ATTACHMENT_DELETED"
	ActionAttachmentDownloaded LogAction = "ATTACHMENT_DOWNLOADED"
)

// TicketLog is an append-only audit record. Entries are never updated or
// deleted through application paths.
type TicketLog struct {
	ID        string
	TicketID  string
	Action    LogAction
	Details   string
	UserID    string
	CreatedAt time.Time
}
