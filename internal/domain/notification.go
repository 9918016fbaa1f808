package domain

import "time"

// NotificationType enumerates notification categories.
type NotificationType string

const (
	NotificationTicketAssigned  NotificationType = "TICKET_ASSIGNED"
	NotificationTicketCommented NotificationType = "TICKET_COMMENTED"
	NotificationTicketResolved  NotificationType = "TICKET_RESOLVED"
	NotificationTicketReturned  NotificationType = "TICKET_RETURNED"
	NotificationTicketUpdated   NotificationType = "TICKET_UPDATED"
)

// Notification is a per-user inbox entry created as a side effect of
// ticket activity. Creation is best-effort; read state is idempotent.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	RelatedID *string
	Metadata  map[string]any
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
