package dto

import (
	"time"

	"github.com/atendehq/helpdesk/internal/domain"
)

// NotificationResponse representation.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	RelatedID *string                 `json:"related_id"`
	Metadata  map[string]any          `json:"metadata,omitempty"`
	IsRead    bool                    `json:"is_read"`
	ReadAt    *time.Time              `json:"read_at"`
	CreatedAt time.Time               `json:"created_at"`
}

// UnreadCountResponse carries the badge count.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// NotificationFromDomain maps a notification to its response shape.
func NotificationFromDomain(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		RelatedID: n.RelatedID,
		Metadata:  n.Metadata,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
