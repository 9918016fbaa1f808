package dto

import (
	"time"

	"github.com/atendehq/helpdesk/internal/domain"
)

// AttachmentResponse metadata; the blob itself streams through the
// download endpoints.
type AttachmentResponse struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticket_id"`
	UploaderID   string    `json:"uploader_id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignedURLResponse grants temporary download access.
type SignedURLResponse struct {
	URL string `json:"url"`
}

// AttachmentFromDomain maps attachment metadata to its response shape.
func AttachmentFromDomain(attachment *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:           attachment.ID,
		TicketID:     attachment.TicketID,
		UploaderID:   attachment.UploaderID,
		OriginalName: attachment.OriginalName,
		MimeType:     attachment.MimeType,
		SizeBytes:    attachment.SizeBytes,
		CreatedAt:    attachment.CreatedAt,
	}
}
