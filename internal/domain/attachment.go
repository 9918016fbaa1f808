package domain

import "time"

// Attachment stores metadata for a blob attached to a ticket. The blob
// itself lives in the storage backend under StorageKey.
type Attachment struct {
	ID           string
	TicketID     string
	UploaderID   string
	StorageKey   string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	CreatedAt    time.Time
}
