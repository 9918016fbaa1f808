package domain

import "time"

// MaxCommentLength bounds comment content size.
const MaxCommentLength = 1000

// Comment is a remark on a ticket. Internal comments are visible to staff
// only — the ticket's own creator never sees them.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
