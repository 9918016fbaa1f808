package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "OPEN"
	TicketStatusInProgress   TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingUser  TicketStatus = "WAITING_FOR_USER"
	TicketStatusWaitingThird TicketStatus = "WAITING_FOR_THIRD_PARTY"
	TicketStatusResolved     TicketStatus = "RESOLVED"
	TicketStatusClosed       TicketStatus = "CLOSED"
	TicketStatusCancelled    TicketStatus = "CANCELLED"
)

// Valid reports whether the status is a known value.
func (s TicketStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether the status ends the customer-visible lifecycle.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusClosed || s == TicketStatusCancelled
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:         {TicketStatusInProgress, TicketStatusCancelled},
	TicketStatusInProgress:   {TicketStatusOpen, TicketStatusWaitingUser, TicketStatusWaitingThird, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusWaitingUser:  {TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusWaitingThird: {TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled},
	TicketStatusResolved:     {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:       {},
	TicketStatusCancelled:    {},
}

// CanTransition reports whether moving from current to next is legal.
// The admin override on terminal states lives in the service layer, not here.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// TicketCategory is a fixed label set; free-form categories from older
// clients normalize to CategoryOther.
type TicketCategory string

const (
	CategoryHardware TicketCategory = "HARDWARE"
	CategorySoftware TicketCategory = "SOFTWARE"
	CategoryNetwork  TicketCategory = "NETWORK"
	CategoryAccess   TicketCategory = "ACCESS"
	CategoryEmail    TicketCategory = "EMAIL"
	CategoryOther    TicketCategory = "OTHER"
)

var categoryLabels = map[TicketCategory]string{
	CategoryHardware: "Hardware",
	CategorySoftware: "Software",
	CategoryNetwork:  "Rede",
	CategoryAccess:   "Acesso e Senhas",
	CategoryEmail:    "E-mail",
	CategoryOther:    "Outros",
}

// Valid reports whether the category is a known value.
func (c TicketCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display name for the category.
func (c TicketCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryOther]
}

// Ticket is the aggregate for support requests. CreatedBy and Description
// are immutable after creation — agent responses are modeled as comments,
// never appended to the description.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    TicketCategory
	CreatedBy   string
	AssignedTo  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}
