package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{"open to in progress", TicketStatusOpen, TicketStatusInProgress, true},
		{"open to cancelled", TicketStatusOpen, TicketStatusCancelled, true},
		{"open to resolved skips work", TicketStatusOpen, TicketStatusResolved, false},
		{"open to closed skips resolution", TicketStatusOpen, TicketStatusClosed, false},
		{"in progress to waiting for user", TicketStatusInProgress, TicketStatusWaitingUser, true},
		{"in progress to waiting for third party", TicketStatusInProgress, TicketStatusWaitingThird, true},
		{"in progress back to open", TicketStatusInProgress, TicketStatusOpen, true},
		{"in progress to resolved", TicketStatusInProgress, TicketStatusResolved, true},
		{"waiting for user resumes", TicketStatusWaitingUser, TicketStatusInProgress, true},
		{"waiting for user to resolved", TicketStatusWaitingUser, TicketStatusResolved, true},
		{"waiting for third party to resolved", TicketStatusWaitingThird, TicketStatusResolved, true},
		{"resolved to closed", TicketStatusResolved, TicketStatusClosed, true},
		{"resolved reopens", TicketStatusResolved, TicketStatusInProgress, true},
		{"closed is terminal", TicketStatusClosed, TicketStatusInProgress, false},
		{"cancelled is terminal", TicketStatusCancelled, TicketStatusOpen, false},
		{"self transition is not listed", TicketStatusOpen, TicketStatusOpen, false},
		{"unknown source", TicketStatus("BOGUS"), TicketStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTicketStatusTerminal(t *testing.T) {
	assert.True(t, TicketStatusClosed.Terminal())
	assert.True(t, TicketStatusCancelled.Terminal())
	assert.False(t, TicketStatusResolved.Terminal())
	assert.False(t, TicketStatusOpen.Terminal())
}

func TestTicketStatusValid(t *testing.T) {
	assert.True(t, TicketStatusWaitingThird.Valid())
	assert.False(t, TicketStatus("PENDING").Valid())
}

func TestTicketPriorityValid(t *testing.T) {
	assert.True(t, TicketPriorityUrgent.Valid())
	assert.False(t, TicketPriority("CRITICAL").Valid())
}

func TestTicketCategoryLabel(t *testing.T) {
	assert.Equal(t, "Rede", CategoryNetwork.Label())
	assert.Equal(t, "Acesso e Senhas", CategoryAccess.Label())
	// Unknown categories fall back to the catch-all label.
	assert.Equal(t, "Outros", TicketCategory("GARDENING").Label())
}
