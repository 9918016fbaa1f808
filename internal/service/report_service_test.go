package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atendehq/helpdesk/internal/domain"
)

func seedReportTickets(t *testing.T, repo *fakeTicketRepo) {
	t.Helper()
	ctx := context.Background()
	seed := []struct {
		status   domain.TicketStatus
		priority domain.TicketPriority
		creator  string
	}{
		{domain.TicketStatusOpen, domain.TicketPriorityHigh, "u-ana"},
		{domain.TicketStatusInProgress, domain.TicketPriorityMedium, "u-ana"},
		{domain.TicketStatusWaitingUser, domain.TicketPriorityLow, "u-davi"},
		{domain.TicketStatusResolved, domain.TicketPriorityMedium, "u-davi"},
		{domain.TicketStatusClosed, domain.TicketPriorityUrgent, "u-davi"},
		{domain.TicketStatusCancelled, domain.TicketPriorityLow, "u-ana"},
	}
	for _, s := range seed {
		require.NoError(t, repo.Create(ctx, &domain.Ticket{
			Title:       "t",
			Description: "d",
			Status:      s.status,
			Priority:    s.priority,
			Category:    domain.CategoryOther,
			CreatedBy:   s.creator,
		}))
	}
}

func TestDashboardGlobalTotals(t *testing.T) {
	tickets := newFakeTicketRepo()
	seedReportTickets(t, tickets)
	svc := NewReportService(tickets, nil)
	staff := &domain.User{ID: "u-staff", Role: domain.RoleCoordinator, IsActive: true}

	report, err := svc.Dashboard(context.Background(), staff, 30)
	require.NoError(t, err)

	// Open covers everything still in flight, resolved covers the done states.
	assert.Equal(t, int64(3), report.OpenTotal)
	assert.Equal(t, int64(2), report.ResolvedTotal)
	assert.Equal(t, int64(1), report.ByStatus[domain.TicketStatusCancelled])
	assert.Equal(t, int64(2), report.ByPriority[domain.TicketPriorityMedium])
	assert.False(t, report.Since.IsZero())
}

func TestDashboardScopedForRegularUser(t *testing.T) {
	tickets := newFakeTicketRepo()
	seedReportTickets(t, tickets)
	svc := NewReportService(tickets, nil)
	ana := &domain.User{ID: "u-ana", Role: domain.RoleUser, IsActive: true}

	report, err := svc.Dashboard(context.Background(), ana, 30)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.OpenTotal)
	assert.Zero(t, report.ResolvedTotal)
	assert.Equal(t, int64(1), report.ByStatus[domain.TicketStatusCancelled])
}

func TestDashboardClampsDays(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := NewReportService(tickets, nil)
	staff := &domain.User{ID: "u-staff", Role: domain.RoleAdmin, IsActive: true}
	ctx := context.Background()

	for _, days := range []int{-5, 0, 9999} {
		report, err := svc.Dashboard(ctx, staff, days)
		require.NoError(t, err)
		assert.False(t, report.Since.IsZero())
	}
}
