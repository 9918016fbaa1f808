package service

import (
	"context"
	"time"

	"github.com/atendehq/helpdesk/internal/access"
	"github.com/atendehq/helpdesk/internal/cache"
	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/repository"
	apperrors "github.com/atendehq/helpdesk/pkg/util"
)

// ReportService produces dashboard aggregates. Staff see global numbers;
// USER-role callers get the same report scoped to their own tickets.
type ReportService struct {
	tickets repository.TicketRepository
	cache   *cache.TicketCache
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, ticketCache *cache.TicketCache) *ReportService {
	return &ReportService{tickets: tickets, cache: ticketCache}
}

// DashboardReport aggregates ticket counts for the overview screen.
type DashboardReport struct {
	ByStatus      map[domain.TicketStatus]int64   `json:"by_status"`
	ByPriority    map[domain.TicketPriority]int64 `json:"by_priority"`
	OpenTotal     int64                           `json:"open_total"`
	ResolvedTotal int64                           `json:"resolved_total"`
	CreatedPerDay []repository.DayCount           `json:"created_per_day"`
	Since         time.Time                       `json:"since"`
}

// Dashboard builds the report for the last `days` days (default 30).
func (s *ReportService) Dashboard(ctx context.Context, actor *domain.User, days int) (*DashboardReport, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	var viewerID *string
	cacheKey := "report:all:" + time.Now().Format("2006-01-02")
	if !access.CanViewAllTickets(actor) {
		id := actor.ID
		viewerID = &id
		cacheKey = "report:" + id + ":" + time.Now().Format("2006-01-02")
	}

	var cached DashboardReport
	if s.cache.Get(ctx, cacheKey, &cached) && !cached.Since.IsZero() {
		return &cached, nil
	}

	byStatus, err := s.tickets.CountByStatus(ctx, viewerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := s.tickets.CountByPriority(ctx, viewerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	since := time.Now().AddDate(0, 0, -days)
	perDay, err := s.tickets.CreatedPerDay(ctx, since, viewerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := &DashboardReport{
		ByStatus:      byStatus,
		ByPriority:    byPriority,
		OpenTotal:     byStatus[domain.TicketStatusOpen] + byStatus[domain.TicketStatusInProgress] + byStatus[domain.TicketStatusWaitingUser] + byStatus[domain.TicketStatusWaitingThird],
		ResolvedTotal: byStatus[domain.TicketStatusResolved] + byStatus[domain.TicketStatusClosed],
		CreatedPerDay: perDay,
		Since:         since,
	}
	s.cache.Set(ctx, cacheKey, report)
	return report, nil
}
