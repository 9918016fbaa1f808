package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atendehq/helpdesk/internal/domain"
	"github.com/atendehq/helpdesk/internal/persistence"
)

// TicketLogRepository stores the append-only audit trail. There is no
// update or delete on purpose.
type TicketLogRepository interface {
	Append(ctx context.Context, entry *domain.TicketLog) error
	ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketLog, error)
}

type ticketLogRepository struct {
	pool *pgxpool.Pool
}

// NewTicketLogRepository builds repository.
func NewTicketLogRepository(pool *pgxpool.Pool) TicketLogRepository {
	return &ticketLogRepository{pool: pool}
}

func (r *ticketLogRepository) q(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

func (r *ticketLogRepository) Append(ctx context.Context, entry *domain.TicketLog) error {
	const query = `
        INSERT INTO ticket_logs (ticket_id, action, details, user_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.q(ctx).QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		entry.Details,
		entry.UserID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketLogRepository) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketLog, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_id, action, details, user_id, created_at
        FROM ticket_logs WHERE ticket_id=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.q(ctx).Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketLog
	for rows.Next() {
		var entry domain.TicketLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.Details,
			&entry.UserID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
