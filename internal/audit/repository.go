// Package audit records every applied transition so disputes about a
// ticket's history can be settled without asking the entity store.
package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/resale-admin/internal/domain"
)

// Entry is one applied transition.
type Entry struct {
	ID        int64
	TicketID  int64
	Operator  string
	OldStatus domain.TicketStatus
	NewStatus domain.TicketStatus
	OldRefund domain.RefundStatus
	NewRefund domain.RefundStatus
	Payload   map[string]any
	CreatedAt time.Time
}

// Repository stores transition audit entries.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]Entry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the repository. A nil pool yields a no-op
// repository so the console runs without Postgres.
func NewRepository(pool *pgxpool.Pool) Repository {
	if pool == nil {
		return noopRepository{}
	}
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, entry *Entry) error {
	const query = `
        INSERT INTO transition_log (ticket_id, operator, old_status, new_status, old_refund, new_refund, payload)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Operator,
		entry.OldStatus,
		entry.NewStatus,
		entry.OldRefund,
		entry.NewRefund,
		entry.Payload,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *repository) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, ticket_id, operator, old_status, new_status, old_refund, new_refund, payload, created_at
        FROM transition_log WHERE ticket_id=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Operator,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.OldRefund,
			&entry.NewRefund,
			&entry.Payload,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

type noopRepository struct{}

func (noopRepository) Create(context.Context, *Entry) error {
	return nil
}

func (noopRepository) ListByTicket(context.Context, int64, int, int) ([]Entry, error) {
	return []Entry{}, nil
}
