package repository

import (
	"context"
	"fmt"

	"gambler/wagering/database"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/interfaces"
)

// AuditRepository implements the append-only audit trail
type AuditRepository struct {
	q Queryable
}

// NewAuditRepository creates an audit repository on the pool
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{q: db.Pool}
}

func newAuditRepositoryWithTx(tx Queryable) interfaces.AuditRepository {
	return &AuditRepository{q: tx}
}

// Record appends an audit entry
func (r *AuditRepository) Record(ctx context.Context, entry *entities.AuditEntry) error {
	query := `
		INSERT INTO audit_log (bet_id, actor_id, action, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		entry.BetID,
		entry.ActorID,
		entry.Action,
		entry.Reason,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// GetByBet returns the audit trail of a bet, oldest first
func (r *AuditRepository) GetByBet(ctx context.Context, betID int64) ([]*entities.AuditEntry, error) {
	query := `
		SELECT id, bet_id, actor_id, action, reason, created_at
		FROM audit_log
		WHERE bet_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]*entities.AuditEntry, 0)
	for rows.Next() {
		var e entities.AuditEntry
		if err := rows.Scan(&e.ID, &e.BetID, &e.ActorID, &e.Action, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}
	return entries, nil
}
