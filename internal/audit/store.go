package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides append and query operations for the admin action log.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const actionColumns = `id, admin_id, action, entity_id, entity_type, coalesce(reason, ''), created_at`

func scanAction(row pgx.Row) (*Action, error) {
	a := &Action{}
	err := row.Scan(
		&a.ID,
		&a.AdminID,
		&a.Action,
		&a.EntityID,
		&a.EntityType,
		&a.Reason,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Append records one admin decision.
func (s *Store) Append(ctx context.Context, e Entry) (*Action, error) {
	var reason *string
	if e.Reason != "" {
		reason = &e.Reason
	}

	query := fmt.Sprintf(`INSERT INTO admin_actions
		(admin_id, action, entity_id, entity_type, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, actionColumns)

	a, err := scanAction(s.pool.QueryRow(ctx, query,
		e.AdminID, e.Action, e.EntityID, e.EntityType, reason))
	if err != nil {
		return nil, fmt.Errorf("appending admin action: %w", err)
	}
	return a, nil
}

// Recent returns the most recent entries, newest first, up to limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Action, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(
		`SELECT %s FROM admin_actions ORDER BY created_at DESC, id DESC LIMIT $1`,
		actionColumns)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing admin actions: %w", err)
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning admin action row: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
