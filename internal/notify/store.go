package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a notification does not exist or does not
// belong to the requesting user.
var ErrNotFound = errors.New("notification not found")

// Store provides database operations for notifications.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const notificationColumns = `id, user_id, type, title, message, read, related_id, created_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	n := &Notification{}
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Read,
		&n.RelatedID,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Create inserts an unread notification for userID.
func (s *Store) Create(ctx context.Context, userID int64, in Input) (*Notification, error) {
	var relatedID *int64
	if in.RelatedID != 0 {
		relatedID = &in.RelatedID
	}

	query := fmt.Sprintf(`INSERT INTO notifications
		(user_id, type, title, message, read, related_id)
		VALUES ($1, $2, $3, $4, false, $5)
		RETURNING %s`, notificationColumns)

	n, err := scanNotification(s.pool.QueryRow(ctx, query,
		userID, in.Type, in.Title, in.Message, relatedID))
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	return n, nil
}

// ListByUser returns the user's notifications, newest first.
func (s *Store) ListByUser(ctx context.Context, userID int64) ([]*Notification, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		notificationColumns)

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags the notification as read. The update is scoped to userID so
// a user cannot touch another user's notifications.
func (s *Store) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
