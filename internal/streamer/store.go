package streamer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by the store.
var (
	ErrNotFound       = errors.New("streamer not found")
	ErrAlreadyDecided = errors.New("streamer application already decided")
)

// Store provides database operations for streamer applications.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const streamerColumns = `id, name, user_id, platform, channel_url, description, role,
	social_links, followers, streams, application_type, status,
	coalesce(rejection_reason, ''), created_at`

func scanStreamer(row pgx.Row) (*Streamer, error) {
	s := &Streamer{}
	var linksJSON []byte
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.UserID,
		&s.Platform,
		&s.ChannelURL,
		&s.Description,
		&s.Role,
		&linksJSON,
		&s.Followers,
		&s.Streams,
		&s.ApplicationType,
		&s.Status,
		&s.RejectionReason,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(linksJSON) > 0 {
		if err := json.Unmarshal(linksJSON, &s.SocialLinks); err != nil {
			return nil, fmt.Errorf("unmarshaling social_links: %w", err)
		}
	}
	if s.SocialLinks == nil {
		s.SocialLinks = map[string]string{}
	}
	return s, nil
}

// Create inserts a new application in the pending state linked to userID.
func (s *Store) Create(ctx context.Context, userID int64, in CreateStreamerInput) (*Streamer, error) {
	links := in.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("marshaling social_links: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO streamers
		(name, user_id, platform, channel_url, description, role,
		 social_links, followers, streams, application_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s`, streamerColumns)

	st, err := scanStreamer(s.pool.QueryRow(ctx, query,
		in.Name, userID, in.Platform, in.ChannelURL, in.Description, in.Role,
		linksJSON, in.Followers, in.Streams, in.ApplicationType, StatusPending,
	))
	if err != nil {
		return nil, fmt.Errorf("creating streamer application: %w", err)
	}
	return st, nil
}

// GetByID retrieves an application by its ID regardless of status.
func (s *Store) GetByID(ctx context.Context, id int64) (*Streamer, error) {
	query := fmt.Sprintf(`SELECT %s FROM streamers WHERE id = $1`, streamerColumns)
	st, err := scanStreamer(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting streamer by id: %w", err)
	}
	return st, nil
}

// ListByStatus returns all applications in the given review state, newest first.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]*Streamer, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM streamers WHERE status = $1 ORDER BY created_at DESC, id DESC`,
		streamerColumns)

	rows, err := s.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("listing streamers: %w", err)
	}
	defer rows.Close()

	var streamers []*Streamer
	for rows.Next() {
		st, err := scanStreamer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning streamer row: %w", err)
		}
		streamers = append(streamers, st)
	}
	return streamers, rows.Err()
}

// Verify transitions the application from pending to approved. Conditioned on
// the current status so racing admin decisions cannot both land.
func (s *Store) Verify(ctx context.Context, id int64) (*Streamer, error) {
	query := fmt.Sprintf(`UPDATE streamers
		SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING %s`, streamerColumns)

	st, err := scanStreamer(s.pool.QueryRow(ctx, query, id, StatusApproved, StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.decideFailure(ctx, id)
		}
		return nil, fmt.Errorf("verifying streamer: %w", err)
	}
	return st, nil
}

// Reject transitions the application from pending to rejected and records the
// reason.
func (s *Store) Reject(ctx context.Context, id int64, reason string) (*Streamer, error) {
	query := fmt.Sprintf(`UPDATE streamers
		SET status = $2, rejection_reason = $3
		WHERE id = $1 AND status = $4
		RETURNING %s`, streamerColumns)

	st, err := scanStreamer(s.pool.QueryRow(ctx, query, id, StatusRejected, reason, StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.decideFailure(ctx, id)
		}
		return nil, fmt.Errorf("rejecting streamer: %w", err)
	}
	return st, nil
}

func (s *Store) decideFailure(ctx context.Context, id int64) error {
	var status string
	err := s.pool.QueryRow(ctx, `SELECT status FROM streamers WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking streamer status: %w", err)
	}
	return ErrAlreadyDecided
}

// CountByStatus returns the number of applications in the given review state.
func (s *Store) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM streamers WHERE status = $1`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting streamers: %w", err)
	}
	return n, nil
}
