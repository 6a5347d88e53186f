package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by the store.
var (
	ErrNotFound         = errors.New("team not found")
	ErrAlreadyDecided   = errors.New("team already approved or rejected")
	ErrDuplicateRequest = errors.New("join request already exists")
	ErrRequestNotFound  = errors.New("join request not found")
)

// Store provides database operations for teams and join requests.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const teamColumns = `id, name, logo, owner_id, members, description, region, tier,
	status, coalesce(rejection_reason, ''), created_at, updated_at`

func scanTeam(row pgx.Row) (*Team, error) {
	t := &Team{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Logo,
		&t.OwnerID,
		&t.Members,
		&t.Description,
		&t.Region,
		&t.Tier,
		&t.Status,
		&t.RejectionReason,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.Members == nil {
		t.Members = []int64{}
	}
	return t, nil
}

// Create inserts a new team in the pending state owned by ownerID.
func (s *Store) Create(ctx context.Context, ownerID int64, in CreateTeamInput) (*Team, error) {
	members := in.Members
	if members == nil {
		members = []int64{}
	}

	query := fmt.Sprintf(`INSERT INTO teams
		(name, logo, owner_id, members, description, region, tier, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, teamColumns)

	t, err := scanTeam(s.pool.QueryRow(ctx, query,
		in.Name, in.Logo, ownerID, members, in.Description, in.Region, in.Tier,
		StatusPending,
	))
	if err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}
	return t, nil
}

// GetByID retrieves a team by its ID regardless of status.
func (s *Store) GetByID(ctx context.Context, id int64) (*Team, error) {
	query := fmt.Sprintf(`SELECT %s FROM teams WHERE id = $1`, teamColumns)
	t, err := scanTeam(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting team by id: %w", err)
	}
	return t, nil
}

// ListByStatus returns all teams in the given review state, newest first.
func (s *Store) ListByStatus(ctx context.Context, status string) ([]*Team, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM teams WHERE status = $1 ORDER BY created_at DESC, id DESC`,
		teamColumns)
	return s.list(ctx, query, status)
}

// ListByOwner returns all teams owned by userID, newest first, in any state.
func (s *Store) ListByOwner(ctx context.Context, ownerID int64) ([]*Team, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM teams WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`,
		teamColumns)
	return s.list(ctx, query, ownerID)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*Team, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Approve transitions the team from pending to approved. The update is
// conditioned on the current status so that two racing admin decisions can
// never both land: the loser sees ErrAlreadyDecided.
func (s *Store) Approve(ctx context.Context, id int64) (*Team, error) {
	query := fmt.Sprintf(`UPDATE teams
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING %s`, teamColumns)

	t, err := scanTeam(s.pool.QueryRow(ctx, query, id, StatusApproved, StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.decideFailure(ctx, id)
		}
		return nil, fmt.Errorf("approving team: %w", err)
	}
	return t, nil
}

// Reject transitions the team from pending to rejected and records the
// reason. Conditioned on the current status like Approve.
func (s *Store) Reject(ctx context.Context, id int64, reason string) (*Team, error) {
	query := fmt.Sprintf(`UPDATE teams
		SET status = $2, rejection_reason = $3, updated_at = now()
		WHERE id = $1 AND status = $4
		RETURNING %s`, teamColumns)

	t, err := scanTeam(s.pool.QueryRow(ctx, query, id, StatusRejected, reason, StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.decideFailure(ctx, id)
		}
		return nil, fmt.Errorf("rejecting team: %w", err)
	}
	return t, nil
}

// decideFailure tells a missing team apart from one already decided.
func (s *Store) decideFailure(ctx context.Context, id int64) error {
	var status string
	err := s.pool.QueryRow(ctx, `SELECT status FROM teams WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking team status: %w", err)
	}
	return ErrAlreadyDecided
}

// CountByStatus returns the number of teams in the given review state.
func (s *Store) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM teams WHERE status = $1`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting teams: %w", err)
	}
	return n, nil
}

// Count returns the total number of teams in any state.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM teams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting teams: %w", err)
	}
	return n, nil
}

// CreateJoinRequest records a pending join request for the (team, user) pair.
// A second request for the same pair fails with ErrDuplicateRequest.
func (s *Store) CreateJoinRequest(ctx context.Context, teamID, userID int64) (*JoinRequest, error) {
	req := &JoinRequest{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO team_member_requests (team_id, user_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING team_id, user_id, status, requested_at`,
		teamID, userID, StatusPending,
	).Scan(&req.TeamID, &req.UserID, &req.Status, &req.RequestedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateRequest
		}
		return nil, fmt.Errorf("creating join request: %w", err)
	}
	return req, nil
}

// ApproveJoinRequest marks the pending request for (team, user) approved and
// adds the user to the team's member set. The membership insert is idempotent;
// an already-present member is left untouched. Both writes happen in one
// transaction.
func (s *Store) ApproveJoinRequest(ctx context.Context, teamID, userID int64) (*Team, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE team_member_requests SET status = $3
		 WHERE team_id = $1 AND user_id = $2 AND status = $4`,
		teamID, userID, StatusApproved, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("approving join request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrRequestNotFound
	}

	query := fmt.Sprintf(`UPDATE teams
		SET members = members || $2::bigint, updated_at = now()
		WHERE id = $1 AND NOT members @> ARRAY[$2]::bigint[]
		RETURNING %s`, teamColumns)

	t, err := scanTeam(tx.QueryRow(ctx, query, teamID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already a member; fetch the unchanged row.
			sel := fmt.Sprintf(`SELECT %s FROM teams WHERE id = $1`, teamColumns)
			t, err = scanTeam(tx.QueryRow(ctx, sel, teamID))
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			if err != nil {
				return nil, fmt.Errorf("getting team after join approval: %w", err)
			}
		} else {
			return nil, fmt.Errorf("adding team member: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing join approval: %w", err)
	}
	return t, nil
}
