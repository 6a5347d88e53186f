package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by the store.
var (
	ErrNotFound      = errors.New("player profile not found")
	ErrAlreadyExists = errors.New("player profile already exists")
)

// Store provides database operations for player profiles.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const profileColumns = `id, user_id, coalesce(position, ''), coalesce(experience, ''),
	coalesce(availability, ''), skills, coalesce(contact, ''), created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	p := &Profile{}
	var skills []byte
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Position,
		&p.Experience,
		&p.Availability,
		&skills,
		&p.Contact,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &p.Skills); err != nil {
			return nil, fmt.Errorf("decoding skills: %w", err)
		}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}

// List returns all player profiles, newest first.
func (s *Store) List(ctx context.Context) ([]*Profile, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM player_profiles ORDER BY created_at DESC, id DESC`,
		profileColumns)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing player profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// GetByID retrieves a profile by its ID.
func (s *Store) GetByID(ctx context.Context, id int64) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM player_profiles WHERE id = $1`, profileColumns)
	p, err := scanProfile(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting player profile: %w", err)
	}
	return p, nil
}

// Create inserts a new profile owned by userID. Each user may hold at most one
// profile; a second insert fails with ErrAlreadyExists.
func (s *Store) Create(ctx context.Context, userID int64, in Input) (*Profile, error) {
	skills, err := encodeSkills(in.Skills)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`INSERT INTO player_profiles
		(user_id, position, experience, availability, skills, contact)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, profileColumns)

	p, err := scanProfile(s.pool.QueryRow(ctx, query,
		userID, in.Position, in.Experience, in.Availability, skills, in.Contact,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating player profile: %w", err)
	}
	return p, nil
}

// Update replaces the fields of the profile identified by id, scoped to its
// owner. Updating someone else's profile looks like a missing one.
func (s *Store) Update(ctx context.Context, id, userID int64, in Input) (*Profile, error) {
	skills, err := encodeSkills(in.Skills)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE player_profiles
		SET position = $3, experience = $4, availability = $5, skills = $6,
		    contact = $7, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING %s`, profileColumns)

	p, err := scanProfile(s.pool.QueryRow(ctx, query,
		id, userID, in.Position, in.Experience, in.Availability, skills, in.Contact,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating player profile: %w", err)
	}
	return p, nil
}

// Count returns the total number of player profiles.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM player_profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting player profiles: %w", err)
	}
	return n, nil
}

func encodeSkills(skills []string) ([]byte, error) {
	if skills == nil {
		skills = []string{}
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("encoding skills: %w", err)
	}
	return b, nil
}
