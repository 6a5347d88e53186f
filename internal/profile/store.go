package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by the store.
var ErrNotFound = errors.New("user profile not found")

// Store provides database operations for user profiles.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const profileColumns = `id, user_id, coalesce(display_name, ''), coalesce(avatar_url, ''),
	coalesce(bio, ''), social_links, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	p := &Profile{}
	var links []byte
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.Bio,
		&links,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &p.SocialLinks); err != nil {
			return nil, fmt.Errorf("decoding social links: %w", err)
		}
	}
	if p.SocialLinks == nil {
		p.SocialLinks = map[string]string{}
	}
	return p, nil
}

// GetByUser retrieves the profile owned by userID.
func (s *Store) GetByUser(ctx context.Context, userID int64) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_profiles WHERE user_id = $1`, profileColumns)
	p, err := scanProfile(s.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user profile: %w", err)
	}
	return p, nil
}

// Upsert replaces the profile owned by userID, creating it if the row is
// missing. Registration seeds a row, so the insert arm only fires for
// accounts that predate profile seeding.
func (s *Store) Upsert(ctx context.Context, userID int64, in Input) (*Profile, error) {
	links := in.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	encoded, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("encoding social links: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO user_profiles
		(user_id, display_name, avatar_url, bio, social_links)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			bio = excluded.bio,
			social_links = excluded.social_links,
			updated_at = now()
		RETURNING %s`, profileColumns)

	p, err := scanProfile(s.pool.QueryRow(ctx, query,
		userID, in.DisplayName, in.AvatarURL, in.Bio, encoded,
	))
	if err != nil {
		return nil, fmt.Errorf("upserting user profile: %w", err)
	}
	return p, nil
}
