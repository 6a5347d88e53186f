package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by the store.
var ErrNotFound = errors.New("content not found")

// Store provides read access to matches, tournaments and news. The portal
// serves this content; it is loaded out of band.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const matchColumns = `id, team_a_id, team_b_id, team_a_score, team_b_score, status,
	start_time, end_time, coalesce(map, ''), tournament_id, coalesce(stream_url, ''),
	created_at`

func scanMatch(row pgx.Row) (*Match, error) {
	m := &Match{}
	err := row.Scan(
		&m.ID,
		&m.TeamAID,
		&m.TeamBID,
		&m.TeamAScore,
		&m.TeamBScore,
		&m.Status,
		&m.StartTime,
		&m.EndTime,
		&m.Map,
		&m.TournamentID,
		&m.StreamURL,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMatches returns all matches, soonest start first, unscheduled last.
func (s *Store) ListMatches(ctx context.Context) ([]*Match, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM matches ORDER BY start_time ASC NULLS LAST, id ASC`,
		matchColumns)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetMatch retrieves one match by id.
func (s *Store) GetMatch(ctx context.Context, id int64) (*Match, error) {
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE id = $1`, matchColumns)
	m, err := scanMatch(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting match: %w", err)
	}
	return m, nil
}

const tournamentColumns = `id, name, coalesce(description, ''), start_date, end_date,
	coalesce(prize, ''), status, coalesce(format, ''), teams, brackets, organizer_id,
	created_at`

func scanTournament(row pgx.Row) (*Tournament, error) {
	t := &Tournament{}
	var teams, brackets []byte
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.Prize,
		&t.Status,
		&t.Format,
		&teams,
		&brackets,
		&t.OrganizerID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(teams) > 0 {
		if err := json.Unmarshal(teams, &t.Teams); err != nil {
			return nil, fmt.Errorf("decoding tournament teams: %w", err)
		}
	}
	if t.Teams == nil {
		t.Teams = []int64{}
	}
	if len(brackets) > 0 {
		t.Brackets = json.RawMessage(brackets)
	} else {
		t.Brackets = json.RawMessage(`{}`)
	}
	return t, nil
}

// ListTournaments returns all tournaments, soonest start first.
func (s *Store) ListTournaments(ctx context.Context) ([]*Tournament, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM tournaments ORDER BY start_date ASC NULLS LAST, id ASC`,
		tournamentColumns)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

// GetTournament retrieves one tournament by id.
func (s *Store) GetTournament(ctx context.Context, id int64) (*Tournament, error) {
	query := fmt.Sprintf(`SELECT %s FROM tournaments WHERE id = $1`, tournamentColumns)
	t, err := scanTournament(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting tournament: %w", err)
	}
	return t, nil
}

const articleColumns = `id, title, content, coalesce(excerpt, ''), coalesce(image, ''),
	author_id, coalesce(category, 'general'), tags, published_at`

func scanArticle(row pgx.Row) (*Article, error) {
	a := &Article{}
	var tags []byte
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Excerpt,
		&a.Image,
		&a.AuthorID,
		&a.Category,
		&tags,
		&a.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &a.Tags); err != nil {
			return nil, fmt.Errorf("decoding article tags: %w", err)
		}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a, nil
}

// ListNews returns all articles, newest first.
func (s *Store) ListNews(ctx context.Context) ([]*Article, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM news ORDER BY published_at DESC, id DESC`,
		articleColumns)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing news: %w", err)
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// GetArticle retrieves one article by id.
func (s *Store) GetArticle(ctx context.Context, id int64) (*Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM news WHERE id = $1`, articleColumns)
	a, err := scanArticle(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting article: %w", err)
	}
	return a, nil
}
