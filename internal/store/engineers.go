package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/types"
)

const engineerColumns = `id, name, email, code_host_url, portfolio_url, resume_url, status,
	dna, profile_summary, questionnaire, priorities, matching_preferences,
	crawl_error, created_at, updated_at`

// CreateEngineer inserts a new engineer profile. Email is stored lowercased;
// a duplicate email returns ErrDuplicate.
func (s *Store) CreateEngineer(ctx context.Context, e *Engineer) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = status.EngineerDraft
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))

	questionnaire, err := marshalJSONB(e.Questionnaire)
	if err != nil {
		return err
	}
	priorities, err := marshalJSONB(e.Priorities)
	if err != nil {
		return err
	}
	preferences, err := marshalJSONB(e.Preferences)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO engineers (id, name, email, code_host_url, portfolio_url, resume_url, status,
			questionnaire, priorities, matching_preferences)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.Name, e.Email, e.CodeHostURL, e.PortfolioURL, e.ResumeURL, string(e.Status),
		questionnaire, priorities, preferences,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("engineer email %s: %w", e.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create engineer: %w", err)
	}
	return nil
}

// GetEngineer retrieves an engineer by id.
func (s *Store) GetEngineer(ctx context.Context, id uuid.UUID) (*Engineer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+engineerColumns+` FROM engineers WHERE id = $1`, id)
	return scanEngineer(row)
}

// GetEngineerByEmail retrieves an engineer by email, case-insensitively.
func (s *Store) GetEngineerByEmail(ctx context.Context, email string) (*Engineer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+engineerColumns+` FROM engineers WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	return scanEngineer(row)
}

// UpdateEngineerStatus performs a conditional status write: the update only
// applies while the row is still in the expected from status.
func (s *Store) UpdateEngineerStatus(ctx context.Context, id uuid.UUID, from, to status.Engineer) error {
	if err := from.Transition(to); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE engineers SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update engineer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("engineer %s not in status %s: %w", id, from, ErrStatusConflict)
	}
	return nil
}

// SaveEngineerDNA overwrites the extracted DNA and profile summary and
// clears any prior crawl error. Re-running the crawl pipeline fully
// replaces prior results.
func (s *Store) SaveEngineerDNA(ctx context.Context, id uuid.UUID, dna *types.DNA, summary *types.ProfileSummary) error {
	dnaJSON, err := marshalJSONB(dna)
	if err != nil {
		return err
	}
	summaryJSON, err := marshalJSONB(summary)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE engineers SET dna = $1, profile_summary = $2, crawl_error = '', updated_at = NOW()
		 WHERE id = $3`,
		dnaJSON, summaryJSON, id)
	if err != nil {
		return fmt.Errorf("failed to save engineer dna: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("engineer %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetEngineerCrawlError persists a crawl failure message on the profile.
func (s *Store) SetEngineerCrawlError(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE engineers SET crawl_error = $1, updated_at = NOW() WHERE id = $2`, msg, id)
	if err != nil {
		return fmt.Errorf("failed to set engineer crawl error: %w", err)
	}
	return nil
}

// SaveEngineerQuestionnaire persists questionnaire answers and priority
// ratings.
func (s *Store) SaveEngineerQuestionnaire(ctx context.Context, id uuid.UUID, q types.EngineerQuestionnaire, p types.PriorityRatings) error {
	questionnaire, err := marshalJSONB(q)
	if err != nil {
		return err
	}
	priorities, err := marshalJSONB(p)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE engineers SET questionnaire = $1, priorities = $2, updated_at = NOW() WHERE id = $3`,
		questionnaire, priorities, id)
	if err != nil {
		return fmt.Errorf("failed to save engineer questionnaire: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("engineer %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveEngineerPreferences persists the matching preference exclusion lists.
func (s *Store) SaveEngineerPreferences(ctx context.Context, id uuid.UUID, p types.MatchingPreferences) error {
	preferences, err := marshalJSONB(p)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE engineers SET matching_preferences = $1, updated_at = NOW() WHERE id = $2`,
		preferences, id)
	if err != nil {
		return fmt.Errorf("failed to save engineer preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("engineer %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListEngineersByStatus returns all engineers in the given status.
func (s *Store) ListEngineersByStatus(ctx context.Context, st status.Engineer) ([]*Engineer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+engineerColumns+` FROM engineers WHERE status = $1 ORDER BY created_at`,
		string(st))
	if err != nil {
		return nil, fmt.Errorf("failed to list engineers: %w", err)
	}
	defer rows.Close()

	var engineers []*Engineer
	for rows.Next() {
		e, err := scanEngineer(rows)
		if err != nil {
			return nil, err
		}
		engineers = append(engineers, e)
	}
	return engineers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEngineer(row rowScanner) (*Engineer, error) {
	var (
		e             Engineer
		statusStr     string
		dna           []byte
		summary       []byte
		questionnaire []byte
		priorities    []byte
		preferences   []byte
	)
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.CodeHostURL, &e.PortfolioURL, &e.ResumeURL,
		&statusStr, &dna, &summary, &questionnaire, &priorities, &preferences,
		&e.CrawlError, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan engineer: %w", err)
	}

	e.Status = status.Engineer(statusStr)
	if len(dna) > 0 {
		e.DNA = &types.DNA{}
		if err := unmarshalJSONB(dna, e.DNA); err != nil {
			return nil, err
		}
	}
	if len(summary) > 0 {
		e.ProfileSummary = &types.ProfileSummary{}
		if err := unmarshalJSONB(summary, e.ProfileSummary); err != nil {
			return nil, err
		}
	}
	if err := unmarshalJSONB(questionnaire, &e.Questionnaire); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(priorities, &e.Priorities); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(preferences, &e.Preferences); err != nil {
		return nil, err
	}
	return &e, nil
}
