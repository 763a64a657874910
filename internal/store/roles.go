package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/types"
)

const roleColumns = `id, company_id, title, location, status, source_url, source_content,
	beautified_jd, jd_feedback, dimension_weights, dimension_weights_raw,
	challenge_enabled, challenge_prompt, public_slug, created_at, updated_at`

// CreateRole inserts a new role. Dimension weights must already validate.
func (s *Store) CreateRole(ctx context.Context, r *Role) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = status.RoleDraft
	}
	if r.PublicSlug == "" {
		r.PublicSlug = uuid.NewString()
	}
	if err := r.Weights.Validate(); err != nil {
		return err
	}

	weights, err := marshalJSONB(r.Weights)
	if err != nil {
		return err
	}
	rawWeights, err := marshalJSONB(r.RawWeights)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO roles (id, company_id, title, location, status, source_url, source_content,
			dimension_weights, dimension_weights_raw, challenge_enabled, challenge_prompt, public_slug)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.CompanyID, r.Title, r.Location, string(r.Status), r.SourceURL, r.SourceContent,
		weights, rawWeights, r.ChallengeEnabled, r.ChallengePrompt, r.PublicSlug)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

// GetRole retrieves a role by id.
func (s *Store) GetRole(ctx context.Context, id uuid.UUID) (*Role, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

// GetRoleBySlug retrieves a role by its public sharing slug.
func (s *Store) GetRoleBySlug(ctx context.Context, slug string) (*Role, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE public_slug = $1`, slug)
	return scanRole(row)
}

// UpdateRoleStatus performs a conditional status write following the role
// transition table.
func (s *Store) UpdateRoleStatus(ctx context.Context, id uuid.UUID, from, to status.Role) error {
	if err := from.Transition(to); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE roles SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update role status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role %s not in status %s: %w", id, from, ErrStatusConflict)
	}
	return nil
}

// SaveBeautifiedJD persists a beautified description and clears the feedback
// that drove the rewrite.
func (s *Store) SaveBeautifiedJD(ctx context.Context, id uuid.UUID, jd *types.BeautifiedJD) error {
	jdJSON, err := marshalJSONB(jd)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE roles SET beautified_jd = $1, jd_feedback = NULL, updated_at = NOW() WHERE id = $2`,
		jdJSON, id)
	if err != nil {
		return fmt.Errorf("failed to save beautified jd: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveJDFeedback persists a structured critique of the current beautified JD.
func (s *Store) SaveJDFeedback(ctx context.Context, id uuid.UUID, fb *types.JDFeedback) error {
	fbJSON, err := marshalJSONB(fb)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE roles SET jd_feedback = $1, updated_at = NOW() WHERE id = $2`, fbJSON, id)
	if err != nil {
		return fmt.Errorf("failed to save jd feedback: %w", err)
	}
	return nil
}

// SaveRoleWeights persists new dimension weights after validation.
func (s *Store) SaveRoleWeights(ctx context.Context, id uuid.UUID, raw types.RawDimensionWeights, weights types.DimensionWeights) error {
	if err := weights.Validate(); err != nil {
		return err
	}
	weightsJSON, err := marshalJSONB(weights)
	if err != nil {
		return err
	}
	rawJSON, err := marshalJSONB(raw)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE roles SET dimension_weights = $1, dimension_weights_raw = $2, updated_at = NOW()
		 WHERE id = $3`,
		weightsJSON, rawJSON, id)
	if err != nil {
		return fmt.Errorf("failed to save role weights: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("role %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRolesByStatus returns all roles in the given status.
func (s *Store) ListRolesByStatus(ctx context.Context, st status.Role) ([]*Role, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE status = $1 ORDER BY created_at`, string(st))
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()
	return collectRoles(rows)
}

// ListRolesForCompany returns all of a company's roles.
func (s *Store) ListRolesForCompany(ctx context.Context, companyID uuid.UUID) ([]*Role, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE company_id = $1 ORDER BY created_at`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company roles: %w", err)
	}
	defer rows.Close()
	return collectRoles(rows)
}

// ListUnscoredActiveRolesForEngineer returns active roles with no existing
// match for the engineer, joined with company name and domain for the
// exclusion filters.
func (s *Store) ListUnscoredActiveRolesForEngineer(ctx context.Context, engineerID uuid.UUID) ([]*RoleCandidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.company_id, r.title, r.location, r.status, r.source_url, r.source_content,
			r.beautified_jd, r.jd_feedback, r.dimension_weights, r.dimension_weights_raw,
			r.challenge_enabled, r.challenge_prompt, r.public_slug, r.created_at, r.updated_at,
			c.name, c.domain
		 FROM roles r
		 JOIN companies c ON c.id = r.company_id
		 WHERE r.status = 'active'
		   AND NOT EXISTS (
			SELECT 1 FROM matches m WHERE m.role_id = r.id AND m.engineer_id = $1
		   )
		 ORDER BY r.created_at`,
		engineerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored roles: %w", err)
	}
	defer rows.Close()

	var candidates []*RoleCandidate
	for rows.Next() {
		rc, err := scanRoleCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, rc)
	}
	return candidates, rows.Err()
}

// ListUnscoredCompleteEngineersForRole returns complete engineers with no
// existing match for the role.
func (s *Store) ListUnscoredCompleteEngineersForRole(ctx context.Context, roleID uuid.UUID) ([]*Engineer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+engineerColumns+` FROM engineers e
		 WHERE e.status = 'complete'
		   AND NOT EXISTS (
			SELECT 1 FROM matches m WHERE m.engineer_id = e.id AND m.role_id = $1
		   )
		 ORDER BY e.created_at`,
		roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored engineers: %w", err)
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

func collectRoles(rows pgx.Rows) ([]*Role, error) {
	var roles []*Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func scanRole(row rowScanner) (*Role, error) {
	var (
		r          Role
		statusStr  string
		jd         []byte
		feedback   []byte
		weights    []byte
		rawWeights []byte
	)
	err := row.Scan(&r.ID, &r.CompanyID, &r.Title, &r.Location, &statusStr,
		&r.SourceURL, &r.SourceContent, &jd, &feedback, &weights, &rawWeights,
		&r.ChallengeEnabled, &r.ChallengePrompt, &r.PublicSlug, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan role: %w", err)
	}

	r.Status = status.Role(statusStr)
	if len(jd) > 0 {
		r.BeautifiedJD = &types.BeautifiedJD{}
		if err := unmarshalJSONB(jd, r.BeautifiedJD); err != nil {
			return nil, err
		}
	}
	if len(feedback) > 0 {
		r.JDFeedback = &types.JDFeedback{}
		if err := unmarshalJSONB(feedback, r.JDFeedback); err != nil {
			return nil, err
		}
	}
	if err := unmarshalJSONB(weights, &r.Weights); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(rawWeights, &r.RawWeights); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRoleCandidate(row rowScanner) (*RoleCandidate, error) {
	var (
		rc         RoleCandidate
		statusStr  string
		jd         []byte
		feedback   []byte
		weights    []byte
		rawWeights []byte
	)
	err := row.Scan(&rc.ID, &rc.CompanyID, &rc.Title, &rc.Location, &statusStr,
		&rc.SourceURL, &rc.SourceContent, &jd, &feedback, &weights, &rawWeights,
		&rc.ChallengeEnabled, &rc.ChallengePrompt, &rc.PublicSlug, &rc.CreatedAt, &rc.UpdatedAt,
		&rc.CompanyName, &rc.CompanyDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to scan role candidate: %w", err)
	}

	rc.Status = status.Role(statusStr)
	if len(jd) > 0 {
		rc.BeautifiedJD = &types.BeautifiedJD{}
		if err := unmarshalJSONB(jd, rc.BeautifiedJD); err != nil {
			return nil, err
		}
	}
	if len(feedback) > 0 {
		rc.JDFeedback = &types.JDFeedback{}
		if err := unmarshalJSONB(feedback, rc.JDFeedback); err != nil {
			return nil, err
		}
	}
	if err := unmarshalJSONB(weights, &rc.Weights); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(rawWeights, &rc.RawWeights); err != nil {
		return nil, err
	}
	return &rc, nil
}
