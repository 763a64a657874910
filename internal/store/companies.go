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

const companyColumns = `id, name, website_url, careers_url, domain, location, status,
	crawl_data, company_dna, technical_environment, questionnaire,
	discovered_roles, contradictions, crawl_error, created_at, updated_at`

// CreateCompany inserts a new company hiring profile.
func (s *Store) CreateCompany(ctx context.Context, c *Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = status.CompanyDraft
	}

	questionnaire, err := marshalJSONB(c.Questionnaire)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, website_url, careers_url, domain, location, status, questionnaire)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.WebsiteURL, c.CareersURL, c.Domain, c.Location, string(c.Status), questionnaire)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// GetCompany retrieves a company hiring profile by id.
func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (*Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	return scanCompany(row)
}

// UpdateCompanyStatus performs a conditional status write.
func (s *Store) UpdateCompanyStatus(ctx context.Context, id uuid.UUID, from, to status.Company) error {
	if err := from.Transition(to); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update company status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s not in status %s: %w", id, from, ErrStatusConflict)
	}
	return nil
}

// SaveCompanyCrawl overwrites the crawl synthesis, company DNA and technical
// environment, clearing any prior crawl error.
func (s *Store) SaveCompanyCrawl(ctx context.Context, id uuid.UUID, crawl *types.CrawlData, dna *types.CompanyDNA, techEnv string) error {
	crawlJSON, err := marshalJSONB(crawl)
	if err != nil {
		return err
	}
	dnaJSON, err := marshalJSONB(dna)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET crawl_data = $1, company_dna = $2, technical_environment = $3,
			crawl_error = '', updated_at = NOW()
		 WHERE id = $4`,
		crawlJSON, dnaJSON, techEnv, id)
	if err != nil {
		return fmt.Errorf("failed to save company crawl: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetCompanyCrawlError persists a crawl failure message on the profile.
func (s *Store) SetCompanyCrawlError(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE companies SET crawl_error = $1, updated_at = NOW() WHERE id = $2`, msg, id)
	if err != nil {
		return fmt.Errorf("failed to set company crawl error: %w", err)
	}
	return nil
}

// SaveDiscoveredRoles persists the candidate postings found during crawl.
func (s *Store) SaveDiscoveredRoles(ctx context.Context, id uuid.UUID, roles []types.DiscoveredRole) error {
	rolesJSON, err := marshalJSONB(roles)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE companies SET discovered_roles = $1, updated_at = NOW() WHERE id = $2`,
		rolesJSON, id)
	if err != nil {
		return fmt.Errorf("failed to save discovered roles: %w", err)
	}
	return nil
}

// SaveCompanyQuestionnaire persists the whole questionnaire.
func (s *Store) SaveCompanyQuestionnaire(ctx context.Context, id uuid.UUID, q types.CompanyQuestionnaire) error {
	questionnaire, err := marshalJSONB(q)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET questionnaire = $1, updated_at = NOW() WHERE id = $2`,
		questionnaire, id)
	if err != nil {
		return fmt.Errorf("failed to save company questionnaire: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveContradictions overwrites the contradiction list. Merge semantics are
// the caller's responsibility (see the contradiction package).
func (s *Store) SaveContradictions(ctx context.Context, id uuid.UUID, contradictions []types.Contradiction) error {
	data, err := marshalJSONB(contradictions)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE companies SET contradictions = $1, updated_at = NOW() WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("failed to save contradictions: %w", err)
	}
	return nil
}

func scanCompany(row rowScanner) (*Company, error) {
	var (
		c              Company
		statusStr      string
		crawl          []byte
		dna            []byte
		questionnaire  []byte
		discovered     []byte
		contradictions []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.WebsiteURL, &c.CareersURL, &c.Domain, &c.Location,
		&statusStr, &crawl, &dna, &c.TechnicalEnvironment, &questionnaire,
		&discovered, &contradictions, &c.CrawlError, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}

	c.Status = status.Company(statusStr)
	if len(crawl) > 0 {
		c.CrawlData = &types.CrawlData{}
		if err := unmarshalJSONB(crawl, c.CrawlData); err != nil {
			return nil, err
		}
	}
	if len(dna) > 0 {
		c.DNA = &types.CompanyDNA{}
		if err := unmarshalJSONB(dna, c.DNA); err != nil {
			return nil, err
		}
	}
	if err := unmarshalJSONB(questionnaire, &c.Questionnaire); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(discovered, &c.DiscoveredRoles); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(contradictions, &c.Contradictions); err != nil {
		return nil, err
	}
	return &c, nil
}
