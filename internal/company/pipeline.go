// Package company turns a company's public pages into a structured hiring
// profile and discovers open roles from its careers pages.
package company

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchforge/matchforge/internal/fetch"
	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/notify"
	"github.com/matchforge/matchforge/internal/prompts"
	"github.com/matchforge/matchforge/internal/schemas"
	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

const (
	maxParallelFetches = 3

	// minRoleConfidence is the floor below which a discovered posting is
	// discarded as noise.
	minRoleConfidence = 0.5
)

// Store is the subset of the persistence layer the pipeline touches.
type Store interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error)
	SaveCompanyCrawl(ctx context.Context, id uuid.UUID, crawl *types.CrawlData, dna *types.CompanyDNA, techEnv string) error
	SetCompanyCrawlError(ctx context.Context, id uuid.UUID, msg string) error
	SaveDiscoveredRoles(ctx context.Context, id uuid.UUID, roles []types.DiscoveredRole) error
	UpdateCompanyStatus(ctx context.Context, id uuid.UUID, from, to status.Company) error
}

// Fetcher retrieves readable text for a URL.
type Fetcher interface {
	Content(ctx context.Context, urlStr string, contentSelectors []string) (string, error)
}

// Pipeline runs the company crawl: profile extraction plus role discovery.
type Pipeline struct {
	store    Store
	fetcher  Fetcher
	client   llm.Client
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewPipeline(st Store, fetcher Fetcher, client llm.Client, notifier notify.Notifier, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{store: st, fetcher: fetcher, client: client, notifier: notifier, logger: log}
}

type crawlResponse struct {
	CompanyDNA           types.CompanyDNA `json:"company_dna"`
	TechnicalEnvironment string           `json:"technical_environment"`
	CrawlData            types.CrawlData  `json:"crawl_data"`
}

type discoveryResponse struct {
	Roles []types.DiscoveredRole `json:"roles"`
}

// Run crawls the company's pages, extracts the hiring profile and scans the
// careers page for open roles. Any discovered role with sufficient
// confidence moves the company to discovering_roles; otherwise it goes
// straight to questionnaire.
func (p *Pipeline) Run(ctx context.Context, companyID uuid.UUID) error {
	c, err := p.store.GetCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("company crawl: %w", err)
	}
	if c.Status != status.CompanyCrawling {
		return fmt.Errorf("company crawl: company %s is %q, want %q", companyID, c.Status, status.CompanyCrawling)
	}
	links := c.CrawlLinks()
	if len(links) == 0 {
		return fmt.Errorf("company crawl: company %s has no links", companyID)
	}

	pages := p.fetchAll(ctx, links)
	if len(pages) == 0 {
		return p.fail(ctx, companyID, "all company pages failed to fetch")
	}

	extracted, err := p.extract(ctx, pages)
	if err != nil {
		p.logger.Error("company extraction failed",
			zap.String("company_id", companyID.String()), zap.Error(err))
		return p.fail(ctx, companyID, err.Error())
	}
	if err := p.store.SaveCompanyCrawl(ctx, companyID, &extracted.CrawlData, &extracted.CompanyDNA, extracted.TechnicalEnvironment); err != nil {
		return fmt.Errorf("company crawl: %w", err)
	}

	// Role discovery only scans careers-page content; a failure here does
	// not fail the crawl, the company just skips the review step.
	discovered := p.discoverRoles(ctx, c, pages)
	next := status.CompanyQuestionnaire
	if len(discovered) > 0 {
		if err := p.store.SaveDiscoveredRoles(ctx, companyID, discovered); err != nil {
			return fmt.Errorf("company crawl: %w", err)
		}
		next = status.CompanyDiscoveringRoles
	}
	if err := p.store.UpdateCompanyStatus(ctx, companyID, status.CompanyCrawling, next); err != nil {
		return fmt.Errorf("company crawl: %w", err)
	}

	p.logger.Info("company crawl complete",
		zap.String("company_id", companyID.String()),
		zap.Int("highlights", len(extracted.CrawlData.Highlights)),
		zap.Int("discovered_roles", len(discovered)),
		zap.String("next_status", string(next)))
	return nil
}

func (p *Pipeline) fetchAll(ctx context.Context, links []string) map[string]string {
	var mu sync.Mutex
	pages := make(map[string]string, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for _, link := range links {
		link := link
		g.Go(func() error {
			text, err := p.fetcher.Content(gctx, link, fetch.CompanyPageSelectors())
			if err != nil {
				p.logger.Warn("company page fetch failed", zap.String("url", link), zap.Error(err))
				return nil
			}
			mu.Lock()
			pages[link] = text
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers swallow their own errors
	return pages
}

func (p *Pipeline) extract(ctx context.Context, pages map[string]string) (*crawlResponse, error) {
	prompt := prompts.Format(prompts.MustGet("profiles.json", "extract-company-profile"), map[string]string{
		"Content": joinPages(pages),
	})

	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("company extraction: %w", err)
	}
	if err := schemas.Validate(schemas.CompanyCrawl, raw); err != nil {
		return nil, fmt.Errorf("company extraction: %w", err)
	}
	var resp crawlResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("company extraction: %w", err)
	}
	return &resp, nil
}

// discoverRoles runs the second inference pass over careers-page content
// and keeps postings at or above the confidence floor.
func (p *Pipeline) discoverRoles(ctx context.Context, c *store.Company, pages map[string]string) []types.DiscoveredRole {
	careersText, ok := pages[c.CareersURL]
	if !ok || c.CareersURL == "" {
		return nil
	}

	prompt := prompts.Format(prompts.MustGet("profiles.json", "discover-roles"), map[string]string{
		"Content": careersText,
	})
	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		p.logger.Warn("role discovery failed", zap.String("company_id", c.ID.String()), zap.Error(err))
		return nil
	}
	if err := schemas.Validate(schemas.RoleDiscovery, raw); err != nil {
		p.logger.Warn("role discovery returned invalid payload", zap.String("company_id", c.ID.String()), zap.Error(err))
		return nil
	}
	var resp discoveryResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		p.logger.Warn("role discovery failed to decode", zap.String("company_id", c.ID.String()), zap.Error(err))
		return nil
	}

	var kept []types.DiscoveredRole
	for _, r := range resp.Roles {
		if r.Confidence >= minRoleConfidence {
			kept = append(kept, r)
		}
	}
	return kept
}

func (p *Pipeline) fail(ctx context.Context, companyID uuid.UUID, msg string) error {
	if err := p.store.SetCompanyCrawlError(ctx, companyID, msg); err != nil {
		return fmt.Errorf("company crawl: %w", err)
	}
	if p.notifier != nil {
		p.notifier.Notify(ctx, companyID, notify.EventCrawlFailed, map[string]string{"error": msg})
	}
	return fmt.Errorf("company crawl: %s", msg)
}

func joinPages(pages map[string]string) string {
	urls := make([]string, 0, len(pages))
	for u := range pages {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	var sb strings.Builder
	for _, u := range urls {
		fmt.Fprintf(&sb, "SOURCE: %s\n%s\n\n---\n\n", u, pages[u])
	}
	return strings.TrimSuffix(sb.String(), "\n\n---\n\n")
}
