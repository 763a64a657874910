// Package profile turns an engineer's public links into structured profile
// data and drives the engineer status lifecycle.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchforge/matchforge/internal/fetch"
	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/logger"
	"github.com/matchforge/matchforge/internal/notify"
	"github.com/matchforge/matchforge/internal/prompts"
	"github.com/matchforge/matchforge/internal/schemas"
	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// maxParallelFetches bounds the per-engineer link fan-out.
const maxParallelFetches = 3

// Store is the subset of the persistence layer the pipeline touches.
type Store interface {
	GetEngineer(ctx context.Context, id uuid.UUID) (*store.Engineer, error)
	SaveEngineerDNA(ctx context.Context, id uuid.UUID, dna *types.DNA, summary *types.ProfileSummary) error
	SetEngineerCrawlError(ctx context.Context, id uuid.UUID, msg string) error
	UpdateEngineerStatus(ctx context.Context, id uuid.UUID, from, to status.Engineer) error
	SaveEngineerQuestionnaire(ctx context.Context, id uuid.UUID, q types.EngineerQuestionnaire, p types.PriorityRatings) error
}

// Fetcher retrieves readable text for a URL.
type Fetcher interface {
	Content(ctx context.Context, urlStr string, contentSelectors []string) (string, error)
}

// MatchTrigger kicks off match computation for a newly completed engineer.
// The pipeline fires it and moves on; scoring runs in the background.
type MatchTrigger func(engineerID uuid.UUID)

// Pipeline runs the engineer crawl and questionnaire stages.
type Pipeline struct {
	store    Store
	fetcher  Fetcher
	client   llm.Client
	notifier notify.Notifier
	onMatch  MatchTrigger
	logger   *zap.Logger
}

func NewPipeline(st Store, fetcher Fetcher, client llm.Client, notifier notify.Notifier, onMatch MatchTrigger, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if onMatch == nil {
		onMatch = func(uuid.UUID) {}
	}
	return &Pipeline{store: st, fetcher: fetcher, client: client, notifier: notifier, onMatch: onMatch, logger: log}
}

type extractionResponse struct {
	DNA            types.DNA            `json:"dna"`
	ProfileSummary types.ProfileSummary `json:"profile_summary"`
}

// Run crawls the engineer's links, extracts structured profile data and
// advances crawling to questionnaire. Individual link failures are
// tolerated; extraction failure leaves the engineer in crawling with the
// error persisted.
func (p *Pipeline) Run(ctx context.Context, engineerID uuid.UUID) error {
	eng, err := p.store.GetEngineer(ctx, engineerID)
	if err != nil {
		return fmt.Errorf("engineer crawl: %w", err)
	}
	if eng.Status != status.EngineerCrawling {
		return fmt.Errorf("engineer crawl: engineer %s is %q, want %q", engineerID, eng.Status, status.EngineerCrawling)
	}
	links := eng.Links()
	if len(links) == 0 {
		return fmt.Errorf("engineer crawl: engineer %s has no links", engineerID)
	}

	sources := p.fetchAll(ctx, links)
	if len(sources) == 0 {
		return p.fail(ctx, engineerID, "all profile links failed to fetch")
	}

	extracted, err := p.extract(ctx, sources)
	if err != nil {
		p.logger.Error("engineer extraction failed",
			zap.String("engineer_id", engineerID.String()), zap.Error(err))
		return p.fail(ctx, engineerID, err.Error())
	}

	if err := p.store.SaveEngineerDNA(ctx, engineerID, &extracted.DNA, &extracted.ProfileSummary); err != nil {
		return fmt.Errorf("engineer crawl: %w", err)
	}
	if err := p.store.UpdateEngineerStatus(ctx, engineerID, status.EngineerCrawling, status.EngineerQuestionnaire); err != nil {
		return fmt.Errorf("engineer crawl: %w", err)
	}

	p.logger.Info("engineer crawl complete",
		zap.String("engineer_id", engineerID.String()),
		zap.Int("sources", len(sources)),
		zap.Strings("top_skills", extracted.DNA.TopSkills))
	return nil
}

// CompleteQuestionnaire persists the answers and priorities, marks the
// profile complete and triggers match computation for this engineer.
func (p *Pipeline) CompleteQuestionnaire(ctx context.Context, engineerID uuid.UUID, q types.EngineerQuestionnaire, prio types.PriorityRatings) error {
	eng, err := p.store.GetEngineer(ctx, engineerID)
	if err != nil {
		return fmt.Errorf("complete questionnaire: %w", err)
	}

	if err := p.store.SaveEngineerQuestionnaire(ctx, engineerID, q, prio); err != nil {
		return fmt.Errorf("complete questionnaire: %w", err)
	}

	// Re-saving an already complete profile keeps its status.
	if eng.Status == status.EngineerQuestionnaire {
		if err := p.store.UpdateEngineerStatus(ctx, engineerID, status.EngineerQuestionnaire, status.EngineerComplete); err != nil {
			return fmt.Errorf("complete questionnaire: %w", err)
		}
	} else if eng.Status != status.EngineerComplete {
		return fmt.Errorf("complete questionnaire: engineer %s is %q", engineerID, eng.Status)
	}

	p.onMatch(engineerID)
	return nil
}

// fetchAll retrieves each link, dropping the ones that fail.
func (p *Pipeline) fetchAll(ctx context.Context, links []string) []string {
	var mu sync.Mutex
	sources := make(map[string]string, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for _, link := range links {
		link := link
		g.Go(func() error {
			text, err := p.fetcher.Content(gctx, link, fetch.DefaultTextSelectors())
			if err != nil {
				p.logger.Warn("profile link fetch failed", zap.String("url", link), zap.Error(err))
				return nil
			}
			mu.Lock()
			sources[link] = text
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers swallow their own errors

	// Preserve link order for a stable prompt.
	var out []string
	for _, link := range links {
		if text, ok := sources[link]; ok {
			out = append(out, fmt.Sprintf("SOURCE: %s\n%s", link, text))
		}
	}
	return out
}

func (p *Pipeline) extract(ctx context.Context, sources []string) (*extractionResponse, error) {
	prompt := prompts.Format(prompts.MustGet("profiles.json", "extract-engineer-dna"), map[string]string{
		"Content": strings.Join(sources, "\n\n---\n\n"),
	})
	p.logger.Debug("extracting engineer dna", zap.String("prompt", logger.TruncateForLog(prompt, 300)))

	raw, err := p.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("dna extraction: %w", err)
	}
	if err := schemas.Validate(schemas.EngineerDNA, raw); err != nil {
		return nil, fmt.Errorf("dna extraction: %w", err)
	}
	var resp extractionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("dna extraction: %w", err)
	}
	return &resp, nil
}

// fail records the crawl error and leaves the engineer in crawling so the
// run can be retried.
func (p *Pipeline) fail(ctx context.Context, engineerID uuid.UUID, msg string) error {
	if err := p.store.SetEngineerCrawlError(ctx, engineerID, msg); err != nil {
		return fmt.Errorf("engineer crawl: %w", err)
	}
	if p.notifier != nil {
		p.notifier.Notify(ctx, engineerID, notify.EventCrawlFailed, map[string]string{"error": msg})
	}
	return fmt.Errorf("engineer crawl: %s", msg)
}
