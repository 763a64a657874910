// Package match scores engineer/role pairs across the five fixed
// dimensions and maintains the ranked match lists.
package match

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/notify"
	"github.com/matchforge/matchforge/internal/prompts"
	"github.com/matchforge/matchforge/internal/schemas"
	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// Store is the persistence surface of the match engine.
type Store interface {
	GetEngineer(ctx context.Context, id uuid.UUID) (*store.Engineer, error)
	GetRole(ctx context.Context, id uuid.UUID) (*store.Role, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error)
	ListUnscoredActiveRolesForEngineer(ctx context.Context, engineerID uuid.UUID) ([]*store.RoleCandidate, error)
	ListUnscoredCompleteEngineersForRole(ctx context.Context, roleID uuid.UUID) ([]*store.Engineer, error)
	InsertMatch(ctx context.Context, m *store.Match) (bool, error)
	DeleteMatch(ctx context.Context, roleID, engineerID uuid.UUID) error
	ListUnfeedbackedMatchesForEngineer(ctx context.Context, engineerID uuid.UUID) ([]*store.Match, error)
	ListUnfeedbackedMatchesForRole(ctx context.Context, roleID uuid.UUID) ([]*store.Match, error)
	SetDisplayRank(ctx context.Context, matchID uuid.UUID, rank int) error
	SetMatchFeedback(ctx context.Context, matchID uuid.UUID, fb types.MatchFeedback, category types.FeedbackCategory, reason string) error
	SetEngineerDecision(ctx context.Context, matchID uuid.UUID, decision types.EngineerDecision, at time.Time) error
	SetChallengeResponse(ctx context.Context, matchID uuid.UUID, resp types.ChallengeResponse) error
	GetMatch(ctx context.Context, id uuid.UUID) (*store.Match, error)
}

// Engine computes and ranks matches. Both entry points are safe to invoke
// concurrently for the same subject: pair uniqueness in the store turns a
// duplicate scoring result into a skipped insert.
type Engine struct {
	store    Store
	client   llm.Client
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewEngine(st Store, client llm.Client, notifier notify.Notifier, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: st, client: client, notifier: notifier, logger: log}
}

// Result summarizes one engine run.
type Result struct {
	Scored   int // pairs sent to scoring
	Inserted int // matches actually created
	Excluded int // candidates dropped by exclusion filters
}

// ForEngineer scores every active, not-yet-scored role against one complete
// engineer, then re-ranks the engineer's feedback-less matches.
func (e *Engine) ForEngineer(ctx context.Context, engineerID uuid.UUID) (*Result, error) {
	eng, err := e.store.GetEngineer(ctx, engineerID)
	if err != nil {
		return nil, fmt.Errorf("match engineer: %w", err)
	}
	if eng.Status != status.EngineerComplete {
		return nil, fmt.Errorf("match engineer: engineer %s is %q, want %q", engineerID, eng.Status, status.EngineerComplete)
	}

	candidates, err := e.store.ListUnscoredActiveRolesForEngineer(ctx, engineerID)
	if err != nil {
		return nil, fmt.Errorf("match engineer: %w", err)
	}

	res := &Result{}
	for _, rc := range candidates {
		if dropped, rule := Excluded(eng.Preferences, rc); dropped {
			res.Excluded++
			e.logger.Debug("role excluded by preference",
				zap.String("engineer_id", engineerID.String()),
				zap.String("role_id", rc.ID.String()),
				zap.String("rule", rule))
			continue
		}
		inserted, err := e.scorePair(ctx, &rc.Role, eng)
		if err != nil {
			e.logger.Error("pair scoring failed",
				zap.String("engineer_id", engineerID.String()),
				zap.String("role_id", rc.ID.String()), zap.Error(err))
			continue
		}
		res.Scored++
		if inserted {
			res.Inserted++
		}
	}

	if err := e.rankEngineer(ctx, engineerID); err != nil {
		return res, err
	}
	if res.Inserted > 0 && e.notifier != nil {
		e.notifier.Notify(ctx, engineerID, notify.EventMatchesReady, map[string]string{
			"new_matches": fmt.Sprintf("%d", res.Inserted),
		})
	}
	return res, nil
}

// ForRole is the mirror operation: scores one active role against every
// complete, not-yet-scored engineer, honoring each engineer's exclusions.
func (e *Engine) ForRole(ctx context.Context, roleID uuid.UUID) (*Result, error) {
	role, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("match role: %w", err)
	}
	if role.Status != status.RoleActive {
		return nil, fmt.Errorf("match role: role %s is %q, want %q", roleID, role.Status, status.RoleActive)
	}
	company, err := e.store.GetCompany(ctx, role.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("match role: %w", err)
	}
	candidate := &store.RoleCandidate{Role: *role, CompanyName: company.Name, CompanyDomain: company.Domain}

	engineers, err := e.store.ListUnscoredCompleteEngineersForRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("match role: %w", err)
	}

	res := &Result{}
	for _, eng := range engineers {
		if dropped, rule := Excluded(eng.Preferences, candidate); dropped {
			res.Excluded++
			e.logger.Debug("engineer excluded role",
				zap.String("engineer_id", eng.ID.String()),
				zap.String("role_id", roleID.String()),
				zap.String("rule", rule))
			continue
		}
		inserted, err := e.scorePair(ctx, role, eng)
		if err != nil {
			e.logger.Error("pair scoring failed",
				zap.String("engineer_id", eng.ID.String()),
				zap.String("role_id", roleID.String()), zap.Error(err))
			continue
		}
		res.Scored++
		if inserted {
			res.Inserted++
		}
	}

	if err := e.rankRole(ctx, roleID); err != nil {
		return res, err
	}
	if res.Inserted > 0 && e.notifier != nil {
		e.notifier.Notify(ctx, role.CompanyID, notify.EventRoleMatches, map[string]string{
			"role_id":     roleID.String(),
			"new_matches": fmt.Sprintf("%d", res.Inserted),
		})
	}
	return res, nil
}

// Recompute forces a rescore of one already-scored pair. The existing match
// row, including its feedback, is discarded first.
func (e *Engine) Recompute(ctx context.Context, roleID, engineerID uuid.UUID) error {
	role, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("recompute match: %w", err)
	}
	if role.Status != status.RoleActive {
		return fmt.Errorf("recompute match: role %s is %q, want %q", roleID, role.Status, status.RoleActive)
	}
	eng, err := e.store.GetEngineer(ctx, engineerID)
	if err != nil {
		return fmt.Errorf("recompute match: %w", err)
	}
	if eng.Status != status.EngineerComplete {
		return fmt.Errorf("recompute match: engineer %s is %q, want %q", engineerID, eng.Status, status.EngineerComplete)
	}

	if err := e.store.DeleteMatch(ctx, roleID, engineerID); err != nil {
		return fmt.Errorf("recompute match: %w", err)
	}
	if _, err := e.scorePair(ctx, role, eng); err != nil {
		return fmt.Errorf("recompute match: %w", err)
	}
	if err := e.rankEngineer(ctx, engineerID); err != nil {
		return err
	}
	return e.rankRole(ctx, roleID)
}

type scoreResponse struct {
	Mission        int    `json:"mission"`
	Technical      int    `json:"technical"`
	Culture        int    `json:"culture"`
	Environment    int    `json:"environment"`
	DNA            int    `json:"dna"`
	HighlightQuote string `json:"highlight_quote"`
}

// scorePair runs the single scoring call for one pair and inserts the
// match, reporting whether a row was created. A concurrent run winning the
// insert race is not an error.
func (e *Engine) scorePair(ctx context.Context, role *store.Role, eng *store.Engineer) (bool, error) {
	prompt := prompts.Format(prompts.MustGet("matching.json", "score-match"), map[string]string{
		"Role":     describeRole(role),
		"Weights":  describeWeights(role.Weights),
		"Engineer": describeEngineer(eng),
	})

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return false, fmt.Errorf("scoring: %w", err)
	}
	if err := schemas.Validate(schemas.MatchScores, raw); err != nil {
		return false, fmt.Errorf("scoring: %w", err)
	}
	var resp scoreResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return false, fmt.Errorf("scoring: %w", err)
	}

	scores := types.DimensionScores{
		Mission:     resp.Mission,
		Technical:   resp.Technical,
		Culture:     resp.Culture,
		Environment: resp.Environment,
		DNA:         resp.DNA,
	}.Clamp()

	m := &store.Match{
		RoleID:          role.ID,
		EngineerID:      eng.ID,
		OverallScore:    types.OverallScore(scores, role.Weights),
		DimensionScores: scores,
		HighlightQuote:  resp.HighlightQuote,
	}
	inserted, err := e.store.InsertMatch(ctx, m)
	if err != nil {
		return false, fmt.Errorf("scoring: %w", err)
	}
	if !inserted {
		e.logger.Debug("pair already scored",
			zap.String("role_id", role.ID.String()),
			zap.String("engineer_id", eng.ID.String()))
	}
	return inserted, nil
}

// rankEngineer reassigns display_rank over the engineer's feedback-less
// matches, best overall score first.
func (e *Engine) rankEngineer(ctx context.Context, engineerID uuid.UUID) error {
	matches, err := e.store.ListUnfeedbackedMatchesForEngineer(ctx, engineerID)
	if err != nil {
		return fmt.Errorf("rank engineer matches: %w", err)
	}
	return e.assignRanks(ctx, matches)
}

func (e *Engine) rankRole(ctx context.Context, roleID uuid.UUID) error {
	matches, err := e.store.ListUnfeedbackedMatchesForRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("rank role matches: %w", err)
	}
	return e.assignRanks(ctx, matches)
}

// assignRanks writes 1-based ranks in list order. The store lists already
// sort by overall score descending.
func (e *Engine) assignRanks(ctx context.Context, matches []*store.Match) error {
	for i, m := range matches {
		rank := i + 1
		if m.DisplayRank == rank {
			continue
		}
		if err := e.store.SetDisplayRank(ctx, m.ID, rank); err != nil {
			return fmt.Errorf("assign display rank: %w", err)
		}
	}
	return nil
}
