package role

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

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

// Store is the persistence surface of the beautification flow.
type Store interface {
	GetRole(ctx context.Context, id uuid.UUID) (*store.Role, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error)
	SaveBeautifiedJD(ctx context.Context, id uuid.UUID, jd *types.BeautifiedJD) error
	UpdateRoleStatus(ctx context.Context, id uuid.UUID, from, to status.Role) error
}

// MatchTrigger kicks off match computation for a newly activated role.
type MatchTrigger func(roleID uuid.UUID)

// Beautifier rewrites raw postings into candidate-facing descriptions and
// drives the draft -> beautifying -> active lifecycle.
type Beautifier struct {
	store     Store
	client    llm.Client
	extractor *Extractor
	notifier  notify.Notifier
	onMatch   MatchTrigger
	logger    *zap.Logger
}

func NewBeautifier(st Store, client llm.Client, extractor *Extractor, notifier notify.Notifier, onMatch MatchTrigger, log *zap.Logger) *Beautifier {
	if log == nil {
		log = zap.NewNop()
	}
	if onMatch == nil {
		onMatch = func(uuid.UUID) {}
	}
	return &Beautifier{store: st, client: client, extractor: extractor, notifier: notifier, onMatch: onMatch, logger: log}
}

// Run beautifies one role. Drafts are moved to beautifying first. On
// success the pending feedback is cleared, the role activates and match
// computation starts; on failure the role falls back to draft.
func (b *Beautifier) Run(ctx context.Context, roleID uuid.UUID) error {
	r, err := b.store.GetRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("beautify role: %w", err)
	}

	switch r.Status {
	case status.RoleDraft:
		if err := b.store.UpdateRoleStatus(ctx, roleID, status.RoleDraft, status.RoleBeautifying); err != nil {
			return fmt.Errorf("beautify role: %w", err)
		}
	case status.RoleBeautifying:
		// retry of an interrupted run
	default:
		return fmt.Errorf("beautify role: role %s is %q", roleID, r.Status)
	}

	company, err := b.store.GetCompany(ctx, r.CompanyID)
	if err != nil {
		return b.fallBack(ctx, roleID, fmt.Errorf("beautify role: %w", err))
	}

	jd, err := b.beautify(ctx, r, company)
	if err != nil {
		b.logger.Error("beautification failed", zap.String("role_id", roleID.String()), zap.Error(err))
		return b.fallBack(ctx, roleID, err)
	}

	// SaveBeautifiedJD clears the pending feedback alongside the new draft.
	if err := b.store.SaveBeautifiedJD(ctx, roleID, jd); err != nil {
		return b.fallBack(ctx, roleID, fmt.Errorf("beautify role: %w", err))
	}
	if err := b.store.UpdateRoleStatus(ctx, roleID, status.RoleBeautifying, status.RoleActive); err != nil {
		return fmt.Errorf("beautify role: %w", err)
	}

	if b.notifier != nil {
		b.notifier.Notify(ctx, r.CompanyID, notify.EventRoleActivated, map[string]string{
			"role_id": roleID.String(),
			"title":   r.Title,
		})
	}
	b.onMatch(roleID)

	b.logger.Info("role activated", zap.String("role_id", roleID.String()), zap.String("title", r.Title))
	return nil
}

// RunBatch beautifies several roles with per-item isolation. It returns the
// ids that activated; failures are logged and reported per item.
func (b *Beautifier) RunBatch(ctx context.Context, roleIDs []uuid.UUID) (activated []uuid.UUID, failed map[uuid.UUID]error) {
	failed = make(map[uuid.UUID]error)
	for _, id := range roleIDs {
		if err := b.Run(ctx, id); err != nil {
			failed[id] = err
			continue
		}
		activated = append(activated, id)
	}
	return activated, failed
}

type beautifyResponse struct {
	Requirements map[string]string  `json:"requirements"`
	TeamContext  types.ProseSection `json:"team_context"`
	WorkingVibe  types.ProseSection `json:"working_vibe"`
	CultureCheck types.ProseSection `json:"culture_check"`
}

func (b *Beautifier) beautify(ctx context.Context, r *store.Role, company *store.Company) (*types.BeautifiedJD, error) {
	refinement := ""
	if !r.JDFeedback.Empty() {
		if r.BeautifiedJD == nil {
			return nil, fmt.Errorf("beautify role: feedback present but no previous draft")
		}
		previous, err := json.Marshal(r.BeautifiedJD)
		if err != nil {
			return nil, fmt.Errorf("beautify role: %w", err)
		}
		refinement = prompts.Format(prompts.MustGet("roles.json", "beautify-refinement"), map[string]string{
			"PreviousDraft": string(previous),
			"Feedback":      formatFeedback(r.JDFeedback),
		})
	}

	prompt := prompts.Format(prompts.MustGet("roles.json", "beautify-jd"), map[string]string{
		"CompanyContext":  companyContext(company),
		"RawText":         r.SourceContent,
		"Requirements":    b.requirementsHint(ctx, r),
		"RefinementBlock": refinement,
	})

	raw, err := b.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("beautification: %w", err)
	}
	if err := schemas.Validate(schemas.BeautifiedJD, raw); err != nil {
		return nil, fmt.Errorf("beautification: %w", err)
	}
	var resp beautifyResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("beautification: %w", err)
	}

	jd := &types.BeautifiedJD{
		Requirements: resp.Requirements,
		TeamContext:  normalizeSection(resp.TeamContext),
		WorkingVibe:  normalizeSection(resp.WorkingVibe),
		CultureCheck: normalizeSection(resp.CultureCheck),
	}
	return jd, nil
}

// requirementsHint recovers structured requirements for the beautify
// prompt. A previous draft already has them; otherwise they are
// re-extracted from the raw posting. Failures just leave the hint empty.
func (b *Beautifier) requirementsHint(ctx context.Context, r *store.Role) string {
	if r.BeautifiedJD != nil && len(r.BeautifiedJD.Requirements) > 0 {
		return formatRequirements(r.BeautifiedJD.Requirements)
	}
	if b.extractor == nil {
		return ""
	}
	jd, err := b.extractor.FromText(ctx, r.Title, r.SourceContent)
	if err != nil {
		b.logger.Warn("requirement extraction failed", zap.String("role_id", r.ID.String()), zap.Error(err))
		return ""
	}
	return formatRequirements(jd.Requirements)
}

// fallBack returns the role to draft after a failed run, keeping the
// original error.
func (b *Beautifier) fallBack(ctx context.Context, roleID uuid.UUID, cause error) error {
	if err := b.store.UpdateRoleStatus(ctx, roleID, status.RoleBeautifying, status.RoleDraft); err != nil {
		b.logger.Error("failed to return role to draft", zap.String("role_id", roleID.String()), zap.Error(err))
	}
	return cause
}

func normalizeSection(s types.ProseSection) types.ProseSection {
	s.Sentiment = types.ParseSentiment(string(s.Sentiment))
	return s
}

func companyContext(c *store.Company) string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	if c.DNA != nil {
		fmt.Fprintf(&sb, "\n%s\nMission: %s", c.DNA.Summary, c.DNA.Mission)
		if len(c.DNA.Values) > 0 {
			fmt.Fprintf(&sb, "\nValues: %s", strings.Join(c.DNA.Values, ", "))
		}
	}
	if c.TechnicalEnvironment != "" {
		fmt.Fprintf(&sb, "\nEngineering: %s", c.TechnicalEnvironment)
	}
	return sb.String()
}

func formatRequirements(reqs map[string]string) string {
	keys := make([]string, 0, len(reqs))
	for k := range reqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, reqs[k]))
	}
	return strings.Join(lines, "\n")
}

func formatFeedback(f *types.JDFeedback) string {
	var lines []string
	for key, item := range f.Requirements {
		lines = append(lines, fmt.Sprintf("requirement %q (%s): %s", key, item.Sentiment, item.Note))
	}
	for key, item := range f.Sections {
		lines = append(lines, fmt.Sprintf("section %q (%s): %s", key, item.Sentiment, item.Note))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
