package company

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/contradiction"
	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// QuestionnaireStore is the persistence surface of the questionnaire flow.
type QuestionnaireStore interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error)
	SaveCompanyQuestionnaire(ctx context.Context, id uuid.UUID, q types.CompanyQuestionnaire) error
	SaveContradictions(ctx context.Context, id uuid.UUID, contradictions []types.Contradiction) error
	UpdateCompanyStatus(ctx context.Context, id uuid.UUID, from, to status.Company) error
}

// ContradictionDetector checks one section's answers against crawl evidence.
type ContradictionDetector interface {
	Detect(ctx context.Context, section string, answers types.QuestionnaireSection, crawl *types.CrawlData) ([]types.Contradiction, error)
}

// Questionnaire handles section saves with contradiction checking and the
// company completion step.
type Questionnaire struct {
	store    QuestionnaireStore
	detector ContradictionDetector
	logger   *zap.Logger
}

func NewQuestionnaire(st QuestionnaireStore, detector ContradictionDetector, log *zap.Logger) *Questionnaire {
	if log == nil {
		log = zap.NewNop()
	}
	return &Questionnaire{store: st, detector: detector, logger: log}
}

// SaveSection stores one section's answers, re-runs contradiction detection
// for that section and merges the result into the stored contradictions.
// It returns the contradictions found in this save.
func (q *Questionnaire) SaveSection(ctx context.Context, companyID uuid.UUID, section string, answers types.QuestionnaireSection) ([]types.Contradiction, error) {
	c, err := q.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("save questionnaire section: %w", err)
	}

	questionnaire := c.Questionnaire
	if !questionnaire.SetSection(section, answers) {
		return nil, fmt.Errorf("save questionnaire section: unknown section %q", section)
	}
	if err := q.store.SaveCompanyQuestionnaire(ctx, companyID, questionnaire); err != nil {
		return nil, fmt.Errorf("save questionnaire section: %w", err)
	}

	fresh, err := q.detector.Detect(ctx, section, answers, c.CrawlData)
	if err != nil {
		// Answers are saved; a detection outage should not lose them.
		q.logger.Warn("contradiction detection failed",
			zap.String("company_id", companyID.String()),
			zap.String("section", section), zap.Error(err))
		return nil, nil
	}

	answeredIDs := make([]string, 0, len(answers))
	for id := range answers {
		answeredIDs = append(answeredIDs, id)
	}
	merged := contradiction.Merge(c.Contradictions, fresh, section, answeredIDs)
	if err := q.store.SaveContradictions(ctx, companyID, merged); err != nil {
		return nil, fmt.Errorf("save questionnaire section: %w", err)
	}
	return fresh, nil
}

// ResolveContradiction marks every stored contradiction for the question as
// resolved. The entries stay on the company so that re-answering the same
// question later re-evaluates it from scratch.
func (q *Questionnaire) ResolveContradiction(ctx context.Context, companyID uuid.UUID, questionID string) ([]types.Contradiction, error) {
	c, err := q.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("resolve contradiction: %w", err)
	}

	contras := make([]types.Contradiction, len(c.Contradictions))
	copy(contras, c.Contradictions)
	found := false
	for i := range contras {
		if contras[i].QuestionID == questionID {
			contras[i].Resolved = true
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("resolve contradiction %q: %w", questionID, store.ErrNotFound)
	}
	if err := q.store.SaveContradictions(ctx, companyID, contras); err != nil {
		return nil, fmt.Errorf("resolve contradiction: %w", err)
	}
	return contras, nil
}

// Complete marks the company profile complete. Companies still in role
// review pass through questionnaire first.
func (q *Questionnaire) Complete(ctx context.Context, companyID uuid.UUID) error {
	c, err := q.store.GetCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("complete company: %w", err)
	}

	if c.Status == status.CompanyDiscoveringRoles {
		if err := q.store.UpdateCompanyStatus(ctx, companyID, status.CompanyDiscoveringRoles, status.CompanyQuestionnaire); err != nil {
			return fmt.Errorf("complete company: %w", err)
		}
		c.Status = status.CompanyQuestionnaire
	}
	if err := q.store.UpdateCompanyStatus(ctx, companyID, c.Status, status.CompanyComplete); err != nil {
		return fmt.Errorf("complete company: %w", err)
	}
	return nil
}
