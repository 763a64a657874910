// Package prefs maintains an engineer's learned exclusion rules from
// not_a_fit feedback.
package prefs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// Store is the persistence surface of the learner.
type Store interface {
	GetEngineer(ctx context.Context, id uuid.UUID) (*store.Engineer, error)
	GetRole(ctx context.Context, id uuid.UUID) (*store.Role, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error)
	SaveEngineerPreferences(ctx context.Context, id uuid.UUID, p types.MatchingPreferences) error
}

// Learner turns categorized not_a_fit feedback into exclusion rules.
type Learner struct {
	store  Store
	logger *zap.Logger
}

func NewLearner(st Store, log *zap.Logger) *Learner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Learner{store: st, logger: log}
}

// Apply updates the engineer's preferences for one feedback event. Only
// wrong_location and company_not_interesting teach anything; other
// categories are a no-op. Duplicate rules are not re-added.
func (l *Learner) Apply(ctx context.Context, m *store.Match, category types.FeedbackCategory) error {
	if category != types.CategoryWrongLocation && category != types.CategoryCompanyNotInteresting {
		return nil
	}

	eng, err := l.store.GetEngineer(ctx, m.EngineerID)
	if err != nil {
		return fmt.Errorf("apply preference: %w", err)
	}
	role, err := l.store.GetRole(ctx, m.RoleID)
	if err != nil {
		return fmt.Errorf("apply preference: %w", err)
	}

	prefs := eng.Preferences
	var added bool
	var rule string

	switch category {
	case types.CategoryWrongLocation:
		if role.Location == "" {
			return nil
		}
		added = prefs.AddLocation(role.Location)
		rule = "location:" + role.Location
	case types.CategoryCompanyNotInteresting:
		company, err := l.store.GetCompany(ctx, role.CompanyID)
		if err != nil {
			return fmt.Errorf("apply preference: %w", err)
		}
		if company.Domain == "" {
			return nil
		}
		added = prefs.AddCompanyDomain(company.Domain)
		rule = "domain:" + company.Domain
	}

	if !added {
		return nil
	}
	if err := l.store.SaveEngineerPreferences(ctx, m.EngineerID, prefs); err != nil {
		return fmt.Errorf("apply preference: %w", err)
	}
	l.logger.Info("exclusion rule learned",
		zap.String("engineer_id", m.EngineerID.String()),
		zap.String("rule", rule))
	return nil
}

// Remove drops one exclusion value from the engineer's preferences. This
// is the only way a learned rule goes away.
func (l *Learner) Remove(ctx context.Context, engineerID uuid.UUID, value string) error {
	eng, err := l.store.GetEngineer(ctx, engineerID)
	if err != nil {
		return fmt.Errorf("remove preference: %w", err)
	}

	prefs := eng.Preferences
	if !prefs.Remove(value) {
		return fmt.Errorf("remove preference %q: %w", value, store.ErrNotFound)
	}
	if err := l.store.SaveEngineerPreferences(ctx, engineerID, prefs); err != nil {
		return fmt.Errorf("remove preference: %w", err)
	}
	return nil
}
