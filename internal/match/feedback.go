package match

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matchforge/matchforge/internal/types"
)

// RecordFeedback stores role-side feedback on a match and re-ranks both
// sides, since a feedbacked match leaves the ranked set.
func (e *Engine) RecordFeedback(ctx context.Context, matchID uuid.UUID, fb types.MatchFeedback, category types.FeedbackCategory, reason string) error {
	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	if err := fb.Validate(category); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	if err := e.store.SetMatchFeedback(ctx, matchID, fb, category, reason); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}

	if err := e.rankEngineer(ctx, m.EngineerID); err != nil {
		return err
	}
	return e.rankRole(ctx, m.RoleID)
}

// RecordEngineerDecision stores the engineer's interested/not_interested
// call on a match.
func (e *Engine) RecordEngineerDecision(ctx context.Context, matchID uuid.UUID, decision types.EngineerDecision) error {
	if decision != types.DecisionInterested && decision != types.DecisionNotInterested {
		return fmt.Errorf("record decision: invalid decision %q", decision)
	}
	if err := e.store.SetEngineerDecision(ctx, matchID, decision, time.Now().UTC()); err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// RecordChallengeResponse stores whether the engineer accepted the role's
// challenge.
func (e *Engine) RecordChallengeResponse(ctx context.Context, matchID uuid.UUID, resp types.ChallengeResponse) error {
	if resp != types.ChallengeAccepted && resp != types.ChallengeDeclined {
		return fmt.Errorf("record challenge response: invalid response %q", resp)
	}
	if err := e.store.SetChallengeResponse(ctx, matchID, resp); err != nil {
		return fmt.Errorf("record challenge response: %w", err)
	}
	return nil
}
