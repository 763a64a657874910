package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/matchforge/matchforge/internal/types"
)

const matchColumns = `id, role_id, engineer_id, overall_score, dimension_scores, highlight_quote,
	display_rank, feedback, feedback_category, feedback_reason,
	engineer_decision, engineer_decided_at, challenge_response, created_at`

// InsertMatch inserts a scored pair, reporting whether a row was actually
// inserted. A concurrent insert of the same (role, engineer) pair is skipped
// via the unique constraint rather than a lock.
func (s *Store) InsertMatch(ctx context.Context, m *Match) (bool, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	scores, err := marshalJSONB(m.DimensionScores)
	if err != nil {
		return false, err
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO matches (id, role_id, engineer_id, overall_score, dimension_scores, highlight_quote, display_rank)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (role_id, engineer_id) DO NOTHING`,
		m.ID, m.RoleID, m.EngineerID, m.OverallScore, scores, m.HighlightQuote, m.DisplayRank)
	if err != nil {
		return false, fmt.Errorf("failed to insert match: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteMatch removes a match row. Used only by forced recompute.
func (s *Store) DeleteMatch(ctx context.Context, roleID, engineerID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM matches WHERE role_id = $1 AND engineer_id = $2`, roleID, engineerID)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return nil
}

// GetMatch retrieves a match by id.
func (s *Store) GetMatch(ctx context.Context, id uuid.UUID) (*Match, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

// ListMatchesForEngineer returns the engineer's matches, best rank first.
// Ranks are only maintained over feedback-less matches, so matches that
// already got feedback sort after the ranked set, best score first.
func (s *Store) ListMatchesForEngineer(ctx context.Context, engineerID uuid.UUID) ([]*Match, error) {
	return s.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE engineer_id = $1
		 ORDER BY feedback <> '', display_rank, overall_score DESC`, engineerID)
}

// ListMatchesForRole returns the role's matches, best rank first, with
// feedbacked matches after the ranked set.
func (s *Store) ListMatchesForRole(ctx context.Context, roleID uuid.UUID) ([]*Match, error) {
	return s.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE role_id = $1
		 ORDER BY feedback <> '', display_rank, overall_score DESC`, roleID)
}

// ListUnfeedbackedMatchesForEngineer returns the engineer's matches that
// have no company feedback yet, highest score first. Display ranks are
// assigned over this set.
func (s *Store) ListUnfeedbackedMatchesForEngineer(ctx context.Context, engineerID uuid.UUID) ([]*Match, error) {
	return s.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE engineer_id = $1 AND feedback = ''
		 ORDER BY overall_score DESC, created_at`, engineerID)
}

// ListUnfeedbackedMatchesForRole is the role-side mirror used for ranking.
func (s *Store) ListUnfeedbackedMatchesForRole(ctx context.Context, roleID uuid.UUID) ([]*Match, error) {
	return s.listMatches(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE role_id = $1 AND feedback = ''
		 ORDER BY overall_score DESC, created_at`, roleID)
}

// SetDisplayRank updates a single match's display rank.
func (s *Store) SetDisplayRank(ctx context.Context, matchID uuid.UUID, rank int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE matches SET display_rank = $1 WHERE id = $2`, rank, matchID)
	if err != nil {
		return fmt.Errorf("failed to set display rank: %w", err)
	}
	return nil
}

// SetMatchFeedback records company-side feedback on a match.
func (s *Store) SetMatchFeedback(ctx context.Context, matchID uuid.UUID, fb types.MatchFeedback, category types.FeedbackCategory, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET feedback = $1, feedback_category = $2, feedback_reason = $3 WHERE id = $4`,
		string(fb), string(category), reason, matchID)
	if err != nil {
		return fmt.Errorf("failed to set match feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return nil
}

// SetEngineerDecision records the engineer-side verdict with its timestamp.
func (s *Store) SetEngineerDecision(ctx context.Context, matchID uuid.UUID, decision types.EngineerDecision, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET engineer_decision = $1, engineer_decided_at = $2 WHERE id = $3`,
		string(decision), at, matchID)
	if err != nil {
		return fmt.Errorf("failed to set engineer decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return nil
}

// SetChallengeResponse records whether the engineer accepted the challenge.
func (s *Store) SetChallengeResponse(ctx context.Context, matchID uuid.UUID, resp types.ChallengeResponse) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE matches SET challenge_response = $1 WHERE id = $2`, string(resp), matchID)
	if err != nil {
		return fmt.Errorf("failed to set challenge response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return nil
}

// CreateSubmission inserts the single allowed challenge submission for a
// match; a second submission returns ErrDuplicate.
func (s *Store) CreateSubmission(ctx context.Context, sub *ChallengeSubmission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO challenge_submissions (id, match_id, response_text, link_url, file_url,
			auto_score, auto_reasoning, final_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.MatchID, sub.ResponseText, sub.LinkURL, sub.FileURL,
		sub.AutoScore, sub.AutoReasoning, sub.FinalScore)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("submission for match %s: %w", sub.MatchID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetSubmissionByMatch retrieves the submission for a match.
func (s *Store) GetSubmissionByMatch(ctx context.Context, matchID uuid.UUID) (*ChallengeSubmission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, match_id, response_text, link_url, file_url, auto_score, auto_reasoning,
			human_score, human_feedback, reviewed_by, final_score, created_at, updated_at
		 FROM challenge_submissions WHERE match_id = $1`, matchID)

	var sub ChallengeSubmission
	err := row.Scan(&sub.ID, &sub.MatchID, &sub.ResponseText, &sub.LinkURL, &sub.FileURL,
		&sub.AutoScore, &sub.AutoReasoning, &sub.HumanScore, &sub.HumanFeedback,
		&sub.ReviewedBy, &sub.FinalScore, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}
	return &sub, nil
}

// SetHumanReview records a human review and the resulting final score.
func (s *Store) SetHumanReview(ctx context.Context, submissionID uuid.UUID, score int, feedback, reviewer string, finalScore int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE challenge_submissions
		 SET human_score = $1, human_feedback = $2, reviewed_by = $3, final_score = $4, updated_at = NOW()
		 WHERE id = $5`,
		score, feedback, reviewer, finalScore, submissionID)
	if err != nil {
		return fmt.Errorf("failed to set human review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
	}
	return nil
}

func (s *Store) listMatches(ctx context.Context, query string, arg any) ([]*Match, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanMatch(row rowScanner) (*Match, error) {
	var (
		m        Match
		scores   []byte
		fb       string
		category string
		decision string
		resp     string
	)
	err := row.Scan(&m.ID, &m.RoleID, &m.EngineerID, &m.OverallScore, &scores, &m.HighlightQuote,
		&m.DisplayRank, &fb, &category, &m.FeedbackReason,
		&decision, &m.EngineerDecidedAt, &resp, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	m.Feedback = types.MatchFeedback(fb)
	m.FeedbackCategory = types.FeedbackCategory(category)
	m.EngineerDecision = types.EngineerDecision(decision)
	m.ChallengeResponse = types.ChallengeResponse(resp)
	if err := unmarshalJSONB(scores, &m.DimensionScores); err != nil {
		return nil, err
	}
	return &m, nil
}
