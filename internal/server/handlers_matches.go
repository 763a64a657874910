package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/challenge"
	"github.com/matchforge/matchforge/internal/store"
)

// handleRecomputeMatch forces a fresh score for one role and engineer
// pair, replacing any existing match row.
func (s *Server) handleRecomputeMatch(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.Recompute(r.Context(), req.RoleID, req.EngineerID); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"recomputed": "match"})
}

// handleMatchFeedback records the company verdict on a match and feeds
// the preference learner.
func (s *Server) handleMatchFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req MatchFeedbackRequest
	if !s.decode(w, r, &req) {
		return
	}

	m, err := s.store.GetMatch(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if err := s.engine.RecordFeedback(r.Context(), id, req.Feedback, req.Category, req.Reason); err != nil {
		s.storeError(w, err)
		return
	}
	// Learned rules only shape future runs; a failure here never undoes
	// the recorded feedback.
	if err := s.learner.Apply(r.Context(), m, req.Category); err != nil {
		s.logger.Warn("preference learning failed",
			zap.String("match_id", id.String()), zap.Error(err))
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"feedback": string(req.Feedback)})
}

// handleEngineerDecision records whether the engineer is interested.
func (s *Server) handleEngineerDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req DecisionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.RecordEngineerDecision(r.Context(), id, req.Decision); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"decision": string(req.Decision)})
}

// handleChallengeResponse records the engineer's answer to a challenge
// offer.
func (s *Server) handleChallengeResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req ChallengeResponseRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.RecordChallengeResponse(r.Context(), id, req.Response); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"response": string(req.Response)})
}

// handleCreateSubmission accepts the single challenge submission allowed
// per match, grades it and persists the result.
func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req SubmissionRequest
	if !s.decode(w, r, &req) {
		return
	}

	m, err := s.store.GetMatch(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	role, err := s.store.GetRole(r.Context(), m.RoleID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if !role.ChallengeEnabled {
		s.errorResponse(w, http.StatusConflict, "role has no challenge")
		return
	}

	grade, err := s.grader.Grade(r.Context(), role.ChallengePrompt, req.ResponseText, req.LinkURL)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "grading failed: "+err.Error())
		return
	}

	sub := &store.ChallengeSubmission{
		MatchID:       id,
		ResponseText:  req.ResponseText,
		LinkURL:       req.LinkURL,
		FileURL:       req.FileURL,
		AutoScore:     grade.Score,
		AutoReasoning: grade.Reasoning,
		FinalScore:    grade.Score,
	}
	if err := s.store.CreateSubmission(r.Context(), sub); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, sub)
}

// handleGetSubmission retrieves a match's challenge submission.
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	sub, err := s.store.GetSubmissionByMatch(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sub)
}

// handleReviewSubmission records a human review and recomputes the final
// score under the configured policy.
func (s *Server) handleReviewSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req ReviewRequest
	if !s.decode(w, r, &req) {
		return
	}

	sub, err := s.store.GetSubmissionByMatch(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	final := challenge.FinalScore(s.scorePolicy, sub.AutoScore, &req.Score)
	if err := s.store.SetHumanReview(r.Context(), sub.ID, req.Score, req.Feedback, req.Reviewer, final); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"human_score": req.Score,
		"final_score": final,
	})
}
