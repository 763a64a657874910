package server

import (
	"context"
	"net/http"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// handleCreateRole creates a draft role from a posting URL or pasted text.
// The posting is run through extraction synchronously so the draft already
// carries a title and location.
func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !s.decode(w, r, &req) {
		return
	}

	if _, err := s.store.GetCompany(r.Context(), req.CompanyID); err != nil {
		s.storeError(w, err)
		return
	}

	weights, err := req.Weights.Normalize()
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var jd *types.ExtractedJD
	if req.SourceURL != "" {
		jd, err = s.extractor.FromURL(r.Context(), req.SourceURL)
	} else {
		jd, err = s.extractor.FromText(r.Context(), req.TitleHint, req.RawText)
	}
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "posting extraction failed: "+err.Error())
		return
	}

	role := &store.Role{
		CompanyID:        req.CompanyID,
		Title:            jd.Title,
		Location:         jd.Location,
		SourceURL:        req.SourceURL,
		SourceContent:    jd.RawText,
		Weights:          weights,
		RawWeights:       req.Weights,
		ChallengeEnabled: req.ChallengeEnabled,
		ChallengePrompt:  req.ChallengePrompt,
	}
	if err := s.store.CreateRole(r.Context(), role); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, role)
}

// handleGetRole retrieves a role by ID
func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	role, err := s.store.GetRole(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, role)
}

// handlePublicJD serves the shareable beautified job description. Only
// active roles are visible through the public slug.
func (s *Server) handlePublicJD(w http.ResponseWriter, r *http.Request) {
	role, err := s.store.GetRoleBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if role.Status != status.RoleActive || role.BeautifiedJD == nil {
		s.errorResponse(w, http.StatusNotFound, "not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"title":    role.Title,
		"location": role.Location,
		"jd":       role.BeautifiedJD,
	})
}

// handleBeautifyRole starts beautification in the background.
func (s *Server) handleBeautifyRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	role, err := s.store.GetRole(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if role.Status != status.RoleDraft && role.Status != status.RoleBeautifying {
		s.errorResponse(w, http.StatusConflict, "role is not in draft")
		return
	}
	s.runner.Go("beautify-role", func(ctx context.Context) error {
		return s.beautifier.Run(ctx, id)
	})
	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": string(status.RoleBeautifying)})
}

// handleJDFeedback stores structured critique. The next beautification
// pass picks it up as a refinement of the previous draft; a role that
// already went active must be reopened through closed before the critique
// takes effect.
func (s *Server) handleJDFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req JDFeedbackRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.SaveJDFeedback(r.Context(), id, &req.Feedback); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"saved": "jd_feedback"})
}

// handleRoleWeights replaces the dimension weights for a role.
func (s *Server) handleRoleWeights(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req WeightsRequest
	if !s.decode(w, r, &req) {
		return
	}
	weights, err := req.Weights.Normalize()
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SaveRoleWeights(r.Context(), id, req.Weights, weights); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, weights)
}

// handlePauseRole pauses matching for an active role.
func (s *Server) handlePauseRole(w http.ResponseWriter, r *http.Request) {
	s.transitionRole(w, r, status.RoleActive, status.RolePaused)
}

// handleResumeRole reactivates a paused role and refreshes its matches.
func (s *Server) handleResumeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.UpdateRoleStatus(r.Context(), id, status.RolePaused, status.RoleActive); err != nil {
		s.storeError(w, err)
		return
	}
	s.runner.Go("match-role", func(ctx context.Context) error {
		_, err := s.engine.ForRole(ctx, id)
		return err
	})
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": string(status.RoleActive)})
}

// handleReopenRole brings a closed role back to draft for another
// beautification pass.
func (s *Server) handleReopenRole(w http.ResponseWriter, r *http.Request) {
	s.transitionRole(w, r, status.RoleClosed, status.RoleDraft)
}

// handleCloseRole closes a role permanently.
func (s *Server) handleCloseRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	role, err := s.store.GetRole(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if err := s.store.UpdateRoleStatus(r.Context(), id, role.Status, status.RoleClosed); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": string(status.RoleClosed)})
}

func (s *Server) transitionRole(w http.ResponseWriter, r *http.Request, from, to status.Role) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.UpdateRoleStatus(r.Context(), id, from, to); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": string(to)})
}

// handleRoleMatches lists a role's matches in display order.
func (s *Server) handleRoleMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	matches, err := s.store.ListMatchesForRole(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"matches": matches, "total": len(matches)})
}
