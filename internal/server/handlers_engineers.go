package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
)

// handleCreateEngineer registers an engineer profile. When the payload
// carries at least one crawlable link the extraction pipeline starts
// immediately in the background.
func (s *Server) handleCreateEngineer(w http.ResponseWriter, r *http.Request) {
	var req CreateEngineerRequest
	if !s.decode(w, r, &req) {
		return
	}

	eng := &store.Engineer{
		Name:         req.Name,
		Email:        req.Email,
		CodeHostURL:  req.CodeHostURL,
		PortfolioURL: req.PortfolioURL,
		ResumeURL:    req.ResumeURL,
	}
	if err := s.store.CreateEngineer(r.Context(), eng); err != nil {
		s.storeError(w, err)
		return
	}

	// With nothing to crawl the profile goes straight to the questionnaire.
	if len(eng.Links()) > 0 {
		if err := s.startEngineerCrawl(r.Context(), eng.ID); err != nil {
			s.storeError(w, err)
			return
		}
		eng.Status = status.EngineerCrawling
	} else {
		if err := s.store.UpdateEngineerStatus(r.Context(), eng.ID, status.EngineerDraft, status.EngineerQuestionnaire); err != nil {
			s.storeError(w, err)
			return
		}
		eng.Status = status.EngineerQuestionnaire
	}

	s.jsonResponse(w, http.StatusCreated, eng)
}

// handleGetEngineer retrieves an engineer by ID
func (s *Server) handleGetEngineer(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	eng, err := s.store.GetEngineer(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, eng)
}

// handleStartEngineerCrawl restarts profile extraction, e.g. after a failed
// crawl was repaired by editing the profile links.
func (s *Server) handleStartEngineerCrawl(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.startEngineerCrawl(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": string(status.EngineerCrawling)})
}

func (s *Server) startEngineerCrawl(ctx context.Context, id uuid.UUID) error {
	eng, err := s.store.GetEngineer(ctx, id)
	if err != nil {
		return err
	}
	// A profile whose extraction failed stays in crawling with the error
	// recorded; a retry re-enqueues the pipeline without a transition.
	if eng.Status != status.EngineerCrawling {
		if err := s.store.UpdateEngineerStatus(ctx, id, status.EngineerDraft, status.EngineerCrawling); err != nil {
			return err
		}
	}
	s.runner.Go("engineer-crawl", func(ctx context.Context) error {
		return s.profiles.Run(ctx, id)
	})
	return nil
}

// handleEngineerQuestionnaire saves the questionnaire answers and priority
// ratings and completes the profile.
func (s *Server) handleEngineerQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req EngineerQuestionnaireRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.profiles.CompleteQuestionnaire(r.Context(), id, req.Questionnaire, req.Priorities); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": string(status.EngineerComplete)})
}

// handleReopenEngineer takes a completed profile back to the questionnaire
// so its answers and priorities can be edited.
func (s *Server) handleReopenEngineer(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.UpdateEngineerStatus(r.Context(), id, status.EngineerComplete, status.EngineerQuestionnaire); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": string(status.EngineerQuestionnaire)})
}

// handleAddPreference adds a manual exclusion rule to the engineer's
// matching preferences.
func (s *Server) handleAddPreference(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req PreferenceRequest
	if !s.decode(w, r, &req) {
		return
	}

	eng, err := s.store.GetEngineer(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	var added bool
	switch req.Kind {
	case "location":
		added = eng.Preferences.AddLocation(req.Value)
	case "company":
		added = eng.Preferences.AddCompany(req.Value)
	case "company_domain":
		added = eng.Preferences.AddCompanyDomain(req.Value)
	case "keyword":
		added = eng.Preferences.AddKeyword(req.Value)
	}
	if added {
		if err := s.store.SaveEngineerPreferences(r.Context(), id, eng.Preferences); err != nil {
			s.storeError(w, err)
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, eng.Preferences)
}

// handleRemovePreference drops an exclusion rule by value, across all rule
// kinds.
func (s *Server) handleRemovePreference(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req RemovePreferenceRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.learner.Remove(r.Context(), id, req.Value); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"removed": req.Value})
}

// handleEngineerMatches lists the engineer's matches in display order.
func (s *Server) handleEngineerMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	matches, err := s.store.ListMatchesForEngineer(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"matches": matches, "total": len(matches)})
}
