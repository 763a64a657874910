package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// handleCreateCompany registers a company hiring profile and starts the
// crawl when a website or careers URL is present.
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if !s.decode(w, r, &req) {
		return
	}

	c := &store.Company{
		Name:       req.Name,
		WebsiteURL: req.WebsiteURL,
		CareersURL: req.CareersURL,
		Domain:     req.Domain,
		Location:   req.Location,
	}
	if err := s.store.CreateCompany(r.Context(), c); err != nil {
		s.storeError(w, err)
		return
	}

	// With nothing to crawl the profile goes straight to the questionnaire.
	if len(c.CrawlLinks()) > 0 {
		if err := s.startCompanyCrawl(r.Context(), c.ID); err != nil {
			s.storeError(w, err)
			return
		}
		c.Status = status.CompanyCrawling
	} else {
		if err := s.store.UpdateCompanyStatus(r.Context(), c.ID, status.CompanyDraft, status.CompanyQuestionnaire); err != nil {
			s.storeError(w, err)
			return
		}
		c.Status = status.CompanyQuestionnaire
	}

	s.jsonResponse(w, http.StatusCreated, c)
}

// handleGetCompany retrieves a company by ID
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	c, err := s.store.GetCompany(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

// handleStartCompanyCrawl starts the company crawl from draft, or retries
// one that failed mid-crawl.
func (s *Server) handleStartCompanyCrawl(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.startCompanyCrawl(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": string(status.CompanyCrawling)})
}

func (s *Server) startCompanyCrawl(ctx context.Context, id uuid.UUID) error {
	c, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	// A company whose crawl failed stays in crawling with the error
	// recorded; a retry re-enqueues the pipeline without a transition.
	if c.Status != status.CompanyCrawling {
		if err := s.store.UpdateCompanyStatus(ctx, id, status.CompanyDraft, status.CompanyCrawling); err != nil {
			return err
		}
	}
	s.runner.Go("company-crawl", func(ctx context.Context) error {
		return s.companies.Run(ctx, id)
	})
	return nil
}

// handleCompanySection saves one questionnaire section and returns the
// contradictions detected against the crawl evidence.
func (s *Server) handleCompanySection(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	section := r.PathValue("section")
	if !knownSection(section) {
		s.errorResponse(w, http.StatusBadRequest, "unknown questionnaire section: "+section)
		return
	}

	var req SectionRequest
	if !s.decode(w, r, &req) {
		return
	}

	contradictions, err := s.questionnaire.SaveSection(r.Context(), id, section, req.Answers)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"contradictions": contradictions})
}

// knownSection reports whether the name is one of the questionnaire
// sections defined on types.CompanyQuestionnaire.
func knownSection(name string) bool {
	var q types.CompanyQuestionnaire
	return q.SetSection(name, nil)
}

// handleResolveContradiction marks the contradictions for one question as
// resolved and returns the full updated list.
func (s *Server) handleResolveContradiction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req ResolveContradictionRequest
	if !s.decode(w, r, &req) {
		return
	}
	contradictions, err := s.questionnaire.ResolveContradiction(r.Context(), id, req.QuestionID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"contradictions": contradictions})
}

// handleCompleteCompany finishes company onboarding.
func (s *Server) handleCompleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.questionnaire.Complete(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": string(status.CompanyComplete)})
}

// handleCompanyRoles lists all roles belonging to a company.
func (s *Server) handleCompanyRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	roles, err := s.store.ListRolesForCompany(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"roles": roles, "total": len(roles)})
}
