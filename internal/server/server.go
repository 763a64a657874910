// Package server provides the HTTP REST API for the matching service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/challenge"
	"github.com/matchforge/matchforge/internal/company"
	"github.com/matchforge/matchforge/internal/config"
	"github.com/matchforge/matchforge/internal/contradiction"
	"github.com/matchforge/matchforge/internal/fetch"
	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/match"
	"github.com/matchforge/matchforge/internal/notify"
	"github.com/matchforge/matchforge/internal/prefs"
	"github.com/matchforge/matchforge/internal/profile"
	"github.com/matchforge/matchforge/internal/role"
	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/sweep"
	"github.com/matchforge/matchforge/internal/types"
	"github.com/matchforge/matchforge/internal/worker"
)

// Store is the subset of persistence operations the handlers call directly.
// Pipeline packages carry their own narrower store interfaces.
type Store interface {
	CreateEngineer(ctx context.Context, e *store.Engineer) error
	GetEngineer(ctx context.Context, id uuid.UUID) (*store.Engineer, error)
	UpdateEngineerStatus(ctx context.Context, id uuid.UUID, from, to status.Engineer) error
	SaveEngineerPreferences(ctx context.Context, id uuid.UUID, p types.MatchingPreferences) error
	ListMatchesForEngineer(ctx context.Context, engineerID uuid.UUID) ([]*store.Match, error)

	CreateCompany(ctx context.Context, c *store.Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error)
	UpdateCompanyStatus(ctx context.Context, id uuid.UUID, from, to status.Company) error
	ListRolesForCompany(ctx context.Context, companyID uuid.UUID) ([]*store.Role, error)

	CreateRole(ctx context.Context, r *store.Role) error
	GetRole(ctx context.Context, id uuid.UUID) (*store.Role, error)
	GetRoleBySlug(ctx context.Context, slug string) (*store.Role, error)
	UpdateRoleStatus(ctx context.Context, id uuid.UUID, from, to status.Role) error
	SaveJDFeedback(ctx context.Context, id uuid.UUID, fb *types.JDFeedback) error
	SaveRoleWeights(ctx context.Context, id uuid.UUID, raw types.RawDimensionWeights, weights types.DimensionWeights) error
	ListMatchesForRole(ctx context.Context, roleID uuid.UUID) ([]*store.Match, error)

	GetMatch(ctx context.Context, id uuid.UUID) (*store.Match, error)
	CreateSubmission(ctx context.Context, sub *store.ChallengeSubmission) error
	GetSubmissionByMatch(ctx context.Context, matchID uuid.UUID) (*store.ChallengeSubmission, error)
	SetHumanReview(ctx context.Context, submissionID uuid.UUID, score int, feedback, reviewer string, finalScore int) error
}

type engineerPipeline interface {
	Run(ctx context.Context, engineerID uuid.UUID) error
	CompleteQuestionnaire(ctx context.Context, engineerID uuid.UUID, q types.EngineerQuestionnaire, prio types.PriorityRatings) error
}

type companyPipeline interface {
	Run(ctx context.Context, companyID uuid.UUID) error
}

type companyQuestionnaire interface {
	SaveSection(ctx context.Context, companyID uuid.UUID, section string, answers types.QuestionnaireSection) ([]types.Contradiction, error)
	ResolveContradiction(ctx context.Context, companyID uuid.UUID, questionID string) ([]types.Contradiction, error)
	Complete(ctx context.Context, companyID uuid.UUID) error
}

type jdExtractor interface {
	FromURL(ctx context.Context, urlStr string) (*types.ExtractedJD, error)
	FromText(ctx context.Context, titleHint, rawText string) (*types.ExtractedJD, error)
}

type jdBeautifier interface {
	Run(ctx context.Context, roleID uuid.UUID) error
}

type matchEngine interface {
	ForEngineer(ctx context.Context, engineerID uuid.UUID) (*match.Result, error)
	ForRole(ctx context.Context, roleID uuid.UUID) (*match.Result, error)
	Recompute(ctx context.Context, roleID, engineerID uuid.UUID) error
	RecordFeedback(ctx context.Context, matchID uuid.UUID, fb types.MatchFeedback, category types.FeedbackCategory, reason string) error
	RecordEngineerDecision(ctx context.Context, matchID uuid.UUID, decision types.EngineerDecision) error
	RecordChallengeResponse(ctx context.Context, matchID uuid.UUID, resp types.ChallengeResponse) error
}

type exclusionLearner interface {
	Apply(ctx context.Context, m *store.Match, category types.FeedbackCategory) error
	Remove(ctx context.Context, engineerID uuid.UUID, value string) error
}

type submissionGrader interface {
	Grade(ctx context.Context, challengePrompt, responseText, linkURL string) (*challenge.Grade, error)
}

// Server represents the HTTP server and the wired service graph behind it.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger

	db        *store.Store
	llmClient llm.Client
	runner    *worker.Runner
	sweeper   *sweep.Sweeper

	store         Store
	profiles      engineerPipeline
	companies     companyPipeline
	questionnaire companyQuestionnaire
	extractor     jdExtractor
	beautifier    jdBeautifier
	engine        matchEngine
	learner       exclusionLearner
	grader        submissionGrader

	scorePolicy config.ScorePolicy
}

// New creates a fully wired server instance.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	fetcher := fetch.NewFetcher(fetch.FetcherConfig{
		Redis:      rdb,
		CacheTTL:   cfg.FetchCacheTTL,
		UseBrowser: cfg.UseBrowser,
		Logger:     logger,
	})

	notifier := notify.NewLogNotifier(logger)
	runner := worker.NewRunner(0, logger)
	engine := match.NewEngine(db, client, notifier, logger)

	engineerTrigger := func(id uuid.UUID) {
		runner.Go("match-engineer", func(ctx context.Context) error {
			_, err := engine.ForEngineer(ctx, id)
			return err
		})
	}
	roleTrigger := func(id uuid.UUID) {
		runner.Go("match-role", func(ctx context.Context) error {
			_, err := engine.ForRole(ctx, id)
			return err
		})
	}

	extractor := role.NewExtractor(fetcher, client, logger)

	s := &Server{
		logger:        logger,
		db:            db,
		llmClient:     client,
		runner:        runner,
		sweeper:       sweep.New(db, engine, cfg.SweepInterval, logger),
		store:         db,
		profiles:      profile.NewPipeline(db, fetcher, client, notifier, engineerTrigger, logger),
		companies:     company.NewPipeline(db, fetcher, client, notifier, logger),
		questionnaire: company.NewQuestionnaire(db, contradiction.NewDetector(client, logger), logger),
		extractor:     extractor,
		beautifier:    role.NewBeautifier(db, client, extractor, notifier, roleTrigger, logger),
		engine:        engine,
		learner:       prefs.NewLearner(db, logger),
		grader:        challenge.NewGrader(client, logger),
		scorePolicy:   cfg.ChallengeScorePolicy,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.routes()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s, nil
}

// routes registers all endpoints on a fresh mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Engineer side
	mux.HandleFunc("POST /engineers", s.handleCreateEngineer)
	mux.HandleFunc("GET /engineers/{id}", s.handleGetEngineer)
	mux.HandleFunc("POST /engineers/{id}/crawl", s.handleStartEngineerCrawl)
	mux.HandleFunc("PUT /engineers/{id}/questionnaire", s.handleEngineerQuestionnaire)
	mux.HandleFunc("POST /engineers/{id}/reopen", s.handleReopenEngineer)
	mux.HandleFunc("POST /engineers/{id}/preferences", s.handleAddPreference)
	mux.HandleFunc("DELETE /engineers/{id}/preferences", s.handleRemovePreference)
	mux.HandleFunc("GET /engineers/{id}/matches", s.handleEngineerMatches)

	// Company side
	mux.HandleFunc("POST /companies", s.handleCreateCompany)
	mux.HandleFunc("GET /companies/{id}", s.handleGetCompany)
	mux.HandleFunc("POST /companies/{id}/crawl", s.handleStartCompanyCrawl)
	mux.HandleFunc("PUT /companies/{id}/questionnaire/{section}", s.handleCompanySection)
	mux.HandleFunc("POST /companies/{id}/contradictions/resolve", s.handleResolveContradiction)
	mux.HandleFunc("POST /companies/{id}/complete", s.handleCompleteCompany)
	mux.HandleFunc("GET /companies/{id}/roles", s.handleCompanyRoles)

	// Roles
	mux.HandleFunc("POST /roles", s.handleCreateRole)
	mux.HandleFunc("GET /roles/{id}", s.handleGetRole)
	mux.HandleFunc("GET /jd/{slug}", s.handlePublicJD)
	mux.HandleFunc("POST /roles/{id}/beautify", s.handleBeautifyRole)
	mux.HandleFunc("POST /roles/{id}/feedback", s.handleJDFeedback)
	mux.HandleFunc("PUT /roles/{id}/weights", s.handleRoleWeights)
	mux.HandleFunc("POST /roles/{id}/pause", s.handlePauseRole)
	mux.HandleFunc("POST /roles/{id}/resume", s.handleResumeRole)
	mux.HandleFunc("POST /roles/{id}/close", s.handleCloseRole)
	mux.HandleFunc("POST /roles/{id}/reopen", s.handleReopenRole)
	mux.HandleFunc("GET /roles/{id}/matches", s.handleRoleMatches)

	// Matches and challenges
	mux.HandleFunc("POST /matches/recompute", s.handleRecomputeMatch)
	mux.HandleFunc("POST /matches/{id}/feedback", s.handleMatchFeedback)
	mux.HandleFunc("POST /matches/{id}/decision", s.handleEngineerDecision)
	mux.HandleFunc("POST /matches/{id}/challenge", s.handleChallengeResponse)
	mux.HandleFunc("POST /matches/{id}/submission", s.handleCreateSubmission)
	mux.HandleFunc("GET /matches/{id}/submission", s.handleGetSubmission)
	mux.HandleFunc("POST /matches/{id}/submission/review", s.handleReviewSubmission)

	return mux
}

// Start runs the server until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	if err := s.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sweeper: %w", err)
	}

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.sweeper.Stop()
	s.runner.Wait()
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			s.logger.Warn("failed to close LLM client", zap.Error(err))
		}
	}
	s.db.Close()
	s.logger.Info("server stopped")
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// storeError maps persistence sentinels and status machine rejections to
// HTTP status codes.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	var transition *status.TransitionError
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrStatusConflict), errors.Is(err, store.ErrDuplicate):
		s.errorResponse(w, http.StatusConflict, err.Error())
	case errors.As(err, &transition):
		s.errorResponse(w, http.StatusConflict, err.Error())
	default:
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID parses the {id} path segment as a UUID.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// decode reads a JSON request body and runs its validation.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req interface{ Validate() error }) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
