package match

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchforge/matchforge/internal/llm"
	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return `{"mission":70,"technical":80,"culture":60,"environment":50,"dna":75,"highlight_quote":"Solid overlap."}`, nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

// memStore is an in-memory match store exercising the same pair-uniqueness
// rule as the SQL layer.
type memStore struct {
	engineers map[uuid.UUID]*store.Engineer
	roles     map[uuid.UUID]*store.RoleCandidate
	matches   map[uuid.UUID]*store.Match
}

func newMemStore() *memStore {
	return &memStore{
		engineers: make(map[uuid.UUID]*store.Engineer),
		roles:     make(map[uuid.UUID]*store.RoleCandidate),
		matches:   make(map[uuid.UUID]*store.Match),
	}
}

func (s *memStore) GetEngineer(ctx context.Context, id uuid.UUID) (*store.Engineer, error) {
	e, ok := s.engineers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e, nil
}

func (s *memStore) GetRole(ctx context.Context, id uuid.UUID) (*store.Role, error) {
	rc, ok := s.roles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rc.Role, nil
}

func (s *memStore) GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error) {
	for _, rc := range s.roles {
		if rc.CompanyID == id {
			return &store.Company{ID: id, Name: rc.CompanyName, Domain: rc.CompanyDomain}, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStore) ListUnscoredActiveRolesForEngineer(ctx context.Context, engineerID uuid.UUID) ([]*store.RoleCandidate, error) {
	var out []*store.RoleCandidate
	for _, rc := range s.roles {
		if rc.Status != status.RoleActive || s.hasMatch(rc.ID, engineerID) {
			continue
		}
		out = append(out, rc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *memStore) ListUnscoredCompleteEngineersForRole(ctx context.Context, roleID uuid.UUID) ([]*store.Engineer, error) {
	var out []*store.Engineer
	for _, e := range s.engineers {
		if e.Status != status.EngineerComplete || s.hasMatch(roleID, e.ID) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) hasMatch(roleID, engineerID uuid.UUID) bool {
	for _, m := range s.matches {
		if m.RoleID == roleID && m.EngineerID == engineerID {
			return true
		}
	}
	return false
}

func (s *memStore) InsertMatch(ctx context.Context, m *store.Match) (bool, error) {
	if s.hasMatch(m.RoleID, m.EngineerID) {
		return false, nil
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	s.matches[m.ID] = &cp
	return true, nil
}

func (s *memStore) DeleteMatch(ctx context.Context, roleID, engineerID uuid.UUID) error {
	for id, m := range s.matches {
		if m.RoleID == roleID && m.EngineerID == engineerID {
			delete(s.matches, id)
		}
	}
	return nil
}

func (s *memStore) GetMatch(ctx context.Context, id uuid.UUID) (*store.Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m, nil
}

func (s *memStore) ListUnfeedbackedMatchesForEngineer(ctx context.Context, engineerID uuid.UUID) ([]*store.Match, error) {
	return s.listUnfeedbacked(func(m *store.Match) bool { return m.EngineerID == engineerID }), nil
}

func (s *memStore) ListUnfeedbackedMatchesForRole(ctx context.Context, roleID uuid.UUID) ([]*store.Match, error) {
	return s.listUnfeedbacked(func(m *store.Match) bool { return m.RoleID == roleID }), nil
}

func (s *memStore) listUnfeedbacked(keep func(*store.Match) bool) []*store.Match {
	var out []*store.Match
	for _, m := range s.matches {
		if m.Feedback == types.FeedbackNone && keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OverallScore > out[j].OverallScore })
	return out
}

func (s *memStore) SetDisplayRank(ctx context.Context, matchID uuid.UUID, rank int) error {
	m, ok := s.matches[matchID]
	if !ok {
		return store.ErrNotFound
	}
	m.DisplayRank = rank
	return nil
}

func (s *memStore) SetMatchFeedback(ctx context.Context, matchID uuid.UUID, fb types.MatchFeedback, category types.FeedbackCategory, reason string) error {
	m, ok := s.matches[matchID]
	if !ok {
		return store.ErrNotFound
	}
	m.Feedback, m.FeedbackCategory, m.FeedbackReason = fb, category, reason
	return nil
}

func (s *memStore) SetEngineerDecision(ctx context.Context, matchID uuid.UUID, decision types.EngineerDecision, at time.Time) error {
	m, ok := s.matches[matchID]
	if !ok {
		return store.ErrNotFound
	}
	m.EngineerDecision = decision
	m.EngineerDecidedAt = &at
	return nil
}

func (s *memStore) SetChallengeResponse(ctx context.Context, matchID uuid.UUID, resp types.ChallengeResponse) error {
	m, ok := s.matches[matchID]
	if !ok {
		return store.ErrNotFound
	}
	m.ChallengeResponse = resp
	return nil
}

func evenWeights() types.DimensionWeights {
	return types.DimensionWeights{Mission: 20, Technical: 20, Culture: 20, Environment: 20, DNA: 20}
}

func completeEngineer(name string) *store.Engineer {
	return &store.Engineer{
		ID:     uuid.New(),
		Name:   name,
		Status: status.EngineerComplete,
		DNA:    &types.DNA{TopSkills: []string{"go"}},
	}
}

func activeRole(title, companyName, domain, location string) *store.RoleCandidate {
	return &store.RoleCandidate{
		Role: store.Role{
			ID:        uuid.New(),
			CompanyID: uuid.New(),
			Title:     title,
			Location:  location,
			Status:    status.RoleActive,
			Weights:   evenWeights(),
			BeautifiedJD: &types.BeautifiedJD{
				Requirements: map[string]string{"languages": "Go"},
			},
		},
		CompanyName:   companyName,
		CompanyDomain: domain,
	}
}

func TestForEngineer_ScoresAndRanks(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	st.engineers[eng.ID] = eng

	r1 := activeRole("Backend Engineer", "Acme", "acme.test", "Berlin")
	r2 := activeRole("Platform Engineer", "Beta", "beta.test", "Remote")
	st.roles[r1.ID] = r1
	st.roles[r2.ID] = r2

	scores := map[string]string{
		"Backend Engineer":  `{"mission":50,"technical":60,"culture":50,"environment":50,"dna":50,"highlight_quote":"ok"}`,
		"Platform Engineer": `{"mission":90,"technical":90,"culture":90,"environment":90,"dna":90,"highlight_quote":"great"}`,
	}
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			for title, resp := range scores {
				if containsStr(prompt, title) {
					return resp, nil
				}
			}
			return "", errors.New("unexpected prompt")
		},
	}

	e := NewEngine(st, mock, nil, nil)
	res, err := e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Scored)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 0, res.Excluded)

	matches, _ := st.ListUnfeedbackedMatchesForEngineer(context.Background(), eng.ID)
	require.Len(t, matches, 2)
	// 90 across the board at even weights rounds to 90
	assert.Equal(t, 90, matches[0].OverallScore)
	assert.Equal(t, r2.ID, matches[0].RoleID)
	assert.Equal(t, 1, matches[0].DisplayRank)
	assert.Equal(t, 52, matches[1].OverallScore)
	assert.Equal(t, 2, matches[1].DisplayRank)
}

func TestForEngineer_Idempotent(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	st.engineers[eng.ID] = eng
	r := activeRole("Backend Engineer", "Acme", "acme.test", "Berlin")
	st.roles[r.ID] = r

	calls := 0
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			calls++
			return `{"mission":50,"technical":60,"culture":50,"environment":50,"dna":50,"highlight_quote":"ok"}`, nil
		},
	}
	e := NewEngine(st, mock, nil, nil)

	res, err := e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	// Second run finds nothing unscored: no calls, no inserts.
	res, err = e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Scored)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, calls)
	assert.Len(t, st.matches, 1)
}

func TestForEngineer_ExclusionsSkipScoring(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	eng.Preferences.AddLocation("Austin, TX")
	eng.Preferences.AddCompanyDomain("beta.test")
	eng.Preferences.AddKeyword("on-call")
	st.engineers[eng.ID] = eng

	byLocation := activeRole("A role", "Acme", "acme.test", "austin, tx")
	byDomain := activeRole("B role", "Beta", "BETA.TEST", "Remote")
	byKeyword := activeRole("C role", "Gamma", "gamma.test", "Remote")
	byKeyword.BeautifiedJD.CultureCheck = types.ProseSection{Text: "Heavy ON-CALL rotation."}
	kept := activeRole("D role", "Delta", "delta.test", "Remote")
	for _, r := range []*store.RoleCandidate{byLocation, byDomain, byKeyword, kept} {
		st.roles[r.ID] = r
	}

	calls := 0
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			calls++
			assert.Contains(t, prompt, "D role")
			return `{"mission":50,"technical":60,"culture":50,"environment":50,"dna":50,"highlight_quote":"ok"}`, nil
		},
	}
	e := NewEngine(st, mock, nil, nil)

	res, err := e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Excluded)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, calls)
}

func TestForEngineer_GuardsIncompleteEngineer(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	eng.Status = status.EngineerQuestionnaire
	st.engineers[eng.ID] = eng

	e := NewEngine(st, &MockLLMClient{}, nil, nil)
	_, err := e.ForEngineer(context.Background(), eng.ID)
	assert.Error(t, err)
}

func TestForEngineer_ScoringFailureSkipsPair(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	st.engineers[eng.ID] = eng
	good := activeRole("A role", "Acme", "acme.test", "Berlin")
	bad := activeRole("B role", "Beta", "beta.test", "Remote")
	st.roles[good.ID] = good
	st.roles[bad.ID] = bad

	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			if containsStr(prompt, "B role") {
				return "", errors.New("model unavailable")
			}
			return `{"mission":50,"technical":60,"culture":50,"environment":50,"dna":50,"highlight_quote":"ok"}`, nil
		},
	}
	e := NewEngine(st, mock, nil, nil)

	res, err := e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Len(t, st.matches, 1)
}

func TestForRole_MirrorsEngineerFlow(t *testing.T) {
	st := newMemStore()
	r := activeRole("Backend Engineer", "Acme", "acme.test", "Berlin")
	st.roles[r.ID] = r

	jane := completeEngineer("Jane")
	opted := completeEngineer("Sam")
	opted.Preferences.AddCompany("Acme")
	partial := completeEngineer("Tia")
	partial.Status = status.EngineerQuestionnaire
	for _, e := range []*store.Engineer{jane, opted, partial} {
		st.engineers[e.ID] = e
	}

	e := NewEngine(st, &MockLLMClient{}, nil, nil)
	res, err := e.ForRole(context.Background(), r.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Excluded)

	matches, _ := st.ListUnfeedbackedMatchesForRole(context.Background(), r.ID)
	require.Len(t, matches, 1)
	assert.Equal(t, jane.ID, matches[0].EngineerID)
	assert.Equal(t, 1, matches[0].DisplayRank)
}

func TestForRole_GuardsInactiveRole(t *testing.T) {
	st := newMemStore()
	r := activeRole("Backend Engineer", "Acme", "acme.test", "Berlin")
	r.Status = status.RolePaused
	st.roles[r.ID] = r

	e := NewEngine(st, &MockLLMClient{}, nil, nil)
	_, err := e.ForRole(context.Background(), r.ID)
	assert.Error(t, err)
}

func TestOverallScoreUsesRoleWeights(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	st.engineers[eng.ID] = eng

	r := activeRole("Backend Engineer", "Acme", "acme.test", "Berlin")
	r.Weights = types.DimensionWeights{Mission: 20, Technical: 30, Culture: 20, Environment: 15, DNA: 15}
	st.roles[r.ID] = r

	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			return `{"mission":80,"technical":70,"culture":90,"environment":60,"dna":50,"highlight_quote":"ok"}`, nil
		},
	}
	e := NewEngine(st, mock, nil, nil)
	_, err := e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)

	matches, _ := st.ListUnfeedbackedMatchesForEngineer(context.Background(), eng.ID)
	require.Len(t, matches, 1)
	// 80*.20 + 70*.30 + 90*.20 + 60*.15 + 50*.15 = 71.5, rounds to 72
	assert.Equal(t, 72, matches[0].OverallScore)
}

func TestRecordFeedback_RemovesFromRankedSet(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	st.engineers[eng.ID] = eng
	r1 := activeRole("A role", "Acme", "acme.test", "Berlin")
	r2 := activeRole("B role", "Beta", "beta.test", "Remote")
	st.roles[r1.ID] = r1
	st.roles[r2.ID] = r2

	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			if containsStr(prompt, "A role") {
				return `{"mission":90,"technical":90,"culture":90,"environment":90,"dna":90,"highlight_quote":"great"}`, nil
			}
			return `{"mission":50,"technical":50,"culture":50,"environment":50,"dna":50,"highlight_quote":"ok"}`, nil
		},
	}
	e := NewEngine(st, mock, nil, nil)
	_, err := e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)

	matches, _ := st.ListUnfeedbackedMatchesForEngineer(context.Background(), eng.ID)
	require.Len(t, matches, 2)
	top := matches[0]

	err = e.RecordFeedback(context.Background(), top.ID, types.FeedbackNotAFit, types.CategoryOther, "not quite")
	require.NoError(t, err)

	remaining, _ := st.ListUnfeedbackedMatchesForEngineer(context.Background(), eng.ID)
	require.Len(t, remaining, 1)
	assert.Equal(t, 1, remaining[0].DisplayRank)
}

func TestRecordFeedback_RejectsInvalid(t *testing.T) {
	st := newMemStore()
	m := &store.Match{ID: uuid.New(), RoleID: uuid.New(), EngineerID: uuid.New()}
	st.matches[m.ID] = m

	e := NewEngine(st, &MockLLMClient{}, nil, nil)
	assert.Error(t, e.RecordFeedback(context.Background(), m.ID, types.FeedbackApplied, types.CategoryOther, ""))
	assert.Error(t, e.RecordFeedback(context.Background(), m.ID, "maybe", "", ""))
}

func TestRecompute_ReplacesExistingPair(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	st.engineers[eng.ID] = eng
	r := activeRole("Backend Engineer", "Acme", "acme.test", "Berlin")
	st.roles[r.ID] = r

	score := `{"mission":50,"technical":50,"culture":50,"environment":50,"dna":50,"highlight_quote":"ok"}`
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			return score, nil
		},
	}
	e := NewEngine(st, mock, nil, nil)
	_, err := e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)

	score = `{"mission":90,"technical":90,"culture":90,"environment":90,"dna":90,"highlight_quote":"better"}`
	require.NoError(t, e.Recompute(context.Background(), r.ID, eng.ID))

	matches, _ := st.ListUnfeedbackedMatchesForEngineer(context.Background(), eng.ID)
	require.Len(t, matches, 1)
	assert.Equal(t, 90, matches[0].OverallScore)
}

func TestScoresOutOfRangeRejected(t *testing.T) {
	st := newMemStore()
	eng := completeEngineer("Jane")
	st.engineers[eng.ID] = eng
	r := activeRole("Backend Engineer", "Acme", "acme.test", "Berlin")
	st.roles[r.ID] = r

	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			return `{"mission":120,"technical":50,"culture":50,"environment":50,"dna":50,"highlight_quote":"ok"}`, nil
		},
	}
	e := NewEngine(st, mock, nil, nil)

	res, err := e.ForEngineer(context.Background(), eng.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Empty(t, st.matches)
}

func containsStr(s, sub string) bool {
	return strings.Contains(s, sub)
}
