package role

import (
	"context"
	"errors"
	"strings"
	"testing"

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
	return "{}", nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Content(ctx context.Context, urlStr string, contentSelectors []string) (string, error) {
	text, ok := f.pages[urlStr]
	if !ok {
		return "", errors.New("fetch failed")
	}
	return text, nil
}

type fakeStore struct {
	role    *store.Role
	company *store.Company

	savedJD     *types.BeautifiedJD
	transitions []status.Role
}

func (f *fakeStore) GetRole(ctx context.Context, id uuid.UUID) (*store.Role, error) {
	if f.role == nil {
		return nil, store.ErrNotFound
	}
	return f.role, nil
}

func (f *fakeStore) GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error) {
	if f.company == nil {
		return nil, store.ErrNotFound
	}
	return f.company, nil
}

func (f *fakeStore) SaveBeautifiedJD(ctx context.Context, id uuid.UUID, jd *types.BeautifiedJD) error {
	f.savedJD = jd
	f.role.BeautifiedJD = jd
	f.role.JDFeedback = nil
	return nil
}

func (f *fakeStore) UpdateRoleStatus(ctx context.Context, id uuid.UUID, from, to status.Role) error {
	if err := from.Transition(to); err != nil {
		return err
	}
	f.transitions = append(f.transitions, to)
	f.role.Status = to
	return nil
}

const validExtraction = `{
	"title": "Platform Engineer",
	"location": "Berlin",
	"employment_type": "full_time",
	"requirements": {"languages": "Go", "experience": "5+ years infra"}
}`

const validBeautified = `{
	"requirements": {"languages": "Strong Go experience", "experience": "5+ years running infrastructure"},
	"team_context": {"text": "You join a platform team of four.", "sentiment": "positive"},
	"working_vibe": {"text": "Weekly releases, light process.", "sentiment": "none"},
	"culture_check": {"text": "On-call is part of the job.", "sentiment": "negative"}
}`

func TestExtractor_FromText(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			assert.Contains(t, prompt, "We need a platform engineer.")
			return validExtraction, nil
		},
	}
	e := NewExtractor(nil, mock, nil)

	jd, err := e.FromText(context.Background(), "Platform Engineer", "We need a platform engineer.")
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", jd.Title)
	assert.Equal(t, "Berlin", jd.Location)
	// raw text is kept verbatim even though the model never returns it
	assert.Equal(t, "We need a platform engineer.", jd.RawText)
	assert.Equal(t, "Go", jd.Requirements["languages"])
}

func TestExtractor_FromURL(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://jobs.test/1": "Posting body text.",
	}}
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			return validExtraction, nil
		},
	}
	e := NewExtractor(fetcher, mock, nil)

	jd, err := e.FromURL(context.Background(), "https://jobs.test/1")
	require.NoError(t, err)
	assert.Equal(t, "Posting body text.", jd.RawText)

	_, err = e.FromURL(context.Background(), "https://jobs.test/missing")
	assert.Error(t, err)
}

func TestExtractor_EmptyText(t *testing.T) {
	e := NewExtractor(nil, &MockLLMClient{}, nil)
	_, err := e.FromText(context.Background(), "", "")
	assert.Error(t, err)
}

func TestExtractor_InvalidResponse(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			return `{"location": "missing title"}`, nil
		},
	}
	e := NewExtractor(nil, mock, nil)
	_, err := e.FromText(context.Background(), "", "text")
	assert.Error(t, err)
}

func draftRole() *store.Role {
	return &store.Role{
		ID:            uuid.New(),
		CompanyID:     uuid.New(),
		Title:         "Platform Engineer",
		Status:        status.RoleDraft,
		SourceContent: "We need a platform engineer.",
	}
}

func beautifierCompany() *store.Company {
	return &store.Company{
		ID:   uuid.New(),
		Name: "Acme",
		DNA: &types.CompanyDNA{
			Summary: "Acme builds deploy tooling.",
			Mission: "Make deploys boring.",
			Values:  []string{"candor"},
		},
		TechnicalEnvironment: "Go monorepo.",
	}
}

func TestBeautifier_DraftToActive(t *testing.T) {
	st := &fakeStore{role: draftRole(), company: beautifierCompany()}
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			if strings.Contains(prompt, "Extract structured fields") {
				return validExtraction, nil
			}
			assert.Contains(t, prompt, "Make deploys boring.")
			assert.Contains(t, prompt, "We need a platform engineer.")
			return validBeautified, nil
		},
	}

	var matched []uuid.UUID
	b := NewBeautifier(st, mock, NewExtractor(nil, mock, nil), nil, func(id uuid.UUID) {
		matched = append(matched, id)
	}, nil)

	require.NoError(t, b.Run(context.Background(), st.role.ID))

	assert.Equal(t, []status.Role{status.RoleBeautifying, status.RoleActive}, st.transitions)
	require.NotNil(t, st.savedJD)
	assert.Equal(t, types.SentimentNegative, st.savedJD.CultureCheck.Sentiment)
	assert.Equal(t, []uuid.UUID{st.role.ID}, matched)
}

func TestBeautifier_FailureFallsBackToDraft(t *testing.T) {
	st := &fakeStore{role: draftRole(), company: beautifierCompany()}
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			if strings.Contains(prompt, "Extract structured fields") {
				return validExtraction, nil
			}
			return "", errors.New("model unavailable")
		},
	}
	b := NewBeautifier(st, mock, NewExtractor(nil, mock, nil), nil, nil, nil)

	err := b.Run(context.Background(), st.role.ID)
	require.Error(t, err)
	assert.Equal(t, status.RoleDraft, st.role.Status)
	assert.Nil(t, st.savedJD)
}

func TestBeautifier_FeedbackDrivesRefinement(t *testing.T) {
	r := draftRole()
	r.BeautifiedJD = &types.BeautifiedJD{
		Requirements: map[string]string{"languages": "Go"},
		TeamContext:  types.ProseSection{Text: "Old team text.", Sentiment: types.SentimentNone},
	}
	r.JDFeedback = &types.JDFeedback{
		Sections: map[string]types.JDFeedbackItem{
			"team_context": {Note: "too vague", Sentiment: types.SentimentNegative},
		},
	}
	st := &fakeStore{role: r, company: beautifierCompany()}

	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			assert.Contains(t, prompt, "Old team text.")
			assert.Contains(t, prompt, "too vague")
			return validBeautified, nil
		},
	}
	b := NewBeautifier(st, mock, nil, nil, nil, nil)

	require.NoError(t, b.Run(context.Background(), r.ID))
	assert.Nil(t, r.JDFeedback)
	assert.Equal(t, status.RoleActive, r.Status)
}

func TestBeautifier_RejectsActiveRole(t *testing.T) {
	r := draftRole()
	r.Status = status.RoleActive
	st := &fakeStore{role: r, company: beautifierCompany()}

	b := NewBeautifier(st, &MockLLMClient{}, nil, nil, nil, nil)
	assert.Error(t, b.Run(context.Background(), r.ID))
}

func TestBeautifier_BatchIsolatesFailures(t *testing.T) {
	good := draftRole()
	st := &batchStore{
		roles:   map[uuid.UUID]*store.Role{good.ID: good},
		company: beautifierCompany(),
	}
	mock := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
			if strings.Contains(prompt, "Extract structured fields") {
				return validExtraction, nil
			}
			return validBeautified, nil
		},
	}
	b := NewBeautifier(st, mock, NewExtractor(nil, mock, nil), nil, nil, nil)

	missing := uuid.New()
	activated, failed := b.RunBatch(context.Background(), []uuid.UUID{missing, good.ID})

	assert.Equal(t, []uuid.UUID{good.ID}, activated)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[missing], store.ErrNotFound)
	assert.Equal(t, status.RoleActive, good.Status)
}

// batchStore serves multiple roles by id.
type batchStore struct {
	roles   map[uuid.UUID]*store.Role
	company *store.Company
}

func (f *batchStore) GetRole(ctx context.Context, id uuid.UUID) (*store.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (f *batchStore) GetCompany(ctx context.Context, id uuid.UUID) (*store.Company, error) {
	return f.company, nil
}

func (f *batchStore) SaveBeautifiedJD(ctx context.Context, id uuid.UUID, jd *types.BeautifiedJD) error {
	f.roles[id].BeautifiedJD = jd
	return nil
}

func (f *batchStore) UpdateRoleStatus(ctx context.Context, id uuid.UUID, from, to status.Role) error {
	if err := from.Transition(to); err != nil {
		return err
	}
	f.roles[id].Status = to
	return nil
}
