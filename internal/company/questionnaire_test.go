package company

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
	"github.com/matchforge/matchforge/internal/types"
)

type fakeDetector struct {
	result []types.Contradiction
	err    error
	calls  int
}

func (d *fakeDetector) Detect(ctx context.Context, section string, answers types.QuestionnaireSection, crawl *types.CrawlData) ([]types.Contradiction, error) {
	d.calls++
	return d.result, d.err
}

func questionnaireCompany() *store.Company {
	return &store.Company{
		ID:     uuid.New(),
		Name:   "Acme",
		Status: status.CompanyQuestionnaire,
		CrawlData: &types.CrawlData{Highlights: []types.Highlight{
			{Topic: types.TopicCulture, Text: "On call weekly."},
		}},
	}
}

func TestSaveSection_SavesAnswersAndContradictions(t *testing.T) {
	c := questionnaireCompany()
	st := &fakeStore{company: c}
	det := &fakeDetector{result: []types.Contradiction{
		{QuestionID: "work_life", Section: "culture", Detail: "claims no on-call"},
	}}

	q := NewQuestionnaire(st, det, nil)
	found, err := q.SaveSection(context.Background(), c.ID, "culture",
		types.QuestionnaireSection{"work_life": "We never page people."})
	require.NoError(t, err)

	require.NotNil(t, st.savedQ)
	assert.Equal(t, "We never page people.", st.savedQ.Culture["work_life"])
	require.Len(t, found, 1)
	assert.Equal(t, found, st.savedContras)
	assert.Equal(t, 1, det.calls)
}

func TestSaveSection_KeepsOtherSectionContradictions(t *testing.T) {
	c := questionnaireCompany()
	c.Contradictions = []types.Contradiction{
		{QuestionID: "m1", Section: "mission", Detail: "mission conflict"},
	}
	st := &fakeStore{company: c}
	det := &fakeDetector{} // nothing fresh

	q := NewQuestionnaire(st, det, nil)
	_, err := q.SaveSection(context.Background(), c.ID, "culture",
		types.QuestionnaireSection{"work_life": "Calm."})
	require.NoError(t, err)

	require.Len(t, st.savedContras, 1)
	assert.Equal(t, "mission", st.savedContras[0].Section)
}

func TestSaveSection_UnknownSection(t *testing.T) {
	c := questionnaireCompany()
	st := &fakeStore{company: c}

	q := NewQuestionnaire(st, &fakeDetector{}, nil)
	_, err := q.SaveSection(context.Background(), c.ID, "compensation", types.QuestionnaireSection{})
	assert.Error(t, err)
	assert.Nil(t, st.savedQ)
}

func TestSaveSection_DetectionOutageKeepsAnswers(t *testing.T) {
	c := questionnaireCompany()
	st := &fakeStore{company: c}
	det := &fakeDetector{err: errors.New("model unavailable")}

	q := NewQuestionnaire(st, det, nil)
	found, err := q.SaveSection(context.Background(), c.ID, "culture",
		types.QuestionnaireSection{"work_life": "Calm."})
	require.NoError(t, err)

	assert.Empty(t, found)
	assert.NotNil(t, st.savedQ)
	assert.False(t, st.contrasSaved)
}

func TestResolveContradiction_MarksEntries(t *testing.T) {
	c := questionnaireCompany()
	c.Contradictions = []types.Contradiction{
		{QuestionID: "work_life", Section: "culture", Detail: "claims no on-call"},
		{QuestionID: "m1", Section: "mission", Detail: "mission conflict"},
	}
	st := &fakeStore{company: c}

	q := NewQuestionnaire(st, &fakeDetector{}, nil)
	contras, err := q.ResolveContradiction(context.Background(), c.ID, "work_life")
	require.NoError(t, err)

	require.Len(t, contras, 2)
	assert.True(t, contras[0].Resolved)
	assert.False(t, contras[1].Resolved)
	assert.Equal(t, contras, st.savedContras)
}

func TestResolveContradiction_UnknownQuestion(t *testing.T) {
	c := questionnaireCompany()
	st := &fakeStore{company: c}

	q := NewQuestionnaire(st, &fakeDetector{}, nil)
	_, err := q.ResolveContradiction(context.Background(), c.ID, "work_life")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, st.contrasSaved)
}

func TestResolvedContradictionLifecycle(t *testing.T) {
	c := questionnaireCompany()
	c.Contradictions = []types.Contradiction{
		{QuestionID: "work_life", Section: "culture", Detail: "claims no on-call", Resolved: true},
	}
	st := &fakeStore{company: c}
	det := &fakeDetector{}

	q := NewQuestionnaire(st, det, nil)

	// Saving another section leaves the resolved entry untouched.
	_, err := q.SaveSection(context.Background(), c.ID, "mission",
		types.QuestionnaireSection{"m1": "Ship reliable infrastructure."})
	require.NoError(t, err)
	require.Len(t, st.savedContras, 1)
	assert.True(t, st.savedContras[0].Resolved)

	// Re-answering the question re-evaluates it from scratch: the resolved
	// entry is dropped and whatever detection finds now takes its place.
	c.Contradictions = st.savedContras
	det.result = []types.Contradiction{
		{QuestionID: "work_life", Section: "culture", Detail: "still claims no on-call"},
	}
	fresh, err := q.SaveSection(context.Background(), c.ID, "culture",
		types.QuestionnaireSection{"work_life": "Nobody gets paged."})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	require.Len(t, st.savedContras, 1)
	assert.False(t, st.savedContras[0].Resolved)
	assert.Equal(t, "still claims no on-call", st.savedContras[0].Detail)
}

func TestComplete_FromQuestionnaire(t *testing.T) {
	c := questionnaireCompany()
	st := &fakeStore{company: c}

	q := NewQuestionnaire(st, &fakeDetector{}, nil)
	require.NoError(t, q.Complete(context.Background(), c.ID))
	assert.Equal(t, status.CompanyComplete, c.Status)
}

func TestComplete_FromRoleReview(t *testing.T) {
	c := questionnaireCompany()
	c.Status = status.CompanyDiscoveringRoles
	st := &fakeStore{company: c}

	q := NewQuestionnaire(st, &fakeDetector{}, nil)
	require.NoError(t, q.Complete(context.Background(), c.ID))
	assert.Equal(t, status.CompanyComplete, c.Status)
}

func TestComplete_FromDraftRejected(t *testing.T) {
	c := questionnaireCompany()
	c.Status = status.CompanyDraft
	st := &fakeStore{company: c}

	q := NewQuestionnaire(st, &fakeDetector{}, nil)
	assert.Error(t, q.Complete(context.Background(), c.ID))
}
