package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/matchforge/matchforge/internal/match"
	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
)

type fakeStore struct {
	engineers []*store.Engineer
	err       error
}

func (f *fakeStore) ListEngineersByStatus(ctx context.Context, st status.Engineer) ([]*store.Engineer, error) {
	return f.engineers, f.err
}

type fakeMatcher struct {
	calls   []uuid.UUID
	failFor map[uuid.UUID]bool
}

func (f *fakeMatcher) ForEngineer(ctx context.Context, engineerID uuid.UUID) (*match.Result, error) {
	f.calls = append(f.calls, engineerID)
	if f.failFor[engineerID] {
		return nil, errors.New("scoring outage")
	}
	return &match.Result{Inserted: 1}, nil
}

func TestRunCycle_MatchesAllCompleteEngineers(t *testing.T) {
	e1 := &store.Engineer{ID: uuid.New(), Status: status.EngineerComplete}
	e2 := &store.Engineer{ID: uuid.New(), Status: status.EngineerComplete}
	st := &fakeStore{engineers: []*store.Engineer{e1, e2}}
	m := &fakeMatcher{}

	New(st, m, time.Hour, nil).RunCycle(context.Background())
	assert.Equal(t, []uuid.UUID{e1.ID, e2.ID}, m.calls)
}

func TestRunCycle_IsolatesFailures(t *testing.T) {
	e1 := &store.Engineer{ID: uuid.New(), Status: status.EngineerComplete}
	e2 := &store.Engineer{ID: uuid.New(), Status: status.EngineerComplete}
	st := &fakeStore{engineers: []*store.Engineer{e1, e2}}
	m := &fakeMatcher{failFor: map[uuid.UUID]bool{e1.ID: true}}

	New(st, m, time.Hour, nil).RunCycle(context.Background())
	// The failure for e1 does not stop e2.
	assert.Len(t, m.calls, 2)
}

func TestRunCycle_ListingFailure(t *testing.T) {
	st := &fakeStore{err: errors.New("db down")}
	m := &fakeMatcher{}

	New(st, m, time.Hour, nil).RunCycle(context.Background())
	assert.Empty(t, m.calls)
}
