package store

import (
	"encoding/json"
	"testing"

	"github.com/GriffinCanCode/viewsync/internal/domain/app"
	"github.com/GriffinCanCode/viewsync/internal/domain/history"
	"github.com/GriffinCanCode/viewsync/internal/domain/project"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/viewsync/internal/reactive"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *reactive.Scheduler) {
	t.Helper()
	sched := reactive.NewScheduler(nil, nil)
	return New(sched, app.New(sched, nil), history.New(0)), sched
}

func sampleProject(id, doc string) *project.Project {
	return project.From(types.ProjectSnapshot{ID: id, Name: "Site", Document: json.RawMessage(doc)})
}

func TestGetProjectAbsent(t *testing.T) {
	s, _ := newStore(t)

	p, ok := s.GetProject()
	assert.False(t, ok)
	assert.Nil(t, p)
	assert.Nil(t, s.Snapshot().Project)
}

func TestSetProjectNotifiesOnIdentityChange(t *testing.T) {
	s, sched := newStore(t)
	runs := 0
	sched.NewReaction("project", func() { runs++ }, s.ProjectObservable())

	p := sampleProject("p1", `{}`)
	assert.True(t, s.SetProject(p))
	assert.False(t, s.SetProject(p))
	assert.Equal(t, 1, runs)

	assert.Equal(t, 0, s.History().Len(), "SetProject must not commit")
}

func TestCommitMarksProjectClean(t *testing.T) {
	s, _ := newStore(t)
	p := sampleProject("p1", `{}`)
	p.SetName("Changed")
	s.SetProject(p)

	snap := s.Commit()

	assert.False(t, p.Dirty())
	assert.Equal(t, "p1", snap.ProjectID())
	assert.Equal(t, 1, s.History().Len())
}

func TestUndoOnInitialHistory(t *testing.T) {
	s, _ := newStore(t)

	assert.ErrorIs(t, s.Undo(), history.ErrNoHistory)

	s.Commit()
	before := s.Snapshot()
	assert.ErrorIs(t, s.Undo(), history.ErrNoHistory)
	assert.Equal(t, before, s.Snapshot())
}

func TestRedoAtTail(t *testing.T) {
	s, _ := newStore(t)
	s.Commit()
	before := s.Snapshot()

	assert.ErrorIs(t, s.Redo(), history.ErrNoFuture)
	assert.Equal(t, before, s.Snapshot())
}

func TestUndoRedoRestoresAppAndProject(t *testing.T) {
	s, sched := newStore(t)

	s.SetProject(sampleProject("p1", `{"v":1}`))
	s.Commit()

	sched.Batch(func() {
		s.App().SetActiveView(types.ViewPageDetail)
		p, _ := s.GetProject()
		p.SetDocument(json.RawMessage(`{"v":2}`))
	})
	s.Commit()
	after := s.Snapshot()

	require.NoError(t, s.Undo())
	assert.True(t, s.App().IsActiveView(types.ViewSplashScreen))
	p, ok := s.GetProject()
	require.True(t, ok)
	assert.JSONEq(t, `{"v":1}`, string(p.Document()))

	require.NoError(t, s.Redo())
	assert.Equal(t, after, s.Snapshot())
}

func TestUndoRemovesProjectLoadedLater(t *testing.T) {
	s, _ := newStore(t)
	s.Commit()

	s.SetProject(sampleProject("p1", `{}`))
	s.Commit()

	require.NoError(t, s.Undo())
	_, ok := s.GetProject()
	assert.False(t, ok)
}

func TestRestoreNotifiesOncePerBatch(t *testing.T) {
	s, sched := newStore(t)
	s.SetProject(sampleProject("p1", `{"v":1}`))
	s.Commit()
	s.App().SetActiveView(types.ViewPageDetail)
	s.Commit()

	runs := 0
	sched.NewReaction("focus", func() { runs++ }, s.App().Subject(), s.ProjectObservable(), s.HistoryObservable())

	require.NoError(t, s.Undo())
	assert.Equal(t, 1, runs)
}

func TestCommitAfterUndoDiscardsFuture(t *testing.T) {
	s, _ := newStore(t)
	s.Commit()
	s.App().SetActiveView(types.ViewPageDetail)
	s.Commit()

	require.NoError(t, s.Undo())
	s.Commit()

	assert.ErrorIs(t, s.Redo(), history.ErrNoFuture)
	assert.True(t, s.App().IsActiveView(types.ViewSplashScreen))
}

func TestSetServerPort(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		want int
	}{
		{"1879", true, 1879},
		{"0", true, 0},
		{"", false, -1},
		{"-1", false, -1},
		{"+80", false, -1},
		{"80a", false, -1},
		{"99999999999999999999999", false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			s, _ := newStore(t)
			assert.Equal(t, tt.ok, s.SetServerPort(tt.raw))
			port, set := s.ServerPort()
			assert.Equal(t, tt.ok, set)
			assert.Equal(t, tt.want, port)
		})
	}
}

func TestResolveView(t *testing.T) {
	s, _ := newStore(t)

	assert.NoError(t, s.ResolveView())

	s.App().SetActiveView(types.ViewPageDetail)
	err := s.ResolveView()
	assert.ErrorIs(t, err, ErrMissingProjectForView)
	assert.True(t, s.App().IsActiveView(FallbackView))

	s.SetProject(sampleProject("p1", `{}`))
	s.App().SetActiveView(types.ViewPageDetail)
	assert.NoError(t, s.ResolveView())
	assert.True(t, s.App().IsActiveView(types.ViewPageDetail))
}

func TestHistoryMetrics(t *testing.T) {
	sched := reactive.NewScheduler(nil, nil)
	m := monitoring.NewMetrics()
	s := New(sched, app.New(sched, nil), history.New(0), WithMetrics(m))

	s.Commit()
	_ = s.Undo()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HistoryOps.WithLabelValues("commit", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HistoryOps.WithLabelValues("undo", "empty")))
}
