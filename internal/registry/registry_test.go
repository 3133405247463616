package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timesheet/internal/ledger"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/registry"
	"github.com/nhle/timesheet/internal/store"
	"github.com/nhle/timesheet/tests/testutil"
)

func setup(t *testing.T) (*registry.Registry, *ledger.Ledger, *store.SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	r, err := registry.Load(ctx, s)
	require.NoError(t, err)
	l, err := ledger.Load(ctx, s)
	require.NoError(t, err)
	require.NoError(t, r.Attach(ctx, l))
	return r, l, s
}

func logFor(t *testing.T, r *registry.Registry, l *ledger.Ledger, pid, sid string, seconds int64) model.TimeLogEntry {
	t.Helper()
	p, sp, err := r.Resolve(pid, sid)
	require.NoError(t, err)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	e, err := l.LogTime(context.Background(), ledger.LogRequest{
		ProjectID: p.ID, SubprojectID: sp.ID,
		ProjectName: p.Name, SubprojectName: sp.Name,
		Duration: seconds, StartTime: start, EndTime: start.Add(time.Duration(seconds) * time.Second),
	})
	require.NoError(t, err)
	return e
}

func TestLoadSeedsDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	r, err := registry.Load(ctx, s)
	require.NoError(t, err)
	projects := r.Projects()
	require.Len(t, projects, 15)
	assert.Equal(t, "1", projects[0].ID)
	assert.Equal(t, "Website Redesign", projects[0].Name)
	require.Len(t, projects[0].Subprojects, 3)
	assert.Equal(t, "1-1", projects[0].Subprojects[0].ID)
	assert.Equal(t, "Wireframing", projects[0].Subprojects[0].Name)
	assert.Equal(t, "User Research", projects[14].Name)

	stored, err := s.GetProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 15)

	// User data is never re-seeded.
	require.NoError(t, r.DeleteProject(ctx, "1"))
	s.ClearCache()
	again, err := registry.Load(ctx, s)
	require.NoError(t, err)
	assert.Len(t, again.Projects(), 14)
}

func TestAddProjectAndSubproject(t *testing.T) {
	ctx := context.Background()
	r, _, _ := setup(t)

	p, err := r.AddProject(ctx, "  Billing  ", "Invoices")
	require.NoError(t, err)
	assert.Equal(t, "Billing", p.Name)
	require.Len(t, p.Subprojects, 1)
	assert.Equal(t, "Invoices", p.Subprojects[0].Name)

	bare, err := r.AddProject(ctx, "Bare", "")
	require.NoError(t, err)
	assert.Empty(t, bare.Subprojects)

	sp, err := r.AddSubproject(ctx, bare.ID, "First")
	require.NoError(t, err)
	got, ok := r.Project(bare.ID)
	require.True(t, ok)
	require.Len(t, got.Subprojects, 1)
	assert.Equal(t, sp.ID, got.Subprojects[0].ID)

	_, err = r.AddProject(ctx, " ", "")
	assert.ErrorIs(t, err, model.ErrEmptyName)
	_, err = r.AddSubproject(ctx, "nope", "x")
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
}

func TestUpdateProjectAndSubproject(t *testing.T) {
	ctx := context.Background()
	r, _, _ := setup(t)

	name := "Site Refresh"
	require.NoError(t, r.UpdateProject(ctx, "1", model.ProjectUpdate{Name: &name}))
	p, _ := r.Project("1")
	assert.Equal(t, "Site Refresh", p.Name)

	// Nil fields leave the project untouched.
	require.NoError(t, r.UpdateProject(ctx, "1", model.ProjectUpdate{}))
	p, _ = r.Project("1")
	assert.Equal(t, "Site Refresh", p.Name)

	sub := "Sketches"
	require.NoError(t, r.UpdateSubproject(ctx, "1", "1-1", model.SubprojectUpdate{Name: &sub}))
	_, sp, err := r.Resolve("1", "1-1")
	require.NoError(t, err)
	assert.Equal(t, "Sketches", sp.Name)

	assert.ErrorIs(t, r.UpdateProject(ctx, "x", model.ProjectUpdate{Name: &name}), model.ErrProjectNotFound)
	assert.ErrorIs(t, r.UpdateSubproject(ctx, "1", "x", model.SubprojectUpdate{Name: &sub}), model.ErrSubprojectNotFound)
}

func TestTotalsFollowLedger(t *testing.T) {
	ctx := context.Background()
	r, l, _ := setup(t)

	e := logFor(t, r, l, "1", "1-1", 100)
	logFor(t, r, l, "1", "1-2", 50)
	logFor(t, r, l, "2", "2-1", 30)

	p, _ := r.Project("1")
	assert.Equal(t, int64(150), p.TotalTime)
	assert.Equal(t, int64(100), p.Subprojects[0].TotalTime)
	assert.Equal(t, int64(50), p.Subprojects[1].TotalTime)

	require.NoError(t, l.UpdateTime(ctx, e.ID, 10))
	p, _ = r.Project("1")
	assert.Equal(t, int64(60), p.TotalTime)
	assert.Equal(t, int64(10), p.Subprojects[0].TotalTime)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r, l, _ := setup(t)
	logFor(t, r, l, "3", "3-2", 42)

	require.NoError(t, r.RecomputeTotals(ctx, l.Entries()))
	first := r.Projects()
	require.NoError(t, r.RecomputeTotals(ctx, l.Entries()))
	assert.Equal(t, first, r.Projects())
}

func TestComputeTotalsIgnoresStaleValues(t *testing.T) {
	projects := []model.Project{{
		ID: "p", TotalTime: 999,
		Subprojects: []model.Subproject{{ID: "s", TotalTime: 999}, {ID: "t", TotalTime: 5}},
	}}
	logs := []model.TimeLogEntry{
		{ProjectID: "p", SubprojectID: "s", Duration: 7},
		{ProjectID: "other", SubprojectID: "s", Duration: 100},
	}

	got := registry.ComputeTotals(projects, logs)
	assert.Equal(t, int64(7), got[0].TotalTime)
	assert.Equal(t, int64(7), got[0].Subprojects[0].TotalTime)
	assert.Equal(t, int64(0), got[0].Subprojects[1].TotalTime)
	assert.Equal(t, int64(999), projects[0].TotalTime, "input must not be modified")
}

func TestDeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	r, l, _ := setup(t)

	logFor(t, r, l, "1", "1-1", 10)
	keep := logFor(t, r, l, "2", "2-1", 20)

	require.NoError(t, r.DeleteProject(ctx, "1"))
	_, ok := r.Project("1")
	assert.False(t, ok)
	require.Len(t, l.Entries(), 1)
	assert.Equal(t, keep.ID, l.Entries()[0].ID)

	assert.ErrorIs(t, r.DeleteProject(ctx, "1"), model.ErrProjectNotFound)
}

func TestDeleteSubprojectCascades(t *testing.T) {
	ctx := context.Background()
	r, l, _ := setup(t)

	logFor(t, r, l, "1", "1-1", 10)
	logFor(t, r, l, "1", "1-2", 20)

	require.NoError(t, r.DeleteSubproject(ctx, "1", "1-1"))
	p, _ := r.Project("1")
	assert.Len(t, p.Subprojects, 2)
	assert.Equal(t, int64(20), p.TotalTime)
	require.Len(t, l.Entries(), 1)
	assert.Equal(t, "1-2", l.Entries()[0].SubprojectID)

	assert.ErrorIs(t, r.DeleteSubproject(ctx, "1", "1-1"), model.ErrSubprojectNotFound)
}

func TestResolve(t *testing.T) {
	r, _, _ := setup(t)

	_, _, err := r.Resolve("1", "2-1")
	assert.ErrorIs(t, err, model.ErrUnresolvedProjectOrSubproject)
	_, _, err = r.Resolve("99", "99-1")
	assert.ErrorIs(t, err, model.ErrUnresolvedProjectOrSubproject)
}

func TestFindByIDOrName(t *testing.T) {
	r, _, _ := setup(t)

	p, sp, err := r.Find("mobile app launch", "android build")
	require.NoError(t, err)
	assert.Equal(t, "2", p.ID)
	assert.Equal(t, "2-2", sp.ID)

	p, sp, err = r.Find("12", "12-3")
	require.NoError(t, err)
	assert.Equal(t, "API Development", p.Name)
	assert.Equal(t, "Rate Limiting", sp.Name)

	_, _, err = r.Find("Nope", "x")
	assert.ErrorIs(t, err, model.ErrProjectNotFound)
	_, _, err = r.Find("1", "Android Build")
	assert.ErrorIs(t, err, model.ErrSubprojectNotFound)
}
