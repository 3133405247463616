// Package registry owns the project list and the totals derived from the
// time log.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/timesheet/internal/ledger"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
)

// LogSource is the part of the time log the registry depends on.
type LogSource interface {
	Entries() []model.TimeLogEntry
	Subscribe(fn ledger.Observer)
	RemoveProject(ctx context.Context, projectID string) (int, error)
	RemoveSubproject(ctx context.Context, projectID, subprojectID string) (int, error)
}

// Registry is the in-memory project list backed by a ProjectStore.
type Registry struct {
	store    store.ProjectStore
	logs     LogSource
	projects []model.Project
}

// Load reads the persisted projects, seeding and saving the starter set
// when nothing has been stored yet.
func Load(ctx context.Context, s store.ProjectStore) (*Registry, error) {
	projects, err := s.GetProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	r := &Registry{store: s}
	if len(projects) == 0 {
		if err := r.save(ctx, DefaultProjects()); err != nil {
			return nil, fmt.Errorf("seeding default projects: %w", err)
		}
		return r, nil
	}

	for i := range projects {
		if projects[i].Subprojects == nil {
			projects[i].Subprojects = []model.Subproject{}
		}
	}
	r.projects = projects
	return r, nil
}

// Attach subscribes the registry to the time log so totals follow every
// change. Project deletes cascade into the attached log. Totals are
// recomputed once immediately.
func (r *Registry) Attach(ctx context.Context, logs LogSource) error {
	r.logs = logs
	logs.Subscribe(r.RecomputeTotals)
	return r.RecomputeTotals(ctx, logs.Entries())
}

// Projects returns a deep copy of the project list.
func (r *Registry) Projects() []model.Project {
	out := make([]model.Project, len(r.projects))
	for i, p := range r.projects {
		out[i] = p.Clone()
	}
	return out
}

// Project returns the project with the given id.
func (r *Registry) Project(id string) (model.Project, bool) {
	i := r.index(id)
	if i < 0 {
		return model.Project{}, false
	}
	return r.projects[i].Clone(), true
}

// Resolve looks up a project/subproject pair.
func (r *Registry) Resolve(projectID, subprojectID string) (model.Project, model.Subproject, error) {
	p, ok := r.Project(projectID)
	if !ok {
		return model.Project{}, model.Subproject{}, model.ErrUnresolvedProjectOrSubproject
	}
	sp, ok := p.Subproject(subprojectID)
	if !ok {
		return model.Project{}, model.Subproject{}, model.ErrUnresolvedProjectOrSubproject
	}
	return p, sp, nil
}

// FindProject returns the project whose id equals ref or whose name
// matches ref case-insensitively. Ids win over names.
func (r *Registry) FindProject(ref string) (model.Project, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := r.Project(ref); ok {
		return p, nil
	}
	for _, p := range r.projects {
		if strings.EqualFold(p.Name, ref) {
			return p.Clone(), nil
		}
	}
	return model.Project{}, fmt.Errorf("%w: %s", model.ErrProjectNotFound, ref)
}

// Find resolves a project and subproject given by id or name.
func (r *Registry) Find(projectRef, subprojectRef string) (model.Project, model.Subproject, error) {
	p, err := r.FindProject(projectRef)
	if err != nil {
		return model.Project{}, model.Subproject{}, err
	}
	subprojectRef = strings.TrimSpace(subprojectRef)
	if sp, ok := p.Subproject(subprojectRef); ok {
		return p, sp, nil
	}
	for _, sp := range p.Subprojects {
		if strings.EqualFold(sp.Name, subprojectRef) {
			return p, sp, nil
		}
	}
	return model.Project{}, model.Subproject{}, fmt.Errorf("%w: %s in %s", model.ErrSubprojectNotFound, subprojectRef, p.Name)
}

// AddProject creates a project. A non-empty firstSubproject seeds exactly
// one subproject.
func (r *Registry) AddProject(ctx context.Context, name, firstSubproject string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, model.ErrEmptyName
	}

	p := model.Project{ID: newID(), Name: name, Subprojects: []model.Subproject{}}
	if sub := strings.TrimSpace(firstSubproject); sub != "" {
		p.Subprojects = append(p.Subprojects, model.Subproject{ID: newID(), Name: sub})
	}

	next := append(r.Projects(), p)
	if err := r.save(ctx, next); err != nil {
		return model.Project{}, fmt.Errorf("adding project: %w", err)
	}
	return p.Clone(), nil
}

// AddSubproject appends a subproject to the given project.
func (r *Registry) AddSubproject(ctx context.Context, projectID, name string) (model.Subproject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Subproject{}, model.ErrEmptyName
	}

	next := r.Projects()
	i := indexOf(next, projectID)
	if i < 0 {
		return model.Subproject{}, fmt.Errorf("%w: %s", model.ErrProjectNotFound, projectID)
	}

	sp := model.Subproject{ID: newID(), Name: name}
	next[i].Subprojects = append(next[i].Subprojects, sp)
	if err := r.save(ctx, next); err != nil {
		return model.Subproject{}, fmt.Errorf("adding subproject: %w", err)
	}
	return sp, nil
}

// UpdateProject applies the non-nil fields of upd.
func (r *Registry) UpdateProject(ctx context.Context, id string, upd model.ProjectUpdate) error {
	next := r.Projects()
	i := indexOf(next, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", model.ErrProjectNotFound, id)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.ErrEmptyName
		}
		next[i].Name = name
	}

	if err := r.save(ctx, next); err != nil {
		return fmt.Errorf("updating project %s: %w", id, err)
	}
	return nil
}

// UpdateSubproject applies the non-nil fields of upd.
func (r *Registry) UpdateSubproject(ctx context.Context, projectID, subprojectID string, upd model.SubprojectUpdate) error {
	next := r.Projects()
	i := indexOf(next, projectID)
	if i < 0 {
		return fmt.Errorf("%w: %s", model.ErrProjectNotFound, projectID)
	}
	j := subIndexOf(next[i], subprojectID)
	if j < 0 {
		return fmt.Errorf("%w: %s", model.ErrSubprojectNotFound, subprojectID)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.ErrEmptyName
		}
		next[i].Subprojects[j].Name = name
	}

	if err := r.save(ctx, next); err != nil {
		return fmt.Errorf("updating subproject %s: %w", subprojectID, err)
	}
	return nil
}

// DeleteProject removes a project and every time log entry logged against it.
func (r *Registry) DeleteProject(ctx context.Context, id string) error {
	next := r.Projects()
	i := indexOf(next, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", model.ErrProjectNotFound, id)
	}
	next = append(next[:i], next[i+1:]...)

	if err := r.save(ctx, next); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if r.logs != nil {
		if _, err := r.logs.RemoveProject(ctx, id); err != nil {
			return fmt.Errorf("deleting logs of project %s: %w", id, err)
		}
	}
	return nil
}

// DeleteSubproject removes a subproject and the entries logged against it.
func (r *Registry) DeleteSubproject(ctx context.Context, projectID, subprojectID string) error {
	next := r.Projects()
	i := indexOf(next, projectID)
	if i < 0 {
		return fmt.Errorf("%w: %s", model.ErrProjectNotFound, projectID)
	}
	j := subIndexOf(next[i], subprojectID)
	if j < 0 {
		return fmt.Errorf("%w: %s", model.ErrSubprojectNotFound, subprojectID)
	}
	subs := next[i].Subprojects
	next[i].Subprojects = append(subs[:j], subs[j+1:]...)

	if err := r.save(ctx, next); err != nil {
		return fmt.Errorf("deleting subproject %s: %w", subprojectID, err)
	}
	if r.logs != nil {
		if _, err := r.logs.RemoveSubproject(ctx, projectID, subprojectID); err != nil {
			return fmt.Errorf("deleting logs of subproject %s: %w", subprojectID, err)
		}
	}
	return nil
}

// RecomputeTotals replaces every TotalTime with the sum of matching entries
// and persists the result. It has the ledger.Observer signature.
func (r *Registry) RecomputeTotals(ctx context.Context, logs []model.TimeLogEntry) error {
	next := ComputeTotals(r.Projects(), logs)
	if err := r.save(ctx, next); err != nil {
		return fmt.Errorf("saving project totals: %w", err)
	}
	return nil
}

// ComputeTotals returns projects with TotalTime set from logs. Prior totals
// are ignored, so the result depends only on the inputs.
func ComputeTotals(projects []model.Project, logs []model.TimeLogEntry) []model.Project {
	type pair struct{ pid, sid string }
	byProject := make(map[string]int64)
	byPair := make(map[pair]int64)
	for _, e := range logs {
		byProject[e.ProjectID] += e.Duration
		byPair[pair{e.ProjectID, e.SubprojectID}] += e.Duration
	}

	out := make([]model.Project, len(projects))
	for i, p := range projects {
		c := p.Clone()
		c.TotalTime = byProject[p.ID]
		for j := range c.Subprojects {
			c.Subprojects[j].TotalTime = byPair[pair{p.ID, c.Subprojects[j].ID}]
		}
		out[i] = c
	}
	return out
}

func (r *Registry) save(ctx context.Context, next []model.Project) error {
	if err := r.store.SaveProjects(ctx, next); err != nil {
		return err
	}
	r.projects = next
	return nil
}

func (r *Registry) index(id string) int {
	return indexOf(r.projects, id)
}

func indexOf(projects []model.Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func subIndexOf(p model.Project, id string) int {
	for i, s := range p.Subprojects {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
