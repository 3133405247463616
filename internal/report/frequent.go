package report

import (
	"sort"

	"github.com/nhle/timesheet/internal/model"
)

// FrequentLimit is how many entries the frequent lists show.
const FrequentLimit = 5

// SubprojectRef pairs a subproject with its owning project.
type SubprojectRef struct {
	Project    model.Project
	Subproject model.Subproject
}

// FrequentProjects returns up to n projects with the most logged time,
// highest first. Projects with no time are left out.
func FrequentProjects(projects []model.Project, n int) []model.Project {
	var out []model.Project
	for _, p := range projects {
		if p.TotalTime > 0 {
			out = append(out, p.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalTime > out[j].TotalTime
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// FrequentSubprojects returns up to n subprojects across all projects with
// the most logged time.
func FrequentSubprojects(projects []model.Project, n int) []SubprojectRef {
	var out []SubprojectRef
	for _, p := range projects {
		for _, sp := range p.Subprojects {
			if sp.TotalTime > 0 {
				out = append(out, SubprojectRef{Project: p.Clone(), Subproject: sp})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Subproject.TotalTime > out[j].Subproject.TotalTime
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
