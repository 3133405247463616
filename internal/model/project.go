package model

// Project is a top-level work category. TotalTime is derived from the
// time log and is only ever written by a recompute.
type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Subprojects []Subproject `json:"subprojects"`
	TotalTime   int64        `json:"totalTime"`
}

// Subproject is a named unit of work owned by exactly one Project.
type Subproject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TotalTime int64  `json:"totalTime"`
}

// ProjectUpdate holds a partial update; nil fields are left unchanged.
type ProjectUpdate struct {
	Name *string
}

// SubprojectUpdate holds a partial update; nil fields are left unchanged.
type SubprojectUpdate struct {
	Name *string
}

// Subproject returns the subproject with the given ID.
func (p Project) Subproject(id string) (Subproject, bool) {
	for _, s := range p.Subprojects {
		if s.ID == id {
			return s, true
		}
	}
	return Subproject{}, false
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	c := p
	c.Subprojects = make([]Subproject, len(p.Subprojects))
	copy(c.Subprojects, p.Subprojects)
	return c
}
