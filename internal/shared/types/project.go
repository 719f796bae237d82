package types

import "encoding/json"

// ProjectSnapshot is the serializable form of a project
type ProjectSnapshot struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Path     string          `json:"path,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (p ProjectSnapshot) Clone() ProjectSnapshot {
	c := p
	if p.Document != nil {
		c.Document = append(json.RawMessage(nil), p.Document...)
	}
	return c
}

// Snapshot captures App and Project state at one point in time
type Snapshot struct {
	App     AppSnapshot      `json:"app"`
	Project *ProjectSnapshot `json:"project,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{App: s.App}
	if s.Project != nil {
		p := s.Project.Clone()
		c.Project = &p
	}
	return c
}

// ProjectID returns the id of the captured project, or "" when none was loaded
func (s Snapshot) ProjectID() string {
	if s.Project == nil {
		return ""
	}
	return s.Project.ID
}
