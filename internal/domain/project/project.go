package project

import (
	"encoding/json"
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/shared/id"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
)

// Project is the document being edited. The store owns the reference;
// callers replace it wholesale through the store.
type Project struct {
	mu       sync.RWMutex
	id       string
	name     string
	path     string
	document json.RawMessage
	dirty    bool
}

// New creates an empty project with a fresh id.
func New(name string) *Project {
	return &Project{
		id:       id.NewProjectID().String(),
		name:     name,
		document: json.RawMessage(`{}`),
	}
}

// From builds a project from a snapshot. The document is copied. A snapshot
// without id gets a fresh one.
func From(snap types.ProjectSnapshot) *Project {
	c := snap.Clone()
	if c.ID == "" {
		c.ID = id.NewProjectID().String()
	}
	if len(c.Document) == 0 {
		c.Document = json.RawMessage(`{}`)
	}
	return &Project{
		id:       c.ID,
		name:     c.Name,
		path:     c.Path,
		document: c.Document,
	}
}

// ID returns the project id.
func (p *Project) ID() string {
	return p.id
}

// Name returns the project name.
func (p *Project) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SetName renames the project.
func (p *Project) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.name != name {
		p.name = name
		p.dirty = true
	}
}

// Path returns where the project was last loaded from or saved to.
func (p *Project) Path() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.path
}

// SetPath records a new location. It does not mark the project dirty.
func (p *Project) SetPath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
}

// Document returns a copy of the document.
func (p *Project) Document() json.RawMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append(json.RawMessage(nil), p.document...)
}

// SetDocument replaces the document with a copy of doc.
func (p *Project) SetDocument(doc json.RawMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.document = append(json.RawMessage(nil), doc...)
	p.dirty = true
}

// Dirty reports whether the project changed since the last commit.
func (p *Project) Dirty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirty
}

// MarkCommitted clears the dirty flag.
func (p *Project) MarkCommitted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = false
}

// Snapshot returns a deep copy of the serializable state.
func (p *Project) Snapshot() types.ProjectSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return types.ProjectSnapshot{
		ID:       p.id,
		Name:     p.name,
		Path:     p.path,
		Document: append(json.RawMessage(nil), p.document...),
	}
}
