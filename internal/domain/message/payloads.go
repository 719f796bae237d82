package message

import "github.com/GriffinCanCode/viewsync/internal/shared/types"

// WindowFocused announces the renderer and carries its current app state.
type WindowFocused struct {
	App       types.AppSnapshot `json:"app"`
	ProjectID string            `json:"projectId,omitempty"`
}

// ChromeScreenShot asks the host to capture the renderer viewport.
type ChromeScreenShot struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HistoryChanged reports edit history state after a commit, undo or redo.
type HistoryChanged struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
	Length  int  `json:"length"`
	Cursor  int  `json:"cursor"`
}

// ChangeActiveView switches the renderer's view.
type ChangeActiveView struct {
	View types.View `json:"view"`
}

// AppUpdate replaces the app state wholesale.
type AppUpdate struct {
	App types.AppSnapshot `json:"app"`
}

// ProjectOpened hands a project to the renderer.
type ProjectOpened struct {
	Project types.ProjectSnapshot `json:"project"`
}

// SaveProject asks an integrated host adapter to persist the current project.
// An empty Path saves to where the project was loaded from.
type SaveProject struct {
	Path string `json:"path,omitempty"`
}

// OpenFile asks an integrated host adapter to load a project file.
type OpenFile struct {
	Path string `json:"path"`
}

// ProjectSaved acknowledges a SaveProject.
type ProjectSaved struct {
	ProjectID string `json:"projectId"`
	Path      string `json:"path"`
}

// NewWindowFocused builds a window-focused envelope.
func NewWindowFocused(app types.AppSnapshot, projectID string) Envelope {
	return MustNew(TypeWindowFocused, WindowFocused{App: app, ProjectID: projectID})
}

// NewChromeScreenShot builds a chrome-screenshot envelope.
func NewChromeScreenShot(width, height int) Envelope {
	return MustNew(TypeChromeScreenShot, ChromeScreenShot{Width: width, Height: height})
}

// NewHistoryChanged builds a history-changed envelope.
func NewHistoryChanged(p HistoryChanged) Envelope {
	return MustNew(TypeHistoryChanged, p)
}

// NewProjectSaved builds a project-saved envelope.
func NewProjectSaved(projectID, path string) Envelope {
	return MustNew(TypeProjectSaved, ProjectSaved{ProjectID: projectID, Path: path})
}
