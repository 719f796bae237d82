package navigation

import (
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
)

// RootPath is the address of the splash screen.
const RootPath = "/"

// Target is a navigation address derived from App and Project state.
type Target struct {
	Path  string
	Title string
}

// ProjectPath returns the address of a project's detail page.
func ProjectPath(projectID string) string {
	return "/project/" + projectID
}

// Resolve maps App and Project state to an address. It reports false when
// the state has no address (a detail view without a project).
func Resolve(app types.AppSnapshot, project *types.ProjectSnapshot) (Target, bool) {
	switch app.ActiveView {
	case types.ViewSplashScreen, "":
		return Target{Path: RootPath}, true
	case types.ViewPageDetail:
		if project == nil || project.ID == "" {
			return Target{}, false
		}
		return Target{Path: ProjectPath(project.ID), Title: project.Name}, true
	default:
		return Target{}, false
	}
}
