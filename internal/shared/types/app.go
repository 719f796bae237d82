package types

import "fmt"

// HostType identifies the environment hosting the renderer
type HostType string

const (
	HostUnset   HostType = ""
	HostBrowser HostType = "browser"
	HostNode    HostType = "node"
)

// ParseHostType validates a host type string
func ParseHostType(s string) (HostType, error) {
	switch HostType(s) {
	case HostBrowser, HostNode:
		return HostType(s), nil
	default:
		return HostUnset, fmt.Errorf("unknown host type %q", s)
	}
}

// Integrated reports whether the host needs an active local adapter
func (h HostType) Integrated() bool {
	return h == HostNode
}

func (h HostType) String() string {
	if h == HostUnset {
		return "unset"
	}
	return string(h)
}

// View identifies the active view of the renderer
type View string

const (
	ViewSplashScreen View = "SplashScreen"
	ViewPageDetail   View = "PageDetail"
)

// DefaultView is the view a fresh session starts in
const DefaultView = ViewSplashScreen

// ParseView validates a view string
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewSplashScreen, ViewPageDetail:
		return View(s), nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// RequiresProject reports whether the view can only be shown with a loaded project
func (v View) RequiresProject() bool {
	return v == ViewPageDetail
}

// AppSnapshot is the serializable form of the application context
type AppSnapshot struct {
	ID         string   `json:"id,omitempty"`
	HostType   HostType `json:"hostType,omitempty"`
	ActiveView View     `json:"activeView"`
}
