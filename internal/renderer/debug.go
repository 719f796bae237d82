package renderer

import (
	"github.com/GriffinCanCode/viewsync/internal/domain/app"
	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/domain/store"
)

// Debug exposes the session's store and a screenshot trigger for
// inspection tools.
type Debug struct {
	Store *store.Store

	app      *app.App
	viewport Viewport
}

// Screenshot asks the host to capture the viewport.
func (d *Debug) Screenshot() {
	d.app.Send(message.NewChromeScreenShot(d.viewport.Width, d.viewport.Height))
}

// Viewport returns the reported viewport size.
func (d *Debug) Viewport() Viewport {
	return d.viewport
}
