// Package hostserver is the development host renderers connect to.
//
// It serves boot pages carrying the URL-encoded payload in a hidden
// textarea, accepts renderer WebSocket connections on /ws and keeps a
// registry of connected windows. Envelopes from a window update what the
// hub knows about it:
//   - window-focused: focus tracking; an identical repeat from the focused
//     window is a refresh and does not count as a focus change
//   - chrome-screenshot: logged and remembered per window
//   - history-changed: undo/redo availability per window
//
// Routes:
//
//	GET  /                       splash boot page
//	GET  /project/:id            boot page for a library project
//	GET  /ws                     renderer channel
//	GET  /health, /metrics       liveness, Prometheus
//	GET  /projects               library listing
//	GET  /windows[/:id]          window registry
//	POST /windows/:id/envelopes  push an envelope to one window
package hostserver
