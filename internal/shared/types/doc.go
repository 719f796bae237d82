// Package types provides shared data structures for the view store.
//
// These are plain value types that cross package and process boundaries:
// they are what gets committed to the edit history, embedded in the boot
// payload and carried inside envelopes.
//
// Core Types:
//   - HostType: Environment hosting the renderer (browser, node)
//   - View: Active view (SplashScreen, PageDetail)
//   - AppSnapshot: Serializable application context
//   - ProjectSnapshot: Serializable project
//   - Snapshot: App + Project at one point in time
//
// Example Usage:
//
//	snap := types.Snapshot{
//	    App:     app.Snapshot(),
//	    Project: &projectSnapshot,
//	}
//	history.Commit(snap)
package types
