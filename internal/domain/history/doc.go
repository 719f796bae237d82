// Package history records App+Project snapshots for undo and redo.
//
// The first committed snapshot is the baseline: Undo never moves the cursor
// before it. Committing after an Undo discards the undone future.
package history
