// Package project models the document a renderer session edits. The
// document itself is opaque JSON; the store only snapshots and swaps it.
package project
