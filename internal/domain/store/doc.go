/*
Package store is the renderer's view store.

It ties the App, the optional Project and the edit History together. Commit
is the only operation that grows the history; Undo and Redo apply a stored
snapshot inside one scheduler batch, so observers see the restored App and
Project together.
*/
package store
