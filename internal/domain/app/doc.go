/*
Package app holds the application context of a renderer session.

The App carries the session id, the host type the session is bound to, the
active view and a reference to the Sender. Host type binds once through
SetHostType; a snapshot-driven Update (navigation pop, app-update from the
host, undo/redo) is the only way to rebind it.

All setters notify the App's subject only on change, so reactions observing
it run once per batch no matter how many fields were touched.
*/
package app
