/*
Package host selects and runs the adapter for a session's host type.

Browser hosts need nothing local. Node hosts get a NodeAdapter that answers
save-project and open-file envelopes using the project library. A Launcher
makes sure a session starts at most one adapter.
*/
package host
