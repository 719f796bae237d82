/*
Package navigation mirrors the active view into an address history.

Resolve is a pure mapping:

	SplashScreen                  -> /
	PageDetail with a project     -> /project/{id}
	PageDetail without a project  -> no address

Shadow applies the mapping to a Navigator and skips repeated entries. Stack
is the in-memory Navigator used by the renderer; its pop listeners feed the
stored App state back into the session.
*/
package navigation
