// Command host runs the development host that serves renderer boot pages
// and accepts their WebSocket connections.
//
// Configuration comes from the environment (see internal/infrastructure/config)
// and may be overridden by flags:
//
//	host -port 1879 -host-type node -projects ./projects -dev
package main
