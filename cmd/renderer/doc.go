// Command renderer boots a view session against a running host.
//
// It fetches the boot page, hydrates the store from its payload and keeps
// the session connected until interrupted.
//
//	renderer -url http://localhost:1879/project/proj_01HZX -dev
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown
//   - SIGUSR1: request a screenshot of the viewport
package main
