/*
Package resilience provides a circuit breaker for outbound connections.

The renderer dials the host's WebSocket endpoint and fetches its boot page.
Both go through a Breaker so a host that is down is not hammered by the
reconnect loop: after a run of failures the breaker opens, calls fail fast
with ErrCircuitOpen until the cooldown passes, then a limited number of probe
calls decide whether to close it again. RetryAfter tells the reconnect loop
how long the cooldown has left. Cancelled calls are not failures.

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure] -> Open

Usage:

	breaker := resilience.New("transport", resilience.LoggedSettings(logger, 5, 10*time.Second))

	err := breaker.Call(func() error {
		conn, _, err = dialer.DialContext(ctx, endpoint, nil)
		return err
	})

	page, err := resilience.Do(breaker, func() (string, error) {
		return fetch(ctx, url)
	})
*/
package resilience
