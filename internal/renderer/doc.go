/*
Package renderer bootstraps a view session.

Start wires the store to the host in a fixed order: the sender is bound,
the window announces itself, the boot payload is applied, the host adapter
is launched for integrated hosts, and only then are reactions, navigation
listeners and envelope handlers installed. After Start returns, every
mutation runs on the session loop, one batch at a time.

	s, err := renderer.Start(ctx, renderer.Options{Location: loc, Payload: payload})
	if err != nil {
		return err
	}
	defer s.Close()
*/
package renderer
