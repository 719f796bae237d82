/*
Package transport is the renderer's channel to the host.

A Sender owns one WebSocket connection at a time. Send enqueues an envelope
and returns immediately; the connection loop started by Start dials the
host, writes queued envelopes, pings while idle and reads inbound frames.
When the connection drops the loop waits, doubling the delay up to a
maximum, and dials again. The envelope whose write failed is written first
on the next connection, with its original id.

Inbound envelopes are dispatched on the reader goroutine in arrival order to
handlers registered with Handle or HandleAny.

	sender, err := transport.New(transport.DefaultConfig("ws://localhost:1879/ws"),
		transport.WithLogger(logger))
	sender.Handle(message.TypeUndo, func(env message.Envelope) { ... })
	go sender.Start(ctx)
	sender.Send(message.NewChromeScreenShot(1280, 800))
*/
package transport
