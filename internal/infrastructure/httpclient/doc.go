/*
Package httpclient is the renderer's HTTP client for the host.

Requests go through resty on top of a retryablehttp transport, wait on a
token-bucket limiter and run inside a circuit breaker, so a renderer started
before its host backs off instead of spinning.

	client := httpclient.New(httpclient.DefaultConfig(), logger)
	page, err := client.GetText(ctx, "http://localhost:1879/")
*/
package httpclient
