/*
Package monitoring provides metrics collection for the store and the host.

# Overview

Prometheus collectors cover the whole envelope path: what the renderer sent,
what it received, what was dropped before reaching the channel, transport
state and reconnects, reaction runs per batched tick, and edit history
operations. The development host adds HTTP and window metrics.

Every Metrics value owns a private registry. A nil *Metrics is valid and
records nothing, so components can be built without metrics in tests.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	metrics.RecordEnvelopeSent("window-focused")
	metrics.RecordHistoryOp("undo", "ok", history.Len())
*/
package monitoring
