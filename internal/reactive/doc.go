/*
Package reactive is the observation layer of the store.

Subjects are notified by setters. Reactions observe subjects explicitly and
re-run after the outermost Scheduler.Batch ends, once per batch no matter how
many of their subjects changed. Reactions that notify other subjects while
running are picked up by the same flush, which gives up after MaxFlushPasses
passes.

	sched := reactive.NewScheduler(logger, metrics)
	view := reactive.NewValue(sched, "activeView", types.ViewSplashScreen)

	sched.Autorun("focus", func() {
		sender.Send(focused(view.Get()))
	}, view.Subject())

	sched.Batch(func() {
		view.Set(types.ViewPageDetail)
		project.Set(p)
	}) // focus runs once here

Loop runs mutations on a single goroutine so that batches coming from the
transport reader and from the process never interleave.
*/
package reactive
