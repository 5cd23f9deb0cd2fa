// Package bridge lets synchronous test code wait for a callback that the
// library under test fires asynchronously.
//
// The waiting goroutine never blocks on the callback. It posts the unit of
// work onto the foreground queue and then keeps draining that queue itself,
// one task at a time, re-checking the completion signal between tasks. The
// library may do its real work elsewhere, but it delivers the completion
// back onto the foreground queue, where the pump runs it.
//
// Typical use:
//
//	b := bridge.New(t, q)
//	var result *authmodel.Result
//	b.RunAndAwait(report.Here(), func(sig *bridge.Signal) {
//	    client.AcquireToken(resource, clientID, func(r *authmodel.Result) {
//	        result = r
//	        b.Complete(report.Here(), sig)
//	    })
//	})
//
// Ordering:
//   - Tasks run strictly FIFO on the pumping goroutine.
//   - The signal is only observed between tasks, so a completion becomes
//     visible at the next drain boundary.
//   - A task may call RunAndAwait again. The inner pump drains the same
//     queue; each call owns its own signal and deadline.
//
// Nothing here recovers panics. A failing assertion inside a task
// (including t.FailNow via runtime.Goexit) unwinds through the pump.
package bridge
