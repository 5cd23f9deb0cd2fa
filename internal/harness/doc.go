// Package harness is the per-test entry point to the async bridge, the
// log capture and the result validators.
//
// A Harness owns one foreground queue, one log sink and one bridge. New
// clears the sink and registers an end-of-test cleanup that archives the
// logs of a failed test (when configured), clears the sink again and
// closes the queue, so nothing leaks into the next test.
//
// Every assertion method records the call site of its caller, so failures
// point at the test line:
//
//	func TestAcquireToken(t *testing.T) {
//	    h := harness.New(t, harness.DefaultConfig())
//	    client, err := fakeauth.New(authority, h.Queue(), h.Logger())
//	    require.NoError(t, err)
//
//	    var result *authmodel.Result
//	    h.CallAndWait(func(sig *bridge.Signal) {
//	        client.AcquireToken(resource, clientID, func(r *authmodel.Result) {
//	            result = r
//	            h.Complete(sig)
//	        })
//	    })
//
//	    h.AssertLogsContain(logcapture.PartMessage, "acquireToken")
//	    h.AssertLogsNotContain(logcapture.PartLevel, "ERROR")
//	}
package harness
