package fakeauth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adalharness/internal/authmodel"
	"github.com/roach88/adalharness/internal/bridge"
	"github.com/roach88/adalharness/internal/foreground"
	"github.com/roach88/adalharness/internal/logcapture"
	"github.com/roach88/adalharness/internal/report"
	"github.com/roach88/adalharness/internal/testutil"
)

const authority = "https://login.example.test/common"

type fixture struct {
	queue  *foreground.FIFO
	sink   *logcapture.Sink
	rec    *testutil.Recorder
	bridge *bridge.Bridge
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	q := foreground.NewFIFO()
	rec := testutil.NewRecorder()
	return &fixture{
		queue:  q,
		sink:   logcapture.NewSink(),
		rec:    rec,
		bridge: bridge.New(rec, q, bridge.WithTimeout(2*time.Second), bridge.WithPollInterval(time.Millisecond)),
	}
}

func (f *fixture) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(authority, f.queue, f.sink.Logger(), opts...)
	require.NoError(t, err)
	return c
}

func (f *fixture) acquire(c *Client, resource, clientID string) (*authmodel.Result, bridge.Outcome) {
	var result *authmodel.Result
	outcome := f.bridge.RunAndAwait(report.Here(), func(sig *bridge.Signal) {
		c.AcquireToken(resource, clientID, func(r *authmodel.Result) {
			result = r
			f.bridge.Complete(report.Here(), sig)
		})
	})
	return result, outcome
}

func TestNew_RejectsBlankAuthority(t *testing.T) {
	sink := logcapture.NewSink()

	c, err := New("  ", foreground.NewFIFO(), sink.Logger())

	assert.Nil(t, c)
	require.Error(t, err)
	assert.Contains(t, err.(*authmodel.Error).Description(), "authority")
	assert.Equal(t, "1", sink.Logs(logcapture.PartCode))
}

func TestNew_RequiresQueue(t *testing.T) {
	_, err := New(authority, nil, nil)
	require.Error(t, err)
}

func TestAcquireToken_DeliversOnForegroundQueue(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, WithDelay(5*time.Millisecond))

	result, outcome := f.acquire(c, "https://graph", "app")

	require.Equal(t, bridge.Completed, outcome)
	require.NotNil(t, result)
	assert.Equal(t, authmodel.StatusSucceeded, result.Status)
	assert.Equal(t, "access-token-1", result.Item.AccessToken)
	assert.NotEqual(t, uuid.Nil, result.CorrelationID)
	assert.False(t, f.rec.Failed())

	assert.Contains(t, f.sink.Logs(logcapture.PartMessage), "acquireToken")
	assert.Contains(t, f.sink.Logs(logcapture.PartMessage), "token acquired")
}

func TestAcquireToken_CacheHitSkipsBackground(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	first, _ := f.acquire(c, "https://graph", "app")
	second, outcome := f.acquire(c, "https://graph", "app")

	require.Equal(t, bridge.Completed, outcome)
	assert.True(t, first.Item.Equal(second.Item))
	assert.Equal(t, uuid.Nil, second.CorrelationID)
	assert.Equal(t, 1, f.sink.Count(logcapture.PartMessage, "token found in cache"))

	c.ClearCache()
	third, _ := f.acquire(c, "https://graph", "app")
	assert.Equal(t, "access-token-2", third.Item.AccessToken)
}

func TestAcquireToken_InvalidArguments(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	result, outcome := f.acquire(c, "", "app")
	require.Equal(t, bridge.Completed, outcome)
	assert.Equal(t, authmodel.StatusFailed, result.Status)
	assert.Contains(t, result.Err.Description(), "resource")

	result, _ = f.acquire(c, "https://graph", " ")
	assert.Contains(t, result.Err.Description(), "clientId")
	assert.True(t, strings.HasSuffix(f.sink.Logs(logcapture.PartLevel), "ERROR"))
}

func TestAcquireToken_Failure(t *testing.T) {
	f := newFixture(t)
	fixed := uuid.MustParse("00000000-0000-0000-0000-000000000007")
	c := f.client(t,
		WithFailure(authmodel.NewError(authmodel.CodeUserCancelled, "user closed the prompt")),
		WithCorrelationIDs(func() uuid.UUID { return fixed }),
	)

	result, _ := f.acquire(c, "https://graph", "app")

	assert.Equal(t, authmodel.StatusUserCancelled, result.Status)
	assert.Equal(t, fixed, result.CorrelationID)
	assert.Contains(t, f.sink.Logs(logcapture.PartInfo), "correlationId="+fixed.String())
	assert.Contains(t, f.sink.Logs(logcapture.PartCode), "3")
}

func TestAcquireToken_DuplicateCallbacksDetected(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, WithDuplicateCallbacks())

	_, outcome := f.acquire(c, "https://graph", "app")
	require.Equal(t, bridge.Completed, outcome)

	c.Wait()
	foreground.Drain(f.queue)
	assert.Equal(t, 1, f.rec.Count(string(report.KindDoubleCompletion)))
}

func TestAcquireToken_DroppedCallbacksTimeOut(t *testing.T) {
	f := newFixture(t)
	f.bridge = bridge.New(f.rec, f.queue, bridge.WithTimeout(20*time.Millisecond), bridge.WithPollInterval(time.Millisecond))
	c := f.client(t, WithDroppedCallbacks())

	result, outcome := f.acquire(c, "https://graph", "app")

	assert.Equal(t, bridge.TimedOut, outcome)
	assert.Nil(t, result)
	assert.Equal(t, 1, f.rec.Count(string(report.KindTimeout)))
}

func TestAcquireToken_NilCompletionLogged(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	c.AcquireToken("https://graph", "app", nil)

	assert.Equal(t, 0, f.queue.Len())
	assert.Contains(t, f.sink.Logs(logcapture.PartMessage), "without a completion block")
}

func TestAcquireToken_ClosedQueueLogsLostCompletion(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	f.queue.Close()

	called := false
	c.AcquireToken("https://graph", "app", func(*authmodel.Result) { called = true })
	c.Wait()

	assert.False(t, called)
	assert.Equal(t, 0, f.queue.Len())
	assert.Equal(t, 1, f.sink.Count(logcapture.PartMessage, "completion lost"))
	assert.Equal(t, 1, f.sink.Count(logcapture.PartLevel, "WARN"))
}
