package foreground

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFO_PostRunNext(t *testing.T) {
	q := NewFIFO()

	ran := false
	ok := q.Post(func() { ran = true })
	require.True(t, ok, "post should succeed")

	assert.False(t, ran, "post must not run the task inline")
	assert.True(t, RunNext(q))
	assert.True(t, ran)
}

func TestFIFO_Order(t *testing.T) {
	q := NewFIFO()

	var order []string
	for _, name := range []string{"A", "B", "C"} {
		q.Post(func() { order = append(order, name) })
	}

	assert.Equal(t, 3, Drain(q))
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestFIFO_TasksPostedByTasksRunAfterQueuedOnes(t *testing.T) {
	q := NewFIFO()

	var order []string
	q.Post(func() {
		order = append(order, "first")
		q.Post(func() { order = append(order, "nested") })
	})
	q.Post(func() { order = append(order, "second") })

	Drain(q)

	assert.Equal(t, []string{"first", "second", "nested"}, order)
}

func TestFIFO_TryNext_Empty(t *testing.T) {
	q := NewFIFO()

	_, ok := q.TryNext()
	assert.False(t, ok, "empty queue should return false")
	assert.False(t, RunNext(q))
}

func TestFIFO_PostNil(t *testing.T) {
	q := NewFIFO()

	assert.False(t, q.Post(nil))
	assert.Equal(t, 0, q.Len())
}

func TestFIFO_Len(t *testing.T) {
	q := NewFIFO()

	assert.Equal(t, 0, q.Len())
	q.Post(func() {})
	q.Post(func() {})
	assert.Equal(t, 2, q.Len())

	RunNext(q)
	assert.Equal(t, 1, q.Len())
}

func TestFIFO_WaitSignalsOnPost(t *testing.T) {
	q := NewFIFO()

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Post(func() {})
	}()

	select {
	case <-q.Wait():
		assert.Equal(t, 1, q.Len())
	case <-time.After(time.Second):
		t.Fatal("wait channel did not fire after post")
	}
}

func TestFIFO_Close(t *testing.T) {
	q := NewFIFO()
	q.Post(func() {})

	q.Close()
	q.Close() // idempotent

	assert.True(t, q.Closed())
	assert.False(t, q.Post(func() {}), "post after close should fail")

	// queued work survives the close
	assert.True(t, RunNext(q))

	select {
	case <-q.Wait():
	default:
		t.Fatal("wait channel should be closed")
	}
}

func TestFIFO_ConcurrentPost(t *testing.T) {
	q := NewFIFO()

	const producers = 10
	const tasksPerProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < tasksPerProducer; i++ {
				q.Post(func() {})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*tasksPerProducer, Drain(q))
}
