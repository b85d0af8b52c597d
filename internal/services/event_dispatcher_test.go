package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingNotifier lets tests hold a handler open and observe calls.
type blockingNotifier struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	done    chan struct{}
	panics  bool
}

func (n *blockingNotifier) NotifyCustomer(ctx context.Context, kind string, payload json.RawMessage) error {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()

	if n.panics {
		panic("handler exploded")
	}
	if n.release != nil {
		<-n.release
	}
	if n.done != nil {
		n.done <- struct{}{}
	}
	return nil
}

func (n *blockingNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func TestEventDispatcher_ProcessesSubmittedEvents(t *testing.T) {
	notifier := &blockingNotifier{done: make(chan struct{}, 4)}
	rec := &recordingCollaborators{}
	router := NewEventRouter(notifier, rec, rec, zap.NewNop())

	dispatcher := NewEventDispatcher(router, 2, 16, zap.NewNop())
	dispatcher.Start()
	defer dispatcher.Stop()

	require.NoError(t, dispatcher.Submit(verifiedEvent("payment_method.attached", `{"id":"pm_1"}`)))
	require.NoError(t, dispatcher.Submit(verifiedEvent("payment_method.detached", `{"id":"pm_1"}`)))

	for i := 0; i < 2; i++ {
		select {
		case <-notifier.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event to be processed")
		}
	}

	assert.Equal(t, 2, notifier.callCount())
}

func TestEventDispatcher_SubmitDoesNotBlockWhenQueueFull(t *testing.T) {
	notifier := &blockingNotifier{release: make(chan struct{})}
	rec := &recordingCollaborators{}
	router := NewEventRouter(notifier, rec, rec, zap.NewNop())

	// One worker, single-slot buffer: the first event occupies the worker,
	// the second fills the buffer, the third must be rejected immediately.
	dispatcher := NewEventDispatcher(router, 1, 1, zap.NewNop())
	dispatcher.Start()

	require.NoError(t, dispatcher.Submit(verifiedEvent("subscription.trial_will_end", `{"id":"sub_1"}`)))

	// Wait for the worker to pick up the first event.
	require.Eventually(t, func() bool {
		return notifier.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, dispatcher.Submit(verifiedEvent("subscription.trial_will_end", `{"id":"sub_2"}`)))

	start := time.Now()
	err := dispatcher.Submit(verifiedEvent("subscription.trial_will_end", `{"id":"sub_3"}`))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(notifier.release)
	dispatcher.Stop()
}

func TestEventDispatcher_RecoversFromHandlerPanic(t *testing.T) {
	notifier := &blockingNotifier{panics: true}
	rec := &recordingCollaborators{}
	router := NewEventRouter(notifier, rec, rec, zap.NewNop())

	dispatcher := NewEventDispatcher(router, 1, 4, zap.NewNop())
	dispatcher.Start()

	require.NoError(t, dispatcher.Submit(verifiedEvent("payment_method.attached", `{"id":"pm_panic"}`)))

	require.Eventually(t, func() bool {
		return notifier.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A second event still gets processed by the same worker.
	require.NoError(t, dispatcher.Submit(verifiedEvent("payment_method.attached", `{"id":"pm_after"}`)))

	require.Eventually(t, func() bool {
		return notifier.callCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	dispatcher.Stop()
}

func TestEventDispatcher_StopProcessesBufferedEvents(t *testing.T) {
	notifier := &blockingNotifier{}
	rec := &recordingCollaborators{}
	router := NewEventRouter(notifier, rec, rec, zap.NewNop())

	// No worker ever picks these up; Stop must still process them because
	// the platform was already told they were received.
	dispatcher := NewEventDispatcher(router, 1, 4, zap.NewNop())

	require.NoError(t, dispatcher.Submit(verifiedEvent("payment_method.attached", `{"id":"pm_a"}`)))
	require.NoError(t, dispatcher.Submit(verifiedEvent("payment_method.detached", `{"id":"pm_b"}`)))

	dispatcher.Stop()

	assert.Equal(t, 2, notifier.callCount())
}

func TestEventDispatcher_StopWaitsForWorkers(t *testing.T) {
	rec := &recordingCollaborators{}
	router := NewEventRouter(rec, rec, rec, zap.NewNop())

	dispatcher := NewEventDispatcher(router, 3, 8, zap.NewNop())
	dispatcher.Start()

	done := make(chan struct{})
	go func() {
		dispatcher.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
