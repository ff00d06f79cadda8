package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

func TestPublishSyncInvokesAllHandlers(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var calls int32
	var payload atomic.Value
	handler := func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		payload.Store(event.Payload)
		return nil
	}
	require.NoError(t, service.Subscribe(interfaces.EventDocumentUploaded, handler))
	require.NoError(t, service.Subscribe(interfaces.EventDocumentUploaded, handler))

	err := service.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventDocumentUploaded,
		Payload: "doc_1",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "doc_1", payload.Load())
}

func TestPublishSyncReportsHandlerErrors(t *testing.T) {
	service := NewService(arbor.NewLogger())

	require.NoError(t, service.Subscribe(interfaces.EventAnalysisFailed, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("handler broke")
	}))

	err := service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventAnalysisFailed})
	assert.Error(t, err)
}

func TestPublishIsAsync(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, service.Subscribe(interfaces.EventAnalysisCompleted, func(ctx context.Context, event interfaces.Event) error {
		defer wg.Done()
		return nil
	}))

	require.NoError(t, service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventAnalysisCompleted}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestUnsubscribe(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var calls int32
	handler := func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}
	require.NoError(t, service.Subscribe(interfaces.EventDocumentDeleted, handler))
	require.NoError(t, service.Unsubscribe(interfaces.EventDocumentDeleted, handler))

	require.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventDocumentDeleted}))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	t.Run("unknown handler rejected", func(t *testing.T) {
		err := service.Unsubscribe(interfaces.EventDocumentDeleted, func(ctx context.Context, event interfaces.Event) error {
			return nil
		})
		assert.Error(t, err)
	})
}

func TestPublishWithoutSubscribers(t *testing.T) {
	service := NewService(arbor.NewLogger())
	assert.NoError(t, service.Publish(context.Background(), interfaces.Event{Type: interfaces.EventAnalysisStarted}))
	assert.NoError(t, service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventAnalysisStarted}))
}
