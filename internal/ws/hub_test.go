package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishStampsAndEncodes(t *testing.T) {
	h := NewHub(zerolog.Nop())
	h.Publish(Event{Type: EventStockMovement, Message: "bob removed 3 units", Data: map[string]int{"new_stock": 7}})

	require.Len(t, h.broadcast, 1)
	var ev Event
	require.NoError(t, json.Unmarshal(<-h.broadcast, &ev))
	assert.Equal(t, EventStockMovement, ev.Type)
	assert.False(t, ev.At.IsZero())
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub(zerolog.Nop())
	for i := 0; i < cap(h.broadcast)+10; i++ {
		h.Publish(Event{Type: EventProductUpdated})
	}
	assert.Len(t, h.broadcast, cap(h.broadcast))
}

func TestJoinAndLeaveReturnAfterShutdown(t *testing.T) {
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	// Unknown connections are ignored by a running hub.
	h.leave(nil)
	cancel()
	<-stopped

	finished := make(chan bool)
	go func() {
		joined := h.join(nil)
		h.leave(nil)
		finished <- joined
	}()
	select {
	case joined := <-finished:
		assert.False(t, joined)
	case <-time.After(time.Second):
		t.Fatal("join blocked on a stopped hub")
	}
}
