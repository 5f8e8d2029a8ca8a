package bus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/bus"
	"github.com/watchit/watchit/pkg/models"
)

func TestBus_FanOutToMultipleSubscribers(t *testing.T) {
	b := bus.New()
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	defer sub1.Unsubscribe()
	defer sub2.Unsubscribe()

	msg := models.DecisionMessage{DecisionID: "d1"}
	b.Publish(msg)

	select {
	case got := <-sub1.Messages():
		assert.Equal(t, "d1", got.DecisionID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sub1")
	}
	select {
	case got := <-sub2.Messages():
		assert.Equal(t, "d1", got.DecisionID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sub2")
	}
}

func TestBus_PreservesPublishOrderPerSubscriber(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe()
	defer sub.Unsubscribe()

	for i := 0; i < 50; i++ {
		b.Publish(models.DecisionMessage{DecisionID: string(rune('a' + i%26))})
	}

	for i := 0; i < 50; i++ {
		select {
		case got := <-sub.Messages():
			assert.Equal(t, string(rune('a'+i%26)), got.DecisionID)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestBus_PublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	b := bus.New()
	slow := b.Subscribe()
	fast := b.Subscribe()
	defer slow.Unsubscribe()
	defer fast.Unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Publish(models.DecisionMessage{DecisionID: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow, undrained subscriber")
	}

	select {
	case <-fast.Messages():
	case <-time.After(time.Second):
		t.Fatal("fast subscriber never received a message")
	}
}

func TestSubscription_UnsubscribeClosesChannel(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe()
	sub.Unsubscribe()

	_, ok := <-sub.Messages()
	require.False(t, ok)
	assert.Equal(t, 0, b.SubscriberCount())
}
