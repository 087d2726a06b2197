package service

import (
	"testing"
	"time"

	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(bufferSize int) *RealtimeBroadcaster {
	config := model.DefaultConfig()
	config.RealtimeBroadcaster.BufferSize = bufferSize
	return NewRealtimeBroadcaster(config)
}

func TestBroadcastDeliversToRoomSubscribers(t *testing.T) {
	rb := newTestBroadcaster(4)
	received := make(chan model.BroadcastPacket, 4)
	other := make(chan model.BroadcastPacket, 4)

	unsubscribe := rb.Subscribe("ROOM01", func(p model.BroadcastPacket) { received <- p })
	defer unsubscribe()
	unsubscribeOther := rb.Subscribe("ROOM02", func(p model.BroadcastPacket) { other <- p })
	defer unsubscribeOther()
	assert.Equal(t, 1, rb.SubscriberCount("ROOM01"))

	rb.Broadcast(model.BroadcastPacket{RoomID: "ROOM01", Kind: model.BK_PUBLIC, Origin: "a"})

	select {
	case p := <-received:
		assert.Equal(t, "a", p.Origin)
	case <-time.After(time.Second):
		t.Fatal("配信がタイムアウトしました")
	}
	select {
	case <-other:
		t.Fatal("別の部屋に配信されました")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	rb := newTestBroadcaster(4)
	unsubscribe := rb.Subscribe("ROOM01", func(model.BroadcastPacket) {})
	require.Equal(t, 1, rb.SubscriberCount("ROOM01"))

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, rb.SubscriberCount("ROOM01"))
	rb.Broadcast(model.BroadcastPacket{RoomID: "ROOM01"})
}

func TestBroadcastDoesNotBlockOnSlowSubscriber(t *testing.T) {
	rb := newTestBroadcaster(1)
	block := make(chan struct{})
	unsubscribe := rb.Subscribe("ROOM01", func(model.BroadcastPacket) { <-block })
	defer unsubscribe()
	defer close(block)

	done := make(chan struct{})
	go func() {
		for range 10 {
			rb.Broadcast(model.BroadcastPacket{RoomID: "ROOM01"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("配信が遅い購読者に塞がれました")
	}
}
