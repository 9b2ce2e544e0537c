package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient(h *Hub) *Client {
	return &Client{Hub: h, Send: make(chan []byte, 8)}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	first := newTestClient(h)
	second := newTestClient(h)
	h.register <- first
	h.register <- second

	h.broadcast <- []byte(`{"type":"calendar_updated"}`)

	for _, client := range []*Client{first, second} {
		select {
		case msg := <-client.Send:
			assert.JSONEq(t, `{"type":"calendar_updated"}`, string(msg))
		case <-time.After(time.Second):
			t.Fatal("клиент не получил сообщение")
		}
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := newTestClient(h)
	h.register <- client
	h.unregister <- client

	select {
	case _, open := <-client.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("канал Send не закрыт после отписки")
	}
}

func TestNotifyCalendarChangedPayload(t *testing.T) {
	go HubInstance.Run()

	client := newTestClient(HubInstance)
	HubInstance.register <- client
	defer func() { HubInstance.unregister <- client }()

	NotifyCalendarChanged("class", 42)

	select {
	case msg := <-client.Send:
		var update CalendarUpdate
		assert.NoError(t, json.Unmarshal(msg, &update))
		assert.Equal(t, "calendar_updated", update.Type)
		assert.Equal(t, "class", update.Entity)
		assert.Equal(t, uint(42), update.ID)
	case <-time.After(time.Second):
		t.Fatal("уведомление не дошло до подписчика")
	}
}
