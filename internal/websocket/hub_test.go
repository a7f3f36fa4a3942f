package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	return hub
}

func newTestClient(hub *Hub, playerID uint) *Client {
	// no real connection, the pumps are not started in these tests
	return &Client{
		ID:       "test-" + time.Now().Format("150405.000000000"),
		PlayerID: playerID,
		Hub:      hub,
		Send:     make(chan []byte, 16),
	}
}

func receiveMessage(t *testing.T, client *Client) *Message {
	t.Helper()
	select {
	case data, ok := <-client.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg Message
		assert.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubRegisterSendsConnected(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, 1)

	hub.Register(client)

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeConnected, msg.Type)
	assert.Eventually(t, func() bool {
		return hub.GetOnlineCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, 1)

	hub.Register(client)
	receiveMessage(t, client)

	hub.Unregister(client)

	assert.Eventually(t, func() bool {
		return hub.GetOnlineCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// drained channel reports closed
	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHubSendToPlayer(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, 7)

	hub.Register(client)
	receiveMessage(t, client)

	err := hub.SendToPlayer(7, &Message{Type: MessageTypeNotification, Timestamp: time.Now().Unix()})
	assert.NoError(t, err)

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeNotification, msg.Type)

	err = hub.SendToPlayer(99, &Message{Type: MessageTypeNotification})
	assert.ErrorIs(t, err, ErrPlayerNotConnected)
}

func TestHubBroadcastGameEvent(t *testing.T) {
	hub := newTestHub()
	watcher := newTestClient(hub, 1)
	bystander := newTestClient(hub, 2)

	hub.Register(watcher)
	hub.Register(bystander)
	receiveMessage(t, watcher)
	receiveMessage(t, bystander)

	hub.subscribeGame(watcher, 42)

	hub.BroadcastGameEvent(42, MessageTypeOracleDefeated, map[string]interface{}{
		"oracle_name": "Chronos",
	})

	msg := receiveMessage(t, watcher)
	assert.Equal(t, MessageTypeOracleDefeated, msg.Type)
	assert.Equal(t, uint(42), msg.GameID)

	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "Chronos", payload["oracle_name"])

	// the unsubscribed client hears nothing
	select {
	case data := <-bystander.Send:
		t.Fatalf("unexpected message for bystander: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubResubscribeMovesClient(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, 1)

	hub.Register(client)
	receiveMessage(t, client)

	hub.subscribeGame(client, 1)
	hub.subscribeGame(client, 2)

	// the old game no longer reaches this client
	err := hub.SendToGame(1, &Message{Type: MessageTypeGameEvent})
	assert.ErrorIs(t, err, ErrGameNotWatched)

	err = hub.SendToGame(2, &Message{Type: MessageTypeGameEvent})
	assert.NoError(t, err)
	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeGameEvent, msg.Type)
}

func TestHandleMessageDropsMalformedFrames(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, 1)

	hub.Register(client)
	receiveMessage(t, client)

	client.handleMessage([]byte("{not json"))
	client.handleMessage([]byte(`{"data":{"x":1}}`))

	// the connection survives: the client is still registered and a
	// well-formed frame right after still gets a reply
	assert.Equal(t, 1, hub.GetOnlineCount())
	client.handleMessage([]byte(`{"type":"ping"}`))
	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypePong, msg.Type)
}

func TestHandleMessageEchoesPlayerAction(t *testing.T) {
	hub := newTestHub()
	actor := newTestClient(hub, 1)
	watcher := newTestClient(hub, 2)

	hub.Register(actor)
	receiveMessage(t, actor)
	hub.Register(watcher)
	receiveMessage(t, watcher)

	hub.subscribeGame(actor, 9)
	hub.subscribeGame(watcher, 9)

	actor.handleMessage([]byte(`{"type":"player_action","data":{"move":"challenge"}}`))

	msg := receiveMessage(t, watcher)
	assert.Equal(t, MessageTypePlayerAction, msg.Type)
	assert.Equal(t, uint(9), msg.GameID)
	assert.Equal(t, uint(1), msg.PlayerID)
}
