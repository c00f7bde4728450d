package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Zap() *zap.Logger                                             { return zap.NewNop() }
func (quietLogger) Sync() error                                                  { return nil }

func registerClient(t *testing.T, h *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, buffer)}
	h.register <- client

	deadline := time.After(time.Second)
	for {
		h.mu.RLock()
		_, ok := h.clients[userID]
		h.mu.RUnlock()
		if ok {
			return client
		}
		select {
		case <-deadline:
			t.Fatal("client was not registered in time")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func waitForUnregister(t *testing.T, h *Hub, userID uuid.UUID) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		h.mu.RLock()
		_, ok := h.clients[userID]
		h.mu.RUnlock()
		if !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("client was not unregistered in time")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestHubSendDeliversToLocalClient(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	userID := uuid.New()
	client := registerClient(t, h, userID, 4)

	h.Send(userID, Notification{Type: NotificationAnswerReady, ConversationId: uuid.New()})

	select {
	case raw := <-client.Send:
		var envelope struct {
			Type string       `json:"type"`
			Data Notification `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &envelope))
		assert.Equal(t, "notification", envelope.Type)
		assert.Equal(t, NotificationAnswerReady, envelope.Data.Type)
	case <-time.After(time.Second):
		t.Fatal("no message delivered to local client")
	}
}

func TestHubSendFullBufferUnregistersWithoutPanic(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	userID := uuid.New()
	client := registerClient(t, h, userID, 1)
	client.Send <- []byte("stall")

	h.Send(userID, Notification{Type: NotificationAnswerReady})
	waitForUnregister(t, h, userID)

	// First receive drains the stalled message, the second observes the
	// channel closed exactly once by the unregister branch.
	<-client.Send
	_, open := <-client.Send
	assert.False(t, open)

	// A second send for the same user must be a no-op, not a crash.
	h.Send(userID, Notification{Type: NotificationAnswerReady})
}

func TestHubClusterMessageDeliversForeignOrigin(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	userID := uuid.New()
	client := registerClient(t, h, userID, 4)

	message, _ := json.Marshal(map[string]interface{}{"type": "notification"})
	payload, _ := json.Marshal(map[string]interface{}{
		"origin":         uuid.NewString(),
		"target_user_id": userID.String(),
		"message":        message,
	})
	h.handleClusterMessage(payload)

	select {
	case raw := <-client.Send:
		assert.JSONEq(t, string(message), string(raw))
	case <-time.After(time.Second):
		t.Fatal("cluster message from another instance was not delivered")
	}
}

func TestHubClusterMessageSkipsOwnOrigin(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	userID := uuid.New()
	client := registerClient(t, h, userID, 4)

	message, _ := json.Marshal(map[string]interface{}{"type": "notification"})
	payload, _ := json.Marshal(map[string]interface{}{
		"origin":         h.instanceID,
		"target_user_id": userID.String(),
		"message":        message,
	})
	h.handleClusterMessage(payload)

	select {
	case <-client.Send:
		t.Fatal("message published by this instance was delivered twice")
	case <-time.After(50 * time.Millisecond):
	}
}
