package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/models"
	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatDeliveredOverWebsocket(t *testing.T) {
	hub := services.NewRealtimeHub()
	r := newTestRouterWithHub(t, hub)
	srv := httptest.NewServer(r)
	defer srv.Close()

	aliceID, alice := signup(t, r, "alice", models.RoleUser)
	coachID, coach := signup(t, r, "coach", models.RoleTrainer)

	w := call(t, r, http.MethodPatch, "/users/current-user", alice, gin.H{"connected_trainer": coachID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + coach
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Online(coachID) == 1 }, 2*time.Second, 10*time.Millisecond)

	w = call(t, r, http.MethodPost, "/chats/", alice, gin.H{"receiver": coachID, "message": "chào thầy"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt struct {
		Kind    string             `json:"kind"`
		Message models.ChatMessage `json:"message"`
	}
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, "chat.message", evt.Kind)
	assert.Equal(t, aliceID, evt.Message.SenderID)
	assert.Equal(t, "chào thầy", evt.Message.Message)
}

func TestWebsocketRequiresToken(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
