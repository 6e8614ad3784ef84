package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskroom/taskroom/internal/chat"
	"github.com/taskroom/taskroom/internal/modules/model"
)

func chatServer(t *testing.T, requireAuth bool, origins []string) (string, *MockMessageService, *MockAuthService) {
	t.Helper()

	msgs := &MockMessageService{}
	auth := &MockAuthService{}
	relay := chat.NewRelay(chat.NewMemoryLayer(), msgs, 8, zap.NewNop())
	h := NewChatHandler(relay, auth, requireAuth, origins, zap.NewNop())

	r := setupRouter(nil)
	r.GET("/ws/chat/:project_id/", h.Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		_ = relay.Shutdown()
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http"), msgs, auth
}

func TestChatHandler_RoundTrip(t *testing.T) {
	url, msgs, _ := chatServer(t, false, nil)
	msgs.On("Create", mock.Anything, uint(7), "alice", "hi").
		Return(&model.Message{ID: 1, MessageProjectID: 7, Sender: "alice", Content: "hi"}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url+"/ws/chat/7/", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"sender":"alice","content":"hi"}`)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var got map[string]string
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, map[string]string{"message": "hi", "username": "alice"}, got)
	msgs.AssertExpectations(t)
}

func TestChatHandler_NonNumericRoom(t *testing.T) {
	url, _, _ := chatServer(t, false, nil)

	_, resp, err := websocket.DefaultDialer.Dial(url+"/ws/chat/abc/", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatHandler_RequireAuth(t *testing.T) {
	url, _, auth := chatServer(t, true, nil)
	auth.On("Authenticate", "bad").Return(nil, errors.New("invalid"))
	auth.On("Authenticate", "good").Return(memberP, nil)

	_, resp, err := websocket.DefaultDialer.Dial(url+"/ws/chat/7/?token=bad", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url+"/ws/chat/7/?token=good", nil)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestChatHandler_AllowedOrigins(t *testing.T) {
	url, _, _ := chatServer(t, false, []string{"http://app.example.com"})

	header := http.Header{"Origin": {"http://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url+"/ws/chat/7/", header)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://app.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(url+"/ws/chat/7/", header)
	require.NoError(t, err)
	_ = conn.Close()
}
