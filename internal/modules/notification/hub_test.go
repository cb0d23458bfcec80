package notification

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/pkg/jwt"
)

func TestHub_PushToConnectedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := jwt.New("secret", time.Hour)
	hub := NewHub()
	h := NewHandler(NewService(new(MockNotificationRepository)), hub, tokens, zerolog.Nop())

	r := gin.New()
	h.RegisterWS(r.Group(""))
	srv := httptest.NewServer(r)
	defer srv.Close()

	tok, err := tokens.GenerateToken("user-7", "client")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline("user-7") }, time.Second, 10*time.Millisecond)

	n := &domain.Notification{ID: "n1", UserID: "user-7", Title: "Booking accepted"}
	assert.True(t, hub.SendToUser("user-7", PushEvent{Type: "notification", Data: n}))
	assert.False(t, hub.SendToUser("someone-else", PushEvent{}))

	var got PushEvent
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "notification", got.Type)
	assert.Equal(t, "Booking accepted", got.Data.Title)

	conn.Close()
	require.Eventually(t, func() bool { return !hub.IsOnline("user-7") }, time.Second, 10*time.Millisecond)
}

func TestHub_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, NewHub(), jwt.New("secret", time.Hour), zerolog.Nop())
	r := gin.New()
	h.RegisterWS(r.Group(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws/notifications", nil))
	assert.Equal(t, 401, w.Code)
}
