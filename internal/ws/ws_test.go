package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loteamento/config"
	"loteamento/internal/auth"
	"loteamento/internal/domain"
	"loteamento/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtCfg = &config.JWTConfig{Secret: "ws-secret", Expiry: time.Hour, Issuer: "test"}

func newFeedServer(t *testing.T, hub *ActivityHub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/atividades", UpgradeActivityWS(jwtCfg, hub))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/atividades"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) ActivityEvent {
	t.Helper()
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev ActivityEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	return ev
}

func TestActivityFeed_StreamsToAdmins(t *testing.T) {
	hub := NewActivityHub()
	hub.Publish(models.ActivityRecord{ID: 1, Action: "LOGIN", Table: "usuarios"})
	url := newFeedServer(t, hub)

	token, err := auth.GenerateAccessToken(jwtCfg, 1, "admin", "admin")
	require.NoError(t, err)
	conn := dial(t, url+"?token="+token)

	ev := readEvent(t, conn)
	assert.Equal(t, "recent", ev.Type)
	require.Len(t, ev.Recent, 1)
	assert.Equal(t, "LOGIN", ev.Recent[0].Action)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish(models.ActivityRecord{ID: 2, Action: "CREATE", Table: "lotes"})

	ev = readEvent(t, conn)
	assert.Equal(t, "activity", ev.Type)
	require.NotNil(t, ev.Activity)
	assert.Equal(t, uint(2), ev.Activity.ID)
}

func TestActivityFeed_RejectsBadTokens(t *testing.T) {
	url := newFeedServer(t, NewActivityHub())
	user, err := auth.GenerateAccessToken(jwtCfg, 2, "viewer", "viewer")
	require.NoError(t, err)

	for query, want := range map[string]string{
		"":               "token required",
		"?token=garbage": "invalid token",
		"?token=" + user: "admin access required",
	} {
		conn := dial(t, url+query)
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(msg), want)
	}
}

func TestActivityHub_RecentIsBounded(t *testing.T) {
	hub := NewActivityHub()
	for i := 1; i <= recentActivities+5; i++ {
		hub.Publish(models.ActivityRecord{ID: uint(i)})
	}
	recent := hub.Recent()
	require.Len(t, recent, recentActivities)
	assert.Equal(t, uint(recentActivities+5), recent[0].ID)
}

func TestActivityHub_ResetClearsRecent(t *testing.T) {
	hub := NewActivityHub()
	hub.Publish(models.ActivityRecord{ID: 1, Action: domain.ActionCreate})
	hub.Publish(models.ActivityRecord{ID: 2, Action: domain.ActionUpdate})
	hub.Publish(models.ActivityRecord{ID: 1, Action: domain.ActionSystemReset})
	hub.Publish(models.ActivityRecord{ID: 2, Action: domain.ActionLogin})

	recent := hub.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, domain.ActionLogin, recent[0].Action)
	assert.Equal(t, domain.ActionSystemReset, recent[1].Action)
}

func TestClient_CloseUnregisters(t *testing.T) {
	hub := NewHub()
	c := NewClient(1, "admin")
	hub.Register(c)
	assert.Equal(t, 1, hub.BroadcastAll(map[string]string{"ok": "1"}))
	c.Close()
	c.Close()
	assert.Zero(t, hub.ClientCount())
	assert.Zero(t, hub.BroadcastAll("x"))
}
