package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/survival/internal/game"
	"github.com/tomz197/survival/internal/loop/server"
	"github.com/tomz197/survival/internal/physics"
	"github.com/tomz197/survival/internal/render"
)

type testEnv struct {
	registry *server.Server
	http     *httptest.Server
	cancel   context.CancelFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := log.New(io.Discard)
	ctx, cancel := context.WithCancel(context.Background())

	reg := server.NewServer(logger)
	go reg.Run(ctx)

	rules := game.DefaultRules()
	rules.InitialMin, rules.InitialMax = 0, 0
	rules.Boss.Enabled = false
	h := NewHandler(reg, HandlerOptions{
		Rules:     rules,
		FrameTime: 10 * time.Millisecond,
		Logger:    logger,
		Context:   ctx,
	})
	srv := httptest.NewServer(h)

	env := &testEnv{registry: reg, http: srv, cancel: cancel}
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return env
}

func (e *testEnv) dial(t *testing.T, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/ws?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	msg, err := NewMessage(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads messages until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func frameWhere(t *testing.T, conn *websocket.Conn, cond func(FrameMessage) bool) FrameMessage {
	t.Helper()
	var frame FrameMessage
	readUntil(t, conn, func(m Message) bool {
		if m.Type != TypeFrame {
			return false
		}
		frame = FrameMessage{}
		require.NoError(t, json.Unmarshal(m.Data, &frame))
		return cond(frame)
	})
	return frame
}

func hasText(f FrameMessage, text string) bool {
	for _, it := range f.Items {
		if it.Kind == "text" && it.Text == text {
			return true
		}
	}
	return false
}

func playerX(f FrameMessage) (float64, bool) {
	for _, it := range f.Items {
		if it.Kind == "rect" && it.Color == string(render.ColorPlayer) {
			return it.X, true
		}
	}
	return 0, false
}

func TestMenuThenPlay(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "web")

	menu := frameWhere(t, conn, func(f FrameMessage) bool { return f.State == game.StateMenu.String() })
	assert.True(t, hasText(menu, "Click to Play"))
	assert.Equal(t, 800.0, menu.Width)
	assert.Equal(t, 600.0, menu.Height)

	send(t, conn, TypeClick, nil)
	playing := frameWhere(t, conn, func(f FrameMessage) bool {
		return f.State == game.StatePlaying.String() && f.Players == 1
	})
	assert.True(t, hasText(playing, "Time: 0"))

	x0, ok := playerX(playing)
	require.True(t, ok)

	send(t, conn, TypeKeyDown, KeyMessage{Key: "ArrowRight"})
	frameWhere(t, conn, func(f FrameMessage) bool {
		x, ok := playerX(f)
		return ok && x > x0+20
	})

	// Once released the player stays put from one second to the next.
	send(t, conn, TypeKeyUp, KeyMessage{Key: "d"})
	one := frameWhere(t, conn, func(f FrameMessage) bool { return hasText(f, "Time: 1") })
	two := frameWhere(t, conn, func(f FrameMessage) bool { return hasText(f, "Time: 2") })
	x1, _ := playerX(one)
	x2, _ := playerX(two)
	assert.Equal(t, x1, x2)
}

func TestBadMessagesGetErrors(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "web")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := readUntil(t, conn, func(m Message) bool { return m.Type == TypeError })
	assert.Contains(t, string(msg.Data), errInvalidMessage.Error())

	send(t, conn, "dance", nil)
	msg = readUntil(t, conn, func(m Message) bool { return m.Type == TypeError })
	assert.Contains(t, string(msg.Data), errUnknownType.Error())

	send(t, conn, TypeKeyDown, KeyMessage{Key: "space"})
	msg = readUntil(t, conn, func(m Message) bool { return m.Type == TypeError })
	assert.Contains(t, string(msg.Data), errUnknownKey.Error())
}

func TestDisconnectUnregisters(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "web")
	frameWhere(t, conn, func(FrameMessage) bool { return true })
	require.Eventually(t, func() bool { return env.registry.GetSnapshot().Players == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return env.registry.GetSnapshot().Players == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestShutdownClosesConnection(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "web")
	frameWhere(t, conn, func(FrameMessage) bool { return true })
	require.Eventually(t, func() bool { return env.registry.GetSnapshot().Players == 1 }, time.Second, 5*time.Millisecond)

	go env.registry.Shutdown(3 * time.Second)
	readUntil(t, conn, func(m Message) bool { return m.Type == TypeShutdown })

	// The server follows up with a close frame.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure), "%v", err)
			break
		}
	}
	require.Eventually(t, func() bool { return env.registry.GetSnapshot().Players == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestNewFrame(t *testing.T) {
	items := []render.Item{
		{Handle: 1, Kind: render.KindRect, Bounds: physics.Rect(10, 20, 30, 40), Color: render.ColorEnemy},
		{Handle: 2, Kind: render.KindText, Bounds: physics.AABB{MinX: 5, MinY: 6, MaxX: 5, MaxY: 6}, Color: render.ColorText,
			Text: "hi", Anchor: render.AnchorNorthWest, Style: render.TextTitle},
	}
	snap := &server.Snapshot{Players: 3, Best: []server.ScoreEntry{{Username: "a", Score: 40}}}

	f := NewFrame(800, 600, game.StateGameOver, items, snap)
	assert.Equal(t, "game over", f.State)
	assert.Equal(t, 3, f.Players)
	require.Len(t, f.Items, 2)
	assert.Equal(t, FrameItem{Kind: "rect", X: 10, Y: 20, W: 30, H: 40, Color: "red"}, f.Items[0])
	assert.Equal(t, FrameItem{Kind: "text", X: 5, Y: 6, Color: "white", Text: "hi", Anchor: "nw", Style: "title"}, f.Items[1])
	assert.Equal(t, []ScoreItem{{Username: "a", Score: 40}}, f.Best)
}
