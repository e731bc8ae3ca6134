package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/survival/internal/game"
	"github.com/tomz197/survival/internal/loop/server"
	"github.com/tomz197/survival/internal/physics"
	"github.com/tomz197/survival/internal/render"
)

type fakeServer struct {
	mu           sync.Mutex
	handle       *server.ClientHandle
	unregistered bool
	playing      []bool
	results      []game.Result
	snapshot     server.Snapshot
}

var _ server.GameServer = (*fakeServer)(nil)

func (f *fakeServer) RegisterClient(username string) *server.ClientHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handle = &server.ClientHandle{ID: uuid.New(), Username: username, EventsCh: make(chan server.ClientEvent, 4)}
	return f.handle
}

func (f *fakeServer) UnregisterClient(uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered = true
}

func (f *fakeServer) SetPlaying(_ uuid.UUID, playing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = append(f.playing, playing)
}

func (f *fakeServer) ReportResult(_ uuid.UUID, r game.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
}

func (f *fakeServer) GetSnapshot() *server.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshot
	return &snap
}

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

// newTestClient builds a client on a 160x60 terminal whose sessions start
// without enemies.
func newTestClient(t *testing.T, fs *fakeServer, r io.Reader, w io.Writer) *Client {
	t.Helper()
	rules := game.DefaultRules()
	rules.InitialMin, rules.InitialMax = 0, 0
	return NewClient(fs, bufio.NewReader(r), w, ClientOptions{
		TermSizeFunc: fixedSize(160, 60),
		Username:     "tester",
		Rules:        rules,
		Seed:         1,
		Logger:       log.New(io.Discard),
	})
}

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		name                   string
		termW, termH           int
		wantW, wantH           int
		wantOffCol, wantOffRow int
	}{
		{"exact", 160, 60, 160, 60, 0, 0},
		{"larger", 200, 80, 160, 60, 20, 10},
		{"narrow", 80, 60, 80, 30, 0, 15},
		{"short", 160, 30, 80, 30, 40, 0},
		{"classic", 80, 24, 64, 24, 8, 0},
		{"tiny", 0, 0, 1, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, oc, or := clampTermSize(tt.termW, tt.termH)
			assert.Equal(t, tt.wantW, w, "width")
			assert.Equal(t, tt.wantH, h, "height")
			assert.Equal(t, tt.wantOffCol, oc, "offset col")
			assert.Equal(t, tt.wantOffRow, or, "offset row")
		})
	}
}

func TestTextPlacement(t *testing.T) {
	c := newTestClient(t, &fakeServer{}, strings.NewReader(""), io.Discard)

	text := func(x, y float64, anchor render.Anchor, s string) render.Item {
		return render.Item{Kind: render.KindText, Bounds: physics.AABB{MinX: x, MinY: y, MaxX: x, MaxY: y}, Anchor: anchor, Text: s}
	}

	// 800x600 onto 160x60: 5 units per column, 10 per row.
	col, row, s, ok := c.textPlacement(text(10, 10, render.AnchorNorthWest, "Time: 3"))
	require.True(t, ok)
	assert.Equal(t, 3, col)
	assert.Equal(t, 2, row)
	assert.Equal(t, "Time: 3", s)

	col, row, s, ok = c.textPlacement(text(400, 300, render.AnchorCenter, "GAME OVER"))
	require.True(t, ok)
	assert.Equal(t, 81-4, col)
	assert.Equal(t, 31, row)
	assert.Equal(t, "GAME OVER", s)

	// Clipped on the right edge.
	col, _, s, ok = c.textPlacement(text(790, 10, render.AnchorNorthWest, "Score: 1000"))
	require.True(t, ok)
	assert.Equal(t, 159, col)
	assert.Equal(t, "Sc", s)

	// Clipped on the left edge.
	col, _, s, ok = c.textPlacement(text(0, 10, render.AnchorCenter, "abcdef"))
	require.True(t, ok)
	assert.Equal(t, 1, col)
	assert.Equal(t, "def", s)

	_, _, _, ok = c.textPlacement(text(10, 700, render.AnchorNorthWest, "below"))
	assert.False(t, ok)
}

func TestRunPlaysAndQuits(t *testing.T) {
	fs := &fakeServer{}
	pr, pw := io.Pipe()
	var out bytes.Buffer
	c := newTestClient(t, fs, pr, &out)

	go func() {
		// Let the menu render first.
		time.Sleep(100 * time.Millisecond)
		pw.Write([]byte(" "))
		time.Sleep(100 * time.Millisecond)
		pw.Write([]byte("q"))
	}()

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("client did not quit")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.True(t, fs.unregistered)
	assert.Equal(t, []bool{true}, fs.playing)
	assert.Empty(t, fs.results, "quitting mid-game reports nothing")

	rendered := out.String()
	assert.Contains(t, rendered, "Click to Play")
	assert.Contains(t, rendered, "Time: 0")
}

func TestShutdownEventEndsClient(t *testing.T) {
	fs := &fakeServer{}
	pr, _ := io.Pipe()
	var out bytes.Buffer
	c := newTestClient(t, fs, pr, &out)
	c.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// The countdown outlasts the test; cancel once the screen is up.
	time.Sleep(100 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.True(t, c.state.Shutdown)
	assert.Contains(t, out.String(), "SERVER SHUTTING DOWN")
}

func TestClosedEventsChannelEndsClient(t *testing.T) {
	fs := &fakeServer{}
	pr, _ := io.Pipe()
	c := newTestClient(t, fs, pr, io.Discard)
	close(c.handle.EventsCh)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop")
	}
}
