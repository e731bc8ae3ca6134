// Package server is the process-wide registry shared by all connections:
// it tracks connected clients, keeps the best scores of the running process
// and broadcasts shutdown. Each client runs its own game session; nothing in
// here touches gameplay.
package server

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/survival/internal/game"
	"github.com/tomz197/survival/internal/loop/config"
)

// GameServer is the interface clients use to communicate with the registry.
// Decouples the Client from the concrete Server implementation.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID uuid.UUID)
	SetPlaying(clientID uuid.UUID, playing bool)
	ReportResult(clientID uuid.UUID, result game.Result)
	GetSnapshot() *Snapshot
}

// Server tracks connected clients and their results.
type Server struct {
	snapshot     atomic.Pointer[Snapshot]
	clients      map[uuid.UUID]*ClientHandle
	best         *board
	games        int
	registerCh   chan *ClientHandle
	unregisterCh chan uuid.UUID
	playingCh    chan clientPlaying
	resultCh     chan clientResult
	done         chan struct{} // closed when Run returns
	mu           sync.RWMutex
	log          *log.Logger
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       uuid.UUID
	Username string           // Display name for this client
	Playing  bool             // In a session right now
	EventsCh chan ClientEvent // Events sent to client (new best, shutdown)
}

type clientPlaying struct {
	ClientID uuid.UUID
	Playing  bool
}

type clientResult struct {
	ClientID uuid.UUID
	Username string // captured at report time; empty if the client was unknown
	Result   game.Result
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
	Rank int // 0-based board position, for EventNewBest
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventNewBest ClientEventType = iota
	EventServerShutdown
)

// NewServer creates a new registry. A nil logger selects log.Default().
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		clients:      make(map[uuid.UUID]*ClientHandle),
		best:         newBoard(config.BestScoresShown),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan uuid.UUID, 16),
		playingCh:    make(chan clientPlaying, 64),
		resultCh:     make(chan clientResult, 64),
		done:         make(chan struct{}),
		log:          logger,
	}

	// Create initial empty snapshot
	s.snapshot.Store(&Snapshot{})
	return s
}

// Run processes registrations and results. Blocks until the context is
// cancelled.
func (s *Server) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.log.Info("client connected", "client", handle.ID, "user", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				close(handle.EventsCh)
				delete(s.clients, clientID)
				s.log.Info("client disconnected", "client", clientID, "user", handle.Username)
			}
			s.mu.Unlock()
		case cp := <-s.playingCh:
			s.mu.Lock()
			if handle, ok := s.clients[cp.ClientID]; ok {
				handle.Playing = cp.Playing
			}
			s.mu.Unlock()
		case cr := <-s.resultCh:
			s.recordResult(cr)
		}

		s.createSnapshot()
	}
}

// recordResult updates the board and tells the client if it placed. The
// client may already be gone; its score still counts.
func (s *Server) recordResult(cr clientResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games++
	if cr.Username == "" {
		return
	}
	handle, connected := s.clients[cr.ClientID]
	if connected {
		handle.Playing = false
	}

	rank := s.best.insert(ScoreEntry{
		Username: cr.Username,
		Score:    cr.Result.Score,
		Seconds:  cr.Result.Seconds,
		At:       time.Now(),
		clientID: cr.ClientID,
	})
	s.log.Info("result", "user", cr.Username, "score", cr.Result.Score, "rank", rank)
	if rank < 0 || !connected {
		return
	}

	select {
	case handle.EventsCh <- ClientEvent{Type: EventNewBest, Rank: rank}:
	default:
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	// Notify all connected clients about the shutdown
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (s *Server) RegisterClient(username string) *ClientHandle {
	handle := &ClientHandle{
		ID:       uuid.New(),
		Username: SanitizeUsername(username),
		EventsCh: make(chan ClientEvent, 16),
	}

	select {
	case s.registerCh <- handle:
	case <-s.done:
	}
	return handle
}

// UnregisterClient removes a client from the server and closes its event
// channel. Once Run has returned it does nothing.
func (s *Server) UnregisterClient(clientID uuid.UUID) {
	select {
	case s.unregisterCh <- clientID:
	case <-s.done:
	}
}

// SetPlaying records whether the client is in a session.
func (s *Server) SetPlaying(clientID uuid.UUID, playing bool) {
	select {
	case s.playingCh <- clientPlaying{ClientID: clientID, Playing: playing}:
	default:
		// Channel full, the count catches up on the next change
	}
}

// ReportResult submits a finished session for the best-scores board.
// The username is resolved now, so the score survives an unregister that
// overtakes it. It never blocks the calling session.
func (s *Server) ReportResult(clientID uuid.UUID, result game.Result) {
	var username string
	s.mu.RLock()
	if handle, ok := s.clients[clientID]; ok {
		username = handle.Username
	}
	s.mu.RUnlock()

	select {
	case s.resultCh <- clientResult{ClientID: clientID, Username: username, Result: result}:
	default:
		s.log.Warn("result dropped", "client", clientID, "score", result.Score)
	}
}

// GetSnapshot returns the current registry snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// createSnapshot publishes an immutable snapshot of the registry.
func (s *Server) createSnapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	playing := 0
	for _, handle := range s.clients {
		if handle.Playing {
			playing++
		}
	}

	s.snapshot.Store(&Snapshot{
		Players: len(s.clients),
		Playing: playing,
		Games:   s.games,
		Best:    s.best.list(),
	})
}

// SanitizeUsername keeps printable ASCII, trims the result to the display
// length and falls back to "guest".
func SanitizeUsername(name string) string {
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if len(name) > config.MaxUsernameLength {
		name = name[:config.MaxUsernameLength]
	}
	if name == "" {
		return "guest"
	}
	return name
}
