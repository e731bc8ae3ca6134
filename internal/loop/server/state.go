package server

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ScoreEntry represents a single entry on the best-scores board.
type ScoreEntry struct {
	Username string
	Score    int
	Seconds  int
	At       time.Time
	clientID uuid.UUID
}

// Snapshot is an immutable view of the registry for rendering.
type Snapshot struct {
	Players int          // Connected clients
	Playing int          // Clients currently in a session
	Games   int          // Sessions finished since the server started
	Best    []ScoreEntry // Best scores, highest first
}

// board keeps the best scores of the running process, highest first.
// Equal scores keep their arrival order.
type board struct {
	entries []ScoreEntry
	size    int
}

func newBoard(size int) *board {
	return &board{size: max(size, 0)}
}

// insert records e and returns its 0-based rank, or -1 when it did not
// make the board.
func (b *board) insert(e ScoreEntry) int {
	rank, _ := slices.BinarySearchFunc(b.entries, e.Score, func(have ScoreEntry, score int) int {
		// Descending by score; ties sort after existing entries.
		if have.Score >= score {
			return -1
		}
		return 1
	})
	if rank >= b.size {
		return -1
	}
	b.entries = slices.Insert(b.entries, rank, e)
	if len(b.entries) > b.size {
		b.entries = b.entries[:b.size]
	}
	return rank
}

// list returns a copy of the entries.
func (b *board) list() []ScoreEntry {
	return slices.Clone(b.entries)
}
