// Package input turns raw terminal bytes into discrete game input events.
package input

import (
	"bufio"
	"time"
)

// DefaultKeyHold is how long a key counts as held after its last byte.
// Terminals only report presses (plus autorepeat), never releases, so a
// release is inferred once no repeat arrived within the hold window.
const DefaultKeyHold = 150 * time.Millisecond

// Key is a movement key.
type Key uint8

const (
	KeyUp Key = 1 << iota
	KeyDown
	KeyLeft
	KeyRight
)

// Keys lists every movement key in a stable order.
var Keys = [...]Key{KeyUp, KeyDown, KeyLeft, KeyRight}

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseKey maps a key name ("up", "w", "ArrowUp", ...) to a Key.
func ParseKey(name string) (Key, bool) {
	switch name {
	case "up", "w", "W", "ArrowUp":
		return KeyUp, true
	case "down", "s", "S", "ArrowDown":
		return KeyDown, true
	case "left", "a", "A", "ArrowLeft":
		return KeyLeft, true
	case "right", "d", "D", "ArrowRight":
		return KeyRight, true
	}
	return 0, false
}

// KeySet is the set of currently held movement keys.
type KeySet uint8

// Add marks k as held.
func (s *KeySet) Add(k Key) { *s |= KeySet(k) }

// Remove marks k as released.
func (s *KeySet) Remove(k Key) { *s &^= KeySet(k) }

// Has reports whether k is held.
func (s KeySet) Has(k Key) bool { return s&KeySet(k) != 0 }

// Clear releases every key.
func (s *KeySet) Clear() { *s = 0 }

// Empty reports whether no key is held.
func (s KeySet) Empty() bool { return s == 0 }

// EventKind identifies an input event.
type EventKind int

const (
	EventKeyDown EventKind = iota
	EventKeyUp
	EventClick
	EventQuit
)

// Event is a discrete input event.
type Event struct {
	Kind EventKind
	Key  Key // only for key events
}

// Frame is the result of one Poll.
type Frame struct {
	Events []Event
	Active bool // any byte arrived since the previous poll
	Closed bool // the underlying reader is exhausted
}

// Stream delivers input bytes via a channel and tracks held keys.
type Stream struct {
	ch     chan byte
	hold   time.Duration
	last   [len(Keys)]time.Time // last time each key byte was seen
	held   KeySet
	closed bool
	events []Event // reused between polls

	// Trailing ESC or ESC [ of a sequence whose remaining bytes have not
	// arrived yet.
	pending []byte
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// hold <= 0 selects DefaultKeyHold.
func StartStream(r *bufio.Reader, hold time.Duration) *Stream {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	s := &Stream{
		ch:   make(chan byte, 128),
		hold: hold,
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Poll drains all available bytes (non-blocking) and returns the events they
// produce at time now: key presses become KeyDown on the first byte, keys
// whose hold window ran out become KeyUp, SPACE/ENTER is a click and
// q/Q/Ctrl-C quits. The returned slice is reused by the next Poll.
func (s *Stream) Poll(now time.Time) Frame {
	var buf []byte

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	s.events = s.events[:0]
	active := len(buf) > 0
	if len(s.pending) > 0 {
		buf = append(s.pending, buf...)
		s.pending = nil
	}
	s.parse(buf, now)

	// Infer releases for keys whose hold expired.
	for i, k := range Keys {
		if s.held.Has(k) && now.Sub(s.last[i]) >= s.hold {
			s.held.Remove(k)
			s.events = append(s.events, Event{Kind: EventKeyUp, Key: k})
		}
	}

	return Frame{Events: s.events, Active: active, Closed: s.closed}
}

// parse handles arrow-key escape sequences and single-byte keys. An
// incomplete sequence at the end of buf is kept for the next poll.
func (s *Stream) parse(buf []byte, now time.Time) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' {
			rest := len(buf) - i
			if rest == 1 || (rest == 2 && buf[i+1] == '[') {
				if !s.closed {
					s.pending = append(s.pending[:0], buf[i:]...)
				}
				return
			}
			if buf[i+1] == '[' {
				if k, ok := arrowKey(buf[i+2]); ok {
					s.press(k, now)
				}
				i += 2
			}
			continue
		}

		switch b {
		case 'q', 'Q', '\x03':
			s.events = append(s.events, Event{Kind: EventQuit})
		case ' ', '\n', '\r':
			s.events = append(s.events, Event{Kind: EventClick})
		default:
			if k, ok := letterKey(b); ok {
				s.press(k, now)
			}
		}
	}
}

func (s *Stream) press(k Key, now time.Time) {
	s.last[keyIndex(k)] = now
	if !s.held.Has(k) {
		s.held.Add(k)
		s.events = append(s.events, Event{Kind: EventKeyDown, Key: k})
	}
}

// Reset forgets every held key without emitting releases.
func (s *Stream) Reset() {
	s.held.Clear()
	s.last = [len(Keys)]time.Time{}
}

func arrowKey(code byte) (Key, bool) {
	switch code {
	case 'A':
		return KeyUp, true
	case 'B':
		return KeyDown, true
	case 'C':
		return KeyRight, true
	case 'D':
		return KeyLeft, true
	}
	return 0, false
}

func letterKey(b byte) (Key, bool) {
	switch b {
	case 'w', 'W', 'k', 'K':
		return KeyUp, true
	case 's', 'S', 'j', 'J':
		return KeyDown, true
	case 'a', 'A', 'h', 'H':
		return KeyLeft, true
	case 'd', 'D', 'l', 'L':
		return KeyRight, true
	}
	return 0, false
}

func keyIndex(k Key) int {
	for i, kk := range Keys {
		if kk == k {
			return i
		}
	}
	return 0
}
