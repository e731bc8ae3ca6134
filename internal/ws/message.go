package ws

import (
	"encoding/json"

	"github.com/tomz197/survival/internal/game"
	"github.com/tomz197/survival/internal/loop/server"
	"github.com/tomz197/survival/internal/render"
)

// Message represents a WebSocket message with type-based routing.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types - browser to server
const (
	TypeKeyDown = "key_down"
	TypeKeyUp   = "key_up"
	TypeClick   = "click"
)

// Message types - server to browser
const (
	TypeFrame    = "frame"
	TypeNewBest  = "new_best"
	TypeShutdown = "shutdown"
	TypeError    = "error"
)

// KeyMessage carries a key name: "up", "w", "ArrowUp", ...
type KeyMessage struct {
	Key string `json:"key"`
}

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Message string `json:"message"`
}

// NewBestMessage tells the player their last score made the board.
type NewBestMessage struct {
	Rank int `json:"rank"` // 1-based
}

// FrameItem is one scene item in arena coordinates.
type FrameItem struct {
	Kind   string  `json:"kind"` // "rect" or "text"
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`
	Color  string  `json:"color"`
	Text   string  `json:"text,omitempty"`
	Anchor string  `json:"anchor,omitempty"` // "center" or "nw"
	Style  string  `json:"style,omitempty"`  // "title", "normal" or "small"
}

// ScoreItem is one best-scores entry.
type ScoreItem struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// FrameMessage is a full scene snapshot.
type FrameMessage struct {
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	State   string      `json:"state"`
	Players int         `json:"players"`
	Items   []FrameItem `json:"items"`
	Best    []ScoreItem `json:"best,omitempty"`
}

// NewErrorMessage creates a Message with an error payload.
func NewErrorMessage(msg string) Message {
	data, _ := json.Marshal(ErrorMessage{Message: msg})
	return Message{Type: TypeError, Data: data}
}

// NewMessage creates a Message with a typed payload.
func NewMessage(msgType string, payload any) (Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return Message{}, err
		}
	}
	return Message{Type: msgType, Data: data}, nil
}

// NewFrame converts a scene snapshot to a frame payload.
func NewFrame(width, height float64, state game.State, items []render.Item, snap *server.Snapshot) FrameMessage {
	f := FrameMessage{
		Width:  width,
		Height: height,
		State:  state.String(),
		Items:  make([]FrameItem, 0, len(items)),
	}
	for _, it := range items {
		switch it.Kind {
		case render.KindRect:
			f.Items = append(f.Items, FrameItem{
				Kind:  "rect",
				X:     it.Bounds.MinX,
				Y:     it.Bounds.MinY,
				W:     it.Bounds.Width(),
				H:     it.Bounds.Height(),
				Color: string(it.Color),
			})
		case render.KindText:
			f.Items = append(f.Items, FrameItem{
				Kind:   "text",
				X:      it.Bounds.MinX,
				Y:      it.Bounds.MinY,
				Color:  string(it.Color),
				Text:   it.Text,
				Anchor: anchorName(it.Anchor),
				Style:  styleName(it.Style),
			})
		}
	}
	if snap != nil {
		f.Players = snap.Players
		for _, e := range snap.Best {
			f.Best = append(f.Best, ScoreItem{Username: e.Username, Score: e.Score})
		}
	}
	return f
}

func anchorName(a render.Anchor) string {
	if a == render.AnchorNorthWest {
		return "nw"
	}
	return "center"
}

func styleName(s render.TextStyle) string {
	switch s {
	case render.TextTitle:
		return "title"
	case render.TextSmall:
		return "small"
	default:
		return "normal"
	}
}
