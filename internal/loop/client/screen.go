package client

import (
	"fmt"
	"time"

	"github.com/tomz197/survival/internal/draw"
	"github.com/tomz197/survival/internal/loop/config"
	"github.com/tomz197/survival/internal/loop/server"
	"github.com/tomz197/survival/internal/render"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	screen := c.screen()
	if screen != c.state.prevScreen || c.state.isInactive != c.state.wasInactive {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevScreen = screen
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	// Rasterize the scene; texts are overlaid after the canvas render.
	c.items = c.scene.Snapshot(c.items)
	if screen != ScreenShutdown && !c.state.isInactive {
		for _, it := range c.items {
			if it.Kind == render.KindRect {
				c.canvas.FillRect(it.Bounds, it.Color)
			}
		}
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	// Draw UI overlay
	c.drawUI(screen)

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI(screen ScreenState) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if screen == ScreenShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	for _, it := range c.items {
		if it.Kind == render.KindText {
			c.drawText(it)
		}
	}

	snapshot := c.server.GetSnapshot()
	switch screen {
	case ScreenMenu:
		c.drawStartScreen(centerX, centerY, snapshot)
	case ScreenPlaying:
		c.drawPlayingHUD(termWidth, termHeight, snapshot)
	case ScreenGameOver:
		c.drawGameOverScreen(centerX, snapshot)
	}
}

// textPlacement converts a scene text item to a 1-based terminal position,
// honoring its anchor. ok is false when the text is off the canvas; the
// returned string is truncated to the canvas width.
func (c *Client) textPlacement(it render.Item) (col, row int, text string, ok bool) {
	col, row = c.canvas.LogicalToTerminal(it.Bounds.MinX, it.Bounds.MinY)
	text = it.Text
	if it.Anchor == render.AnchorCenter {
		col -= len(text) / 2
	}

	termWidth := c.canvas.TerminalWidth()
	if row < 1 || row > c.canvas.TerminalHeight() || col > termWidth {
		return 0, 0, "", false
	}
	if col < 1 {
		if -col+1 >= len(text) {
			return 0, 0, "", false
		}
		text = text[1-col:]
		col = 1
	}
	if col+len(text)-1 > termWidth {
		text = text[:termWidth-col+1]
	}
	return col, row, text, text != ""
}

// textStyle picks the SGR sequence for a text item.
func (c *Client) textStyle(it render.Item) string {
	fg := c.canvas.Palette().FG(c.canvas.Palette().Index(it.Color))
	if it.Style == render.TextTitle {
		return draw.ColorBold + fg
	}
	return fg
}

// drawText overlays one scene text item. The covered cells are marked dirty
// so the canvas repaints them once the text changes or goes away.
func (c *Client) drawText(it render.Item) {
	col, row, text, ok := c.textPlacement(it)
	if !ok {
		return
	}
	c.chunkWriter.WriteStyledAt(col, row, c.textStyle(it), text)
	c.canvas.MarkTextDirty(col, row, len(text))
}

// writeCentered writes s centered on centerX and marks it dirty.
func (c *Client) writeCentered(centerX, row int, style, s string) {
	if row < 1 || row > c.canvas.TerminalHeight() {
		return
	}
	col := max(centerX-len(s)/2, 1)
	c.chunkWriter.WriteStyledAt(col, row, style, s)
	c.canvas.MarkTextDirty(col, row, len(s))
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	cw := c.chunkWriter
	title := "INACTIVITY WARNING"
	cw.WriteAt(centerX-len(title)/2, centerY-2, title)

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	cw.WriteAt(max(centerX-len(msg)/2, 1), centerY, msg)

	hint := "Press any key to continue"
	cw.WriteAt(centerX-len(hint)/2, centerY+2, hint)
}

// drawStartScreen draws the title art above the scene's menu text.
func (c *Client) drawStartScreen(centerX, centerY int, snapshot *server.Snapshot) {
	// ASCII art title (figlet "small" font)
	titleArt := []string{
		`  ___ _   _ ___ __   _____ _____ ___ `,
		` / __| | | | _ \\ \ / /_ _\ \ / / __|`,
		` \__ \ |_| |   / \ V / | | \ V /| _| `,
		` |___/\___/|_|_\  \_/ |___| \_/ |___|`,
	}

	// Find max width for centering
	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	// Only when there is room above the prompt
	titleStartY := centerY - len(titleArt) - 4
	if titleStartY >= 1 {
		for i, line := range titleArt {
			c.writeCentered(centerX, titleStartY+i, "", fmt.Sprintf("%-*s", titleWidth, line))
		}
	}

	hint := c.canvas.Palette().FG(c.canvas.Palette().Index(render.ColorHint))
	c.writeCentered(centerX, centerY+6, hint, "SPACE / ENTER  . . . Play")
	c.writeCentered(centerX, centerY+7, hint, "Q  . . . . . . . . . Quit")
	c.drawBestScores(centerX, centerY+9, snapshot)
}

// drawPlayingHUD draws the connection-level HUD; the session draws its own
// time and status line.
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snapshot *server.Snapshot) {
	// Live players (bottom right), padded so shrinking counts leave no residue
	livePlayersText := fmt.Sprintf("Players: %-4d", snapshot.Players)
	col := termWidth - len(livePlayersText)
	if col < 1 {
		return
	}
	c.chunkWriter.WriteAt(col, termHeight, livePlayersText)
	c.canvas.MarkTextDirty(col, termHeight, len(livePlayersText))
}

// drawGameOverScreen lists the best scores below the session's end screen.
func (c *Client) drawGameOverScreen(centerX int, snapshot *server.Snapshot) {
	_, row := c.canvas.LogicalToTerminal(0, c.rules.Height/2+80)
	if c.state.NewBest > 0 {
		style := draw.ColorBold + c.canvas.Palette().FG(c.canvas.Palette().Index(render.ColorPlayer))
		c.writeCentered(centerX, row, style, fmt.Sprintf("New best! #%d", c.state.NewBest))
	}
	c.drawBestScores(centerX, row+2, snapshot)
}

// drawBestScores draws the best-scores table starting at row.
func (c *Client) drawBestScores(centerX, row int, snapshot *server.Snapshot) {
	if len(snapshot.Best) == 0 {
		return
	}
	c.writeCentered(centerX, row, draw.ColorBold, "Best scores")
	for i, e := range snapshot.Best {
		line := fmt.Sprintf("%d. %-*s %6d", i+1, config.MaxUsernameLength, e.Username, e.Score)
		c.writeCentered(centerX, row+1+i, "", line)
	}
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	cw := c.chunkWriter
	title := "SERVER SHUTTING DOWN"
	cw.WriteAt(centerX-len(title)/2, centerY-3, title)

	msg1 := "The server is restarting for maintenance."
	cw.WriteAt(centerX-len(msg1)/2, centerY-1, msg1)

	msg2 := "Please reconnect in a moment."
	cw.WriteAt(centerX-len(msg2)/2, centerY, msg2)

	remaining := int(c.state.shutdownTimer) + 1
	countdown := fmt.Sprintf("Disconnecting in %d seconds...", remaining)
	cw.WriteAt(centerX-len(countdown)/2, centerY+2, countdown)

	hint := "Press Q to disconnect now"
	cw.WriteAt(centerX-len(hint)/2, centerY+4, hint)
}
