package terminal

import (
	"fmt"

	"github.com/nsf/termbox-go"
	"github.com/wricardo/grid-client/game/service"
)

// row is one line of the frame. Map rows are coloured per glyph.
type row struct {
	text  string
	glyph bool
}

// keyName translates a termbox key event into the browser key name the
// dispatcher understands. It returns "" for keys with no name.
func keyName(ev termbox.Event) string {
	if ev.Type != termbox.EventKey {
		return ""
	}
	switch ev.Key {
	case termbox.KeyArrowUp:
		return "ArrowUp"
	case termbox.KeyArrowDown:
		return "ArrowDown"
	case termbox.KeyArrowLeft:
		return "ArrowLeft"
	case termbox.KeyArrowRight:
		return "ArrowRight"
	case termbox.KeyEnter:
		return "Enter"
	case termbox.KeyEsc:
		return "Escape"
	case termbox.KeySpace:
		return " "
	}
	if ev.Ch != 0 {
		return string(ev.Ch)
	}
	return ""
}

// isQuit reports whether the event should end the UI loop
func isQuit(ev termbox.Event) bool {
	if ev.Type != termbox.EventKey {
		return false
	}
	return ev.Key == termbox.KeyCtrlC || ev.Key == termbox.KeyEsc || ev.Ch == 'q' || ev.Ch == 'Q'
}

// glyphStyle returns the foreground attribute for a map cell
func glyphStyle(ch rune) termbox.Attribute {
	switch ch {
	case '@':
		return termbox.ColorYellow | termbox.AttrBold
	case '#':
		return termbox.ColorWhite | termbox.AttrBold
	case '.':
		return termbox.ColorCyan
	case 'e':
		return termbox.ColorRed
	case 'B':
		return termbox.ColorMagenta
	default:
		return termbox.ColorDefault
	}
}

// frameRows lays out the whole screen for v
func frameRows(title string, v service.View, help string) []row {
	player := string(v.Identity)
	if player == "" {
		player = "(none)"
	}
	stream := "connecting"
	if v.StreamOpen {
		stream = "open"
	}

	rows := []row{
		{text: title},
		{text: fmt.Sprintf("Player: %s   Stream: %s   State: %s", player, stream, v.State)},
		{},
	}

	lines := v.Map.Lines()
	if len(lines) == 0 {
		rows = append(rows, row{text: "Waiting for map..."})
	}
	for _, line := range lines {
		rows = append(rows, row{text: line, glyph: true})
	}

	rows = append(rows, row{})
	if v.MoveResult != "" {
		rows = append(rows, row{text: "Last move: " + string(v.MoveResult)})
	}
	if help != "" {
		rows = append(rows, row{text: help})
	}
	return rows
}

// alertText is the banner shown for a pending notification
func alertText(msg string) string {
	return fmt.Sprintf(" %s  [press any key] ", msg)
}
