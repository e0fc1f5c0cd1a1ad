package terminal

import (
	"strings"
	"testing"

	"github.com/nsf/termbox-go"
	"github.com/wricardo/grid-client/game/intent"
	"github.com/wricardo/grid-client/game/service"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		name string
		ev   termbox.Event
		want string
	}{
		{"arrow up", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowUp}, "ArrowUp"},
		{"arrow down", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowDown}, "ArrowDown"},
		{"arrow left", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowLeft}, "ArrowLeft"},
		{"arrow right", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowRight}, "ArrowRight"},
		{"letter", termbox.Event{Type: termbox.EventKey, Ch: 'w'}, "w"},
		{"upper letter", termbox.Event{Type: termbox.EventKey, Ch: 'D'}, "D"},
		{"digit", termbox.Event{Type: termbox.EventKey, Ch: '3'}, "3"},
		{"enter", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEnter}, "Enter"},
		{"resize", termbox.Event{Type: termbox.EventResize}, ""},
		{"unnamed", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyF1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyName(tt.ev); got != tt.want {
				t.Errorf("keyName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyNamesReachBindings(t *testing.T) {
	arrows := []termbox.Key{termbox.KeyArrowUp, termbox.KeyArrowDown, termbox.KeyArrowLeft, termbox.KeyArrowRight}
	for _, k := range arrows {
		name := keyName(termbox.Event{Type: termbox.EventKey, Key: k})
		if _, ok := intent.Lookup(name); !ok {
			t.Errorf("arrow key %q is not bound", name)
		}
	}
	for _, ch := range "wasdWASD" {
		name := keyName(termbox.Event{Type: termbox.EventKey, Ch: ch})
		if _, ok := intent.Lookup(name); !ok {
			t.Errorf("letter %q is not bound", name)
		}
	}
}

func TestIsQuit(t *testing.T) {
	quits := []termbox.Event{
		{Type: termbox.EventKey, Key: termbox.KeyCtrlC},
		{Type: termbox.EventKey, Key: termbox.KeyEsc},
		{Type: termbox.EventKey, Ch: 'q'},
	}
	for _, ev := range quits {
		if !isQuit(ev) {
			t.Errorf("expected %+v to quit", ev)
		}
	}
	if isQuit(termbox.Event{Type: termbox.EventKey, Ch: 'w'}) {
		t.Error("w must not quit")
	}
}

func TestGlyphStyle(t *testing.T) {
	tests := map[rune]termbox.Attribute{
		'@': termbox.ColorYellow | termbox.AttrBold,
		'#': termbox.ColorWhite | termbox.AttrBold,
		'.': termbox.ColorCyan,
		'e': termbox.ColorRed,
		'B': termbox.ColorMagenta,
		'x': termbox.ColorDefault,
	}
	for ch, want := range tests {
		if got := glyphStyle(ch); got != want {
			t.Errorf("glyphStyle(%q) = %v, want %v", ch, got, want)
		}
	}
}

func TestFrameRows(t *testing.T) {
	t.Run("waiting", func(t *testing.T) {
		rows := frameRows("grid", service.View{}, "")
		joined := rowsText(rows)
		if !strings.Contains(joined, "Player: (none)") || !strings.Contains(joined, "Waiting for map...") {
			t.Errorf("unexpected frame:\n%s", joined)
		}
	})

	t.Run("map rows are coloured", func(t *testing.T) {
		v := service.View{
			Identity:   "abc-123",
			Map:        "###\n#@#\n###\n",
			MoveResult: "moved",
			StreamOpen: true,
			State:      service.StateActive,
		}
		rows := frameRows("grid", v, "arrows/WASD move, q quits")

		glyphRows := 0
		for _, r := range rows {
			if r.glyph {
				glyphRows++
			}
		}
		if glyphRows != 3 {
			t.Errorf("expected 3 map rows, got %d", glyphRows)
		}
		joined := rowsText(rows)
		for _, want := range []string{"Player: abc-123", "Stream: open", "State: active", "Last move: moved", "q quits"} {
			if !strings.Contains(joined, want) {
				t.Errorf("frame missing %q:\n%s", want, joined)
			}
		}
	})
}

func TestScreenRenderKeepsNewest(t *testing.T) {
	s := NewScreen("grid", "")
	s.Render(service.View{Version: 5, Map: "NEW"})
	s.Render(service.View{Version: 3, Map: "OLD"})

	v, _ := s.Current()
	if v.Map != "NEW" {
		t.Errorf("stale view replaced a newer one: %q", v.Map)
	}
}

func TestScreenAlertsAreModal(t *testing.T) {
	s := NewScreen("grid", "")
	s.Notify("Add a player first!")
	s.Notify("World updated!")

	if _, alert := s.Current(); alert != "Add a player first!" {
		t.Errorf("expected oldest alert first, got %q", alert)
	}
	if !s.dismiss() {
		t.Fatal("expected an alert to dismiss")
	}
	if _, alert := s.Current(); alert != "World updated!" {
		t.Errorf("expected second alert, got %q", alert)
	}
	s.dismiss()
	if s.dismiss() {
		t.Error("dismiss with no alerts must report false")
	}
}

func rowsText(rows []row) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r.text)
		b.WriteByte('\n')
	}
	return b.String()
}
