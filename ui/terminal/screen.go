// Package terminal renders the client state with termbox and turns key
// events into browser-style key names.
package terminal

import (
	"context"
	"fmt"
	"sync"

	"github.com/nsf/termbox-go"
	"github.com/wricardo/grid-client/game/service"
)

var _ service.Notifier = (*Screen)(nil)

// Screen is a full-terminal view. Notify shows a modal alert: the next key
// press dismisses it instead of reaching the key handler.
type Screen struct {
	title string
	help  string

	mu     sync.Mutex
	view   service.View
	seen   bool
	alerts []string

	dirty chan struct{}
}

// NewScreen creates a screen with a title line and a help footer
func NewScreen(title, help string) *Screen {
	return &Screen{
		title: title,
		help:  help,
		dirty: make(chan struct{}, 1),
	}
}

// Notify queues a modal alert
func (s *Screen) Notify(message string) {
	s.mu.Lock()
	s.alerts = append(s.alerts, message)
	s.mu.Unlock()
	s.wake()
}

// Render replaces the displayed view unless v is older than the current one
func (s *Screen) Render(v service.View) {
	s.mu.Lock()
	if s.seen && v.Version < s.view.Version {
		s.mu.Unlock()
		return
	}
	s.view = v
	s.seen = true
	s.mu.Unlock()
	s.wake()
}

// Current returns the displayed view and the pending alert, if any
func (s *Screen) Current() (service.View, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) == 0 {
		return s.view, ""
	}
	return s.view, s.alerts[0]
}

// dismiss drops the oldest alert and reports whether there was one
func (s *Screen) dismiss() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) == 0 {
		return false
	}
	s.alerts = s.alerts[1:]
	return true
}

func (s *Screen) wake() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Run takes over the terminal until ctx is done or the user quits. onKey
// receives every named key press that is not dismissing an alert.
func (s *Screen) Run(ctx context.Context, onKey func(key string)) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	events := make(chan termbox.Event)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()
	defer func() {
		close(stop)
		termbox.Interrupt()
		wg.Wait()
	}()

	if err := s.draw(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.dirty:
		case ev := <-events:
			switch {
			case ev.Type == termbox.EventError:
				return fmt.Errorf("terminal event: %w", ev.Err)
			case ev.Type != termbox.EventKey:
			case s.dismiss():
			case isQuit(ev):
				return nil
			default:
				if name := keyName(ev); name != "" && onKey != nil {
					onKey(name)
				}
			}
		}
		if err := s.draw(); err != nil {
			return err
		}
	}
}

func (s *Screen) draw() error {
	view, alert := s.Current()
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("clear terminal: %w", err)
	}

	width, height := termbox.Size()
	rows := frameRows(s.title, view, s.help)
	for y, r := range rows {
		if y >= height {
			break
		}
		x := 0
		for _, ch := range r.text {
			if x >= width {
				break
			}
			fg := termbox.ColorDefault
			if r.glyph {
				fg = glyphStyle(ch)
			}
			termbox.SetCell(x, y, ch, fg, termbox.ColorDefault)
			x++
		}
	}

	if alert != "" {
		y := len(rows)
		if y >= height {
			y = height - 1
		}
		x := 0
		for _, ch := range alertText(alert) {
			if x >= width {
				break
			}
			termbox.SetCell(x, y, ch, termbox.ColorBlack, termbox.ColorYellow)
			x++
		}
	}
	return termbox.Flush()
}
