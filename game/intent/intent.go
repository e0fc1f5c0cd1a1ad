// Package intent translates key presses into movement intents and fans key
// presses out to registered listeners.
package intent

import (
	"strings"

	"github.com/wricardo/grid-client/game/service"
)

// The four canonical intents. Y grows downwards, matching the map rows.
var (
	Up    = service.MoveIntent{DX: 0, DY: -1}
	Down  = service.MoveIntent{DX: 0, DY: 1}
	Left  = service.MoveIntent{DX: -1, DY: 0}
	Right = service.MoveIntent{DX: 1, DY: 0}
)

// bindings is keyed by lower-cased key name. Each direction has two keys.
var bindings = map[string]service.MoveIntent{
	"arrowup":    Up,
	"w":          Up,
	"arrowdown":  Down,
	"s":          Down,
	"arrowleft":  Left,
	"a":          Left,
	"arrowright": Right,
	"d":          Right,
}

var directions = map[string]service.MoveIntent{
	"up":    Up,
	"down":  Down,
	"left":  Left,
	"right": Right,
}

// Lookup returns the intent bound to key. Key names follow the browser
// KeyboardEvent.key convention and are matched case-insensitively.
func Lookup(key string) (service.MoveIntent, bool) {
	in, ok := bindings[strings.ToLower(key)]
	return in, ok
}

// BoundKeys lists the canonical names of the eight bound keys
func BoundKeys() []string {
	return []string{"ArrowUp", "w", "ArrowDown", "s", "ArrowLeft", "a", "ArrowRight", "d"}
}

// FromDirection maps "up", "down", "left" or "right" to an intent
func FromDirection(direction string) (service.MoveIntent, bool) {
	in, ok := directions[strings.ToLower(strings.TrimSpace(direction))]
	return in, ok
}

// Direction names an intent, or returns "" for anything but a unit step
func Direction(in service.MoveIntent) string {
	for name, d := range directions {
		if d == in {
			return name
		}
	}
	return ""
}
