package hotkey

import (
	"fmt"
	"strings"
)

// Combo is a parsed key combination like "alt+space" or
// "ctrl+shift+d": zero or more modifiers plus exactly one key.
type Combo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Super bool
	Key   string
}

// ParseCombo parses a "+"-separated combination string from the config
// file. Modifier aliases follow common usage: option/opt for alt,
// cmd/win/meta for super.
func ParseCombo(s string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "ctrl", "control":
			c.Ctrl = true
		case "shift":
			c.Shift = true
		case "alt", "option", "opt":
			c.Alt = true
		case "super", "cmd", "command", "win", "meta":
			c.Super = true
		default:
			if i != len(parts)-1 {
				return Combo{}, fmt.Errorf("unknown modifier %q in %q", part, s)
			}
			c.Key = part
		}
	}
	if c.Key == "" {
		return Combo{}, fmt.Errorf("combination %q has no key", s)
	}
	if !validKey(c.Key) {
		return Combo{}, fmt.Errorf("unsupported key %q in %q", c.Key, s)
	}
	return c, nil
}

func validKey(k string) bool {
	if k == "space" {
		return true
	}
	return len(k) == 1 && k[0] >= 'a' && k[0] <= 'z'
}

func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Super {
		parts = append(parts, "super")
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}
