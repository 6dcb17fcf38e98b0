//go:build !linux

package hotkey

import (
	"fmt"

	hk "golang.design/x/hotkey"
)

// keyNames maps combo key names to x/hotkey key codes. Shared by the
// darwin and windows builds.
var keyNames = map[string]hk.Key{
	"space": hk.KeySpace,
	"a":     hk.KeyA, "b": hk.KeyB, "c": hk.KeyC, "d": hk.KeyD,
	"e": hk.KeyE, "f": hk.KeyF, "g": hk.KeyG, "h": hk.KeyH,
	"i": hk.KeyI, "j": hk.KeyJ, "k": hk.KeyK, "l": hk.KeyL,
	"m": hk.KeyM, "n": hk.KeyN, "o": hk.KeyO, "p": hk.KeyP,
	"q": hk.KeyQ, "r": hk.KeyR, "s": hk.KeyS, "t": hk.KeyT,
	"u": hk.KeyU, "v": hk.KeyV, "w": hk.KeyW, "x": hk.KeyX,
	"y": hk.KeyY, "z": hk.KeyZ,
}

type systemHotkey struct {
	combo   Combo
	hk      *hk.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
	stop    chan struct{}
}

func New(c Combo) Hotkey {
	return &systemHotkey{
		combo:   c,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (h *systemHotkey) Register() error {
	key, ok := keyNames[h.combo.Key]
	if !ok {
		return fmt.Errorf("unsupported key %q", h.combo.Key)
	}

	h.hk = hk.New(comboModifiers(h.combo), key)
	if err := h.hk.Register(); err != nil {
		return fmt.Errorf("registering %s: %w", h.combo, err)
	}

	h.stop = make(chan struct{})
	go h.forward()
	return nil
}

// forward re-dispatches x/hotkey's events onto our own buffered
// channels so slow consumers never block the OS event hook.
func (h *systemHotkey) forward() {
	for {
		select {
		case <-h.stop:
			return
		case <-h.hk.Keydown():
			select {
			case h.keydown <- struct{}{}:
			default:
			}
		case <-h.hk.Keyup():
			select {
			case h.keyup <- struct{}{}:
			default:
			}
		}
	}
}

func (h *systemHotkey) Unregister() {
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
	if h.hk != nil {
		h.hk.Unregister()
	}
}

func (h *systemHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *systemHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func Diagnose() (string, error) {
	return "system hotkey API available", nil
}
