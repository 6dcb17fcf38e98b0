package hotkey

// Hotkey delivers discrete press/release edges for the dictation chord.
// Edges arrive from an OS-level hook; consumers receive them on
// channels and apply them on their own goroutine, never inline in the
// hook callback.
type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}
