// Package clipboard wraps the system clipboard and can replay a paste
// keystroke into the focused application.
package clipboard

import cb "github.com/atotto/clipboard"

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}

// Type copies text to the clipboard and pastes it into the focused
// application.
func Type(text string) error {
	if err := Copy(text); err != nil {
		return err
	}
	return Paste()
}
