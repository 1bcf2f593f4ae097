package tui

import "github.com/atotto/clipboard"

// ClipboardWriter receives text copied from the dashboard.
type ClipboardWriter interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}
