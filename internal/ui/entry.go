package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// DigitEntry accepts digits only, typed or pasted, and at most MaxDigits of
// them. A zero MaxDigits means no limit.
type DigitEntry struct {
	widget.Entry
	MaxDigits int
}

// NewDigitEntry creates a digits-only entry capped at maxDigits characters.
func NewDigitEntry(maxDigits int) *DigitEntry {
	e := &DigitEntry{MaxDigits: maxDigits}
	e.ExtendBaseWidget(e)
	return e
}

// TypedRune forwards r when it is a digit and the entry has room for it.
func (e *DigitEntry) TypedRune(r rune) {
	if !isDigit(r) || e.full() {
		return
	}
	e.Entry.TypedRune(r)
}

// TypedShortcut keeps only the digits of pasted text.
func (e *DigitEntry) TypedShortcut(s fyne.Shortcut) {
	paste, ok := s.(*fyne.ShortcutPaste)
	if !ok || paste.Clipboard == nil {
		e.Entry.TypedShortcut(s)
		return
	}
	for _, r := range paste.Clipboard.Content() {
		e.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *DigitEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

func (e *DigitEntry) full() bool {
	return e.MaxDigits > 0 && len(e.Text) >= e.MaxDigits && e.SelectedText() == ""
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// cellEntry edits one contact field inside the table. The value is committed
// on Enter or when focus leaves the cell, once per change.
type cellEntry struct {
	widget.Entry
	committed string
	onCommit  func(string)
}

func newCellEntry() *cellEntry {
	e := &cellEntry{}
	e.ExtendBaseWidget(e)
	e.OnSubmitted = func(string) { e.commit() }
	return e
}

// bind shows value and routes later edits to commit. Rebinding a recycled
// cell never commits the text it held before.
func (e *cellEntry) bind(value string, commit func(string)) {
	e.onCommit = nil
	e.SetText(value)
	e.committed = value
	e.onCommit = commit
}

// FocusLost commits pending text before the cell loses focus.
func (e *cellEntry) FocusLost() {
	e.Entry.FocusLost()
	e.commit()
}

func (e *cellEntry) commit() {
	if e.onCommit == nil || e.Text == e.committed {
		return
	}
	e.committed = e.Text
	e.onCommit(e.Text)
}
