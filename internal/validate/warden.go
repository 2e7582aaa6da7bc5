package validate

import (
	"log/slog"

	"github.com/tartampluch/go-contacts/internal/config"
)

// Warden escalates the message shown each time a delimiter is typed.
// It walks an ordered script; the final entry resets the counter and runs the
// exhaustion policy. A Warden is confined to the UI goroutine.
type Warden struct {
	script      []string
	count       int
	onExhausted func()
}

// NewWarden builds a warden over script. onExhausted may be nil.
func NewWarden(script []string, onExhausted func()) *Warden {
	return &Warden{script: script, onExhausted: onExhausted}
}

// Next returns the message for the current offence and advances the counter.
func (w *Warden) Next() string {
	if len(w.script) == 0 {
		return config.MsgNoDelimiter
	}

	msg := w.script[w.count]
	w.count++

	slog.Debug(config.MsgWardenStep,
		config.LogKeyComponent, config.CompValidate,
		config.LogKeyCount, w.count)

	if w.count >= len(w.script) {
		w.count = 0
		slog.Warn(config.MsgWardenExhausted, config.LogKeyComponent, config.CompValidate)
		if w.onExhausted != nil {
			w.onExhausted()
		}
	}
	return msg
}

// Count returns how many offences were recorded since the last reset.
func (w *Warden) Count() int {
	return w.count
}

// Final reports whether the next call to Next returns the last script entry.
func (w *Warden) Final() bool {
	return len(w.script) > 0 && w.count == len(w.script)-1
}
