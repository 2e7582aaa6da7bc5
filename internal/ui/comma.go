package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/model"
)

// scoldComma shows the next escalating delimiter message over parent.
// Only one such alert is visible at a time. Once the script is exhausted,
// dismissing the final message calls app.Exit.
func (app *ContactsApp) scoldComma(parent fyne.Window) {
	msg := app.Warden.Next()

	if app.commaDialog != nil {
		app.commaDialog.Hide()
	}

	d := dialog.NewInformation(app.GetMsg(config.TKeyTitleComma), msg, parent)
	if app.exitPending {
		app.exitPending = false
		d.SetOnClosed(func() {
			if app.Exit != nil {
				app.Exit()
			}
		})
	}
	app.commaDialog = d
	d.Show()
}

// guardDelimiter strips the delimiter from entry as it is typed and warns.
func (app *ContactsApp) guardDelimiter(entry *widget.Entry, parent fyne.Window) {
	next := entry.OnChanged
	entry.OnChanged = func(s string) {
		if strings.Contains(s, model.Delimiter) {
			entry.SetText(strings.ReplaceAll(s, model.Delimiter, ""))
			app.scoldComma(parent)
			return
		}
		if next != nil {
			next(s)
		}
	}
}
