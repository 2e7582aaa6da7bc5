package ui

import (
	"errors"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/model"
	"github.com/tartampluch/go-contacts/internal/store"
)

// addForm holds the entries of the add contact window.
type addForm struct {
	window fyne.Window
	name   *widget.Entry
	phones *widget.Entry
	email  *widget.Entry
	addr   *widget.Entry
	bday   *widget.Entry
}

func (f *addForm) contact() model.Contact {
	return model.Contact{
		Name:         f.name.Text,
		PhoneNumbers: f.phones.Text,
		Email:        f.email.Text,
		Address:      f.addr.Text,
		Birthday:     f.bday.Text,
	}
}

// ShowAddWindow opens the add contact window, or focuses it if already open.
func (app *ContactsApp) ShowAddWindow() {
	app.openAddWindow()
}

func (app *ContactsApp) openAddWindow() *addForm {
	if app.addWindow != nil {
		slog.Debug(config.MsgFocusWindow, config.LogKeyComponent, config.CompUI)
		app.addWindow.RequestFocus()
		return nil
	}

	slog.Info(config.MsgOpenAdd, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinAdd))
	app.addWindow = w

	f := &addForm{
		window: w,
		name:   widget.NewEntry(),
		phones: widget.NewEntry(),
		email:  widget.NewEntry(),
		addr:   widget.NewEntry(),
		bday:   widget.NewEntry(),
	}
	f.bday.PlaceHolder = "DD/MM/YYYY"

	for _, e := range []*widget.Entry{f.name, f.phones, f.email, f.addr, f.bday} {
		app.guardDelimiter(e, w)
	}

	itemPhones := widget.NewFormItem(app.GetMsg(config.TKeyLblPhones), f.phones)
	itemPhones.HintText = app.GetMsg(config.TKeyHelpPhones) + "\n" + app.GetMsg(config.TKeyHelpPhonesMix)

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblName), f.name),
		itemPhones,
		widget.NewFormItem(app.GetMsg(config.TKeyLblEmail), f.email),
		widget.NewFormItem(app.GetMsg(config.TKeyLblAddress), f.addr),
		widget.NewFormItem(app.GetMsg(config.TKeyLblBirthday), f.bday),
	)

	btnAdd := widget.NewButtonWithIcon(app.GetMsg(config.TKeyActAdd), theme.ContentAddIcon(), func() { app.submitAdd(f) })
	btnAdd.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	content := container.NewPadded(container.NewVBox(
		form,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnAdd),
	))

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.AddWindowWidth, content.MinSize().Height))
	w.SetOnClosed(func() { app.addWindow = nil })
	w.Show()
	return f
}

// submitAdd validates every field at once. All problems are listed in a
// single alert; the window stays open until the contact is stored.
func (app *ContactsApp) submitAdd(f *addForm) {
	rep, err := app.Book.AddContact(f.contact())

	var serr *store.StorageError
	switch {
	case errors.As(err, &serr):
		slog.Error(config.ErrStorage, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		dialog.ShowInformation(app.GetMsg(config.TKeyTitleStorage), err.Error(), f.window)
		return

	case err != nil:
		msg := app.GetMsg(config.TKeyHeaderInput) + "\n" + strings.TrimRight(rep.Error(), "\n")
		dialog.ShowInformation(app.GetMsg(config.TKeyTitleInput), msg, f.window)
		return
	}

	f.window.Close()

	if len(rep.Warnings) > 0 {
		dialog.ShowInformation(app.GetMsg(config.TKeyTitleWarning), strings.Join(rep.Warnings, "\n"), app.Window)
	}
}
