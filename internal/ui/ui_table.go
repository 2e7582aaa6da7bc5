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
	"github.com/tartampluch/go-contacts/internal/validate"
)

var (
	columnTitleKeys = [config.ColCount]string{
		config.TKeyColName,
		config.TKeyColPhones,
		config.TKeyColEmail,
		config.TKeyColAddress,
		config.TKeyColBirthday,
		config.TKeyColDelete,
	}
	columnWidths = [config.ColCount]float32{
		config.ColWidthName,
		config.ColWidthPhones,
		config.ColWidthEmail,
		config.ColWidthAddress,
		config.ColWidthBirthday,
		config.ColWidthDelete,
	}
	columnFields = map[int]model.Field{
		config.ColIDName:     model.Name,
		config.ColIDPhones:   model.PhoneNumbers,
		config.ColIDEmail:    model.Email,
		config.ColIDAddress:  model.Address,
		config.ColIDBirthday: model.Birthday,
	}
	fieldErrorTitleKeys = map[model.Field]string{
		model.Name:         config.TKeyTitleName,
		model.PhoneNumbers: config.TKeyTitlePhones,
		model.Email:        config.TKeyTitleEmail,
		model.Address:      config.TKeyTitleAddress,
		model.Birthday:     config.TKeyTitleBirthday,
	}
)

// contactCell is reused by the table for every column. Field columns show
// the entry, the last column shows the delete button.
type contactCell struct {
	*fyne.Container
	entry  *cellEntry
	delete *widget.Button
}

func newContactCell(deleteLabel string) *contactCell {
	entry := newCellEntry()
	del := widget.NewButtonWithIcon(deleteLabel, theme.DeleteIcon(), nil)
	del.Importance = widget.DangerImportance
	return &contactCell{
		Container: container.NewStack(entry, del),
		entry:     entry,
		delete:    del,
	}
}

// newContactsTable builds the editable grid. Edits are committed when the
// user presses Enter in a cell or moves focus out of it.
func (app *ContactsApp) newContactsTable() *widget.Table {
	deleteLabel := app.GetMsg(config.TKeyBtnDelete)

	table := widget.NewTable(
		func() (int, int) {
			return app.Book.Len(), config.ColCount
		},
		func() fyne.CanvasObject {
			return newContactCell(deleteLabel)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			app.updateCell(id, o.(*contactCell))
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewLabel(config.TablePlaceholder)
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		if id.Col >= 0 && id.Col < config.ColCount {
			o.(*widget.Label).SetText(app.GetMsg(columnTitleKeys[id.Col]))
		}
	}

	for col, w := range columnWidths {
		table.SetColumnWidth(col, w)
	}
	return table
}

func (app *ContactsApp) updateCell(id widget.TableCellID, cell *contactCell) {
	row := id.Row

	if id.Col == config.ColIDDelete {
		cell.entry.Hide()
		cell.delete.Show()
		cell.delete.OnTapped = func() { app.deleteRow(row) }
		return
	}

	f, ok := columnFields[id.Col]
	if !ok {
		return
	}
	c, err := app.Book.At(row)
	if err != nil {
		return
	}

	cell.delete.Hide()
	cell.entry.Show()
	cell.entry.bind(c.Get(f), func(s string) { app.commitEdit(row, f, s) })
}

// commitEdit validates and persists one cell. Rejected edits are discarded
// and the table shows the stored value again.
func (app *ContactsApp) commitEdit(row int, f model.Field, value string) {
	log := slog.With(config.LogKeyComponent, config.CompUI, config.LogKeyRow, row, config.LogKeyField, f.String())

	c, err := app.Book.At(row)
	if err != nil {
		log.Warn(config.MsgEditRejected, config.LogKeyError, err)
		return
	}

	_, res, err := app.Book.CommitEdit(c, f, value)
	switch {
	case err == nil:
		if res.Status == validate.AcceptedWithWarning {
			dialog.ShowInformation(app.GetMsg(config.TKeyTitleWarning), res.Warning, app.Window)
		}
		return

	case errors.Is(err, store.ErrStorage):
		log.Error(config.ErrStorage, config.LogKeyError, err)
		app.showError(config.TKeyTitleStorage, err)

	case errors.Is(err, validate.ErrDelimiter) && f != model.Email && strings.Contains(value, model.Delimiter):
		app.scoldComma(app.Window)

	case res.Err != nil:
		dialog.ShowInformation(app.GetMsg(fieldErrorTitleKeys[f]), res.Err.Message, app.Window)

	default:
		log.Warn(config.MsgEditRejected, config.LogKeyError, err)
	}

	app.table.Refresh()
}

// deleteRow removes the contact shown at row and rewrites the file.
func (app *ContactsApp) deleteRow(row int) {
	c, err := app.Book.At(row)
	if err != nil {
		return
	}
	if err := app.Book.DeleteContact(c); err != nil {
		slog.Error(config.ErrStorage,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyRow, row,
			config.LogKeyError, err)
		app.showError(config.TKeyTitleStorage, err)
	}
}
