package ui

import (
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/model"
)

// startImport reads vCards from the source chosen in the settings. A local
// source without a path asks for a file first.
func (app *ContactsApp) startImport() {
	cfg := app.loadImportConfig()

	if cfg.Mode == config.SourceModeLocal && cfg.LocalPath == "" {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil || r == nil {
				return
			}
			_ = r.Close()
			cfg.LocalPath = r.URI().Path()
			app.runImport(cfg)
		}, app.Window)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
		return
	}

	app.runImport(cfg)
}

// runImport fetches off the UI goroutine and applies the result on it.
func (app *ContactsApp) runImport(cfg engine.ImportConfig) {
	go func() {
		contacts, problems, err := app.Importer.Fetch(app.Ctx, cfg)
		fyne.Do(func() {
			app.applyImport(contacts, problems, err)
		})
	}()
}

// applyImport stores the fetched contacts and reports what was skipped.
func (app *ContactsApp) applyImport(contacts []model.Contact, problems []error, err error) {
	log := slog.With(config.LogKeyComponent, config.CompUI)

	if err != nil {
		log.Error(config.ErrImportFailed, config.LogKeyError, err)
		app.showError(config.TKeyTitleImport, err)
		return
	}

	added, rejected, err := app.Book.Import(contacts)
	if err != nil {
		log.Error(config.ErrImportFailed, config.LogKeyError, err)
		app.showError(config.TKeyTitleStorage, err)
		return
	}

	skipped := append(append([]error(nil), problems...), rejected...)
	for _, p := range skipped {
		log.Warn(config.ErrCardSkipped, config.LogKeyError, p)
	}

	msg := app.GetMsgWith(config.TKeyNotifImport,
		map[string]any{"Added": added, "Skipped": len(skipped)}, nil,
		fmt.Sprintf("%d / %d", added, len(skipped)))
	app.App.SendNotification(fyne.NewNotification(config.AppName, msg))

	if len(skipped) > 0 {
		dialog.ShowInformation(app.GetMsg(config.TKeyTitleImport), errors.Join(skipped...).Error(), app.Window)
	}
}

// startExport writes the whole address book to a user chosen vCard file.
func (app *ContactsApp) startExport() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		app.exportTo(w)
	}, app.Window)
	d.SetFileName(config.ExportFileName)
	d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
	d.Show()
}

func (app *ContactsApp) exportTo(w fyne.URIWriteCloser) {
	contacts := app.Book.Snapshot()
	err := engine.ExportVCard(w, contacts)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		slog.Error(config.ErrExportFailed, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		app.showError(config.TKeyTitleStorage, err)
		return
	}

	slog.Info(config.MsgExportDone,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyFile, w.URI().Path(),
		config.LogKeyCount, len(contacts))

	msg := app.GetMsgWith(config.TKeyNotifExport,
		map[string]any{"Count": len(contacts)}, nil,
		fmt.Sprintf("%d", len(contacts)))
	app.App.SendNotification(fyne.NewNotification(config.AppName, msg))
}
