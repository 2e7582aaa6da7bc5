package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
)

// upcomingSortKeys maps table columns to engine sort keys.
var upcomingSortKeys = map[int]int{
	config.UpColIDName: engine.SortByName,
	config.UpColIDDate: engine.SortByDate,
	config.UpColIDAge:  engine.SortByAge,
}

// ShowUpcomingWindow lists birthdays by next occurrence. Tapping a header
// sorts by that column; tapping it again reverses the order.
func (app *ContactsApp) ShowUpcomingWindow() {
	if app.upcomingWindow != nil {
		app.upcomingWindow.RequestFocus()
		return
	}

	app.upcomingWindow = app.App.NewWindow(app.GetMsg(config.TKeyWinUpcoming))
	app.upcomingWindow.Resize(fyne.NewSize(config.UpcomingWinWidth, config.UpcomingWinHeight))

	// Local copy so sorting never races the feed refresh.
	app.entriesMut.RLock()
	display := make([]engine.BirthdayEntry, len(app.entries))
	copy(display, app.entries)
	app.entriesMut.RUnlock()

	slog.Info(config.LogMsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(display))

	currentSortCol := config.UpColIDDate
	sortAsc := true

	performSort := func() {
		engine.SortEntries(display, upcomingSortKeys[currentSortCol], sortAsc)
		slog.Debug(config.LogMsgSorted,
			config.LogKeyComponent, config.CompUI,
			config.LogKeySortCol, currentSortCol,
			config.LogKeySortAsc, sortAsc)
	}
	performSort()

	table := widget.NewTable(
		func() (int, int) {
			return len(display), len(upcomingSortKeys)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			if id.Row >= len(display) {
				return
			}
			o.(*widget.Label).SetText(app.upcomingCellText(display[id.Row], id.Col))
		},
	)

	var refreshTable func()

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.TablePlaceholder, func() {})
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)

		var titleKey string
		switch id.Col {
		case config.UpColIDName:
			titleKey = config.TKeyColName
		case config.UpColIDDate:
			titleKey = config.TKeyColDate
		case config.UpColIDAge:
			titleKey = config.TKeyColAge
		}

		text := app.GetMsg(titleKey)
		if id.Col == currentSortCol {
			if sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)

		btn.OnTapped = func() {
			if currentSortCol == id.Col {
				sortAsc = !sortAsc
			} else {
				currentSortCol = id.Col
				sortAsc = true
			}
			refreshTable()
		}
	}

	table.SetColumnWidth(config.UpColIDName, config.UpColWidthName)
	table.SetColumnWidth(config.UpColIDDate, config.UpColWidthDate)
	table.SetColumnWidth(config.UpColIDAge, config.UpColWidthAge)

	refreshTable = func() {
		performSort()
		table.Refresh()
	}

	app.upcomingWindow.SetContent(container.NewBorder(nil, nil, nil, nil, table))
	app.upcomingWindow.SetOnClosed(func() {
		app.upcomingWindow = nil
	})
	app.upcomingWindow.Show()
}

// upcomingCellText renders one cell. Ages are shown as a "25 → 26" transition.
func (app *ContactsApp) upcomingCellText(e engine.BirthdayEntry, col int) string {
	switch col {
	case config.UpColIDName:
		return e.Name
	case config.UpColIDDate:
		format := app.GetMsg(config.TKeyFormatDate)
		if format == config.TKeyFormatDate {
			format = config.DateFormatDisplay
		}
		return e.NextOccurrence.Format(format)
	case config.UpColIDAge:
		if e.AgeNext == 0 {
			return config.AgeBirth
		}
		prev := e.AgeNext - 1
		if prev == 0 {
			birth := app.GetMsg(config.TKeyAgeBirth)
			if birth == config.TKeyAgeBirth {
				birth = config.FallbackAgeBirth
			}
			return fmt.Sprintf(config.AgeFromBirthFmt, birth, e.AgeNext)
		}
		return fmt.Sprintf(config.AgeTransitionFmt, prev, e.AgeNext)
	}
	return ""
}
