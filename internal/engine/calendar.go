package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/model"
)

// uidNamespace seeds deterministic UIDs so that refreshing the feed does not
// create duplicate events in calendar clients.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.UIDNamespace))

// Calendar renders contact birthdays as an iCalendar feed.
type Calendar struct {
	Clock Clock // Interface for time mocking.

	// ReminderTrigger is an ISO8601 duration (e.g. "-P1D"). Empty disables alarms.
	ReminderTrigger string

	// FormatSummary allows the UI to inject localized strings into the logic layer.
	FormatSummary func(name string, age int) string
}

// Generate builds the ICS document. It also returns the upcoming birthday list
// and how many birthdays fall today. Contacts without a valid birthday are skipped.
func (g *Calendar) Generate(contacts []model.Contact) ([]byte, []BirthdayEntry, int, error) {
	start := time.Now()
	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Birthdays follow the local calendar date; UTC is only used for stamping.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	stats := struct{ processed, withBday, today int }{}
	var entries []BirthdayEntry

	for _, c := range contacts {
		stats.processed++
		if !model.IsFilled(c.Birthday) {
			continue
		}

		birthDate, err := ParseBirthday(c.Birthday)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, c.Birthday)
			continue
		}
		stats.withBday++

		name := c.Name
		if !model.IsFilled(name) {
			name = config.FallbackName
		}

		uidBase := ContactUID(c)
		nextOcc, ageNext := calculateNextOccurrence(now, birthDate)
		entries = append(entries, BirthdayEntry{
			UID:            uidBase,
			Name:           name,
			DateOfBirth:    birthDate,
			NextOccurrence: nextOcc,
			AgeNext:        ageNext,
		})

		events, isToday := g.createEvents(name, birthDate, now, uidBase)
		if isToday {
			stats.today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyDOB, birthDate.Format(config.DateFormatFullDash))
		}

		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	sortEntriesByDate(entries)

	// An empty VCALENDAR is rejected by the encoder; clients accept the stub.
	if len(cal.Children) == 0 {
		g.logSuccess(stats, start)
		return []byte(config.StubVCalendar), entries, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats, start)
	return buf.Bytes(), entries, stats.today, nil
}

func (g *Calendar) logSuccess(stats struct{ processed, withBday, today int }, start time.Time) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeyToday, stats.today),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
}

// createEvents generates events for the previous, current and next year,
// never before the year of birth.
func (g *Calendar) createEvents(name string, birthDate time.Time, now time.Time, uidBase string) ([]*ical.Event, bool) {
	currentYear := now.Year()
	targetYears := []int{currentYear - 1, currentYear, currentYear + 1}
	loc := now.Location()

	var events []*ical.Event
	isToday := false

	todayYear, todayMonth, todayDay := now.Date()

	for _, y := range targetYears {
		if y < birthDate.Year() {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

		summary := g.summary(name, y-birthDate.Year())
		event.Props.SetText(config.PropSummary, summary)

		// time.Date moves Feb 29 to Mar 1 in common years.
		eventDate := time.Date(y, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)

		if y == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if g.ReminderTrigger != "" {
			addAlarm(event, g.ReminderTrigger, summary)
		}

		events = append(events, event)
	}
	return events, isToday
}

func (g *Calendar) summary(name string, age int) string {
	if g.FormatSummary != nil {
		if s := g.FormatSummary(name, age); s != "" {
			return s
		}
	}
	if age == 0 {
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	}
	return fmt.Sprintf(config.FallbackSummaryAge, name, age)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// ParseBirthday parses a stored DD/MM/YYYY birthday.
func ParseBirthday(value string) (time.Time, error) {
	t, err := time.Parse(config.BirthdayLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}
	return t, nil
}

// ContactUID derives a stable identifier from the name and birthday.
func ContactUID(c model.Contact) string {
	input := fmt.Sprintf(config.FormatHashInput, c.Name, c.Birthday)
	return uuid.NewSHA1(uidNamespace, []byte(input)).String()
}
