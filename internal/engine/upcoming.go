package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/tartampluch/go-contacts/internal/model"
)

// BirthdayEntry is the display projection of a contact with a known birthday.
type BirthdayEntry struct {
	// UID is stable across reloads as long as name and birthday do not change.
	UID string

	Name        string
	DateOfBirth time.Time

	// NextOccurrence is the birthday in the current or next year.
	// This is the primary sorting key for the "Upcoming Birthdays" view.
	NextOccurrence time.Time

	// AgeNext is the age the person will turn at NextOccurrence.
	AgeNext int
}

// Sort columns understood by SortEntries.
const (
	SortByName = iota
	SortByDate
	SortByAge
)

// Upcoming projects contacts onto their next birthday, soonest first.
func Upcoming(now time.Time, contacts []model.Contact) []BirthdayEntry {
	var entries []BirthdayEntry
	for _, c := range contacts {
		if !model.IsFilled(c.Birthday) {
			continue
		}
		dob, err := ParseBirthday(c.Birthday)
		if err != nil {
			continue
		}
		next, age := calculateNextOccurrence(now, dob)
		entries = append(entries, BirthdayEntry{
			UID:            ContactUID(c),
			Name:           c.Name,
			DateOfBirth:    dob,
			NextOccurrence: next,
			AgeNext:        age,
		})
	}
	sortEntriesByDate(entries)
	return entries
}

// SortEntries orders entries in place by the given column.
func SortEntries(entries []BirthdayEntry, col int, asc bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		var less bool
		switch col {
		case SortByName:
			less = strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortByAge:
			less = a.AgeNext < b.AgeNext
		default:
			if a.NextOccurrence.Equal(b.NextOccurrence) {
				// Secondary sort key: Name
				less = a.Name < b.Name
			} else {
				less = a.NextOccurrence.Before(b.NextOccurrence)
			}
		}
		if !asc {
			return !less
		}
		return less
	})
}

func sortEntriesByDate(entries []BirthdayEntry) {
	SortEntries(entries, SortByDate, true)
}

// calculateNextOccurrence determines the next birthday relative to now.
// A birthday falling today counts as the next occurrence.
func calculateNextOccurrence(now time.Time, birthDate time.Time) (time.Time, int) {
	currentYear := now.Year()
	loc := now.Location()

	// Go's time.Date normalizes Feb 29 to March 1st if currentYear is not a leap year.
	candidate := time.Date(currentYear, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if candidate.Before(todayStart) {
		candidate = time.Date(currentYear+1, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	}

	return candidate, candidate.Year() - birthDate.Year()
}
