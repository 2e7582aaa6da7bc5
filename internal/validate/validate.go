// Package validate classifies candidate field values before they reach the store.
//
// Every predicate accepts an empty string: blanks are later normalised to
// model.Placeholder. The delimiter and line break rules keep the flat file
// parseable, the format rules mirror the patterns shown to the user in the add dialog.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/model"
)

// Rejection kinds. Concrete failures wrap exactly one of these.
var (
	ErrDelimiter = errors.New(config.ErrKindDelimiter)
	ErrFormat    = errors.New(config.ErrKindFormat)
	ErrRange     = errors.New(config.ErrKindRange)
)

var (
	emailPattern       = regexp.MustCompile(`^.+@.+\..+$`)
	strictPhonePattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}(;\d{3}-\d{3}-\d{4})*$`)
	loosePhonePattern  = regexp.MustCompile(`^\d+(;\d+)*$`)
	birthdayPattern    = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
)

// Error is a single rejected field value.
type Error struct {
	Field   model.Field
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the rejection kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

func reject(f model.Field, kind error, msg string) *Error {
	return &Error{Field: f, Kind: kind, Message: msg}
}

// lineBreaks terminate a record on disk.
const lineBreaks = "\r\n"

// HasLineBreak reports whether s would split a record across lines.
func HasLineBreak(s string) bool {
	return strings.ContainsAny(s, lineBreaks)
}

// Name rejects values containing the delimiter or a line break.
func Name(s string) error {
	return freeText(model.Name, s)
}

// Address rejects values containing the delimiter or a line break.
func Address(s string) error {
	return freeText(model.Address, s)
}

func freeText(f model.Field, s string) error {
	if HasLineBreak(s) {
		return reject(f, ErrDelimiter, config.MsgNoLineBreak)
	}
	if strings.Contains(s, model.Delimiter) {
		return reject(f, ErrDelimiter, config.MsgNoDelimiter)
	}
	return nil
}

// Email accepts blanks and anything shaped like local@domain.tld without
// commas or spaces. No further domain structure is checked.
func Email(s string) error {
	if s == "" {
		return nil
	}
	if HasLineBreak(s) {
		return reject(model.Email, ErrDelimiter, config.MsgNoLineBreak)
	}
	if strings.Contains(s, model.Delimiter) || strings.Contains(s, " ") {
		return reject(model.Email, ErrDelimiter, config.MsgEmailDelimiter)
	}
	if !emailPattern.MatchString(s) {
		return reject(model.Email, ErrFormat, config.MsgEmailFormat)
	}
	return nil
}

// PhoneNumbers validates a semicolon separated list.
// A digits-only list is accepted with a non-blocking warning.
func PhoneNumbers(s string) (warning string, err error) {
	if s == "" || strictPhonePattern.MatchString(s) {
		return "", nil
	}
	if loosePhonePattern.MatchString(s) {
		return config.MsgPhoneWarning, nil
	}
	return "", reject(model.PhoneNumbers, ErrFormat, config.MsgPhoneFormat)
}

// Birthday validates a DD/MM/YYYY date against the real calendar.
func Birthday(s string) error {
	if s == "" {
		return nil
	}
	m := birthdayPattern.FindStringSubmatch(s)
	if m == nil {
		return reject(model.Birthday, ErrFormat, config.MsgBirthdayFormat)
	}

	// The pattern guarantees digits, Atoi cannot fail.
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 {
		return reject(model.Birthday, ErrRange, config.MsgBirthdayMonth)
	}
	if last := DaysInMonth(month, year); day < 1 || day > last {
		return reject(model.Birthday, ErrRange, fmt.Sprintf(config.MsgBirthdayDay, last))
	}
	return nil
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of month (1-12) in year, or 0 for an
// out-of-range month.
func DaysInMonth(month, year int) int {
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	}
	return 0
}
