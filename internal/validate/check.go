package validate

import (
	"errors"
	"strings"

	"github.com/tartampluch/go-contacts/internal/model"
)

// Status is the outcome class of a check.
type Status int

const (
	Accepted Status = iota
	AcceptedWithWarning
	Rejected
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case AcceptedWithWarning:
		return "accepted_with_warning"
	default:
		return "rejected"
	}
}

// Result is the classification of one candidate value.
type Result struct {
	Status  Status
	Warning string
	Err     *Error
}

// OK reports whether the value may be stored.
func (r Result) OK() bool {
	return r.Status != Rejected
}

// Check classifies value for the given field.
// Phone numbers are expected in the stored (semicolon) form.
func Check(f model.Field, value string) Result {
	var (
		warning string
		err     error
	)
	switch f {
	case model.Name:
		err = Name(value)
	case model.Address:
		err = Address(value)
	case model.Email:
		err = Email(value)
	case model.PhoneNumbers:
		warning, err = PhoneNumbers(value)
	case model.Birthday:
		err = Birthday(value)
	}

	if err != nil {
		var verr *Error
		if !errors.As(err, &verr) {
			verr = reject(f, ErrFormat, err.Error())
		}
		return Result{Status: Rejected, Err: verr}
	}
	if warning != "" {
		return Result{Status: AcceptedWithWarning, Warning: warning}
	}
	return Result{Status: Accepted}
}

// Report aggregates the checks of a whole contact.
type Report struct {
	Errors   []*Error
	Warnings []string
}

// OK reports whether no field was rejected.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns the report as an error, or nil when every field passed.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return r
}

// Error renders one "- message" line per offending field.
func (r Report) Error() string {
	var b strings.Builder
	for _, e := range r.Errors {
		b.WriteString("- ")
		b.WriteString(e.Message)
		b.WriteString("\n")
	}
	return b.String()
}

// Unwrap exposes the individual field errors to errors.Is and errors.As.
func (r Report) Unwrap() []error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errs
}

// Contact checks every field of c, trimming values first.
// c.PhoneNumbers may use either separator.
func Contact(c model.Contact) Report {
	var rep Report
	for _, f := range model.Fields {
		v := strings.TrimSpace(c.Get(f))
		if v == model.Placeholder {
			continue
		}
		if f == model.PhoneNumbers {
			v = model.StoredPhones(v)
		}
		res := Check(f, v)
		switch res.Status {
		case Rejected:
			rep.Errors = append(rep.Errors, res.Err)
		case AcceptedWithWarning:
			rep.Warnings = append(rep.Warnings, res.Warning)
		}
	}
	return rep
}
