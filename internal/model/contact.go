package model

import (
	"fmt"
	"strings"
)

const (
	// Delimiter separates fields on disk. No stored field may contain it.
	Delimiter = ","

	// PhoneSeparator joins a phone number list on disk.
	PhoneSeparator = ";"

	// Placeholder replaces any blank field.
	Placeholder = "Not Filled In"

	// FieldCount is the number of logical fields per record.
	FieldCount = 5
)

// Field identifies one of the five contact attributes.
type Field int

const (
	Name Field = iota
	PhoneNumbers
	Email
	Address
	Birthday
)

// Fields lists every field in display column order.
var Fields = []Field{Name, PhoneNumbers, Email, Address, Birthday}

// StoredOrder is the field order of a persisted record.
var StoredOrder = []Field{Name, Email, Address, Birthday, PhoneNumbers}

var fieldNames = map[Field]string{
	Name:         "name",
	PhoneNumbers: "phone",
	Email:        "email",
	Address:      "address",
	Birthday:     "birthday",
}

// String returns the lowercase identifier used in logs and on the command line.
func (f Field) String() string {
	if s, ok := fieldNames[f]; ok {
		return s
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField resolves a field identifier as printed by Field.String.
func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range fieldNames {
		if name == s {
			return f, nil
		}
	}
	if s == "phones" || s == "phonenumbers" {
		return PhoneNumbers, nil
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// Contact is one address book record.
// PhoneNumbers always holds the display form, numbers joined by Delimiter.
type Contact struct {
	Name         string `yaml:"name"`
	PhoneNumbers string `yaml:"phone_numbers"`
	Email        string `yaml:"email"`
	Address      string `yaml:"address"`
	Birthday     string `yaml:"birthday"`
}

// Get returns the value of a single field.
func (c *Contact) Get(f Field) string {
	switch f {
	case Name:
		return c.Name
	case PhoneNumbers:
		return c.PhoneNumbers
	case Email:
		return c.Email
	case Address:
		return c.Address
	case Birthday:
		return c.Birthday
	}
	return ""
}

// Set replaces the value of a single field. Phone numbers given in the
// stored (semicolon) form are converted to the display form.
func (c *Contact) Set(f Field, value string) {
	switch f {
	case Name:
		c.Name = value
	case PhoneNumbers:
		c.PhoneNumbers = DisplayPhones(value)
	case Email:
		c.Email = value
	case Address:
		c.Address = value
	case Birthday:
		c.Birthday = value
	}
}

// Normalize trims every field and substitutes the placeholder for blanks.
func (c *Contact) Normalize() {
	for _, f := range Fields {
		c.Set(f, NormalizeValue(c.Get(f)))
	}
}

// Record encodes the contact in stored field order.
func (c *Contact) Record() []string {
	return []string{
		c.Name,
		c.Email,
		c.Address,
		c.Birthday,
		StoredPhones(c.PhoneNumbers),
	}
}

// FromRecord decodes a stored record. Fields beyond FieldCount are ignored;
// callers check the length first.
func FromRecord(fields []string) Contact {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}
	return Contact{
		Name:         get(0),
		Email:        get(1),
		Address:      get(2),
		Birthday:     get(3),
		PhoneNumbers: DisplayPhones(get(4)),
	}
}

// IsFilled reports whether a value carries real data.
func IsFilled(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && v != Placeholder
}

// NormalizeValue trims a value and maps blanks to the placeholder.
func NormalizeValue(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return Placeholder
	}
	return v
}

// DisplayPhones converts a stored phone list to its display form.
func DisplayPhones(s string) string {
	return strings.ReplaceAll(s, PhoneSeparator, Delimiter)
}

// StoredPhones converts a display phone list to its stored form.
func StoredPhones(s string) string {
	return strings.ReplaceAll(s, Delimiter, PhoneSeparator)
}
