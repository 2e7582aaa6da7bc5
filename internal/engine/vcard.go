package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/model"
)

var (
	usPhone  = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	nonDigit = regexp.MustCompile(`\D+`)
)

// ExportVCard writes one vCard 4.0 per contact. Placeholder fields are omitted.
func ExportVCard(w io.Writer, contacts []model.Contact) error {
	enc := vcard.NewEncoder(w)
	for _, c := range contacts {
		if err := enc.Encode(toCard(c)); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

func toCard(c model.Contact) vcard.Card {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, config.VCardVersion)
	card.SetValue(vcard.FieldUID, config.VCardUIDPrefix+ContactUID(c))

	name := c.Name
	if !model.IsFilled(name) {
		name = config.FallbackName
	}
	card.SetValue(vcard.FieldFormattedName, name)

	if model.IsFilled(c.PhoneNumbers) {
		for _, p := range strings.Split(model.StoredPhones(c.PhoneNumbers), model.PhoneSeparator) {
			if p = strings.TrimSpace(p); p != "" {
				card.AddValue(vcard.FieldTelephone, p)
			}
		}
	}
	if model.IsFilled(c.Email) {
		card.SetValue(vcard.FieldEmail, c.Email)
	}
	if model.IsFilled(c.Address) {
		card.AddAddress(&vcard.Address{StreetAddress: c.Address})
	}
	if model.IsFilled(c.Birthday) {
		if dob, err := ParseBirthday(c.Birthday); err == nil {
			card.SetValue(vcard.FieldBirthday, dob.Format(config.DateFormatFullDash))
		}
	}
	return card
}

// ImportVCard decodes a vCard stream into contacts. Values are reshaped so
// they fit the contacts file: commas become spaces, phones are reduced to
// ###-###-#### or digits, and birthdays are rewritten as DD/MM/YYYY.
//
// Cards that cannot be decoded or carry no name are skipped. Problems are
// returned alongside the contacts that could be read.
func ImportVCard(r io.Reader) ([]model.Contact, []error) {
	dec := vcard.NewDecoder(r)
	var (
		out  []model.Contact
		errs []error
	)

	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			errs = append(errs, fmt.Errorf("%s: %w", config.ErrVCardParse, err))
			// The decoder cannot resynchronise after a syntax error.
			break
		}

		c, err := fromCard(card)
		if err != nil {
			errs = append(errs, err)
			if c.Name == "" {
				continue
			}
		}
		c.Normalize()
		out = append(out, c)
	}
	return out, errs
}

// fromCard maps a card onto a contact. A non-nil error with a named contact
// is a warning; the contact is still usable.
func fromCard(card vcard.Card) (model.Contact, error) {
	var c model.Contact

	name := card.PreferredValue(vcard.FieldFormattedName)
	if name == "" {
		if n := card.Name(); n != nil {
			name = strings.Join([]string{n.GivenName, n.AdditionalName, n.FamilyName}, " ")
		}
	}
	c.Name = clean(name)
	if c.Name == "" {
		return c, fmt.Errorf("%s: %s", config.ErrCardSkipped, config.ErrCardNoName)
	}

	var phones []string
	for _, v := range card.Values(vcard.FieldTelephone) {
		if p := cleanPhone(v); p != "" {
			phones = append(phones, p)
		}
	}
	c.PhoneNumbers = strings.Join(phones, model.PhoneSeparator)

	c.Email = strings.Join(strings.Fields(clean(card.PreferredValue(vcard.FieldEmail))), "")

	if a := card.Address(); a != nil {
		c.Address = clean(strings.Join([]string{
			a.PostOfficeBox, a.ExtendedAddress, a.StreetAddress,
			a.Locality, a.Region, a.PostalCode, a.Country,
		}, " "))
	}

	if bday := card.Value(vcard.FieldBirthday); bday != "" {
		dob, err := parseVCardDate(bday)
		if err != nil {
			return c, fmt.Errorf("%q: %w", c.Name, err)
		}
		c.Birthday = dob.Format(config.BirthdayLayout)
	}
	return c, nil
}

// clean removes the file delimiter and collapses whitespace.
func clean(s string) string {
	s = strings.ReplaceAll(s, model.Delimiter, " ")
	return strings.Join(strings.Fields(s), " ")
}

func cleanPhone(v string) string {
	v = strings.TrimSpace(strings.TrimPrefix(v, config.VCardTelPrefix))
	if usPhone.MatchString(v) {
		return v
	}
	return nonDigit.ReplaceAllString(v, "")
}

// parseVCardDate accepts the full-date BDAY forms. Dates without a year
// cannot be stored.
func parseVCardDate(value string) (time.Time, error) {
	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return t, nil
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if _, err := time.Parse(f, value); err == nil {
			return time.Time{}, fmt.Errorf("%s: %s", config.ErrBirthdayNoYear, value)
		}
	}
	return time.Time{}, fmt.Errorf("%s: %s", config.ErrDateParse, value)
}
