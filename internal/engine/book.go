package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/model"
	"github.com/tartampluch/go-contacts/internal/store"
	"github.com/tartampluch/go-contacts/internal/validate"
)

// ErrUnknownContact is returned when a contact pointer does not belong to the
// current load cycle.
var ErrUnknownContact = errors.New(config.ErrUnknownContact)

// Repository is the persistence contract of the address book.
// *store.Store satisfies it.
type Repository interface {
	LoadAll() ([]model.Contact, error)
	Append(rows ...model.Contact) error
	OverwriteAll(contacts []model.Contact) error
}

// Book is the authoritative in-memory working copy of the contacts file.
//
// Every mutation writes to the repository and then reloads the whole
// collection, so pointers returned by Contacts are only valid until the next
// successful mutation. A Book is not safe for concurrent use.
type Book struct {
	repo     Repository
	contacts []*model.Contact

	// OnChange is called after every successful reload with a copy of the collection.
	OnChange func(contacts []model.Contact)
}

// NewBook creates an empty book over repo. Call Load to populate it.
func NewBook(repo Repository) *Book {
	return &Book{repo: repo}
}

// Load clears the collection and reads it again from the repository.
//
// Errors that come with records (malformed lines under the Strict policy)
// still replace the collection. Storage errors leave it untouched.
func (b *Book) Load() error {
	rows, err := b.repo.LoadAll()
	if rows == nil && err != nil {
		return err
	}

	b.contacts = make([]*model.Contact, len(rows))
	for i := range rows {
		c := rows[i]
		b.contacts[i] = &c
	}

	slog.Debug(config.MsgBookReloaded,
		config.LogKeyComponent, config.CompBook,
		config.LogKeyCount, len(b.contacts))

	if b.OnChange != nil {
		b.OnChange(b.Snapshot())
	}
	return err
}

// Contacts returns the working collection in file order.
func (b *Book) Contacts() []*model.Contact {
	return b.contacts
}

// Len returns the number of contacts.
func (b *Book) Len() int {
	return len(b.contacts)
}

// At returns the contact at row i (0-based).
func (b *Book) At(i int) (*model.Contact, error) {
	if i < 0 || i >= len(b.contacts) {
		return nil, fmt.Errorf("%s: %d", config.ErrRowOutOfRange, i)
	}
	return b.contacts[i], nil
}

// Snapshot returns a value copy of the collection.
func (b *Book) Snapshot() []model.Contact {
	out := make([]model.Contact, len(b.contacts))
	for i, c := range b.contacts {
		out[i] = *c
	}
	return out
}

// Validate classifies a candidate value the way CommitEdit would.
func (b *Book) Validate(f model.Field, value string) validate.Result {
	return validate.Check(f, candidate(f, value))
}

// CommitEdit replaces one field of c and persists the whole collection.
//
// A blank value stores the placeholder. Phone lists may be typed with either
// separator. On rejection nothing is written and the returned error is the
// *validate.Error also carried in the Result.
func (b *Book) CommitEdit(c *model.Contact, f model.Field, value string) (*model.Contact, validate.Result, error) {
	log := slog.With(config.LogKeyComponent, config.CompBook, config.LogKeyField, f.String())

	idx := b.indexOf(c)
	if idx < 0 {
		return nil, validate.Result{Status: validate.Rejected}, ErrUnknownContact
	}

	v := candidate(f, value)
	res := validate.Check(f, v)
	if !res.OK() {
		log.Info(config.MsgEditRejected, config.LogKeyError, res.Err)
		return nil, res, res.Err
	}

	rows := b.Snapshot()
	rows[idx].Set(f, model.NormalizeValue(v))

	if err := b.repo.OverwriteAll(rows); err != nil {
		return nil, res, err
	}
	if err := b.reload(); err != nil {
		return nil, res, err
	}

	log.Info(config.MsgEditApplied, config.LogKeyRow, idx)

	if idx < len(b.contacts) {
		return b.contacts[idx], res, nil
	}
	return nil, res, nil
}

// AddContact validates every field, normalises blanks and appends the contact.
// Validation failures are aggregated in the returned Report.
func (b *Book) AddContact(c model.Contact) (validate.Report, error) {
	rep := validate.Contact(c)
	if err := rep.Err(); err != nil {
		return rep, err
	}

	c.Normalize()
	if err := b.repo.Append(c); err != nil {
		return rep, err
	}
	if err := b.reload(); err != nil {
		return rep, err
	}

	slog.Info(config.MsgContactAdded,
		config.LogKeyComponent, config.CompBook,
		config.LogKeyCount, len(b.contacts))
	return rep, nil
}

// DeleteContact removes c and rewrites the file without it.
func (b *Book) DeleteContact(c *model.Contact) error {
	idx := b.indexOf(c)
	if idx < 0 {
		return ErrUnknownContact
	}

	rows := slices.Delete(b.Snapshot(), idx, idx+1)
	if err := b.repo.OverwriteAll(rows); err != nil {
		return err
	}
	if err := b.reload(); err != nil {
		return err
	}

	slog.Info(config.MsgContactDeleted,
		config.LogKeyComponent, config.CompBook,
		config.LogKeyRow, idx)
	return nil
}

// Import appends every valid contact in one write. Invalid contacts are
// reported in rejected and left out.
func (b *Book) Import(rows []model.Contact) (added int, rejected []error, err error) {
	valid := make([]model.Contact, 0, len(rows))
	for _, c := range rows {
		if verr := validate.Contact(c).Err(); verr != nil {
			rejected = append(rejected, fmt.Errorf("%s %q: %w", config.ErrContactRejected, c.Name, verr))
			continue
		}
		c.Normalize()
		valid = append(valid, c)
	}

	if len(valid) > 0 {
		if err := b.repo.Append(valid...); err != nil {
			return 0, rejected, err
		}
		if err := b.reload(); err != nil {
			return len(valid), rejected, err
		}
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompBook,
		config.LogKeyAdded, len(valid),
		config.LogKeySkipped, len(rejected))
	return len(valid), rejected, nil
}

// reload refreshes after a write. Malformed-line reports are not failures of
// the mutation itself and are dropped here.
func (b *Book) reload() error {
	err := b.Load()
	if err != nil && !errors.Is(err, store.ErrStorage) {
		return nil
	}
	return err
}

func (b *Book) indexOf(c *model.Contact) int {
	if c == nil {
		return -1
	}
	return slices.Index(b.contacts, c)
}

// candidate trims a typed value and converts display phone lists to the
// stored separator. The placeholder counts as blank.
func candidate(f model.Field, value string) string {
	v := strings.TrimSpace(value)
	if v == model.Placeholder {
		return ""
	}
	if f == model.PhoneNumbers {
		v = model.StoredPhones(v)
	}
	return v
}
