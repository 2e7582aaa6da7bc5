// Package store persists contacts in a flat, comma delimited text file.
//
// One record per line, no header, fields in model.StoredOrder. There is no
// quoting: the validation layer keeps the delimiter out of every field, and the
// phone list swaps it for model.PhoneSeparator on the way to disk.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/model"
)

// Policy decides how lines with the wrong number of fields are handled.
type Policy int

const (
	// Lenient skips lines with fewer than five fields and ignores extra fields.
	Lenient Policy = iota
	// Strict reports every line that does not have exactly five fields.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return config.PolicyStrict
	}
	return config.PolicyLenient
}

// ParsePolicy maps a policy name to its value. Unknown names yield Lenient.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), config.PolicyStrict) {
		return Strict
	}
	return Lenient
}

// Store reads and writes the backing file.
type Store struct {
	path   string
	policy Policy
}

// Option configures a Store.
type Option func(*Store)

// WithPolicy selects the malformed-line policy.
func WithPolicy(p Policy) Option {
	return func(s *Store) { s.policy = p }
}

// New returns a Store bound to path. The file is created on first write.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, policy: Lenient}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Policy returns the malformed-line policy in effect.
func (s *Store) Policy() Policy {
	return s.policy
}

// LoadAll reads every record in file order. A missing file is an empty book.
//
// Under Strict, malformed lines are returned as *MalformedLineError values
// joined into err, next to the records that did parse. Any I/O failure is a
// *StorageError and no records are returned.
func (s *Store) LoadAll() ([]model.Contact, error) {
	log := slog.With(config.LogKeyComponent, config.CompStore, config.LogKeyFile, s.path)

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug(config.MsgStoreMissing)
		return []model.Contact{}, nil
	}
	if err != nil {
		return nil, s.fail(OpLoad, err)
	}
	defer func() { _ = f.Close() }()

	contacts := make([]model.Contact, 0)
	var malformed []error

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), config.MaxRecordBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, model.Delimiter)
		switch {
		case len(fields) == model.FieldCount:
		case len(fields) > model.FieldCount && s.policy == Lenient:
			log.Debug(config.MsgStoreExtraFields,
				config.LogKeyLine, lineNo,
				config.LogKeyFields, len(fields))
		default:
			if s.policy == Strict {
				malformed = append(malformed, &MalformedLineError{Line: lineNo, Fields: len(fields)})
				continue
			}
			log.Debug(config.MsgStoreSkipLine,
				config.LogKeyLine, lineNo,
				config.LogKeyFields, len(fields))
			continue
		}

		contacts = append(contacts, model.FromRecord(fields))
	}
	if err := scanner.Err(); err != nil {
		return nil, s.fail(OpLoad, err)
	}

	log.Debug(config.MsgStoreLoaded, config.LogKeyCount, len(contacts))

	if len(malformed) > 0 {
		log.Warn(config.MsgStoreMalformed, config.LogKeyCount, len(malformed))
		return contacts, errors.Join(malformed...)
	}
	return contacts, nil
}

// Append adds rows to the end of the file, one line each.
func (s *Store) Append(rows ...model.Contact) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.write(os.O_APPEND|os.O_CREATE|os.O_WRONLY, rows); err != nil {
		return s.fail(OpAppend, err)
	}
	slog.Debug(config.MsgStoreAppended,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCount, len(rows))
	return nil
}

// OverwriteAll truncates the file and writes the full collection.
func (s *Store) OverwriteAll(contacts []model.Contact) error {
	if err := s.write(os.O_TRUNC|os.O_CREATE|os.O_WRONLY, contacts); err != nil {
		return s.fail(OpOverwrite, err)
	}
	slog.Debug(config.MsgStoreOverwritten,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCount, len(contacts))
	return nil
}

func (s *Store) write(flag int, rows []model.Contact) (err error) {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(s.path, flag, config.FilePermUserRW)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	for i := range rows {
		if _, err := w.WriteString(EncodeLine(rows[i])); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// fail logs an I/O failure and wraps it for the caller.
func (s *Store) fail(op string, err error) error {
	slog.Error(config.ErrStorage,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyOp, op,
		config.LogKeyFile, s.path,
		config.LogKeyError, err)
	return &StorageError{Op: op, Path: s.path, Err: err}
}

// EncodeLine renders one record without the trailing newline.
func EncodeLine(c model.Contact) string {
	return strings.Join(c.Record(), model.Delimiter)
}

// DefaultPath resolves the standard backing file in the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrConfigDir, err)
	}
	return filepath.Join(dir, config.AppID, config.ContactFileName), nil
}
