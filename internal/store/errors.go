package store

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-contacts/internal/config"
)

// Store operations named in StorageError.Op.
const (
	OpLoad      = "load"
	OpAppend    = "append"
	OpOverwrite = "overwrite"
)

// ErrStorage matches every *StorageError through errors.Is.
var ErrStorage = errors.New(config.ErrStorage)

// StorageError reports an I/O failure against the backing file.
// The on-disk file may no longer match the in-memory collection.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", config.ErrStorage, e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStorage) match any StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// ErrMalformed matches every *MalformedLineError through errors.Is.
var ErrMalformed = errors.New(config.ErrMalformedLine)

// MalformedLineError is reported under the Strict policy for a line that does
// not carry exactly five fields.
type MalformedLineError struct {
	Line   int
	Fields int
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s: line %d has %d fields", config.ErrMalformedLine, e.Line, e.Fields)
}

func (e *MalformedLineError) Is(target error) bool {
	return target == ErrMalformed
}
