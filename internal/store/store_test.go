package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/model"
	"github.com/tartampluch/go-contacts/internal/store"
)

func newStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "ListOfContacts.csv"), opts...)
}

func writeFile(t *testing.T, s *store.Store, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o600))
}

func readFile(t *testing.T, s *store.Store) string {
	t.Helper()
	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	return string(b)
}

func sample() []model.Contact {
	return []model.Contact{
		{Name: "Ada", PhoneNumbers: "111-111-1111,222-222-2222", Email: "ada@example.com", Address: "1 Main St", Birthday: "10/12/1815"},
		{Name: "Alan", PhoneNumbers: "5145551234", Email: model.Placeholder, Address: "Bletchley", Birthday: "23/06/1912"},
		{Name: "Grace", PhoneNumbers: model.Placeholder, Email: "grace@navy.mil", Address: model.Placeholder, Birthday: model.Placeholder},
	}
}

func TestLoadAll_MissingFileIsEmpty(t *testing.T) {
	s := newStore(t)

	got, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestOverwriteAll_RoundTrip(t *testing.T) {
	s := newStore(t)
	want := sample()

	require.NoError(t, s.OverwriteAll(want))

	got, err := s.LoadAll()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// Phone lists are semicolon joined on disk.
	assert.Contains(t, readFile(t, s), "Ada,ada@example.com,1 Main St,10/12/1815,111-111-1111;222-222-2222\n")
}

func TestOverwriteAll_Truncates(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.OverwriteAll(sample()))
	require.NoError(t, s.OverwriteAll(sample()[:1]))

	got, err := s.LoadAll()
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].Name)
}

func TestOverwriteAll_DeletePreservesOrder(t *testing.T) {
	s := newStore(t)
	all := sample()
	require.NoError(t, s.OverwriteAll(all))

	remaining := []model.Contact{all[0], all[2]}
	require.NoError(t, s.OverwriteAll(remaining))

	got, err := s.LoadAll()
	require.NoError(t, err)
	if diff := cmp.Diff(remaining, got); diff != "" {
		t.Errorf("unexpected collection after delete (-want +got):\n%s", diff)
	}
}

func TestAppend_AddsAtEndInOrder(t *testing.T) {
	s := newStore(t)
	all := sample()
	require.NoError(t, s.OverwriteAll(all[:1]))

	require.NoError(t, s.Append(all[1], all[2]))

	got, err := s.LoadAll()
	require.NoError(t, err)
	if diff := cmp.Diff(all, got); diff != "" {
		t.Errorf("append mismatch (-want +got):\n%s", diff)
	}
}

func TestAppend_CreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "contacts.csv")
	s := store.New(path)

	require.NoError(t, s.Append(sample()[0]))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAppend_NothingToDo(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Append())
	_, err := os.Stat(s.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist), "empty append must not create the file")
}

func TestLoadAll_Lenient(t *testing.T) {
	s := newStore(t)
	writeFile(t, s, "Ada,a@b.c,Street,01/01/2000,1;2\n"+
		"short,line\n"+
		"\n"+
		" Bob , b@c.d , Road , 02/02/2002 , 514-555-1234 ,extra,fields\n")

	got, err := s.LoadAll()
	require.NoError(t, err, "lenient policy never reports malformed lines")
	require.Len(t, got, 2)

	assert.Equal(t, "1,2", got[0].PhoneNumbers)
	assert.Equal(t, model.Contact{
		Name: "Bob", Email: "b@c.d", Address: "Road", Birthday: "02/02/2002", PhoneNumbers: "514-555-1234",
	}, got[1], "fields are trimmed and extras dropped")
}

func TestLoadAll_Strict(t *testing.T) {
	s := newStore(t, store.WithPolicy(store.Strict))
	writeFile(t, s, "Ada,a@b.c,Street,01/01/2000,1\n"+
		"short,line\n"+
		"Bob,b@c.d,Road,02/02/2002,2,extra\n"+
		"Cy,c@d.e,Lane,03/03/2003,3\n")

	got, err := s.LoadAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrMalformed)
	assert.NotErrorIs(t, err, store.ErrStorage)

	var mErr *store.MalformedLineError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, 2, mErr.Line)
	assert.Equal(t, 2, mErr.Fields)
	assert.Contains(t, err.Error(), "line 3")

	require.Len(t, got, 2, "well-formed lines are still returned")
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, "Cy", got[1].Name)
}

func TestLoadAll_LineLongerThanScannerDefault(t *testing.T) {
	s := newStore(t)
	long := model.Contact{
		Name:         "Ada",
		PhoneNumbers: model.Placeholder,
		Email:        model.Placeholder,
		Address:      strings.Repeat("a", 70*1024),
		Birthday:     model.Placeholder,
	}
	require.NoError(t, s.Append(sample()[1], long, sample()[2]))

	got, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	if diff := cmp.Diff(long, got[1]); diff != "" {
		t.Errorf("long record mismatch (-want +got):\n%s", diff)
	}
}

func TestStorageError_Surfaced(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened for writing as a file.
	s := store.New(dir)

	err := s.OverwriteAll(sample())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStorage)

	var sErr *store.StorageError
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, store.OpOverwrite, sErr.Op)
	assert.Equal(t, dir, sErr.Path)

	err = s.Append(sample()[0])
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, store.OpAppend, sErr.Op)

	_, err = s.LoadAll()
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, store.OpLoad, sErr.Op)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, store.Strict, store.ParsePolicy("STRICT"))
	assert.Equal(t, store.Lenient, store.ParsePolicy("lenient"))
	assert.Equal(t, store.Lenient, store.ParsePolicy("whatever"))
	assert.Equal(t, "strict", store.Strict.String())
}

func TestEncodeLine(t *testing.T) {
	line := store.EncodeLine(model.Contact{
		Name: "N", Email: "E", Address: "A", Birthday: "B", PhoneNumbers: "1,2,3",
	})
	assert.Equal(t, "N,E,A,B,1;2;3", line)
}
