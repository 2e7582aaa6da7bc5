package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/model"
)

func TestContact_RecordUsesStoredOrder(t *testing.T) {
	c := model.Contact{
		Name:         "Ada",
		PhoneNumbers: "111-111-1111,222-222-2222",
		Email:        "ada@example.com",
		Address:      "1 Main St",
		Birthday:     "10/12/1815",
	}

	assert.Equal(t,
		[]string{"Ada", "ada@example.com", "1 Main St", "10/12/1815", "111-111-1111;222-222-2222"},
		c.Record())
}

func TestFromRecord_TrimsAndConvertsPhones(t *testing.T) {
	c := model.FromRecord([]string{" Ada ", "a@b.c ", " x", "01/01/2000", " 1;2 ", "extra"})

	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "a@b.c", c.Email)
	assert.Equal(t, "x", c.Address)
	assert.Equal(t, "01/01/2000", c.Birthday)
	assert.Equal(t, "1,2", c.PhoneNumbers)
}

func TestContact_Normalize(t *testing.T) {
	c := model.Contact{Name: "  Bob  ", Email: "   "}
	c.Normalize()

	assert.Equal(t, "Bob", c.Name)
	assert.Equal(t, model.Placeholder, c.Email)
	assert.Equal(t, model.Placeholder, c.PhoneNumbers)
	assert.Equal(t, model.Placeholder, c.Address)
	assert.Equal(t, model.Placeholder, c.Birthday)
}

func TestContact_GetSet(t *testing.T) {
	var c model.Contact
	for _, f := range model.Fields {
		c.Set(f, f.String())
	}
	for _, f := range model.Fields {
		assert.Equal(t, f.String(), c.Get(f))
	}

	c.Set(model.PhoneNumbers, "1;2;3")
	assert.Equal(t, "1,2,3", c.PhoneNumbers, "stored form is converted on Set")
}

func TestParseField(t *testing.T) {
	for _, f := range model.Fields {
		got, err := model.ParseField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := model.ParseField(" Phones ")
	require.NoError(t, err)
	assert.Equal(t, model.PhoneNumbers, got)

	_, err = model.ParseField("nickname")
	assert.Error(t, err)
}

func TestIsFilled(t *testing.T) {
	assert.False(t, model.IsFilled(""))
	assert.False(t, model.IsFilled("  "))
	assert.False(t, model.IsFilled(model.Placeholder))
	assert.True(t, model.IsFilled("x"))
}
