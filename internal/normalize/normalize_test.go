package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerocell/towersync/internal/model"
)

func TestTowerType(t *testing.T) {
	tests := []struct {
		input    string
		expected model.TowerType
	}{
		{"Macro", model.TowerTypeMacro},
		{"monopole", model.TowerTypeMacro},
		{"Micro Cell", model.TowerTypeMicro},
		{"MICRO", model.TowerTypeMicro},
		{"pico", model.TowerTypePico},
		{"DAS Node", model.TowerTypeDAS},
		{"cow unit", model.TowerTypeCOW},
		{"water tank", model.TowerTypeMacro},
		{"", model.TowerTypeMacro},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TowerType(tt.input), "input: %q", tt.input)
	}
}

func TestCarrier(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"", "Unknown"},
		{"Ghost lead", "Ghost Lead"},
		{"something ghost", "Ghost Lead"},
		{"Verizon Wireless", "Verizon"},
		{"at&t mobility", "AT&T"},
		{"ATT", "AT&T"},
		{"T-Mobile", "T-Mobile"},
		{"tmobile", "T-Mobile"},
		{"Sprint", "Sprint (T-Mobile)"},
		{"US Cellular", "US Cellular"},
		{"Dish Wireless", "Dish Network"},
		{"AMT", "American Tower"},
		{"american tower corp", "American Tower"},
		{"CCI", "Crown Castle"},
		{"Cellular One", "Cellular One"},
		{"Oncor Electric", "Oncor Electric"}, // unmatched passes through
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Carrier(tt.input), "input: %q", tt.input)
	}
}

func TestCarrier_FirstSegmentOnly(t *testing.T) {
	// Only the first comma-separated segment is reported; SplitCarriers
	// handles the full decomposition.
	assert.Equal(t, "Verizon", Carrier("Verizon, T-Mobile"))
	assert.Equal(t, "AT&T", Carrier("att, Verizon, Dish"))
}

func TestSplitCarriers(t *testing.T) {
	assert.Nil(t, SplitCarriers(""))
	assert.Nil(t, SplitCarriers("Multi"))
	assert.Nil(t, SplitCarriers("Contact to unlock"))
	assert.Equal(t, []string{"Verizon", "AT&T", "Unknown Co"}, SplitCarriers("Verizon, AT&T, Unknown Co"))
	assert.Equal(t, []string{"Verizon"}, SplitCarriers("Verizon, Multi, "))
	assert.Equal(t, []string{"Verizon"}, SplitCarriers("Verizon"))
}

func TestPhone(t *testing.T) {
	assert.Nil(t, Phone(""))
	assert.Nil(t, Phone("Contact to unlock"))
	assert.Nil(t, Phone("555-12")) // 5 digits
	assert.Nil(t, Phone("n/a"))

	p := Phone("(555) 123-4567")
	require.NotNil(t, p)
	assert.Equal(t, "(555) 123-4567", *p) // formatting preserved

	p = Phone("+1 212 555 0100")
	require.NotNil(t, p)
	assert.Equal(t, "+1 212 555 0100", *p)
}

func TestEmail(t *testing.T) {
	assert.Nil(t, Email(""))
	assert.Nil(t, Email("CONTACT TO UNLOCK"))
	assert.Nil(t, Email("not-an-email"))

	e := Email(" Jane.Doe@Example.COM ")
	require.NotNil(t, e)
	assert.Equal(t, "jane.doe@example.com", *e)
}

func TestOwnerName(t *testing.T) {
	empty := OwnerName("Contact to unlock")
	assert.Nil(t, empty.FirstName)
	assert.Nil(t, empty.LastName)
	assert.Nil(t, empty.FullName)

	org := OwnerName("Acme")
	assert.Nil(t, org.FirstName)
	require.NotNil(t, org.LastName)
	assert.Equal(t, "Acme", *org.LastName)
	require.NotNil(t, org.FullName)
	assert.Equal(t, "Acme", *org.FullName)

	simple := OwnerName("John Smith")
	require.NotNil(t, simple.FirstName)
	assert.Equal(t, "John", *simple.FirstName)
	assert.Equal(t, "Smith", *simple.LastName)
	assert.Equal(t, "John Smith", *simple.FullName)

	suffixed := OwnerName("John Smith Jr.")
	assert.Equal(t, "John", *suffixed.FirstName)
	assert.Equal(t, "Smith Jr.", *suffixed.LastName)
	assert.Equal(t, "John Smith Jr.", *suffixed.FullName)

	// Two tokens where the second is a suffix: not folded (needs >2 tokens).
	twoTok := OwnerName("Smith Jr.")
	assert.Equal(t, "Smith", *twoTok.FirstName)
	assert.Equal(t, "Jr.", *twoTok.LastName)

	multi := OwnerName("Mary Ann van Houten")
	assert.Equal(t, "Mary", *multi.FirstName)
	assert.Equal(t, "Ann van Houten", *multi.LastName)
}

func TestEntityKey(t *testing.T) {
	assert.Equal(t, "ACME LLC", EntityKey(" acme llc "))
	assert.Equal(t, "ACME LLC", EntityKey("Acme LLC"))
	assert.Equal(t, "", EntityKey("   "))
}

func TestStripSentinel(t *testing.T) {
	assert.Nil(t, StripSentinel(""))
	assert.Nil(t, StripSentinel("Contact to unlock"))
	v := StripSentinel("Oncor Electric Delivery")
	require.NotNil(t, v)
	assert.Equal(t, "Oncor Electric Delivery", *v)
}
