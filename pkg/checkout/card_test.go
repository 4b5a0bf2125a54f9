package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCardNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"4242424242424242", "4242 4242 4242 4242"},
		{"4242 4242 4242 4242", "4242 4242 4242 4242"},
		{"4242-4242-4242-4242", "4242 4242 4242 4242"},
		{"42424242424242421111", "4242 4242 4242 4242"}, // over 16 digits truncated
		{"4242424", "4242 424"},
		{"", ""},
		{"abcd", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCardNumber(tc.in), "input %q", tc.in)
	}
}

func TestFormatExpiry(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1226", "12/26"},
		{"12/26", "12/26"},
		{"1", "1"},
		{"12", "12"},
		{"123", "12/3"},
		{"122699", "12/26"}, // over 4 digits truncated
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatExpiry(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeCVC(t *testing.T) {
	assert.Equal(t, "123", NormalizeCVC("123"))
	assert.Equal(t, "1234", NormalizeCVC("12345"))
	assert.Equal(t, "123", NormalizeCVC("1a2b3c"))
	assert.Equal(t, "", NormalizeCVC(""))
}

func TestValidCardNumber(t *testing.T) {
	assert.True(t, ValidCardNumber("4242424242424242"))
	assert.True(t, ValidCardNumber("4242 4242 4242 4242"))
	assert.True(t, ValidCardNumber("4000000000000")) // 13 digits
	assert.False(t, ValidCardNumber("424242424242"))  // 12 digits
	assert.False(t, ValidCardNumber(""))
}

func TestValidExpiry(t *testing.T) {
	assert.True(t, ValidExpiry("12/26"))
	assert.True(t, ValidExpiry("01/30"))
	assert.False(t, ValidExpiry("13/26"))
	assert.False(t, ValidExpiry("00/26"))
	assert.False(t, ValidExpiry("1226"))
	assert.False(t, ValidExpiry("1/26"))
	assert.False(t, ValidExpiry("ab/cd"))
}

func TestValidCVC(t *testing.T) {
	assert.True(t, ValidCVC("123"))
	assert.True(t, ValidCVC("1234"))
	assert.False(t, ValidCVC("12"))
	assert.False(t, ValidCVC("12345"))
}
