package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	require.True(t, IsValidEmail("reader@example.com"))
	require.True(t, IsValidEmail(" reader@example.co.uk "))
	require.False(t, IsValidEmail("reader@example"))
	require.False(t, IsValidEmail("reader example@x.com"))
	require.False(t, IsValidEmail(""))
}

func TestIsValidUsername(t *testing.T) {
	require.True(t, IsValidUsername("bob"))
	require.True(t, IsValidUsername("book_worm.42"))
	require.False(t, IsValidUsername("ab"))
	require.False(t, IsValidUsername("has space"))
}

func TestIsValidPassword(t *testing.T) {
	require.True(t, IsValidPassword("12345678"))
	require.False(t, IsValidPassword("1234567"))
}

func TestParseYear(t *testing.T) {
	year, ok := ParseYear("1999")
	require.True(t, ok)
	require.Equal(t, 1999, year)

	year, ok = ParseYear(" -400 ")
	require.True(t, ok)
	require.Equal(t, -400, year)

	year, ok = ParseYear("2100")
	require.True(t, ok)
	require.Equal(t, 2100, year)

	_, ok = ParseYear("nineteen")
	require.False(t, ok)

	_, ok = ParseYear("19.5")
	require.False(t, ok)
}
