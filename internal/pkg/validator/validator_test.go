package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	require.True(t, IsValidEmail("dev@example.com"))
	require.True(t, IsValidEmail("first.last+tag@sub.example.io"))
	require.False(t, IsValidEmail(""))
	require.False(t, IsValidEmail("not-an-email"))
	require.False(t, IsValidEmail("missing@tld"))
}

func TestIsValidURL(t *testing.T) {
	require.True(t, IsValidURL("https://example.com"))
	require.True(t, IsValidURL("http://blog.example.com/posts/1?ref=home"))
	require.False(t, IsValidURL("ftp://example.com"))
	require.False(t, IsValidURL("example.com"))
	require.False(t, IsValidURL(""))
}

func TestIsStrongPassword(t *testing.T) {
	require.True(t, IsStrongPassword("Str0ng!pass"))
	require.False(t, IsStrongPassword("short1!"))
	require.False(t, IsStrongPassword("alllowercase1!"))
	require.False(t, IsStrongPassword("NoNumbers!!"))
	require.False(t, IsStrongPassword("NoSymbols123"))
}
