package auth

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateUniqueUsername(t *testing.T) {
	require.Equal(t, "jane_doe", GenerateUniqueUsername("Jane Doe"))
	require.Equal(t, "user_", GenerateUniqueUsername("!!"))
	require.Equal(t, "user_al", GenerateUniqueUsername("Al"))
	require.Len(t, GenerateUniqueUsername("a very long display name indeed"), 20)
}

func TestWithSuffix(t *testing.T) {
	require.Regexp(t, regexp.MustCompile(`^jane_\d{4}$`), withSuffix("jane"))
}

func TestRandomState(t *testing.T) {
	a, err := randomState()
	require.NoError(t, err)
	b, err := randomState()
	require.NoError(t, err)
	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
}
