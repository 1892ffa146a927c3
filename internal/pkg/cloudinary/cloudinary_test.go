package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewService_RequiresCredentials(t *testing.T) {
	_, err := NewService("", "key", "secret", "")
	require.Error(t, err)
}

func TestNewService(t *testing.T) {
	svc, err := NewService("demo", "key", "secret", "")
	require.NoError(t, err)
	require.Equal(t, "demo", svc.CloudName())
	require.Equal(t, "ebooks", svc.uploadFolder)
}
