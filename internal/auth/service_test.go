package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	svc := NewService(hash)
	require.NoError(t, svc.Verify("hunter2"))
	require.ErrorIs(t, svc.Verify("wrong"), ErrInvalidCredentials)
}

func TestVerifyUnconfigured(t *testing.T) {
	svc := NewService("")
	err := svc.Verify("anything")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}
