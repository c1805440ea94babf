package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.Len(t, s, 32)
	_, err = hex.DecodeString(s)
	require.NoError(t, err)

	empty, err := MakeRandHexString(0)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestGenerateRandByteArray_LengthAndEntropy(t *testing.T) {
	a := GenerateRandByteArray(32)
	b := GenerateRandByteArray(32)
	require.Len(t, a, 32)
	require.Len(t, b, 32)
	require.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	WipeByteArray(buf)
	require.Equal(t, []byte{0, 0, 0, 0}, buf)

	WipeByteArray(nil)
}

func TestSentinelsMatchThroughWrapping(t *testing.T) {
	for _, e := range []error{ErrAuthFailure, ErrRemoteUnavailable, ErrInvitationNotFound,
		ErrMalformedLink, ErrDecryptionFailure, ErrNoPublicKey} {
		wrapped := fmt.Errorf("op: %w", e)
		require.True(t, errors.Is(wrapped, e))
	}
	require.False(t, errors.Is(ErrAuthFailure, ErrRemoteUnavailable))
}
