package malloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceSubstrateExtendNeverMoves(t *testing.T) {
	sub, err := NewSliceSubstrate(4096)
	require.NoError(t, err)

	first, err := sub.Extend(64)
	require.NoError(t, err)
	second, err := sub.Extend(64)
	require.NoError(t, err)

	assert.Equal(t, unsafe.Add(first, 64), second)
	assert.Equal(t, sub.Lo(), first)
	assert.Equal(t, unsafe.Add(second, 64), sub.Hi())
}

func TestSliceSubstrateExhaustion(t *testing.T) {
	sub, err := NewSliceSubstrate(128)
	require.NoError(t, err)

	_, err = sub.Extend(100)
	require.NoError(t, err)

	_, err = sub.Extend(64)
	assert.Error(t, err)
}

func TestNewSliceSubstrateRejectsZero(t *testing.T) {
	_, err := NewSliceSubstrate(0)
	assert.Error(t, err)
}
