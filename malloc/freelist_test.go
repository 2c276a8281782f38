package malloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		size uintptr
		want int
	}{
		{16, 0}, {17, 1}, {32, 1}, {33, 2}, {48, 2}, {49, 3},
		{64, 3}, {65, 4}, {89, 4}, {90, 5}, {112, 5}, {113, 6},
		{128, 6}, {129, 7}, {144, 7}, {145, 8}, {160, 8}, {161, 9},
		{176, 9}, {177, 10}, {256, 10}, {257, 11}, {512, 11}, {513, 12},
		{899, 12}, {900, 13}, {4999, 13}, {5000, 14}, {1 << 20, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bucketIndex(tt.size), "size=%d", tt.size)
	}
}

func TestInsertRemoveFreeNonMini(t *testing.T) {
	h := newTestHeap(t, 64*1024)

	b1 := h.Allocate(200)
	b2 := h.Allocate(200)
	b3 := h.Allocate(200)
	require.NotNil(t, b1)
	require.NotNil(t, b2)
	require.NotNil(t, b3)

	h.Free(b2) // middle of a doubly-linked bucket
	assert.True(t, h.Healthy(), "%v", h.Check())

	h.Free(b1)
	h.Free(b3)
	assert.True(t, h.Healthy(), "%v", h.Check())
}

func TestInsertRemoveFreeMini(t *testing.T) {
	h := newTestHeap(t, 64*1024)

	b1 := h.Allocate(4) // rounds to a mini-block
	b2 := h.Allocate(4)
	b3 := h.Allocate(4)
	require.NotNil(t, b1)
	require.NotNil(t, b2)
	require.NotNil(t, b3)

	h.Free(b2) // middle of the singly-linked mini list
	assert.True(t, h.Healthy(), "%v", h.Check())

	h.Free(b1)
	h.Free(b3)
	assert.True(t, h.Healthy(), "%v", h.Check())
}
