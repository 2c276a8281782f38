package malloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFindFitPrefersSmallestLeftover builds two free blocks in the same
// bucket, separated by small allocated guards so they can't coalesce with
// each other or with trailing free space, then checks a request that fits
// both lands in the one with less leftover.
func TestFindFitPrefersSmallestLeftover(t *testing.T) {
	h := newTestHeap(t, 256*1024)

	loose := h.Allocate(500) // carves a 512-byte block
	g1 := h.Allocate(8)      // mini guard: keeps loose from absorbing tight
	tight := h.Allocate(400) // carves a 416-byte block
	g2 := h.Allocate(8)      // mini guard: keeps tight from absorbing trailing free space
	require.NotNil(t, loose)
	require.NotNil(t, g1)
	require.NotNil(t, tight)
	require.NotNil(t, g2)

	h.Free(loose)
	h.Free(tight)

	fit := h.Allocate(380) // asize 400: 16 bytes of slack in tight, 112 in loose
	require.NotNil(t, fit)
	assert.Equal(t, tight, fit, "best fit should reuse the tighter block")

	h.Free(fit)
	h.Free(g1)
	h.Free(g2)
}

func TestFindFitMiniBucketIsExactFitShortcut(t *testing.T) {
	h := newTestHeap(t, 64*1024)

	a := h.Allocate(4)
	b := h.Allocate(4)
	require.NotNil(t, a)
	require.NotNil(t, b)
	h.Free(a)

	reused := h.Allocate(1)
	require.NotNil(t, reused)
	assert.Equal(t, a, reused)

	h.Free(reused)
	h.Free(b)
}

func TestFindFitAdvancesBucketsOnMiss(t *testing.T) {
	h := newTestHeap(t, 256*1024)

	p := h.Allocate(2000)
	require.NotNil(t, p)
	h.Free(p)

	// Bucket for a 64-byte request is empty; the only free block belongs to
	// a much larger bucket and must still be found by walking upward.
	hdr, ok := h.findFit(64)
	assert.True(t, ok)
	assert.Equal(t, headerOf(p), hdr)
}
