package malloc

import "unsafe"

// splitIfPossible carves hdr (already marked allocated at its full
// blockSize) down to asize when the leftover is large enough to host a
// mini-block on its own, freeing and threading that leftover tail onto the
// appropriate bucket. hdr must already have been removed from its free list
// and marked allocated before this is called.
func (h *Heap) splitIfPossible(hdr unsafe.Pointer, blockSize, asize uintptr) {
	if blockSize-asize < miniBlockSize {
		return
	}

	w := readWord(hdr)
	writeBlock(hdr, asize, true, extractPrevAlloc(w), extractPrevMini(w))

	tail := findNext(hdr)
	tailSize := blockSize - asize
	writeBlock(tail, tailSize, false, true, asize == miniBlockSize)
	h.insertFree(tail, tailSize)
}
