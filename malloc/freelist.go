package malloc

import "unsafe"

// bucketBounds are the inclusive upper bounds of buckets 0..13; bucket 14
// holds everything larger than the last bound. Bucket 0 holds exactly the
// 16-byte mini-blocks (nothing smaller exists), so it is singly-linked;
// every other bucket is doubly-linked.
var bucketBounds = [...]uintptr{16, 32, 48, 64, 89, 112, 128, 144, 160, 176, 256, 512, 899, 4999}

func bucketIndex(size uintptr) int {
	for i, bound := range bucketBounds {
		if size <= bound {
			return i
		}
	}
	return numBuckets - 1
}

func (h *Heap) offsetOf(p unsafe.Pointer) uint64 {
	return uint64(uintptr(p) - uintptr(h.base))
}

// ptrOf resolves a stored link back to an address. 0 is the null sentinel:
// the prologue sentinel occupies offset 0 and is never threaded onto a free
// list, so no real free block ever has that offset.
func (h *Heap) ptrOf(off uint64) unsafe.Pointer {
	if off == 0 {
		return nil
	}
	return unsafe.Add(h.base, uintptr(off))
}

// insertFree threads a free block of the given size onto the head of its
// bucket's list.
func (h *Heap) insertFree(hdr unsafe.Pointer, size uintptr) {
	idx := bucketIndex(size)
	if idx == 0 {
		writeWord(payloadOf(hdr), h.free[0])
		h.free[0] = h.offsetOf(hdr)
		return
	}

	payload := payloadOf(hdr)
	oldHead := h.free[idx]
	writeWord(payload, oldHead)
	writeWord(unsafe.Add(payload, int(wordSize)), 0)
	if oldHead != 0 {
		oldHeadPayload := payloadOf(h.ptrOf(oldHead))
		writeWord(unsafe.Add(oldHeadPayload, int(wordSize)), h.offsetOf(hdr))
	}
	h.free[idx] = h.offsetOf(hdr)
}

// removeFree unthreads a free block of the given size from its bucket.
func (h *Heap) removeFree(hdr unsafe.Pointer, size uintptr) {
	idx := bucketIndex(size)
	if idx == 0 {
		h.removeMiniFree(hdr)
		return
	}

	payload := payloadOf(hdr)
	nextOff := readWord(payload)
	prevOff := readWord(unsafe.Add(payload, int(wordSize)))

	if prevOff != 0 {
		writeWord(payloadOf(h.ptrOf(prevOff)), nextOff)
	} else {
		h.free[idx] = nextOff
	}
	if nextOff != 0 {
		nextPayload := payloadOf(h.ptrOf(nextOff))
		writeWord(unsafe.Add(nextPayload, int(wordSize)), prevOff)
	}
}

// removeMiniFree unthreads a mini-block from the singly-linked bucket 0
// list. The caller always passes a free mini-block, and every free block is
// threaded onto its bucket, so no reachability check is done (see DESIGN.md).
func (h *Heap) removeMiniFree(hdr unsafe.Pointer) {
	target := h.offsetOf(hdr)
	if h.free[0] == target {
		h.free[0] = readWord(payloadOf(hdr))
		return
	}
	curOff := h.free[0]
	for curOff != 0 {
		curHdr := h.ptrOf(curOff)
		nextOff := readWord(payloadOf(curHdr))
		if nextOff == target {
			writeWord(payloadOf(curHdr), readWord(payloadOf(hdr)))
			return
		}
		curOff = nextOff
	}
}
