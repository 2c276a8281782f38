package malloc

import "unsafe"

// findFit walks the free lists starting at the bucket asize belongs to,
// looking for a block to carve asize bytes out of. Within a bucket it scans
// at most fitHorizon nodes tracking the candidate with the smallest leftover
// (size - asize); if the bucket has no usable block within that horizon, or
// has none at all, it advances to the next (larger) bucket. Bucket 0 only
// ever holds exactly-sized mini-blocks, so any node there is an immediate fit.
func (h *Heap) findFit(asize uintptr) (unsafe.Pointer, bool) {
	start := bucketIndex(asize)
	for idx := start; idx < numBuckets; idx++ {
		if idx == 0 {
			if h.free[0] != 0 {
				return h.ptrOf(h.free[0]), true
			}
			continue
		}

		var best unsafe.Pointer
		bestDelta := ^uintptr(0)
		off := h.free[idx]
		for walked := 0; off != 0 && walked < h.horizon; walked++ {
			cand := h.ptrOf(off)
			sz := extractSize(readWord(cand))
			if sz >= asize {
				if d := sz - asize; d < bestDelta {
					bestDelta = d
					best = cand
				}
			}
			off = readWord(payloadOf(cand))
		}
		if best != nil {
			return best, true
		}
	}
	return nil, false
}
