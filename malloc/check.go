package malloc

import (
	"fmt"
	"unsafe"
)

// Check walks the heap and its free lists looking for invariant violations,
// returning a human-readable description of each one found. An empty slice
// means the heap is internally consistent. This is a debugging aid, not
// something called on any allocation hot path.
func (h *Heap) Check() []string {
	var problems []string

	freeByTraversal := 0
	cur := h.firstBlock()
	lo, hi := h.substrate.Lo(), h.substrate.Hi()

	if readWord(h.base) != pack(0, true, false, false) {
		problems = append(problems, "prologue footer is not a zero-size allocated sentinel")
	}

	for {
		w := readWord(cur)
		size := extractSize(w)
		if size == 0 {
			if !extractAlloc(w) {
				problems = append(problems, fmt.Sprintf("epilogue at offset %d is not marked allocated", h.offsetOf(cur)))
			}
			break // epilogue
		}

		if uintptr(cur) < uintptr(lo) || uintptr(cur) >= uintptr(hi) {
			problems = append(problems, fmt.Sprintf("block at offset %d lies outside substrate bounds", h.offsetOf(cur)))
			break
		}
		if size%alignment != 0 {
			problems = append(problems, fmt.Sprintf("block at offset %d has unaligned size %d", h.offsetOf(cur), size))
		}

		alloc := extractAlloc(w)
		if !alloc {
			freeByTraversal++
			if size > miniBlockSize {
				footer := readWord(footerOf(cur, size))
				if footer != w {
					problems = append(problems, fmt.Sprintf("block at offset %d has mismatched header/footer", h.offsetOf(cur)))
				}
			}

			next := findNext(cur)
			if !extractAlloc(readWord(next)) && extractSize(readWord(next)) != 0 {
				problems = append(problems, fmt.Sprintf("block at offset %d is free and adjacent to another free block: coalescing missed", h.offsetOf(cur)))
			}
		}

		cur = findNext(cur)
	}

	freeByBuckets := 0
	for idx := 0; idx < numBuckets; idx++ {
		freeByBuckets += h.checkBucket(idx, &problems)
	}

	if freeByTraversal != freeByBuckets {
		problems = append(problems, fmt.Sprintf("free block count mismatch: %d by heap traversal, %d across buckets", freeByTraversal, freeByBuckets))
	}

	return problems
}

// Healthy reports whether Check found no problems.
func (h *Heap) Healthy() bool {
	return len(h.Check()) == 0
}

func (h *Heap) firstBlock() unsafe.Pointer {
	return unsafe.Add(h.base, int(wordSize))
}

func (h *Heap) checkBucket(idx int, problems *[]string) int {
	count := 0
	off := h.free[idx]
	var prevOff uint64

	for off != 0 {
		node := h.ptrOf(off)
		w := readWord(node)
		size := extractSize(w)

		if extractAlloc(w) {
			*problems = append(*problems, fmt.Sprintf("bucket %d contains an allocated block at offset %d", idx, off))
		}
		if bucketIndex(size) != idx {
			*problems = append(*problems, fmt.Sprintf("block at offset %d (size %d) is filed in bucket %d, belongs in bucket %d", off, size, idx, bucketIndex(size)))
		}
		count++

		if idx == 0 {
			off = readWord(payloadOf(node))
			continue
		}

		payload := payloadOf(node)
		backPrev := readWord(unsafe.Add(payload, int(wordSize)))
		if backPrev != prevOff {
			*problems = append(*problems, fmt.Sprintf("block at offset %d has a broken back-link in bucket %d", off, idx))
		}
		prevOff = off
		off = readWord(payload)
	}

	return count
}
