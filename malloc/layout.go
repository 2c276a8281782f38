package malloc

import "unsafe"

func readWord(p unsafe.Pointer) uint64 {
	return *(*uint64)(p)
}

func writeWord(p unsafe.Pointer, w uint64) {
	*(*uint64)(p) = w
}

// headerOf returns the header address for a block given its payload address.
func headerOf(payload unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(payload, -int(wordSize))
}

// payloadOf returns the payload address for a block given its header address.
func payloadOf(hdr unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(hdr, wordSize)
}

// footerOf returns the footer address of a free, non-mini block of the given size.
func footerOf(hdr unsafe.Pointer, size uintptr) unsafe.Pointer {
	return unsafe.Add(hdr, int(size-wordSize))
}

// findNext returns the header of the block physically following hdr.
func findNext(hdr unsafe.Pointer) unsafe.Pointer {
	size := extractSize(readWord(hdr))
	return unsafe.Add(hdr, int(size))
}

// findPrev returns the header of the block physically preceding hdr. Only
// valid to call when hdr's prevAlloc bit is clear, i.e. a preceding free
// block is known to exist (the heap's prologue is always marked allocated,
// so this never walks off the start of the heap in that case).
func findPrev(hdr unsafe.Pointer) unsafe.Pointer {
	w := readWord(hdr)
	if extractPrevMini(w) {
		return unsafe.Add(hdr, -miniBlockSize)
	}
	footer := readWord(unsafe.Add(hdr, -int(wordSize)))
	size := extractSize(footer)
	return unsafe.Add(hdr, -int(size))
}

// writeBlock writes a block's header (and, for free non-mini blocks, its
// footer), then patches the prevAlloc/prevMini bits baked into the header of
// the immediately following physical block so that block's view of its
// predecessor stays consistent.
func writeBlock(hdr unsafe.Pointer, size uintptr, allocated, prevAlloc, prevMini bool) {
	w := pack(size, allocated, prevAlloc, prevMini)
	writeWord(hdr, w)
	if !allocated && size > miniBlockSize {
		writeWord(footerOf(hdr, size), w)
	}

	next := unsafe.Add(hdr, int(size))
	nw := readWord(next)
	writeWord(next, pack(extractSize(nw), extractAlloc(nw), allocated, size == miniBlockSize))
}
