package malloc

import (
	"fmt"
	"unsafe"
)

// Heap is a single, independent allocator instance. The zero value is not
// usable; construct one with New or NewWithCapacity.
type Heap struct {
	substrate Substrate
	base      unsafe.Pointer // address of the prologue word; offset origin for free-list links
	free      [numBuckets]uint64
	chunkSize uintptr
	horizon   int

	liveAllocations int
	bytesRequested  uintptr
	totalHeapSize   uintptr
}

// Option configures a Heap at construction time.
type Option func(*Heap)

// WithChunkSize sets the minimum number of bytes requested from the
// substrate whenever a fit search comes up empty. Rounded up to a multiple
// of the mini-block size.
func WithChunkSize(n uintptr) Option {
	return func(h *Heap) {
		if n > 0 {
			h.chunkSize = roundUp(n, miniBlockSize)
		}
	}
}

// WithFitHorizon overrides the number of free-list nodes walked per bucket
// during a fit search before moving up a size class.
func WithFitHorizon(n int) Option {
	return func(h *Heap) {
		if n > 0 {
			h.horizon = n
		}
	}
}

// New builds a Heap over substrate, reserving the prologue/epilogue
// sentinels and an initial chunk of free space.
func New(substrate Substrate, opts ...Option) (*Heap, error) {
	if substrate == nil {
		return nil, fmt.Errorf("malloc: substrate must not be nil")
	}
	h := &Heap{
		substrate: substrate,
		chunkSize: defaultChunkSize,
		horizon:   fitHorizon,
	}
	for _, opt := range opts {
		opt(h)
	}
	if err := h.init(); err != nil {
		return nil, err
	}
	return h, nil
}

// NewWithCapacity is a convenience wrapper that builds a slice-backed
// Substrate reserving reserve bytes and hands it to New.
func NewWithCapacity(reserve uintptr, opts ...Option) (*Heap, error) {
	sub, err := NewSliceSubstrate(reserve)
	if err != nil {
		return nil, fmt.Errorf("malloc: %w", err)
	}
	return New(sub, opts...)
}

func (h *Heap) init() error {
	region, err := h.substrate.Extend(2 * wordSize)
	if err != nil {
		return fmt.Errorf("malloc: heap init: %w", err)
	}
	h.base = region
	h.totalHeapSize = 2 * wordSize

	writeWord(region, pack(0, true, false, false)) // prologue footer
	epilogue := unsafe.Add(region, int(wordSize))
	writeWord(epilogue, pack(0, true, true, false)) // epilogue header

	if _, ok := h.extendHeap(h.chunkSize); !ok {
		return fmt.Errorf("malloc: heap init: initial extend failed")
	}
	return nil
}

// extendHeap grows the substrate by (at least) requested bytes, turns the
// new region into one large free block, coalesces it with whatever free
// block preceded the old epilogue, and threads the result onto its bucket.
//
// The substrate behaves like sbrk: Extend(size) returns a pointer to the
// start of newly appended bytes. The new block's header, however, starts
// one word before that pointer -- that slot is the heap's previous epilogue
// sentinel, and gets reinterpreted in place as the new block's header, its
// prevAlloc/prevMini bits read before they are overwritten.
func (h *Heap) extendHeap(requested uintptr) (unsafe.Pointer, bool) {
	size := roundUp(requested, miniBlockSize)
	region, err := h.substrate.Extend(size)
	if err != nil {
		return nil, false
	}

	newHdr := unsafe.Add(region, -int(wordSize))
	oldEpilogue := readWord(newHdr)
	prevAlloc := extractPrevAlloc(oldEpilogue)
	prevMini := extractPrevMini(oldEpilogue)

	writeBlock(newHdr, size, false, prevAlloc, prevMini)

	epilogue := findNext(newHdr)
	writeWord(epilogue, pack(0, true, false, false))

	h.totalHeapSize += size

	merged, mergedSize := h.coalesce(newHdr, size)
	h.insertFree(merged, mergedSize)
	return merged, true
}

// Allocate reserves a block of at least n bytes and returns a pointer to its
// payload, or nil if n is 0 or the substrate cannot supply enough memory.
func (h *Heap) Allocate(n uintptr) unsafe.Pointer {
	if n == 0 {
		return nil
	}
	asize := blockSizeFor(n)

	hdr, ok := h.findFit(asize)
	if !ok {
		extendSize := asize
		if h.chunkSize > extendSize {
			extendSize = h.chunkSize
		}
		hdr, ok = h.extendHeap(extendSize)
		if !ok {
			return nil
		}
	}

	blockSize := extractSize(readWord(hdr))
	h.removeFree(hdr, blockSize)

	w := readWord(hdr)
	writeBlock(hdr, blockSize, true, extractPrevAlloc(w), extractPrevMini(w))
	h.splitIfPossible(hdr, blockSize, asize)

	h.liveAllocations++
	h.bytesRequested += n
	return payloadOf(hdr)
}

// Free releases a block previously returned by Allocate, Calloc, or
// Reallocate. Freeing nil is a no-op; freeing anything else is undefined
// behavior.
func (h *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	hdr := headerOf(p)
	size := extractSize(readWord(hdr))

	w := readWord(hdr)
	writeBlock(hdr, size, false, extractPrevAlloc(w), extractPrevMini(w))

	merged, mergedSize := h.coalesce(hdr, size)
	h.insertFree(merged, mergedSize)
	h.liveAllocations--
}

// Reallocate resizes the block at p to n bytes, preserving the lesser of
// its old and new payload size worth of content. p may be nil (equivalent
// to Allocate); n may be 0 (equivalent to Free, returning nil).
func (h *Heap) Reallocate(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	if p == nil {
		return h.Allocate(n)
	}
	if n == 0 {
		h.Free(p)
		return nil
	}

	hdr := headerOf(p)
	oldPayload := extractSize(readWord(hdr)) - wordSize

	newP := h.Allocate(n)
	if newP == nil {
		return nil
	}
	copySize := oldPayload
	if n < copySize {
		copySize = n
	}
	copyBytes(newP, p, copySize)
	h.Free(p)
	return newP
}

// Calloc allocates space for count objects of size bytes each, zeroed.
// Returns nil on overflow or allocation failure.
func (h *Heap) Calloc(count, size uintptr) unsafe.Pointer {
	total, overflow := mulOverflows(count, size)
	if overflow {
		return nil
	}
	p := h.Allocate(total)
	if p == nil {
		return nil
	}
	zeroBytes(p, total)
	return p
}

// blockSizeFor computes the total block size (header + payload, rounded to
// alignment) needed to satisfy a request for n payload bytes.
func blockSizeFor(n uintptr) uintptr {
	asize := roundUp(n+wordSize, alignment)
	if asize < miniBlockSize {
		asize = miniBlockSize
	}
	return asize
}

func mulOverflows(a, b uintptr) (uintptr, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	r := a * b
	if r/a != b {
		return 0, true
	}
	return r, false
}

func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), int(n)), unsafe.Slice((*byte)(src), int(n)))
}

func zeroBytes(p unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}
	clear(unsafe.Slice((*byte)(p), int(n)))
}
