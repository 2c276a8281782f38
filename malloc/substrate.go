package malloc

import (
	"fmt"
	"unsafe"

	"github.com/bytedance/gopkg/lang/mcache"
)

// Substrate supplies the backing bytes for a Heap. Extend must return a
// pointer to newly appended, zero-valued bytes immediately following the
// region returned by the previous Extend (or Lo, for the first call), and
// the address of every byte ever returned must never change for the
// lifetime of the substrate: a Heap keeps pointers into this region across
// calls and cannot tolerate relocation.
type Substrate interface {
	// Extend grows the region by n bytes and returns a pointer to the start
	// of the newly appended bytes.
	Extend(n uintptr) (unsafe.Pointer, error)
	// Lo is the address of the first byte ever reserved.
	Lo() unsafe.Pointer
	// Hi is one past the address of the last byte currently in use.
	Hi() unsafe.Pointer
}

// sliceSubstrate is the default Substrate: a fixed-capacity backing array
// reserved up front via mcache, grown by bumping a used counter so the
// backing address never moves.
type sliceSubstrate struct {
	buf  []byte
	used uintptr
}

// NewSliceSubstrate reserves a substrate with reserve bytes of total
// capacity. Extend calls fail once that capacity is exhausted; this package
// never grows the backing array itself, since doing so could relocate it.
func NewSliceSubstrate(reserve uintptr) (Substrate, error) {
	if reserve == 0 {
		return nil, fmt.Errorf("malloc: substrate reserve must be > 0")
	}
	buf := mcache.Malloc(int(reserve))
	return &sliceSubstrate{buf: buf}, nil
}

func (s *sliceSubstrate) Extend(n uintptr) (unsafe.Pointer, error) {
	if n == 0 {
		return nil, fmt.Errorf("malloc: substrate Extend called with n=0")
	}
	if s.used+n > uintptr(len(s.buf)) {
		return nil, fmt.Errorf("malloc: substrate exhausted: need %d more bytes, have %d",
			n, uintptr(len(s.buf))-s.used)
	}
	p := unsafe.Pointer(&s.buf[s.used])
	s.used += n
	return p, nil
}

func (s *sliceSubstrate) Lo() unsafe.Pointer {
	return unsafe.Pointer(&s.buf[0])
}

func (s *sliceSubstrate) Hi() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(&s.buf[0]), s.used)
}

// Release returns the substrate's backing array to the mcache pool. The
// substrate must not be used again afterward.
func (s *sliceSubstrate) Release() {
	mcache.Free(s.buf)
}
