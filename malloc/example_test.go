package malloc

import "fmt"

func Example() {
	h, _ := NewWithCapacity(64 * 1024)

	a := h.Allocate(1000)
	b := h.Allocate(24)
	fmt.Printf("live=%d requested=%d\n", h.Stats().LiveAllocations, h.Stats().BytesRequested)

	h.Free(a)
	h.Free(b)
	fmt.Printf("live=%d healthy=%t\n", h.Stats().LiveAllocations, h.Healthy())

	// Output:
	// live=2 requested=1024
	// live=0 healthy=true
}
