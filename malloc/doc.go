// Package malloc implements a single-threaded dynamic memory allocator over
// a contiguous, monotonically-extensible heap region.
//
// Free blocks are threaded through 15 segregated size-class lists. Blocks
// smaller than 32 bytes (mini-blocks) use a singly-linked regime to fit a
// header-only layout; all other free blocks are doubly-linked and carry a
// boundary-tag footer, so a block can coalesce with its physical predecessor
// in O(1). Allocation uses a bounded-horizon approximate best fit; oversized
// fits are split when the remainder is large enough to host a mini-block.
//
// The heap itself is not owned by this package: a Substrate supplies the
// backing bytes and the contract that growth never relocates previously
// returned addresses. This package is not safe for concurrent use.
package malloc
