package malloc

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// snapshotFormatVersion is bumped whenever BlockInfo, BucketInfo, or
// Snapshot's field set changes in a way that would break a consumer
// written against an older layout.
const snapshotFormatVersion = "1.0.0"

// BlockInfo describes one block encountered during a heap traversal.
type BlockInfo struct {
	Offset    uint64
	Size      uintptr
	Allocated bool
}

// BucketInfo describes the free-list membership of one size class.
type BucketInfo struct {
	Index int
	Count int
}

// Snapshot is a structured, versioned dump of a heap's block list and
// free-list membership, meant for post-hoc diagnosis of a failing trace.
type Snapshot struct {
	FormatVersion string
	Blocks        []BlockInfo
	Buckets       []BucketInfo
}

// Snapshot walks the heap and its free lists and returns a structured dump
// of both.
func (h *Heap) Snapshot() Snapshot {
	snap := Snapshot{FormatVersion: snapshotFormatVersion}

	cur := h.firstBlock()
	for {
		w := readWord(cur)
		size := extractSize(w)
		if size == 0 {
			break
		}
		snap.Blocks = append(snap.Blocks, BlockInfo{
			Offset:    h.offsetOf(cur),
			Size:      size,
			Allocated: extractAlloc(w),
		})
		cur = findNext(cur)
	}

	for idx := 0; idx < numBuckets; idx++ {
		count := 0
		for off := h.free[idx]; off != 0; {
			count++
			off = readWord(payloadOf(h.ptrOf(off)))
		}
		snap.Buckets = append(snap.Buckets, BucketInfo{Index: idx, Count: count})
	}

	return snap
}

// CompatibleSnapshotFormat reports whether snap's format version satisfies
// a semver constraint, e.g. ">=1.0.0, <2.0.0". Callers decoding snapshots
// produced by a different build should check this before trusting the
// field layout.
func CompatibleSnapshotFormat(snap Snapshot, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("malloc: invalid snapshot constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(snap.FormatVersion)
	if err != nil {
		return false, fmt.Errorf("malloc: invalid snapshot format version %q: %w", snap.FormatVersion, err)
	}
	return c.Check(v), nil
}
