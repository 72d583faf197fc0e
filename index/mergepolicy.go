package index

import (
	"strings"

	"github.com/sajya/lucene/codec"
	"github.com/sajya/lucene/store"
)

// planMerge looks for one contiguous tail group of exactly mergeFactor
// segments sharing the same log-size tier and returns its start index and
// length, or (-1, 0) if no group currently qualifies (spec §4.7 "log-size
// policy": segments are grouped by the power-of-mergeFactor bucket their
// doc count falls into; a full bucket merges into one new segment).
func planMerge(segs []*codec.SegmentInfo, mergeFactor, maxMergeDocs int32) (start, count int) {
	n := len(segs)
	if n < int(mergeFactor) {
		return -1, 0
	}

	tier := sizeLevel(segs[n-1].DocCount, mergeFactor)
	i := n - 1
	for i > 0 && sizeLevel(segs[i-1].DocCount, mergeFactor) == tier {
		i--
	}
	groupLen := n - i
	if groupLen < int(mergeFactor) {
		return -1, 0
	}

	group := segs[i : i+int(mergeFactor)]
	var total int32
	for _, s := range group {
		total += s.DocCount
	}
	if total > maxMergeDocs {
		return -1, 0
	}
	return i, int(mergeFactor)
}

// sizeLevel buckets a doc count into its power-of-mergeFactor tier: level
// k covers [mergeFactor^k, mergeFactor^(k+1)).
func sizeLevel(docCount, mergeFactor int32) int {
	level := 0
	size := int64(mergeFactor)
	for int64(docCount) >= size {
		size *= int64(mergeFactor)
		level++
	}
	return level
}

// deleteSegmentFiles removes every file belonging to a superseded segment
// (all extensions plus any generation-suffixed .del files), the last step
// of the commit protocol (spec §4.7 "delete files of superseded segments").
func deleteSegmentFiles(dir store.Directory, name string) error {
	names, err := dir.List()
	if err != nil {
		return err
	}
	var firstErr error
	for _, n := range names {
		if n == name {
			continue
		}
		if strings.HasPrefix(n, name+".") || strings.HasPrefix(n, name+"_") {
			if err := dir.Delete(n); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
