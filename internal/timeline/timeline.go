package timeline

import "sort"

// Ordered returns the timestamps sorted in ascending order. When limit is
// positive, only the limit most recent timestamps are kept.
func Ordered(timestamps []uint64, limit int) []uint64 {
	ordered := make([]uint64, len(timestamps))
	copy(ordered, timestamps)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i] < ordered[j]
	})
	if limit > 0 && limit < len(ordered) {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}
