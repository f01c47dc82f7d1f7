package render

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Layout holds the column widths of a report.
type Layout struct {
	// ColumnWidth is the width given to each producer when producers are
	// laid out side by side.
	ColumnWidth int
	// TimestampWidth is the minimum width of the TIME and DELTA fields.
	TimestampWidth int
	// WideThreshold is the producer count from which producers are tagged
	// instead of getting their own column.
	WideThreshold int
	// TagWidth is the width of the FUNC field for tagged producers.
	TagWidth int
}

func DefaultLayout() Layout {
	return Layout{
		ColumnWidth:    25,
		TimestampWidth: 8,
		WideThreshold:  8,
		TagWidth:       30,
	}
}

// Tagged reports whether lines get a producer tag instead of a column.
func (l Layout) Tagged(producers uint64) bool {
	return producers >= uint64(max(l.WideThreshold, 0))
}

// FuncWidth returns the width of the FUNC field.
func (l Layout) FuncWidth(producers uint64) (int, error) {
	if l.Tagged(producers) {
		return l.TagWidth, nil
	}
	n, err := safecast.Conv[int](producers)
	if err != nil {
		return 0, err
	}
	return l.ColumnWidth * n, nil
}

// Prefix returns what precedes the nesting indentation of a producer's line.
func (l Layout) Prefix(producerID, producers uint64) (string, error) {
	if l.Tagged(producers) {
		return fmt.Sprintf("<%d> ", producerID), nil
	}
	if producerID == 0 {
		return "", nil
	}
	column, err := safecast.Conv[int](producerID - 1)
	if err != nil {
		return "", err
	}
	return strings.Repeat(" ", l.ColumnWidth*column), nil
}
