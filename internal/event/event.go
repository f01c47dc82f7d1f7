package event

type (
	// Record is one function entry captured by a producer's trace buffer.
	Record struct {
		Timestamp    uint64
		ProducerID   uint64
		FunctionRef  uint64
		Args         [3]uint64
		StackPointer uint64
	}
)

// Empty reports whether the record is an unused buffer slot.
func (r Record) Empty() bool {
	return r.Timestamp == 0
}
