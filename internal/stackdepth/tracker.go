package stackdepth

// Tracker infers the call depth of one producer from the stack pointer it
// recorded with each event. Stacks grow down: a lower stack pointer than the
// current frame is a nested call, a higher one means frames have returned.
type Tracker struct {
	frames Stack
}

// Update consumes the next stack pointer observed for the producer.
func (t *Tracker) Update(sp uint64) {
	top, ok := t.frames.Peek()
	if sp == 0 || !ok || sp < top {
		t.frames.Push(sp)
		return
	}
	for ok && top < sp {
		t.frames.Pop()
		top, ok = t.frames.Peek()
	}
}

// Level returns the nesting depth, 0 being the first frame seen. It returns -1
// once every frame has been popped and until the next push.
func (t *Tracker) Level() int {
	return t.frames.Len() - 1
}

// Indent returns the depth to use for display, never negative.
func (t *Tracker) Indent() int {
	if l := t.Level(); l > 0 {
		return l
	}
	return 0
}

// Trackers holds one Tracker per producer for the duration of a report.
type Trackers map[uint64]*Tracker

// For returns the tracker of a producer, creating it on first use.
func (ts Trackers) For(producerID uint64) *Tracker {
	t, exists := ts[producerID]
	if !exists {
		t = &Tracker{}
		ts[producerID] = t
	}
	return t
}
