package stackdepth

// Stack is a stack of stack pointer values. Values are only pushed to and
// popped from the tail.
type Stack struct {
	values []uint64
}

func (s *Stack) Push(v uint64) {
	s.values = append(s.values, v)
}

// Pop removes the top value. It returns false when the stack is empty.
func (s *Stack) Pop() (uint64, bool) {
	if len(s.values) == 0 {
		return 0, false
	}
	i := len(s.values) - 1
	v := s.values[i]
	s.values = s.values[:i]
	return v, true
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (uint64, bool) {
	if len(s.values) == 0 {
		return 0, false
	}
	return s.values[len(s.values)-1], true
}

func (s *Stack) Len() int {
	return len(s.values)
}
