package util

import "iter"

type Stack[A any] struct {
	items []A
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) <= 0 {
		return ret, false
	}
	lastIndex := len(s.items) - 1
	defer func() {
		s.items = s.items[:lastIndex]
	}()
	return s.items[len(s.items)-1], true
}

func (s *Stack[A]) Peek() (ret A, ok bool) {
	if len(s.items) <= 0 {
		return ret, false
	}
	return s.items[len(s.items)-1], true
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}

// Above iterates from the bottom of the stack to the top, starting at index from
func (s *Stack[A]) Above(from int) iter.Seq2[int, A] {
	return func(yield func(int, A) bool) {
		for i := from; i < len(s.items); i++ {
			if !yield(i, s.items[i]) {
				return
			}
		}
	}
}

// FindFromTop returns the index of the topmost element satisfying pred, or -1
func (s *Stack[A]) FindFromTop(pred func(A) bool) int {
	for i := len(s.items) - 1; i >= 0; i-- {
		if pred(s.items[i]) {
			return i
		}
	}
	return -1
}

func (s *Stack[A]) At(i int) A {
	return s.items[i]
}
