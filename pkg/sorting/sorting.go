// pkg/sorting/sorting.go
package sorting

import (
	"context"
	"fmt"
	"runtime"
)

// Algorithm selects which sort implementation a run uses.
type Algorithm string

const (
	Bubble    Algorithm = "bubble"
	Selection Algorithm = "selection"
	Insertion Algorithm = "insertion"
	Quick     Algorithm = "quick"
	Merge     Algorithm = "merge"
)

// Algorithms lists every selector in presentation order.
func Algorithms() []Algorithm {
	return []Algorithm{Bubble, Selection, Insertion, Quick, Merge}
}

// ParseAlgorithm validates a selector coming from config or an API request.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case Bubble, Selection, Insertion, Quick, Merge:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("unknown sort algorithm %q", s)
}

// yieldEvery is how many comparisons run between scheduler yields. Yield
// points double as cancellation checks and never affect ordering.
const yieldEvery = 2048

// Sort returns a sorted copy of items using the selected algorithm. Every
// algorithm applies cmp identically, so for one comparator they all produce
// the same ordering; Merge additionally keeps equal elements in input order.
// A cancelled context aborts the run with ctx.Err().
func Sort[T any](ctx context.Context, items []T, cmp func(a, b T) int, algorithm Algorithm) ([]T, error) {
	out := make([]T, len(items))
	copy(out, items)
	s := &sorter[T]{ctx: ctx, cmp: cmp}
	var err error
	switch algorithm {
	case Bubble:
		err = s.bubble(out)
	case Selection:
		err = s.selection(out)
	case Insertion:
		err = s.insertion(out)
	case Quick:
		err = s.quick(out, 0, len(out)-1)
	case Merge:
		out, err = s.merge(out)
	default:
		return nil, fmt.Errorf("unknown sort algorithm %q", algorithm)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

type sorter[T any] struct {
	ctx   context.Context
	cmp   func(a, b T) int
	steps int
}

func (s *sorter[T]) compare(a, b T) (int, error) {
	s.steps++
	if s.steps%yieldEvery == 0 {
		if err := s.ctx.Err(); err != nil {
			return 0, err
		}
		runtime.Gosched()
	}
	return s.cmp(a, b), nil
}

// bubble stops early on a pass with no swaps.
func (s *sorter[T]) bubble(a []T) error {
	n := len(a)
	for i := 0; i < n-1; i++ {
		swapped := false
		for j := 0; j < n-1-i; j++ {
			c, err := s.compare(a[j], a[j+1])
			if err != nil {
				return err
			}
			if c > 0 {
				a[j], a[j+1] = a[j+1], a[j]
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}
	return nil
}

func (s *sorter[T]) selection(a []T) error {
	n := len(a)
	for i := 0; i < n-1; i++ {
		min := i
		for j := i + 1; j < n; j++ {
			c, err := s.compare(a[j], a[min])
			if err != nil {
				return err
			}
			if c < 0 {
				min = j
			}
		}
		if min != i {
			a[i], a[min] = a[min], a[i]
		}
	}
	return nil
}

func (s *sorter[T]) insertion(a []T) error {
	for i := 1; i < len(a); i++ {
		key := a[i]
		j := i - 1
		for j >= 0 {
			c, err := s.compare(a[j], key)
			if err != nil {
				return err
			}
			if c <= 0 {
				break
			}
			a[j+1] = a[j]
			j--
		}
		a[j+1] = key
	}
	return nil
}

// quick partitions Lomuto-style around the last element: strictly smaller
// values move left of the pivot, then both sides recurse.
func (s *sorter[T]) quick(a []T, lo, hi int) error {
	if lo >= hi {
		return nil
	}
	pivot := a[hi]
	i := lo
	for j := lo; j < hi; j++ {
		c, err := s.compare(a[j], pivot)
		if err != nil {
			return err
		}
		if c < 0 {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	if err := s.quick(a, lo, i-1); err != nil {
		return err
	}
	return s.quick(a, i+1, hi)
}

// merge splits at the midpoint and prefers the left half on ties, which is
// what keeps it stable.
func (s *sorter[T]) merge(a []T) ([]T, error) {
	if len(a) <= 1 {
		return a, nil
	}
	mid := len(a) / 2
	left, err := s.merge(a[:mid])
	if err != nil {
		return nil, err
	}
	right, err := s.merge(a[mid:])
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(a))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		c, err := s.compare(left[i], right[j])
		if err != nil {
			return nil, err
		}
		if c <= 0 {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out, nil
}
