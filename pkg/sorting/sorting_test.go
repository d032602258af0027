package sorting

import (
	"context"
	"math/rand"
	"strings"
	"testing"
)

func intCmp(a, b int) int { return a - b }

func TestSortAlgorithmsAgreeOnStrictTotalOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	input := make([]int, 500)
	seen := make(map[int]bool)
	for i := range input {
		// Distinct values so every algorithm must produce the same slice
		v := rng.Intn(1 << 20)
		for seen[v] {
			v = rng.Intn(1 << 20)
		}
		seen[v] = true
		input[i] = v
	}

	var want []int
	for _, algo := range Algorithms() {
		got, err := Sort(context.Background(), input, intCmp, algo)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", algo, err)
		}
		if len(got) != len(input) {
			t.Fatalf("%s: length changed: got %d want %d", algo, len(got), len(input))
		}
		for i := 1; i < len(got); i++ {
			if got[i-1] > got[i] {
				t.Fatalf("%s: out of order at %d: %d > %d", algo, i, got[i-1], got[i])
			}
		}
		if want == nil {
			want = got
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s: differs from %s at %d: %d vs %d", algo, Algorithms()[0], i, got[i], want[i])
			}
		}
	}
}

func TestSortKeepsMultiset(t *testing.T) {
	input := []int{5, 3, 5, 1, 3, 3, 9, 0, 5}
	for _, algo := range Algorithms() {
		got, err := Sort(context.Background(), input, intCmp, algo)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		counts := make(map[int]int)
		for _, v := range input {
			counts[v]++
		}
		for _, v := range got {
			counts[v]--
		}
		for v, c := range counts {
			if c != 0 {
				t.Fatalf("%s: multiset changed for value %d (delta %d)", algo, v, c)
			}
		}
	}
}

func TestSortIdempotent(t *testing.T) {
	input := []int{1, 2, 2, 3, 7, 7, 7, 10}
	for _, algo := range Algorithms() {
		got, err := Sort(context.Background(), input, intCmp, algo)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		for i, v := range input {
			if got[i] != v {
				t.Fatalf("%s: sorted input changed at %d: got %d want %d", algo, i, got[i], v)
			}
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	input := []int{3, 1, 2}
	for _, algo := range Algorithms() {
		if _, err := Sort(context.Background(), input, intCmp, algo); err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		if input[0] != 3 || input[1] != 1 || input[2] != 2 {
			t.Fatalf("%s: input mutated: %v", algo, input)
		}
	}
}

func TestMergeIsStable(t *testing.T) {
	type pair struct {
		key int
		seq int
	}
	input := []pair{{1, 0}, {0, 1}, {1, 2}, {0, 3}, {1, 4}, {0, 5}}
	got, err := Sort(context.Background(), input, func(a, b pair) int { return a.key - b.key }, Merge)
	if err != nil {
		t.Fatal(err)
	}
	lastSeq := -1
	for _, p := range got {
		if p.key != 0 {
			break
		}
		if p.seq < lastSeq {
			t.Fatalf("equal elements reordered: %v", got)
		}
		lastSeq = p.seq
	}
}

func TestSortEmptyAndSingle(t *testing.T) {
	for _, algo := range Algorithms() {
		got, err := Sort(context.Background(), []int{}, intCmp, algo)
		if err != nil || len(got) != 0 {
			t.Fatalf("%s: empty input: got %v, %v", algo, got, err)
		}
		got, err = Sort(context.Background(), []int{42}, intCmp, algo)
		if err != nil || len(got) != 1 || got[0] != 42 {
			t.Fatalf("%s: single input: got %v, %v", algo, got, err)
		}
	}
}

func TestSortCancellation(t *testing.T) {
	// Enough elements that every algorithm crosses a yield point
	input := make([]int, 5000)
	for i := range input {
		input[i] = len(input) - i
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, algo := range Algorithms() {
		if _, err := Sort(ctx, input, intCmp, algo); err == nil {
			t.Fatalf("%s: expected cancellation error", algo)
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, algo := range Algorithms() {
		got, err := ParseAlgorithm(string(algo))
		if err != nil || got != algo {
			t.Fatalf("ParseAlgorithm(%q) = %v, %v", algo, got, err)
		}
	}
	if _, err := ParseAlgorithm("bogo"); err == nil || !strings.Contains(err.Error(), "bogo") {
		t.Fatalf("expected error naming the selector, got %v", err)
	}
}
