// pkg/searching/searching.go
package searching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Algorithm selects which lookup strategy a run uses.
type Algorithm string

const (
	Linear Algorithm = "linear"
	Binary Algorithm = "binary"
	Hash   Algorithm = "hash"
)

// Algorithms lists every selector in presentation order.
func Algorithms() []Algorithm {
	return []Algorithm{Linear, Binary, Hash}
}

// ParseAlgorithm validates a selector coming from config or an API request.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case Linear, Binary, Hash:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("unknown search algorithm %q", s)
}

const checkEvery = 1024

// Fold case-folds s for case-insensitive matching.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Search runs the selected strategy over items, reading the searched value of
// each item through access. Linear and Binary match folded substrings; Hash
// matches whole folded values. A cancelled context aborts with ctx.Err().
func Search[T any](ctx context.Context, items []T, query string, access func(T) string, algorithm Algorithm) ([]T, error) {
	switch algorithm {
	case Linear:
		return linearSearch(ctx, items, query, access)
	case Binary:
		return binarySearch(ctx, items, query, access)
	case Hash:
		return hashSearch(ctx, items, query, access)
	default:
		return nil, fmt.Errorf("unknown search algorithm %q", algorithm)
	}
}

func linearSearch[T any](ctx context.Context, items []T, query string, access func(T) string) ([]T, error) {
	q := Fold(query)
	var matches []T
	for i, it := range items {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if strings.Contains(Fold(access(it)), q) {
			matches = append(matches, it)
		}
	}
	return matches, nil
}

// binarySearch orders (index, value) pairs by folded value, narrows on the
// midpoint treating "contains query" as a hit, then expands the hit in both
// directions while neighbours still contain the query. Substring matches that
// are not contiguous with the probe in that ordering are missed; the strategy
// is benchmarked as-is rather than padded out to full substring semantics.
func binarySearch[T any](ctx context.Context, items []T, query string, access func(T) string) ([]T, error) {
	q := Fold(query)
	type entry struct {
		idx int
		val string
	}
	entries := make([]entry, len(items))
	for i, it := range items {
		entries[i] = entry{idx: i, val: Fold(access(it))}
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].val != entries[b].val {
			return entries[a].val < entries[b].val
		}
		return entries[a].idx < entries[b].idx
	})

	lo, hi := 0, len(entries)-1
	found := -1
	for lo <= hi {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mid := (lo + hi) / 2
		v := entries[mid].val
		if v == q || strings.Contains(v, q) {
			found = mid
			break
		}
		if v < q {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if found < 0 {
		return nil, nil
	}

	start, end := found, found
	for start > 0 && strings.Contains(entries[start-1].val, q) {
		start--
	}
	for end < len(entries)-1 && strings.Contains(entries[end+1].val, q) {
		end++
	}
	matches := make([]T, 0, end-start+1)
	for _, e := range entries[start : end+1] {
		matches = append(matches, items[e.idx])
	}
	return matches, nil
}

// hashSearch groups item indexes by folded value and answers with the bucket
// for the folded query, so matches keep their input order.
func hashSearch[T any](ctx context.Context, items []T, query string, access func(T) string) ([]T, error) {
	buckets := make(map[string][]int, len(items))
	for i, it := range items {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		key := Fold(access(it))
		buckets[key] = append(buckets[key], i)
	}
	bucket := buckets[Fold(query)]
	if len(bucket) == 0 {
		return nil, nil
	}
	matches := make([]T, 0, len(bucket))
	for _, i := range bucket {
		matches = append(matches, items[i])
	}
	return matches, nil
}
