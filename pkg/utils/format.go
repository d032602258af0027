// pkg/utils/format.go
package utils

import (
	"strconv"
	"strings"
)

// FormatPrice renders a price with two decimals, the form the search surface
// indexes.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatID renders a record identifier as the string the search surface sees.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// SplitCSV splits a comma separated list, trims each token and drops empties.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
