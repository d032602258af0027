// pkg/utils/dateparser.go
package utils

import (
	"strings"
	"sync"
	"time"
)

// DateFormats are the accepted departure date layouts, tried in order. The
// day/month slash and dash pairs are ambiguous for low day numbers; the first
// layout that parses wins.
var DateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

type dateOutcome struct {
	t  time.Time
	ok bool
}

// DateParser resolves free-form date strings against a fixed layout list and
// memoizes every outcome, failures included. Each recompute pass builds its
// own parser so the cache never outlives the snapshot it served.
type DateParser struct {
	mu      sync.Mutex
	layouts []string
	cache   map[string]dateOutcome
}

// NewDateParser returns a parser over the given layouts; an empty list means
// DateFormats.
func NewDateParser(layouts []string) *DateParser {
	if len(layouts) == 0 {
		layouts = DateFormats
	}
	return &DateParser{
		layouts: layouts,
		cache:   make(map[string]dateOutcome),
	}
}

// Parse resolves raw to an instant. ok is false when no layout accepts it.
func (p *DateParser) Parse(raw string) (time.Time, bool) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return time.Time{}, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if out, hit := p.cache[key]; hit {
		return out.t, out.ok
	}
	var out dateOutcome
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, key); err == nil {
			out = dateOutcome{t: t, ok: true}
			break
		}
	}
	p.cache[key] = out
	return out.t, out.ok
}

// CacheSize reports how many distinct strings have been resolved so far.
func (p *DateParser) CacheSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}
