// internal/usecase/browser.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/internal/domain/repository"
	"flightdeck-service/pkg/feed"
	"flightdeck-service/pkg/logger"
	"flightdeck-service/pkg/metrics"
	"flightdeck-service/pkg/searching"
	"flightdeck-service/pkg/sorting"
	"flightdeck-service/pkg/utils"

	"github.com/google/uuid"
)

func newSnapshotID() string {
	return uuid.NewString()
}

// Tuning are the live-adjustable pipeline knobs.
type Tuning struct {
	PageSize          int
	Debounce          time.Duration
	PrefetchThreshold int
	DateFormats       []string
	SnapshotLimit     int
	RunLogLimit       int
}

// DefaultTuning returns the reference values the pipeline starts with.
func DefaultTuning() Tuning {
	return Tuning{
		PageSize:          50,
		Debounce:          250 * time.Millisecond,
		PrefetchThreshold: 200,
		SnapshotLimit:     32,
		RunLogLimit:       256,
	}
}

func (t Tuning) normalized() Tuning {
	if t.PageSize <= 0 {
		t.PageSize = DefaultTuning().PageSize
	}
	if t.Debounce <= 0 {
		t.Debounce = DefaultTuning().Debounce
	}
	if t.PrefetchThreshold < 0 {
		t.PrefetchThreshold = 0
	}
	if t.SnapshotLimit <= 0 {
		t.SnapshotLimit = DefaultTuning().SnapshotLimit
	}
	if t.RunLogLimit <= 0 {
		t.RunLogLimit = DefaultTuning().RunLogLimit
	}
	return t
}

// State is a consistent view of pagination and loading, for the API surface.
type State struct {
	Accumulated    int      `json:"accumulated"`
	VisibleCount   int      `json:"visibleCount"`
	Total          int64    `json:"total"`
	NextOffset     int      `json:"nextOffset"`
	HasMore        bool     `json:"hasMore"`
	Fetching       bool     `json:"fetching"`
	InitialLoading bool     `json:"initialLoading"`
	BulkLoading    bool     `json:"bulkLoading"`
	BulkProgress   *float64 `json:"bulkProgress,omitempty"`
	CriteriaError  string   `json:"criteriaError,omitempty"`
}

// Browser is the coordinating context of the browsing pipeline. All shared
// state lives inside its run loop; public methods enqueue commands onto that
// loop and background tasks commit their results the same way, so no two
// results ever interleave their writes. Recomputes carry a generation token:
// only the last-started computation may publish, stale ones drop their
// output silently.
type Browser struct {
	store   repository.FlightStore
	parser  repository.CriteriaParser
	history repository.RunHistory
	hub     *feed.Hub
	metrics *metrics.Metrics
	log     logger.Logger

	cmds chan func()
	quit chan struct{}
	wg   sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
	closeOnce  sync.Once

	// Everything below is owned by the run loop.
	tuning   Tuning
	flights  []entity.Flight
	visible  []entity.Flight
	criteria entity.QueryCriteria

	searchField entity.SearchField
	searchAlgo  searching.Algorithm

	offset         int
	total          int64
	hasMore        bool
	fetching       bool
	initialLoading bool
	bulkLoading    bool

	generation      uint64
	cancelRecompute context.CancelFunc

	debounce     *time.Timer
	pendingQuery string

	sortRuns      []entity.SortRun
	searchRuns    []entity.SearchRun
	nextSortRun   int64
	nextSearchRun int64

	snapshots   []entity.CriteriaSnapshot
	criteriaErr string

	newSnapshotID func() string
	now           func() time.Time
}

// NewBrowser wires a browser over its collaborators and starts the run loop.
// Callers own the collaborators' lifecycles; Close only stops the loop.
func NewBrowser(store repository.FlightStore, parser repository.CriteriaParser, history repository.RunHistory, hub *feed.Hub, m *metrics.Metrics, log logger.Logger, tuning Tuning) *Browser {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Browser{
		store:         store,
		parser:        parser,
		history:       history,
		hub:           hub,
		metrics:       m,
		log:           log,
		cmds:          make(chan func(), 64),
		quit:          make(chan struct{}),
		rootCtx:       ctx,
		rootCancel:    cancel,
		tuning:        tuning.normalized(),
		criteria:      entity.DefaultCriteria(),
		searchField:   entity.FieldOrigin,
		searchAlgo:    searching.Linear,
		hasMore:       true,
		newSnapshotID: newSnapshotID,
		now:           time.Now,
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *Browser) run() {
	defer b.wg.Done()
	for {
		select {
		case fn := <-b.cmds:
			fn()
		case <-b.quit:
			return
		}
	}
}

// do enqueues fn for the run loop. After Close it is a no-op.
func (b *Browser) do(fn func()) {
	select {
	case b.cmds <- fn:
	case <-b.quit:
	}
}

// Close cancels in-flight work and stops the run loop. Pending debounce
// timers firing afterwards are silently dropped.
func (b *Browser) Close() {
	b.closeOnce.Do(func() {
		b.rootCancel()
		close(b.quit)
		b.wg.Wait()
	})
}

// ---- pagination ----

// Load resets the session and fetches the first page.
func (b *Browser) Load() {
	b.do(func() {
		b.flights = nil
		b.visible = nil
		b.offset = 0
		b.total = 0
		b.hasMore = true
		b.bulkLoading = false
		b.initialLoading = true
		b.metrics.RecordsAccumulated.Set(0)
		b.publish(feed.KindLoading, true)
		b.publishVisible()
		b.startFetch()
	})
}

// LoadMoreIfNeeded triggers the next page fetch when the anchor record sits
// near the end of the visible list. An empty visible list always triggers.
func (b *Browser) LoadMoreIfNeeded(anchor entity.Flight) {
	const window = 5
	b.do(func() {
		if len(b.visible) == 0 {
			b.startFetch()
			return
		}
		tail := b.visible
		if len(tail) > window {
			tail = tail[len(tail)-window:]
		}
		for _, f := range tail {
			if f.ID == anchor.ID {
				b.startFetch()
				return
			}
		}
	})
}

// LoadAll keeps fetching pages until the store is exhausted, reporting a
// progress fraction after each page.
func (b *Browser) LoadAll() {
	b.do(func() {
		if !b.hasMore {
			return
		}
		b.bulkLoading = true
		b.publishProgress()
		b.startFetch()
	})
}

// startFetch launches one background page fetch. A fetch already in flight
// or an exhausted store makes it a no-op, which is what serializes paging.
func (b *Browser) startFetch() {
	if b.fetching || !b.hasMore {
		return
	}
	b.fetching = true
	offset := b.offset
	limit := b.tuning.PageSize
	needCount := b.total == 0
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		page, requested, total, err := b.fetchPage(b.rootCtx, offset, limit, needCount)
		b.do(func() { b.commitPage(page, requested, limit, total, needCount, err) })
	}()
}

// fetchPage pulls one page of identifiers, rehydrates the records and
// restores the identifier order, which the store does not guarantee after a
// batch fetch.
func (b *Browser) fetchPage(ctx context.Context, offset, limit int, needCount bool) ([]entity.Flight, int, int64, error) {
	var total int64
	if needCount {
		var err error
		total, err = b.store.Count(ctx)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to count records: %w", err)
		}
	}
	ids, err := b.store.PageIDs(ctx, offset, limit)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to fetch page at offset %d: %w", offset, err)
	}
	if len(ids) == 0 {
		return nil, 0, total, nil
	}
	records, err := b.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to rehydrate %d records: %w", len(ids), err)
	}
	rank := make(map[int64]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	ordered := make([]entity.Flight, len(ids))
	present := 0
	for _, r := range records {
		if pos, ok := rank[r.ID]; ok {
			ordered[pos] = r
			present++
		}
	}
	if present != len(ids) {
		// A record deleted between the two queries leaves a hole; compact.
		compact := make([]entity.Flight, 0, present)
		for _, r := range ordered {
			if r.ID != 0 {
				compact = append(compact, r)
			}
		}
		ordered = compact
	}
	return ordered, len(ids), total, nil
}

func (b *Browser) commitPage(page []entity.Flight, requested, limit int, total int64, counted bool, err error) {
	b.fetching = false
	b.initialLoading = false
	b.publish(feed.KindLoading, false)
	if err != nil {
		b.log.Error("page load failed", "offset", b.offset, "error", err)
		b.metrics.PageLoadFailures.Inc()
		b.metrics.ErrorsCount.WithLabelValues("page_load").Inc()
		b.hasMore = false
		b.bulkLoading = false
		b.publish(feed.KindStoreError, err.Error())
		b.publishProgress()
		return
	}
	if counted {
		b.total = total
	}
	b.offset += requested
	// Compared against the limit the fetch was launched with, not the
	// current page size: a tuning change mid-fetch must not end pagination.
	b.hasMore = requested == limit
	b.flights = append(b.flights, page...)
	b.metrics.PagesLoaded.Inc()
	b.metrics.RecordsAccumulated.Set(float64(len(b.flights)))
	if b.bulkLoading {
		b.publishProgress()
		if b.hasMore {
			b.startFetch()
		} else {
			b.bulkLoading = false
			b.publishProgress()
		}
	}
	b.startRecompute()
}

// ---- criteria and recompute ----

// SetQuery updates the free-text query after the debounce window; only the
// last value inside the window wins.
func (b *Browser) SetQuery(query string) {
	b.do(func() {
		b.pendingQuery = query
		if b.debounce != nil {
			b.debounce.Stop()
		}
		b.debounce = time.AfterFunc(b.tuning.Debounce, func() {
			b.do(func() {
				b.criteria.Query = b.pendingQuery
				b.publishCriteria()
				b.startRecompute()
			})
		})
	})
}

// editCriteria applies one structural change; those recompute immediately.
func (b *Browser) editCriteria(mutate func(*entity.QueryCriteria)) {
	b.do(func() {
		mutate(&b.criteria)
		b.publishCriteria()
		b.startRecompute()
	})
}

func (b *Browser) SetMinPrice(v *float64) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.MinPrice = v })
}

func (b *Browser) SetMaxPrice(v *float64) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.MaxPrice = v })
}

func (b *Browser) SetOriginFilter(v string) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.OriginFilter = v })
}

func (b *Browser) SetDestinationFilter(v string) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.DestinationFilter = v })
}

func (b *Browser) SetDateFrom(v *time.Time) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.DateFrom = v })
}

func (b *Browser) SetDateTo(v *time.Time) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.DateTo = v })
}

func (b *Browser) SetSortKey(k entity.SortKey) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.SortKey = k })
}

func (b *Browser) SetSortOrder(o entity.SortOrder) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.SortOrder = o })
}

func (b *Browser) SetSortAlgorithm(a sorting.Algorithm) {
	b.editCriteria(func(c *entity.QueryCriteria) { c.SortAlgorithm = a })
}

// SetSearchField selects the record value keyed searches read.
func (b *Browser) SetSearchField(f entity.SearchField) {
	b.do(func() { b.searchField = f })
}

// SetSearchAlgorithm selects the strategy ExecuteSearch uses.
func (b *Browser) SetSearchAlgorithm(a searching.Algorithm) {
	b.do(func() { b.searchAlgo = a })
}

// ApplyTuning swaps the pipeline knobs; the next debounce, fetch and
// recompute pick them up.
func (b *Browser) ApplyTuning(t Tuning) {
	b.do(func() { b.tuning = t.normalized() })
}

// startRecompute supersedes any in-flight recompute and derives a fresh
// visible list from a snapshot of the accumulated records and criteria.
func (b *Browser) startRecompute() {
	b.generation++
	gen := b.generation
	if b.cancelRecompute != nil {
		b.cancelRecompute()
		b.cancelRecompute = nil
	}
	b.metrics.Recomputes.Inc()
	criteria := b.criteria
	snapshot := b.flights

	if fastPath(criteria) {
		// Store page order is already date ascending; see fastPath about
		// tie-break divergence.
		b.visible = snapshot
		b.publishVisible()
		b.afterPublish()
		return
	}

	dates := utils.NewDateParser(b.tuning.DateFormats)
	ctx, cancel := context.WithCancel(b.rootCtx)
	b.cancelRecompute = cancel
	started := time.Now()
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()
		visible, run, err := recompute(ctx, snapshot, criteria, dates)
		b.do(func() {
			if gen != b.generation {
				b.metrics.RecomputesSuperseded.Inc()
				return
			}
			b.cancelRecompute = nil
			if err != nil {
				// Cancellation of the newest generation only happens on
				// shutdown; either way nothing is published.
				b.metrics.RecomputesSuperseded.Inc()
				return
			}
			b.metrics.RecomputeTime.Observe(time.Since(started).Seconds())
			b.metrics.SortTime.WithLabelValues(string(run.Algorithm)).Observe(run.Elapsed)
			b.visible = visible
			b.nextSortRun++
			run.ID = b.nextSortRun
			b.appendSortRun(*run)
			b.publishVisible()
			b.afterPublish()
		})
	}()
}

// afterPublish re-triggers paging: an empty result with pages remaining may
// just mean the matching records have not been paged in yet, and an idle
// session below the prefetch threshold loads opportunistically.
func (b *Browser) afterPublish() {
	if !b.hasMore {
		return
	}
	if len(b.visible) == 0 {
		b.startFetch()
		return
	}
	if strings.TrimSpace(b.criteria.Query) == "" && len(b.flights) < b.tuning.PrefetchThreshold {
		b.startFetch()
	}
}

func (b *Browser) appendSortRun(run entity.SortRun) {
	b.sortRuns = append(b.sortRuns, run)
	if n := b.tuning.RunLogLimit; len(b.sortRuns) > n {
		b.sortRuns = b.sortRuns[len(b.sortRuns)-n:]
	}
	b.history.AppendSortRun(run)
	b.publish(feed.KindSortRun, run)
}

func (b *Browser) appendSearchRun(run entity.SearchRun) {
	b.searchRuns = append(b.searchRuns, run)
	if n := b.tuning.RunLogLimit; len(b.searchRuns) > n {
		b.searchRuns = b.searchRuns[len(b.searchRuns)-n:]
	}
	b.history.AppendSearchRun(run)
	b.metrics.SearchTime.WithLabelValues(string(run.Algorithm)).Observe(run.Elapsed)
	b.publish(feed.KindSearchRun, run)
}

// ---- keyed search ----

// ExecuteSearch runs one keyed search with the selected field and algorithm
// against the full accumulated set. It never touches the visible list.
func (b *Browser) ExecuteSearch(ctx context.Context, query string) ([]entity.Flight, entity.SearchRun, error) {
	snapshot, field, algo := b.searchSnapshot()
	matches, run, err := runSearch(ctx, snapshot, query, field, algo)
	if err != nil {
		return nil, entity.SearchRun{}, err
	}
	return matches, b.commitSearchRun(run), nil
}

// RunAllSearchBenchmarks runs the same query through every search algorithm
// and returns the recorded runs in algorithm order.
func (b *Browser) RunAllSearchBenchmarks(ctx context.Context, query string) ([]entity.SearchRun, error) {
	snapshot, field, _ := b.searchSnapshot()
	runs := make([]entity.SearchRun, 0, len(searching.Algorithms()))
	for _, algo := range searching.Algorithms() {
		_, run, err := runSearch(ctx, snapshot, query, field, algo)
		if err != nil {
			return nil, err
		}
		runs = append(runs, b.commitSearchRun(run))
	}
	return runs, nil
}

func (b *Browser) searchSnapshot() ([]entity.Flight, entity.SearchField, searching.Algorithm) {
	type snap struct {
		flights []entity.Flight
		field   entity.SearchField
		algo    searching.Algorithm
	}
	out := make(chan snap, 1)
	b.do(func() { out <- snap{b.flights, b.searchField, b.searchAlgo} })
	select {
	case s := <-out:
		return s.flights, s.field, s.algo
	case <-b.quit:
		return nil, entity.FieldOrigin, searching.Linear
	}
}

func (b *Browser) commitSearchRun(run entity.SearchRun) entity.SearchRun {
	out := make(chan entity.SearchRun, 1)
	b.do(func() {
		b.nextSearchRun++
		run.ID = b.nextSearchRun
		b.appendSearchRun(run)
		out <- run
	})
	select {
	case r := <-out:
		return r
	case <-b.quit:
		return run
	}
}

// ---- external criteria parser ----

// ApplyParsedCriteria hands free text to the external parser collaborator
// and applies the resulting patch on top of the current criteria. The
// previous criteria are pushed onto the rollback stack first. A parser
// failure leaves criteria untouched and surfaces a recoverable state.
func (b *Browser) ApplyParsedCriteria(ctx context.Context, text string) error {
	patch, err := b.parser.Parse(ctx, text)
	if err != nil {
		b.log.Warn("criteria parse failed", "error", err)
		b.metrics.ErrorsCount.WithLabelValues("criteria_parse").Inc()
		b.do(func() {
			b.criteriaErr = err.Error()
			b.publish(feed.KindCriteriaError, err.Error())
		})
		return fmt.Errorf("failed to parse criteria: %w", err)
	}
	b.do(func() {
		b.pushSnapshot()
		applyPatch(&b.criteria, patch)
		b.criteriaErr = ""
		b.publishCriteria()
		b.startRecompute()
	})
	return nil
}

// RestorePreviousCriteria rolls back to the most recent snapshot, if any.
func (b *Browser) RestorePreviousCriteria() {
	b.do(func() {
		if len(b.snapshots) == 0 {
			return
		}
		last := b.snapshots[len(b.snapshots)-1]
		b.snapshots = b.snapshots[:len(b.snapshots)-1]
		b.criteria = last.Criteria
		b.criteriaErr = ""
		b.publishCriteria()
		b.startRecompute()
	})
}

func (b *Browser) pushSnapshot() {
	b.snapshots = append(b.snapshots, entity.CriteriaSnapshot{
		ID:       b.newSnapshotID(),
		TakenAt:  b.now(),
		Criteria: b.criteria,
	})
	if n := b.tuning.SnapshotLimit; len(b.snapshots) > n {
		b.snapshots = b.snapshots[len(b.snapshots)-n:]
	}
}

func applyPatch(c *entity.QueryCriteria, p *entity.CriteriaPatch) {
	if p == nil {
		return
	}
	if p.Query != nil {
		c.Query = *p.Query
	}
	if p.MinPrice != nil {
		c.MinPrice = p.MinPrice
	}
	if p.MaxPrice != nil {
		c.MaxPrice = p.MaxPrice
	}
	if p.OriginFilter != nil {
		c.OriginFilter = *p.OriginFilter
	}
	if p.DestinationFilter != nil {
		c.DestinationFilter = *p.DestinationFilter
	}
	if p.DateFrom != nil {
		c.DateFrom = p.DateFrom
	}
	if p.DateTo != nil {
		c.DateTo = p.DateTo
	}
	if p.SortKey != nil {
		c.SortKey = *p.SortKey
	}
	if p.SortOrder != nil {
		c.SortOrder = *p.SortOrder
	}
	if p.SortAlgorithm != nil {
		c.SortAlgorithm = *p.SortAlgorithm
	}
}

// ---- observable surface ----

// Visible returns a copy of the current visible list.
func (b *Browser) Visible() []entity.Flight {
	out := make(chan []entity.Flight, 1)
	b.do(func() {
		cp := make([]entity.Flight, len(b.visible))
		copy(cp, b.visible)
		out <- cp
	})
	select {
	case v := <-out:
		return v
	case <-b.quit:
		return nil
	}
}

// Tuning returns the knobs as the run loop currently sees them.
func (b *Browser) Tuning() Tuning {
	out := make(chan Tuning, 1)
	b.do(func() { out <- b.tuning })
	select {
	case t := <-out:
		return t
	case <-b.quit:
		return DefaultTuning()
	}
}

// Criteria returns the criteria as the run loop currently sees them.
func (b *Browser) Criteria() entity.QueryCriteria {
	out := make(chan entity.QueryCriteria, 1)
	b.do(func() { out <- b.criteria })
	select {
	case c := <-out:
		return c
	case <-b.quit:
		return entity.QueryCriteria{}
	}
}

// State returns a consistent snapshot of pagination and loading flags.
func (b *Browser) State() State {
	out := make(chan State, 1)
	b.do(func() { out <- b.stateLocked() })
	select {
	case s := <-out:
		return s
	case <-b.quit:
		return State{}
	}
}

func (b *Browser) stateLocked() State {
	s := State{
		Accumulated:    len(b.flights),
		VisibleCount:   len(b.visible),
		Total:          b.total,
		NextOffset:     b.offset,
		HasMore:        b.hasMore,
		Fetching:       b.fetching,
		InitialLoading: b.initialLoading,
		BulkLoading:    b.bulkLoading,
		CriteriaError:  b.criteriaErr,
	}
	if b.bulkLoading && b.total > 0 {
		p := float64(len(b.flights)) / float64(b.total)
		if p > 1 {
			p = 1
		}
		s.BulkProgress = &p
	}
	return s
}

// SortRuns returns the in-memory sort run log, newest last.
func (b *Browser) SortRuns() []entity.SortRun {
	out := make(chan []entity.SortRun, 1)
	b.do(func() {
		cp := make([]entity.SortRun, len(b.sortRuns))
		copy(cp, b.sortRuns)
		out <- cp
	})
	select {
	case r := <-out:
		return r
	case <-b.quit:
		return nil
	}
}

// SearchRuns returns the in-memory search run log, newest last.
func (b *Browser) SearchRuns() []entity.SearchRun {
	out := make(chan []entity.SearchRun, 1)
	b.do(func() {
		cp := make([]entity.SearchRun, len(b.searchRuns))
		copy(cp, b.searchRuns)
		out <- cp
	})
	select {
	case r := <-out:
		return r
	case <-b.quit:
		return nil
	}
}

// CriteriaHistory returns the rollback stack, oldest first.
func (b *Browser) CriteriaHistory() []entity.CriteriaSnapshot {
	out := make(chan []entity.CriteriaSnapshot, 1)
	b.do(func() {
		cp := make([]entity.CriteriaSnapshot, len(b.snapshots))
		copy(cp, b.snapshots)
		out <- cp
	})
	select {
	case s := <-out:
		return s
	case <-b.quit:
		return nil
	}
}

func (b *Browser) publish(kind feed.EventKind, payload any) {
	b.hub.Publish(feed.Event{Kind: kind, Payload: payload})
}

func (b *Browser) publishVisible() {
	b.publish(feed.KindVisible, map[string]int{"count": len(b.visible)})
}

func (b *Browser) publishCriteria() {
	b.publish(feed.KindCriteria, b.criteria)
}

func (b *Browser) publishProgress() {
	b.publish(feed.KindProgress, b.stateLocked().BulkProgress)
}
