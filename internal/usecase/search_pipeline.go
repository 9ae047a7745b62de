package usecase

import (
	"context"
	"sync"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
	"storefront-backend/pkg/utils"

	"github.com/rs/zerolog"
)

// SearchPipeline turns a stream of search-box inputs into lookups:
// short-circuit, debounce, dedupe, length filter, then cancel-and-switch.
//
// Only the most recently dispatched lookup may update the state. Every
// dispatch bumps generation and a finished lookup is applied only if the
// generation it captured is still current.
type SearchPipeline struct {
	lookup    domain.CustomerLookup
	debounce  time.Duration
	minLength int
	metrics   *metrics.SearchMetrics
	log       *zerolog.Logger

	mu        sync.Mutex
	state     domain.SearchState
	observers []domain.SearchObserver
	closed    bool

	timer    *time.Timer
	timerSeq uint64
	pending  string

	lastProcessed string
	hasProcessed  bool

	generation uint64
	cancel     context.CancelFunc
}

func NewSearchPipeline(lookup domain.CustomerLookup, debounce time.Duration, minLength int, m *metrics.SearchMetrics) *SearchPipeline {
	if debounce <= 0 {
		debounce = domain.DefaultSearchDebounce
	}
	if minLength <= 0 {
		minLength = domain.DefaultMinTermLength
	}
	return &SearchPipeline{
		lookup:    lookup,
		debounce:  debounce,
		minLength: minLength,
		metrics:   m,
		log:       logger.Get(),
		state:     domain.SearchState{Results: []string{}},
	}
}

// WithLogger replaces the logger used for lookup failures.
func (p *SearchPipeline) WithLogger(l *zerolog.Logger) *SearchPipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = l
	return p
}

// Subscribe registers an observer for state changes.
func (p *SearchPipeline) Subscribe(fn domain.SearchObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// OnInput accepts one raw input event. Terms below the minimum length clear
// the results right away; every term restarts the debounce window. Input
// after Close is ignored.
func (p *SearchPipeline) OnInput(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.metrics.IncInput()

	p.state.Term = term
	if p.tooShort(term) {
		p.state.Results = []string{}
		p.state.Loading = false
		p.state.Error = ""
		// A pending lookup must not repopulate the cleared box. Dedupe memory
		// is kept: only debounced terms update it.
		p.invalidateLocked()
	}
	p.notifyLocked()

	p.pending = term
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timerSeq++
	seq := p.timerSeq
	p.timer = time.AfterFunc(p.debounce, func() { p.flush(seq) })
}

// flush runs when the debounce window for timer seq has elapsed.
func (p *SearchPipeline) flush(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A newer input or Close superseded this timer after it had already fired.
	if p.closed || seq != p.timerSeq {
		return
	}
	p.timer = nil
	term := p.pending

	if p.hasProcessed && term == p.lastProcessed {
		p.metrics.IncDeduped()
		return
	}
	p.lastProcessed = term
	p.hasProcessed = true

	if p.tooShort(term) {
		return
	}

	p.invalidateLocked()
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	gen := p.generation

	p.state.Loading = true
	p.notifyLocked()
	p.metrics.IncDispatched()

	go p.run(ctx, cancel, gen, term)
}

func (p *SearchPipeline) run(ctx context.Context, cancel context.CancelFunc, gen uint64, term string) {
	defer cancel()

	start := time.Now()
	results, err := p.lookup.Search(ctx, term)
	elapsed := time.Since(start)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || gen != p.generation {
		p.metrics.ObserveLookup(metrics.OutcomeDiscarded, elapsed)
		return
	}
	p.cancel = nil

	if err != nil {
		p.metrics.ObserveLookup(metrics.OutcomeFailure, elapsed)
		p.log.Error().Err(err).Str("term", term).Msg("Customer search failed")
		p.state.Results = []string{}
		p.state.Error = err.Error()
	} else {
		p.metrics.ObserveLookup(metrics.OutcomeSuccess, elapsed)
		p.state.Results = cloneStrings(results)
		p.state.Error = ""
	}
	p.state.Loading = false
	p.notifyLocked()
}

// State returns a copy of the current search state.
func (p *SearchPipeline) State() domain.SearchState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Close stops the debounce timer, abandons any in-flight lookup and rejects
// further input. It is safe to call more than once.
func (p *SearchPipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.timerSeq++
	p.invalidateLocked()
	p.state.Loading = false
	p.observers = nil
}

// invalidateLocked makes any in-flight lookup stale and cancels its context.
func (p *SearchPipeline) invalidateLocked() {
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *SearchPipeline) tooShort(term string) bool {
	return utils.TrimmedLen(term) < p.minLength
}

func (p *SearchPipeline) notifyLocked() {
	if len(p.observers) == 0 {
		return
	}
	snapshot := p.snapshotLocked()
	for _, observe := range p.observers {
		observe(snapshot)
	}
}

func (p *SearchPipeline) snapshotLocked() domain.SearchState {
	s := p.state
	s.Results = cloneStrings(p.state.Results)
	return s
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
