package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 30 * time.Millisecond

// stubLookup records every term it is asked for. Terms registered with hold
// block until released, ignoring cancellation like a network call would.
type stubLookup struct {
	mu    sync.Mutex
	calls []string
	held  map[string]chan struct{}
	fail  map[string]error
}

func newStubLookup() *stubLookup {
	return &stubLookup{
		held: map[string]chan struct{}{},
		fail: map[string]error{},
	}
}

func (l *stubLookup) hold(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[term] = make(chan struct{})
}

func (l *stubLookup) release(term string) {
	l.mu.Lock()
	ch := l.held[term]
	delete(l.held, term)
	l.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

func (l *stubLookup) releaseAll() {
	l.mu.Lock()
	terms := make([]string, 0, len(l.held))
	for term := range l.held {
		terms = append(terms, term)
	}
	l.mu.Unlock()
	for _, term := range terms {
		l.release(term)
	}
}

func (l *stubLookup) Search(ctx context.Context, term string) ([]string, error) {
	l.mu.Lock()
	l.calls = append(l.calls, term)
	ch := l.held[term]
	err := l.fail[term]
	l.mu.Unlock()

	if ch != nil {
		<-ch
	}
	if err != nil {
		return nil, err
	}
	return []string{term + " Company", term + " Corp"}, nil
}

func (l *stubLookup) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func newTestPipeline(t *testing.T, lookup domain.CustomerLookup) *SearchPipeline {
	t.Helper()
	p := NewSearchPipeline(lookup, testDebounce, 3, nil)
	t.Cleanup(p.Close)
	return p
}

func waitForCalls(t *testing.T, l *stubLookup, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(l.Calls()) >= n }, 2*time.Second, 5*time.Millisecond)
}

func waitForResults(t *testing.T, p *SearchPipeline, want []string) {
	t.Helper()
	require.Eventually(t, func() bool {
		s := p.State()
		return !s.Loading && assert.ObjectsAreEqual(want, s.Results)
	}, 2*time.Second, 5*time.Millisecond, "last state: %+v", p.State())
}

// settle waits long enough for any pending debounce window to fire.
func settle() {
	time.Sleep(4 * testDebounce)
}

func TestPipelineInitialState(t *testing.T) {
	p := newTestPipeline(t, newStubLookup())

	s := p.State()
	assert.Equal(t, "", s.Term)
	assert.Equal(t, []string{}, s.Results)
	assert.False(t, s.Loading)
}

func TestPipelineShortTermClearsSynchronously(t *testing.T) {
	lookup := newStubLookup()
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	waitForResults(t, p, []string{"acme Company", "acme Corp"})

	for _, term := range []string{"ac", "", "  a  ", "ab "} {
		p.OnInput(term)
		s := p.State()
		assert.Equal(t, term, s.Term)
		assert.Equal(t, []string{}, s.Results, "term %q", term)
		assert.False(t, s.Loading, "term %q", term)
	}

	settle()
	assert.Equal(t, []string{"acme"}, lookup.Calls())
}

func TestPipelineDebouncesBursts(t *testing.T) {
	lookup := newStubLookup()
	p := newTestPipeline(t, lookup)

	for _, term := range []string{"acm", "acme", "acme c", "acme co"} {
		p.OnInput(term)
	}
	assert.Empty(t, lookup.Calls(), "nothing may dispatch inside the debounce window")

	waitForResults(t, p, []string{"acme co Company", "acme co Corp"})
	settle()
	assert.Equal(t, []string{"acme co"}, lookup.Calls())
}

func TestPipelineEachQuietPeriodDispatches(t *testing.T) {
	lookup := newStubLookup()
	p := newTestPipeline(t, lookup)

	p.OnInput("abc")
	waitForCalls(t, lookup, 1)
	p.OnInput("abcd")
	waitForCalls(t, lookup, 2)

	assert.Equal(t, []string{"abc", "abcd"}, lookup.Calls())
}

func TestPipelineDedupesConsecutiveEqualTerms(t *testing.T) {
	lookup := newStubLookup()
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	waitForResults(t, p, []string{"acme Company", "acme Corp"})

	p.OnInput("acme")
	settle()

	// Typing away and back within one window debounces to the same term.
	p.OnInput("acmex")
	p.OnInput("acme")
	settle()

	assert.Equal(t, []string{"acme"}, lookup.Calls())
}

func TestPipelineShortTermInsideBurstKeepsDedupe(t *testing.T) {
	lookup := newStubLookup()
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	waitForResults(t, p, []string{"acme Company", "acme Corp"})

	// Only "acme" survives the debounce and it matches the last processed term.
	p.OnInput("ac")
	p.OnInput("acme")
	settle()

	assert.Equal(t, []string{"acme"}, lookup.Calls())
	s := p.State()
	assert.Equal(t, "acme", s.Term)
	assert.Equal(t, []string{}, s.Results)
	assert.False(t, s.Loading)
}

func TestPipelineSettledShortTermAllowsSameSearchAgain(t *testing.T) {
	lookup := newStubLookup()
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	waitForResults(t, p, []string{"acme Company", "acme Corp"})

	p.OnInput("ac")
	settle()
	p.OnInput("acme")
	waitForCalls(t, lookup, 2)
	waitForResults(t, p, []string{"acme Company", "acme Corp"})

	assert.Equal(t, []string{"acme", "acme"}, lookup.Calls())
}

func TestPipelineSetsLoadingWhileLookupRuns(t *testing.T) {
	lookup := newStubLookup()
	lookup.hold("acme")
	t.Cleanup(lookup.releaseAll)
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	waitForCalls(t, lookup, 1)
	assert.True(t, p.State().Loading)

	lookup.release("acme")
	waitForResults(t, p, []string{"acme Company", "acme Corp"})
}

func TestPipelineLatestQueryWinsRegardlessOfResolutionOrder(t *testing.T) {
	for _, firstReleased := range []string{"alpha", "bravo"} {
		t.Run("release "+firstReleased+" first", func(t *testing.T) {
			lookup := newStubLookup()
			lookup.hold("alpha")
			lookup.hold("bravo")
			t.Cleanup(lookup.releaseAll)
			p := newTestPipeline(t, lookup)

			p.OnInput("alpha")
			waitForCalls(t, lookup, 1)
			p.OnInput("bravo")
			waitForCalls(t, lookup, 2)

			lookup.release(firstReleased)
			if firstReleased == "alpha" {
				lookup.release("bravo")
			} else {
				lookup.release("alpha")
			}

			waitForResults(t, p, []string{"bravo Company", "bravo Corp"})
			settle()
			assert.Equal(t, []string{"bravo Company", "bravo Corp"}, p.State().Results)
			assert.False(t, p.State().Loading)
		})
	}
}

func TestPipelineCancelsSupersededLookupContext(t *testing.T) {
	cancelled := make(chan string, 2)
	lookup := domain.LookupFunc(func(ctx context.Context, term string) ([]string, error) {
		if term == "slow" {
			<-ctx.Done()
			cancelled <- term
			return nil, ctx.Err()
		}
		return []string{term}, nil
	})
	p := newTestPipeline(t, lookup)

	p.OnInput("slow")
	require.Eventually(t, func() bool { return p.State().Loading }, time.Second, 5*time.Millisecond)
	p.OnInput("fast")

	select {
	case term := <-cancelled:
		assert.Equal(t, "slow", term)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded lookup was not cancelled")
	}
	waitForResults(t, p, []string{"fast"})
	assert.Empty(t, p.State().Error)
}

func TestPipelineShortTermDropsInFlightResult(t *testing.T) {
	lookup := newStubLookup()
	lookup.hold("acme")
	t.Cleanup(lookup.releaseAll)
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	waitForCalls(t, lookup, 1)

	p.OnInput("ac")
	lookup.release("acme")
	settle()

	s := p.State()
	assert.Equal(t, []string{}, s.Results)
	assert.False(t, s.Loading)
}

func TestPipelineLookupFailureEndsInEmptyState(t *testing.T) {
	lookup := newStubLookup()
	lookup.fail["boom"] = errors.New("directory unavailable")
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	waitForResults(t, p, []string{"acme Company", "acme Corp"})

	p.OnInput("boom")
	waitForCalls(t, lookup, 2)
	require.Eventually(t, func() bool { return p.State().Error != "" }, time.Second, 5*time.Millisecond)

	s := p.State()
	assert.Equal(t, []string{}, s.Results)
	assert.False(t, s.Loading)
	assert.Contains(t, s.Error, "directory unavailable")

	p.OnInput("acme!")
	waitForResults(t, p, []string{"acme! Company", "acme! Corp"})
	assert.Empty(t, p.State().Error)
}

func TestPipelineCountsFailedLookups(t *testing.T) {
	lookup := newStubLookup()
	lookup.fail["boom"] = errors.New("directory unavailable")
	reg := prometheus.NewRegistry()
	p := NewSearchPipeline(lookup, testDebounce, 3, metrics.NewSearchMetrics(reg))
	t.Cleanup(p.Close)

	p.OnInput("boom")
	require.Eventually(t, func() bool { return p.State().Error != "" }, 2*time.Second, 5*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "search_lookups_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" {
					outcomes[label.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{metrics.OutcomeFailure: 1}, outcomes)
}

func TestPipelineCloseCancelsPendingDebounce(t *testing.T) {
	lookup := newStubLookup()
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	p.Close()
	settle()

	assert.Empty(t, lookup.Calls())
}

func TestPipelineCloseDropsInFlightResultAndInput(t *testing.T) {
	lookup := newStubLookup()
	lookup.hold("acme")
	t.Cleanup(lookup.releaseAll)
	p := newTestPipeline(t, lookup)

	p.OnInput("acme")
	waitForCalls(t, lookup, 1)

	p.Close()
	lookup.release("acme")
	p.OnInput("other")
	settle()

	s := p.State()
	assert.Equal(t, "acme", s.Term)
	assert.Equal(t, []string{}, s.Results)
	assert.False(t, s.Loading)
	assert.Equal(t, []string{"acme"}, lookup.Calls())
}

func TestPipelineCloseIsIdempotent(t *testing.T) {
	p := newTestPipeline(t, newStubLookup())

	assert.NotPanics(t, func() {
		p.Close()
		p.Close()
	})
}

func TestPipelineObserversFollowStateChanges(t *testing.T) {
	lookup := newStubLookup()
	p := newTestPipeline(t, lookup)

	var mu sync.Mutex
	var seen []domain.SearchState
	p.Subscribe(func(s domain.SearchState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	p.OnInput("acme")
	waitForResults(t, p, []string{"acme Company", "acme Corp"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.False(t, seen[0].Loading)
	assert.True(t, seen[1].Loading)
	assert.False(t, seen[2].Loading)
	assert.Equal(t, []string{"acme Company", "acme Corp"}, seen[2].Results)
}
