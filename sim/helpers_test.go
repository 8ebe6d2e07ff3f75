package sim

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rustyeddy/combo/config"
	"github.com/rustyeddy/combo/market"
	"github.com/rustyeddy/combo/pkg/id"
	"github.com/stretchr/testify/require"
)

// scripted replays fixed uniform draws, then 0.5 forever.
type scripted struct {
	vals []float64
}

func script(vals ...float64) *scripted {
	return &scripted{vals: vals}
}

func (s *scripted) Float64() float64 {
	if len(s.vals) == 0 {
		return 0.5
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v
}

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, src Source, opts ...Option) (*Engine, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testEpoch)
	all := append([]Option{
		WithClock(clock),
		WithSource(src),
		WithIDs(id.NewSeededGenerator(clock, 1)),
	}, opts...)

	e, err := NewEngine(config.Default(), all...)
	require.NoError(t, err)
	return e, clock
}

// counter subscribes to e and counts notifications.
type counter struct {
	n  atomic.Int64
	ch chan struct{}
}

func watch(e *Engine) *counter {
	c := &counter{ch: make(chan struct{}, 64)}
	e.Subscribe(func() {
		c.n.Add(1)
		select {
		case c.ch <- struct{}{}:
		default:
		}
	})
	return c
}

func (c *counter) count() int64 { return c.n.Load() }

func (c *counter) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func (c *counter) drain() {
	for {
		select {
		case <-c.ch:
		default:
			return
		}
	}
}

func requireOrdered(t *testing.T, r market.PriceRange, s State) {
	t.Helper()
	for i, c := range s.Candles {
		require.NoError(t, c.Validate(r), "candle %d: %+v", i, c)
	}
}

// tickNow runs one tick of the current play generation synchronously.
func tickNow(e *Engine) bool {
	e.mu.Lock()
	gen := e.generation
	e.mu.Unlock()
	return e.tick(gen)
}

func subscriberCount(e *Engine) int {
	e.observers.mu.Lock()
	defer e.observers.mu.Unlock()
	return len(e.observers.list)
}
