package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rustyeddy/combo/config"
	"github.com/rustyeddy/combo/internal/logging"
	"github.com/rustyeddy/combo/market"
	"github.com/rustyeddy/combo/pkg/id"
)

var (
	// ErrInvalidIndex is returned when a selection index is out of range.
	// The engine state is left untouched.
	ErrInvalidIndex = errors.New("invalid candle index")

	// ErrUnknownField is returned by UpdateField for anything but open,
	// high, low or close.
	ErrUnknownField = errors.New("unknown candle field")

	// ErrInvalidPrice is returned by UpdateField for NaN input.
	ErrInvalidPrice = errors.New("invalid price")
)

// State is a snapshot of the engine. It shares no memory with the engine.
type State struct {
	Candles       []market.Candle `json:"candles"`
	SelectedIndex int             `json:"selected_index"`
	IsPlaying     bool            `json:"is_playing"`
}

// Selected returns the candle under the cursor.
func (s State) Selected() (market.Candle, bool) {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Candles) {
		return market.Candle{}, false
	}
	return s.Candles[s.SelectedIndex], true
}

// Engine owns the candle sequence, the selection cursor and the play loop.
// All mutations happen under one lock; observers are notified after it is
// released.
type Engine struct {
	mu       sync.Mutex
	cfg      config.Config
	rules    rules
	candles  []market.Candle
	selected int

	playing    bool
	generation uint64
	stopCh     chan struct{}

	src   Source
	clock clockwork.Clock
	ids   *id.Generator
	log   *slog.Logger

	observers observers
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithCandles seeds the engine with a copy of candles instead of the
// default seed candle.
func WithCandles(candles []market.Candle) Option {
	return func(e *Engine) {
		e.candles = append([]market.Candle(nil), candles...)
	}
}

// WithSource replaces the random source.
func WithSource(src Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithClock replaces the clock driving the play loop and candle ids.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the engine logger. The default discards.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithIDs replaces the candle id generator.
func WithIDs(ids *id.Generator) Option {
	return func(e *Engine) { e.ids = ids }
}

// SeedCandle is the candle a new engine starts with when none are given.
func SeedCandle() market.Candle {
	return market.Candle{
		Open:   100,
		High:   120,
		Low:    80,
		Close:  105,
		Target: market.TargetRange{Min: 95, Max: 110},
	}
}

// NewEngine validates cfg and builds an engine holding either the seed
// candle or the candles passed through WithCandles.
func NewEngine(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	e := &Engine{
		cfg:   cfg,
		rules: rules{cfg: cfg},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.src == nil {
		e.src = NewRandSource(e.clock.Now().UnixNano())
	}
	if e.ids == nil {
		e.ids = id.NewGenerator(e.clock)
	}
	if e.log == nil {
		e.log = logging.Discard()
	}

	if len(e.candles) == 0 {
		e.candles = []market.Candle{SeedCandle()}
	}
	for i := range e.candles {
		c := &e.candles[i]
		if err := c.Validate(cfg.Prices); err != nil {
			return nil, fmt.Errorf("new engine: candle %d: %w", i, err)
		}
		if c.ID == "" {
			c.ID = e.ids.New()
		}
	}

	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// State returns a deep copy of the engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return State{
		Candles:       append([]market.Candle(nil), e.candles...),
		SelectedIndex: e.selected,
		IsPlaying:     e.playing,
	}
}

// Subscribe registers fn to be called after every committed change. The
// returned function deregisters it and may be called more than once.
//
// fn runs on the goroutine that made the change: the caller's for AddCandle,
// UpdateField and friends, the play loop's for ticks. It must therefore be
// safe for concurrent use. fn may call back into the engine.
func (e *Engine) Subscribe(fn func()) (unsubscribe func()) {
	return e.observers.add(fn)
}

// AddCandle finalizes the tail candle's target result, appends the next
// candle and selects it. It returns a copy of the new candle.
func (e *Engine) AddCandle() market.Candle {
	e.mu.Lock()

	lastIdx := len(e.candles) - 1
	next, wasInTarget := e.rules.next(e.src, e.candles[lastIdx])
	next.ID = e.ids.New()

	e.candles[lastIdx].InTarget = wasInTarget
	e.candles = append(e.candles, next)
	e.selected = len(e.candles) - 1

	e.mu.Unlock()

	e.log.Debug("candle added",
		"id", next.ID,
		"open", next.Open,
		"close", next.Close,
		"target_min", next.Target.Min,
		"target_max", next.Target.Max,
		"prev_in_target", wasInTarget,
		"combo", next.ComboCount)

	e.observers.notify()
	return next
}

// UpdateField sets one OHLC field of the selected candle. The value is
// clamped into the price range and the wicks are re-derived so the candle
// stays ordered. Rejected calls leave the state untouched and notify no one.
func (e *Engine) UpdateField(f market.Field, value float64) error {
	if !f.Valid() {
		return fmt.Errorf("update field: %w: %v", ErrUnknownField, f)
	}
	if math.IsNaN(value) {
		return fmt.Errorf("update field %s: %w", f, ErrInvalidPrice)
	}

	e.mu.Lock()
	idx := e.selected
	if idx < 0 || idx >= len(e.candles) {
		e.mu.Unlock()
		return fmt.Errorf("update field %s: %w: %d", f, ErrInvalidIndex, idx)
	}
	e.rules.setField(&e.candles[idx], f, value)
	e.mu.Unlock()

	e.observers.notify()
	return nil
}

// SetSelectedIndex moves the cursor. Out of range indices are ignored.
func (e *Engine) SetSelectedIndex(i int) error {
	e.mu.Lock()
	if i < 0 || i >= len(e.candles) {
		e.mu.Unlock()
		return fmt.Errorf("select: %w: %d", ErrInvalidIndex, i)
	}
	e.selected = i
	e.mu.Unlock()

	e.observers.notify()
	return nil
}
