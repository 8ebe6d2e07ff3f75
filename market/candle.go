package market

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCandle is returned when a candle breaks its OHLC ordering or
// leaves the price range.
var ErrInvalidCandle = errors.New("invalid candle")

// TargetRange is the reward band for a candle's close price.
type TargetRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether p lies inside the band, both ends inclusive.
func (t TargetRange) Contains(p float64) bool {
	return p >= t.Min && p <= t.Max
}

// Width returns Max - Min.
func (t TargetRange) Width() float64 {
	return t.Max - t.Min
}

// Candle represents OHLC (Open, High, Low, Close) candlestick data with the
// combo bookkeeping attached to it.
type Candle struct {
	ID    string  `json:"id"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`

	Target TargetRange `json:"target_range"`

	// InTarget is finalized when the next candle is appended.
	InTarget   bool `json:"is_in_target_range"`
	ComboCount int  `json:"combo_count"`
}

// BodyTop returns max(open, close).
func (c Candle) BodyTop() float64 {
	return math.Max(c.Open, c.Close)
}

// BodyBottom returns min(open, close).
func (c Candle) BodyBottom() float64 {
	return math.Min(c.Open, c.Close)
}

// Span returns High - Low.
func (c Candle) Span() float64 {
	return c.High - c.Low
}

// CloseInTarget reports whether the current close lies inside the candle's
// own target band.
func (c Candle) CloseInTarget() bool {
	return c.Target.Contains(c.Close)
}

// Validate checks the OHLC ordering and the target band against r.
func (c Candle) Validate(r PriceRange) error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Target.Min, c.Target.Max} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite price %v", ErrInvalidCandle, v)
		}
	}

	switch {
	case c.Low < r.Min:
		return fmt.Errorf("%w: low %.4f below price min %.4f", ErrInvalidCandle, c.Low, r.Min)
	case c.Low > c.BodyBottom():
		return fmt.Errorf("%w: low %.4f above body %.4f", ErrInvalidCandle, c.Low, c.BodyBottom())
	case c.High < c.BodyTop():
		return fmt.Errorf("%w: high %.4f below body %.4f", ErrInvalidCandle, c.High, c.BodyTop())
	case c.High > r.Max:
		return fmt.Errorf("%w: high %.4f above price max %.4f", ErrInvalidCandle, c.High, r.Max)
	case c.Target.Min > c.Target.Max:
		return fmt.Errorf("%w: target min %.4f above max %.4f", ErrInvalidCandle, c.Target.Min, c.Target.Max)
	case !r.Contains(c.Target.Min) || !r.Contains(c.Target.Max):
		return fmt.Errorf("%w: target [%.4f, %.4f] outside price range", ErrInvalidCandle, c.Target.Min, c.Target.Max)
	case c.ComboCount < 0:
		return fmt.Errorf("%w: negative combo count %d", ErrInvalidCandle, c.ComboCount)
	}
	return nil
}

// Enclose widens High and Low so they cover the body. It never shrinks the
// wicks.
func (c *Candle) Enclose() {
	c.Low = math.Min(c.Low, c.BodyBottom())
	c.High = math.Max(c.High, c.BodyTop())
}
