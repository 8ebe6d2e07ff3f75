package sim

import (
	"math"

	"github.com/rustyeddy/combo/config"
	"github.com/rustyeddy/combo/market"
)

// rules holds the candle pricing logic. It is stateless apart from the
// configuration and the random source handed to each call.
type rules struct {
	cfg config.Config
}

func (r rules) clamp(p float64) float64 {
	return r.cfg.Prices.Clamp(p)
}

// next builds the candle that follows last and reports whether last closed
// inside its own target band. last is not modified.
//
// Draw order: delta, combo multiplier (only on a live streak), target
// variation, target side.
func (r rules) next(src Source, last market.Candle) (market.Candle, bool) {
	wasInTarget := last.CloseInTarget()
	combo := 0
	if wasInTarget {
		combo = last.ComboCount + 1
	}

	open := last.Close
	delta := (src.Float64() - 0.5) * r.cfg.Candle.DeltaSpan
	closePrice := r.clamp(open + delta)

	if wasInTarget && combo > 0 {
		// The boosted close always moves up by |delta|; the sign of the
		// original draw is dropped.
		boost := last.Span() * r.comboMultiplier(src, combo)
		closePrice = r.clamp(open + boost + math.Abs(delta))
	}

	return market.Candle{
		Open:       open,
		Close:      closePrice,
		High:       math.Max(open, closePrice),
		Low:        math.Min(open, closePrice),
		Target:     r.targetRange(src, open, last.High, last.Low),
		ComboCount: combo,
	}, wasInTarget
}

func (r rules) comboMultiplier(src Source, combo int) float64 {
	b := r.cfg.Combo.Ratio
	return b.Min + (b.Max-b.Min)*src.Float64()*float64(combo)
}

// targetRange places a band around open, displaced above or below it by a
// fraction of open. The half width follows the previous candle's span,
// floored at MinSpan. Each edge is clamped on its own, so bands near the
// price bounds come out narrower than computed.
func (r rules) targetRange(src Source, open, prevHigh, prevLow float64) market.TargetRange {
	b := r.cfg.Target.Ratio
	variation := b.Min + (b.Max-b.Min)*src.Float64()/2
	half := math.Max(r.cfg.Target.MinSpan, prevHigh-prevLow) * variation

	offset := variation * open
	if src.Float64() > 0.5 {
		offset = -offset
	}

	return market.TargetRange{
		Min: r.clamp(open + offset - half),
		Max: r.clamp(open + offset + half),
	}
}

// sampleReturn draws a percentage return from N(0, ReturnStd) clipped to
// ±ReturnMax.
func (r rules) sampleReturn(src Source) float64 {
	pct := normal(src) * r.cfg.Tick.ReturnStd
	limit := r.cfg.Tick.ReturnMax
	return math.Max(-limit, math.Min(limit, pct))
}

// tick moves the close by ret percent and widens the wicks around it.
func (r rules) tick(c *market.Candle, ret float64) {
	c.Close = r.clamp(c.Close + c.Close*ret)
	c.Enclose()
}

// setField assigns a clamped value to one OHLC field and restores the
// low <= body <= high ordering.
func (r rules) setField(c *market.Candle, f market.Field, value float64) {
	val := r.clamp(value)

	switch f {
	case market.FieldOpen:
		c.Open = val
		c.High = math.Max(c.High, math.Max(val, c.Close))
		c.Low = math.Min(c.Low, math.Min(val, c.Close))
	case market.FieldClose:
		c.Close = val
		c.High = math.Max(c.High, math.Max(val, c.Open))
		c.Low = math.Min(c.Low, math.Min(val, c.Open))
	case market.FieldHigh:
		c.High = r.clamp(math.Max(val, c.BodyTop()))
	case market.FieldLow:
		c.Low = r.clamp(math.Min(val, c.BodyBottom()))
	}

	c.Enclose()
}
