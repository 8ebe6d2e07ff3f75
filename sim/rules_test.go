package sim

import (
	"testing"

	"github.com/rustyeddy/combo/config"
	"github.com/rustyeddy/combo/market"
	"github.com/stretchr/testify/assert"
)

func testRules() rules {
	return rules{cfg: config.Default()}
}

func TestTargetRangeWidthFollowsPreviousSpan(t *testing.T) {
	r := testRules()

	tests := []struct {
		name  string
		draws []float64
		open  float64
		high  float64
		low   float64
		want  market.TargetRange
	}{
		{
			name:  "wide previous candle, band above open",
			draws: []float64{0, 0.2},
			open:  100,
			high:  130,
			low:   70,
			// variation 0.2, half 12, offset +20
			want: market.TargetRange{Min: 108, Max: 132},
		},
		{
			name:  "narrow previous candle uses min span",
			draws: []float64{0, 0.9},
			open:  100,
			high:  101,
			low:   99,
			// variation 0.2, half 4, offset -20
			want: market.TargetRange{Min: 76, Max: 84},
		},
		{
			name:  "max variation",
			draws: []float64{0.999999999, 0},
			open:  100,
			high:  120,
			low:   80,
			// variation ~0.3, half ~12, offset ~+30
			want: market.TargetRange{Min: 118, Max: 142},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.targetRange(script(tt.draws...), tt.open, tt.high, tt.low)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-6)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-6)
		})
	}
}

func TestTargetRangeClampedAtBounds(t *testing.T) {
	r := testRules()

	// open 190, variation 0.2 -> offset +38, half 8: computed [220, 236]
	got := r.targetRange(script(0, 0), 190, 40, 0)
	assert.Equal(t, market.TargetRange{Min: 200, Max: 200}, got)

	// open 10 below: offset -2, half 8: computed [0, 16]
	got = r.targetRange(script(0, 0.9), 10, 40, 0)
	assert.InDelta(t, 0.0, got.Min, 1e-9)
	assert.InDelta(t, 16.0, got.Max, 1e-9)
	assert.LessOrEqual(t, got.Min, got.Max)
}

func TestComboMultiplierScalesWithCombo(t *testing.T) {
	r := testRules()
	assert.InDelta(t, 0.2, r.comboMultiplier(script(0), 5), 1e-12)
	assert.InDelta(t, 0.3, r.comboMultiplier(script(0.5), 1), 1e-12)
	assert.InDelta(t, 0.2+0.2*0.5*3, r.comboMultiplier(script(0.5), 3), 1e-12)
}

func TestSampleReturn(t *testing.T) {
	r := testRules()
	assert.InDelta(t, -0.03, r.sampleReturn(script(minusOneSigma...)), 1e-12)
	assert.Equal(t, 0.10, r.sampleReturn(script(1e-300, 0.999999)))
	assert.Equal(t, -0.10, r.sampleReturn(script(1e-300, 0.5)))

	src := NewRandSource(42)
	for i := 0; i < 10000; i++ {
		ret := r.sampleReturn(src)
		assert.LessOrEqual(t, ret, 0.10)
		assert.GreaterOrEqual(t, ret, -0.10)
	}
}

func TestRulesNextGapFree(t *testing.T) {
	r := testRules()
	src := NewRandSource(77)
	last := SeedCandle()

	for i := 0; i < 500; i++ {
		next, wasIn := r.next(src, last)
		assert.Equal(t, last.Close, next.Open)
		assert.Equal(t, last.CloseInTarget(), wasIn)
		assert.NoError(t, next.Validate(r.cfg.Prices))
		assert.Equal(t, next.BodyTop(), next.High, "new candles have no upper wick")
		assert.Equal(t, next.BodyBottom(), next.Low, "new candles have no lower wick")
		last = next
	}
}

func TestSetFieldFinalPassRestoresOrder(t *testing.T) {
	r := testRules()

	// A candle whose wicks are already inside the body gets re-enclosed by
	// any edit.
	c := market.Candle{Open: 100, High: 101, Low: 99, Close: 110}
	r.setField(&c, market.FieldHigh, 0)
	assert.Equal(t, 110.0, c.High)
	assert.Equal(t, 99.0, c.Low)

	c = market.Candle{Open: 100, High: 120, Low: 95, Close: 105}
	r.setField(&c, market.FieldOpen, 90)
	assert.Equal(t, 90.0, c.Low)
	assert.Equal(t, 120.0, c.High)
}
