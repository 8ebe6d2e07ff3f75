package sim

// Summary condenses a session for reporting.
type Summary struct {
	Candles   int     `json:"candles"`
	Finalized int     `json:"finalized"`
	Hits      int     `json:"hits"`
	HitRate   float64 `json:"hit_rate"`
	BestCombo int     `json:"best_combo"`
	// Combo is the tail candle's ComboCount: the in-target streak that ends
	// just before the tail. The tail itself is not scored yet.
	Combo int `json:"combo"`
}

// Summarize counts target hits over the finalized candles (all but the
// tail) and reports the best combo and the tail's combo.
func Summarize(s State) Summary {
	var sum Summary
	sum.Candles = len(s.Candles)
	if sum.Candles == 0 {
		return sum
	}
	sum.Finalized = sum.Candles - 1

	for i, c := range s.Candles {
		if c.ComboCount > sum.BestCombo {
			sum.BestCombo = c.ComboCount
		}
		if i < sum.Finalized && c.InTarget {
			sum.Hits++
		}
	}
	if sum.Finalized > 0 {
		sum.HitRate = float64(sum.Hits) / float64(sum.Finalized)
	}
	sum.Combo = s.Candles[sum.Candles-1].ComboCount
	return sum
}
