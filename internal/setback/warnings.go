package setback

// Warning is a non-fatal caveat attached to a result.
type Warning string

const (
	WarningClampedTau          Warning = "clamped_tau"
	WarningInsufficientTime    Warning = "insufficient_time"
	WarningRateDefaulted       Warning = "rate_defaulted"
	WarningNoBreakEven         Warning = "no_break_even"
	WarningNarrowSetbackBand   Warning = "narrow_setback_band"
	WarningBaselineNonPositive Warning = "baseline_non_positive"
)

// Warnings keeps insertion order and drops duplicates.
type Warnings []Warning

func (w *Warnings) Add(ws ...Warning) {
	for _, n := range ws {
		if !w.Has(n) {
			*w = append(*w, n)
		}
	}
}

func (w Warnings) Has(n Warning) bool {
	for _, x := range w {
		if x == n {
			return true
		}
	}
	return false
}
