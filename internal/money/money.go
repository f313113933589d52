// Package money holds the rounding and line-total arithmetic shared by the
// journal services. All amounts leave the system rounded to 2 decimal places.
package money

import "math"

// Round2 rounds to 2 decimal places using standard rounding.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineTotals computes the money breakdown of one journal line. GST and
// discount are percentages applied to the base amount.
func LineTotals(qty, rate, gstPct, discPct float64) (base, gst, disc, total float64) {
	base = Round2(qty * rate)
	gst = Round2(base * gstPct / 100)
	disc = Round2(base * discPct / 100)
	total = Round2(base + gst - disc)
	return
}
