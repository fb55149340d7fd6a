package view

import (
	"math"
	"strconv"
)

// maxDenominator bounds the fractions used for ingredient quantities.
const maxDenominator = 16

// FormatQuantity renders a quantity the way a cook reads it: whole numbers
// as is, the rest as a mixed fraction ("1 1/2", "3/4"). Nil renders empty.
func FormatQuantity(q *float64) string {
	if q == nil {
		return ""
	}
	v := *q
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	whole := math.Floor(v)
	num, den := approximate(v - whole)
	if num == den {
		whole++
		num = 0
	}

	w := strconv.FormatFloat(whole, 'f', 0, 64)
	switch {
	case num == 0:
		return w
	case whole == 0:
		return strconv.Itoa(num) + "/" + strconv.Itoa(den)
	default:
		return w + " " + strconv.Itoa(num) + "/" + strconv.Itoa(den)
	}
}

// approximate returns the reduced fraction closest to f in [0, 1] with a
// denominator up to maxDenominator.
func approximate(f float64) (num, den int) {
	best := math.Inf(1)
	num, den = 0, 1
	for d := 1; d <= maxDenominator; d++ {
		n := int(math.Round(f * float64(d)))
		if diff := math.Abs(f - float64(n)/float64(d)); diff < best-1e-12 {
			best, num, den = diff, n, d
		}
	}
	return num, den
}
