package render

import (
	"math"
	"strconv"
	"strings"
)

// exactDigits is enough fractional digits to print any float64 exactly.
const exactDigits = 1074

// FormatNumber formats v the way a widget shows an unrounded value:
// integers carry no decimal point, other values use the shortest decimal
// that round-trips, and very large or very small magnitudes switch to
// exponent notation (1e+21, 1.5e-7).
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0" // also -0
	}

	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	// Go pads the exponent to two digits ("1.5e-07"); widgets show "1.5e-7".
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// FormatFixed formats v with exactly digits characters after the decimal
// point. Rounding uses the exact binary value of v and resolves ties away
// from zero, so 2.5 becomes "3" and 1.005 becomes "1.00".
// NaN, infinities and magnitudes of 1e21 or more fall back to FormatNumber.
// digits must be in [0, stats.MaxDigits].
func FormatFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.Abs(v) >= 1e21 {
		return FormatNumber(v)
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	exact := strconv.FormatFloat(v, 'f', exactDigits, 64)
	intPart, frac, _ := strings.Cut(exact, ".")

	// Work on the digit string without the point, then re-insert it.
	kept := []byte(intPart + frac[:digits])
	if frac[digits] >= '5' {
		kept = incrementDecimal(kept)
	}

	intLen := len(kept) - digits
	if digits == 0 {
		return sign + string(kept)
	}
	return sign + string(kept[:intLen]) + "." + string(kept[intLen:])
}

// incrementDecimal adds one to the last digit of d, carrying left.
// A carry out of the leading digit prepends a "1".
func incrementDecimal(d []byte) []byte {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i] < '9' {
			d[i]++
			return d
		}
		d[i] = '0'
	}
	return append([]byte{'1'}, d...)
}
