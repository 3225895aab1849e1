package normalize

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// notAvailable is the literal rendered for absent, zero-valued (where zero
// means "no data") or unparseable numeric fields.
const notAvailable = "N/A"

// commaFixed renders f with a comma-grouped integer part and exactly
// decimals fractional digits, e.g. 1234.5 -> "1,234.500000" at 6.
func commaFixed(f float64, decimals int) string {
	s := strconv.FormatFloat(f, 'f', decimals, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// Out of int64 range; grouping is cosmetic, so serve it ungrouped.
		return s
	}
	out := humanize.Comma(n)
	if hasFrac {
		out += "." + fracPart
	}
	return out
}

// usdPrice renders a price string as $ + comma-grouped value with exactly
// six decimals. Unparseable input degrades to N/A, never an error.
func usdPrice(raw string) string {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return notAvailable
	}
	return "$" + commaFixed(f, 6)
}

// nativePrice is usdPrice without the currency prefix.
func nativePrice(raw string) string {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return notAvailable
	}
	return commaFixed(f, 6)
}

// usdAmount renders a large USD amount as $ + comma-grouped integer.
// Absent or zero renders as N/A, never "$0".
func usdAmount(v *float64) string {
	if v == nil || *v == 0 {
		return notAvailable
	}
	return "$" + humanize.Comma(int64(*v))
}

// count renders a transaction count as-is, N/A when absent.
func count(v *int64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatInt(*v, 10)
}

// percent renders a percentage with two decimals and a trailing %.
func percent(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64) + "%"
}

// fixed2 renders a plain quantity with two decimals.
func fixed2(f float64) string {
	return commaFixed(f, 2)
}

// yesNo renders a tri-state boolean.
func yesNo(v *bool) string {
	switch {
	case v == nil:
		return notAvailable
	case *v:
		return "Yes"
	default:
		return "No"
	}
}
