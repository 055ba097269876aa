// Package format holds presentation helpers: won currency rendering and
// masking of personal identifiers. Nothing here feeds back into stored
// values or totals; these are strictly output transforms.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Won renders an amount as whole won with thousands separators and the 원
// suffix, e.g. 10644797.4 -> "10,644,797원". Flooring happens here and only
// here; accrual math upstream carries full precision.
func Won(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	n := int64(math.Floor(amount))

	neg := n < 0
	if neg {
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString("원")
	return b.String()
}
