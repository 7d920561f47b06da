// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/pretty.rs
//

package dbn

import (
	"fmt"
	"time"
)

// Ts wraps a nanosecond UNIX timestamp for pretty-printing via String().
type Ts uint64

// Px wraps a fixed-precision price for pretty-printing via String().
type Px int64

func (t Ts) String() string {
	return fmt_ts(uint64(t))
}

func (p Px) String() string {
	return fmt_px(int64(p))
}

const fixedPriceScaleInt int64 = 1_000_000_000

// fmt_px converts a fixed-precision price to a decimal string, e.g. "32.500000000".
// UNDEF_PRICE formats as the literal "UNDEF_PRICE".
func fmt_px(px int64) string {
	if px == UNDEF_PRICE {
		return "UNDEF_PRICE"
	}
	sign := ""
	pxAbs := px
	if px < 0 {
		sign = "-"
		pxAbs = -px
	}
	pxInteger := pxAbs / fixedPriceScaleInt
	pxFraction := pxAbs % fixedPriceScaleInt
	return fmt.Sprintf("%s%d.%09d", sign, pxInteger, pxFraction)
}

// fmt_ts converts a nanosecond UNIX timestamp to
// "[year]-[month]-[day]T[hour]:[minute]:[second].[subsecond digits:9]Z". A ts of 0
// formats as the empty string, matching "no timestamp" semantics.
func fmt_ts(ts uint64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(0, int64(ts)).UTC().Format("2006-01-02T15:04:05.000000000Z")
}
