// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/flags.rs
//

package dbn

import (
	"strconv"
	"strings"
)

// FlagSet wraps the bitfield carried by the `flags` field of MBP/top-of-book records.
type FlagSet struct {
	raw uint8
}

// NewFlagSet wraps a raw flags byte read off the wire.
func NewFlagSet(raw uint8) FlagSet {
	return FlagSet{raw: raw}
}

// Raw returns the underlying byte, suitable for writing back to the wire.
func (f FlagSet) Raw() uint8 {
	return f.raw
}

// IsLast reports whether this is the last message in the packet from the venue for a
// given instrument_id.
func (f FlagSet) IsLast() bool { return f.raw&RFlag_LAST != 0 }

// IsTOB reports whether this is a top-of-book message, not an individual order.
func (f FlagSet) IsTOB() bool { return f.raw&RFlag_TOB != 0 }

// IsSnapshot reports whether the message was sourced from a replay, such as a
// snapshot server.
func (f FlagSet) IsSnapshot() bool { return f.raw&RFlag_SNAPSHOT != 0 }

// IsMBP reports whether this is an aggregated price level message, not an individual
// order.
func (f FlagSet) IsMBP() bool { return f.raw&RFlag_MBP != 0 }

// IsBadTsRecv reports whether the ts_recv value is inaccurate due to clock issues or
// packet reordering.
func (f FlagSet) IsBadTsRecv() bool { return f.raw&RFlag_BAD_TS_RECV != 0 }

// IsMaybeBadBook reports whether an unrecoverable gap was detected in the channel.
func (f FlagSet) IsMaybeBadBook() bool { return f.raw&RFlag_MAYBE_BAD_BOOK != 0 }

// SetLast sets or clears the LAST bit.
func (f *FlagSet) SetLast(v bool)         { f.set(RFlag_LAST, v) }
func (f *FlagSet) SetTOB(v bool)          { f.set(RFlag_TOB, v) }
func (f *FlagSet) SetSnapshot(v bool)     { f.set(RFlag_SNAPSHOT, v) }
func (f *FlagSet) SetMBP(v bool)          { f.set(RFlag_MBP, v) }
func (f *FlagSet) SetBadTsRecv(v bool)    { f.set(RFlag_BAD_TS_RECV, v) }
func (f *FlagSet) SetMaybeBadBook(v bool) { f.set(RFlag_MAYBE_BAD_BOOK, v) }

func (f *FlagSet) set(bit uint8, v bool) {
	if v {
		f.raw |= bit
	} else {
		f.raw &^= bit
	}
}

// String renders the set bits in declaration order separated by " | ", followed by
// the raw decimal value in parentheses, e.g. "LAST | TOB | SNAPSHOT | MBP |
// BAD_TS_RECV | MAYBE_BAD_BOOK (255)". A flag byte with no recognized bits set
// renders as just the bare number, e.g. "(0)".
func (f FlagSet) String() string {
	var names []string
	if f.IsLast() {
		names = append(names, "LAST")
	}
	if f.IsTOB() {
		names = append(names, "TOB")
	}
	if f.IsSnapshot() {
		names = append(names, "SNAPSHOT")
	}
	if f.IsMBP() {
		names = append(names, "MBP")
	}
	if f.IsBadTsRecv() {
		names = append(names, "BAD_TS_RECV")
	}
	if f.IsMaybeBadBook() {
		names = append(names, "MAYBE_BAD_BOOK")
	}
	var b strings.Builder
	if len(names) > 0 {
		b.WriteString(strings.Join(names, " | "))
		b.WriteString(" ")
	}
	b.WriteString("(")
	b.WriteString(strconv.FormatUint(uint64(f.raw), 10))
	b.WriteString(")")
	return b.String()
}
