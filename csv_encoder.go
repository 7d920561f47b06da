// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/encode/csv.rs
//

package dbn

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strconv"
)

// CsvEncoder writes records as CSV rows, deriving the header row and each
// column's value from the `csv:"..."` struct tags already present on every
// record type in structs.go/records_*.go. A field tagged `csv:"-"` is skipped.
type CsvEncoder struct {
	w         *csv.Writer
	PrettyPx  bool // render prices via Px.String() instead of the raw fixed-point integer
	PrettyTs  bool // render timestamps via Ts.String() instead of the raw nanosecond integer
	wroteHead bool
}

// NewCsvEncoder creates a CsvEncoder writing to w.
func NewCsvEncoder(w io.Writer) *CsvEncoder {
	return &CsvEncoder{w: csv.NewWriter(w)}
}

// EncodeHeader writes the column header row for sample's record type, deriving
// column names from its csv struct tags. Only the first call writes a row; later
// calls are no-ops.
func (e *CsvEncoder) EncodeHeader(sample any) error {
	if e.wroteHead {
		return nil
	}
	cols := csvColumns(reflect.TypeOf(sample))
	e.wroteHead = true
	if err := e.w.Write(cols); err != nil {
		return err
	}
	e.w.Flush()
	return e.w.Error()
}

// EncodeRecord writes one CSV row for record, whose type must match the sample
// passed to EncodeHeader.
func (e *CsvEncoder) EncodeRecord(record any) error {
	row := e.csvRow(reflect.ValueOf(record))
	if err := e.w.Write(row); err != nil {
		return err
	}
	e.w.Flush()
	return e.w.Error()
}

///////////////////////////////////////////////////////////////////////////////

func csvColumns(t reflect.Type) []string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("csv")
		if !ok || tag == "-" {
			continue
		}
		switch {
		case field.Type.Kind() == reflect.Struct && field.Type.Name() == "RHeader":
			cols = append(cols, "rtype", "publisher_id", "instrument_id", "ts_event")
		case field.Type.Kind() == reflect.Array && field.Type.Elem().Name() == "BidAskPair":
			for lvl := 0; lvl < field.Type.Len(); lvl++ {
				suffix := fmt.Sprintf("_%02d", lvl)
				cols = append(cols, "bid_px"+suffix, "ask_px"+suffix, "bid_sz"+suffix, "ask_sz"+suffix, "bid_ct"+suffix, "ask_ct"+suffix)
			}
		default:
			cols = append(cols, tag)
		}
	}
	return cols
}

func (e *CsvEncoder) csvRow(v reflect.Value) []string {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()
	var row []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("csv")
		if !ok || tag == "-" {
			continue
		}
		fv := v.Field(i)
		switch {
		case field.Type.Kind() == reflect.Struct && field.Type.Name() == "RHeader":
			h := fv.Interface().(RHeader)
			row = append(row, strconv.Itoa(int(h.RType)), strconv.Itoa(int(h.PublisherID)), strconv.Itoa(int(h.InstrumentID)), e.tsString(h.TsEvent))
		case field.Type.Kind() == reflect.Array && field.Type.Elem().Name() == "BidAskPair":
			for lvl := 0; lvl < fv.Len(); lvl++ {
				lv := fv.Index(lvl).Interface().(BidAskPair)
				row = append(row, e.pxString(lv.BidPx), e.pxString(lv.AskPx),
					strconv.FormatUint(uint64(lv.BidSz), 10), strconv.FormatUint(uint64(lv.AskSz), 10),
					strconv.FormatUint(uint64(lv.BidCt), 10), strconv.FormatUint(uint64(lv.AskCt), 10))
			}
		case field.Type.Kind() == reflect.Int64 && isPriceField(tag):
			row = append(row, e.pxString(fv.Int()))
		case field.Type.Kind() == reflect.Uint64 && isTimestampField(tag):
			row = append(row, e.tsString(fv.Uint()))
		case isCharField(field.Type.Name()):
			row = append(row, string(rune(fv.Uint())))
		case field.Type.Kind() == reflect.Array && field.Type.Elem().Kind() == reflect.Uint8:
			b := make([]byte, fv.Len())
			reflect.Copy(reflect.ValueOf(b), fv)
			row = append(row, TrimNullBytes(b))
		default:
			row = append(row, fmt.Sprintf("%v", fv.Interface()))
		}
	}
	return row
}

func (e *CsvEncoder) pxString(px int64) string {
	if e.PrettyPx {
		return Px(px).String()
	}
	return strconv.FormatInt(px, 10)
}

func (e *CsvEncoder) tsString(ts uint64) string {
	if e.PrettyTs {
		return Ts(ts).String()
	}
	return strconv.FormatUint(ts, 10)
}

// priceFieldTags enumerates every csv tag across the record types that names a
// fixed-precision (1e-9 scale) int64 price field.
var priceFieldTags = map[string]bool{
	"price": true, "ref_price": true, "contBook_clr_price": true,
	"auctInterest_clr_price": true, "ssr_filling_price": true, "ind_match_price": true,
	"upper_collar": true, "lower_collar": true, "bid_px": true, "ask_px": true,
	"open": true, "high": true, "low": true, "close": true,
	"min_price_increment": true, "high_limit_price": true, "low_limit_price": true,
	"max_price_variation": true, "min_price_increment_amount": true,
	"price_ratio": true, "strike_price": true, "leg_price": true,
}

// isPriceField reports whether a csv column name denotes a fixed-precision price.
func isPriceField(tag string) bool {
	return priceFieldTags[tag]
}

// isTimestampField reports whether a csv column name denotes a nanosecond
// timestamp, by the DBN naming convention (a `ts_` prefix).
func isTimestampField(tag string) bool {
	return len(tag) > 3 && tag[:3] == "ts_"
}

// charFieldTypeNames enumerates the enum types whose values are ASCII character
// codes on the wire (e.g. Side_Ask = 'A') and so render as a single character
// rather than their numeric value.
var charFieldTypeNames = map[string]bool{
	"Side": true, "Action": true, "InstrumentClass": true,
	"MatchAlgorithm": true, "UserDefinedInstrument": true,
}

// isCharField reports whether typeName names one of those char-valued enum types.
func isCharField(typeName string) bool {
	return charFieldTypeNames[typeName]
}
