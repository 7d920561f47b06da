// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/encode/json.rs
//

package dbn

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"
)

// JsonEncoder writes records as JSON, one compact object per line (NDJSON) by
// default, or as an indented JSON array when Pretty is set.
type JsonEncoder struct {
	w         io.Writer
	Pretty    bool
	wroteOpen bool
	count     int
}

// NewJsonEncoder creates a JsonEncoder writing to w.
func NewJsonEncoder(w io.Writer) *JsonEncoder {
	return &JsonEncoder{w: w}
}

// EncodeRecord writes one record, respecting the encoder's NDJSON/Pretty mode.
func (e *JsonEncoder) EncodeRecord(record any) error {
	if e.Pretty {
		return e.encodePretty(record)
	}
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.w, "%s\n", b)
	return err
}

func (e *JsonEncoder) encodePretty(record any) error {
	if !e.wroteOpen {
		if _, err := io.WriteString(e.w, "[\n"); err != nil {
			return err
		}
		e.wroteOpen = true
	}
	if e.count > 0 {
		if _, err := io.WriteString(e.w, ",\n"); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(record, "  ", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "  %s", b); err != nil {
		return err
	}
	e.count++
	return nil
}

// Close finalizes a Pretty-mode array; a no-op in NDJSON mode.
func (e *JsonEncoder) Close() error {
	if !e.Pretty || !e.wroteOpen {
		return nil
	}
	_, err := io.WriteString(e.w, "\n]\n")
	return err
}
