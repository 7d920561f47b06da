// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/decode/zstd.rs
//

package dbn

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdMagicNumber is the 4-byte little-endian magic that opens every zstd frame.
const zstdMagicNumber = 0xFD2FB528

// zstdSkippableFrameMagicLow and zstdSkippableFrameMagicHigh bound the range of
// magic numbers reserved for zstd skippable frames (0x184D2A50 through 0x184D2A5F).
const (
	zstdSkippableFrameMagicLow  = 0x184D2A50
	zstdSkippableFrameMagicHigh = 0x184D2A60
)

// StreamFraming identifies the outer framing of a byte stream before any DBN
// metadata has been parsed: plain DBN, zstd-compressed DBN, or unrecognized.
type StreamFraming uint8

const (
	StreamFraming_Unknown StreamFraming = iota
	StreamFraming_Dbn
	StreamFraming_Zstd
)

func (f StreamFraming) String() string {
	switch f {
	case StreamFraming_Dbn:
		return "dbn"
	case StreamFraming_Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// DetectFraming peeks the first 4 bytes of r without consuming them and reports
// the stream's outer framing. r must support Peek (as *bufio.Reader does).
func DetectFraming(r *bufio.Reader) (StreamFraming, error) {
	b, err := r.Peek(4)
	if err != nil {
		if err == io.EOF && len(b) == 0 {
			return StreamFraming_Unknown, err
		}
		// A short peek (e.g. a tiny file) still lets us inspect what we have.
		if len(b) < 4 {
			return StreamFraming_Unknown, err
		}
	}
	if b[0] == 'D' && b[1] == 'B' && b[2] == 'N' {
		return StreamFraming_Dbn, nil
	}
	magic := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	if magic == zstdMagicNumber {
		return StreamFraming_Zstd, nil
	}
	if magic >= zstdSkippableFrameMagicLow && magic < zstdSkippableFrameMagicHigh {
		return StreamFraming_Zstd, nil
	}
	return StreamFraming_Unknown, nil
}

// NewAutoDbnScanner sniffs r's framing and transparently wraps it in a zstd
// decoder when the stream is zstd-compressed, returning a DbnScanner ready to
// read metadata and records either way.
func NewAutoDbnScanner(r io.Reader) (*DbnScanner, error) {
	buffered := bufio.NewReaderSize(r, DEFAULT_DECODE_BUFFER_SIZE)
	framing, err := DetectFraming(buffered)
	if err != nil && err != io.EOF {
		return nil, err
	}
	switch framing {
	case StreamFraming_Zstd:
		zr, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, err
		}
		return NewDbnScanner(zr), nil
	case StreamFraming_Dbn:
		return NewDbnScanner(buffered), nil
	default:
		return nil, ErrInvalidDBNFile
	}
}

// NewDbnScannerFromFile opens filename for scanning, or stdin when filename is
// "-". The stream is zstd-decompressed via MakeCompressedReader when useZstd is
// true or filename carries a ".zst"/".zstd" suffix, so this is the filename
// counterpart to NewAutoDbnScanner's bare-io.Reader magic-number sniffing.
// The returned close function must be deferred by the caller to release the
// underlying file.
func NewDbnScannerFromFile(filename string, useZstd bool) (*DbnScanner, func(), error) {
	reader, closer, err := MakeCompressedReader(filename, useZstd)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if closer != nil {
			closer.Close()
		}
	}
	return NewDbnScanner(reader), closeFn, nil
}
