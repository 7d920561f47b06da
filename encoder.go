// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/encode/dbn.rs,
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/encode/io_utils.rs
//

package dbn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"syscall"
)

// RecordEncoder writes decoded records back out in their native DBN wire format.
// Every record struct's field order matches its wire layout exactly (verified by
// structs_test.go's unsafe.Sizeof/RSize assertions), so binary.Write reproduces
// the same bytes Fill_Raw decoded from, aside from SymbolMappingMsg, whose
// variable-length c-strings are encoded by hand.
//
// Every record write goes through writeAll/writeFixed, which assemble the record
// as one or more byte slices and hand them to the underlying sink as a single
// net.Buffers write: a *os.File or *net.TCPConn destination gets one vectored
// writev syscall, a partial write is retried until the buffers are drained, and
// syscall.EINTR is retried transparently. The caller then absorbs a broken-pipe
// error from the underlying sink into a nil return: a reader that hung up
// mid-stream is a normal termination, not an encoder failure. Other I/O errors
// propagate unchanged.
type RecordEncoder struct {
	w io.Writer

	// RecordCount is the number of records fully written so far; a record whose
	// write ended in a broken pipe is not counted.
	RecordCount int
}

// NewRecordEncoder creates a RecordEncoder writing to w.
func NewRecordEncoder(w io.Writer) *RecordEncoder {
	return &RecordEncoder{w: w}
}

// NewRecordEncoderToFile opens filename for encoding, or stdout when filename is
// "-", zstd-compressing the stream via MakeCompressedWriter when useZstd is true
// or filename carries a ".zst"/".zstd" suffix. The returned close function must
// be deferred by the caller; it flushes and closes the zstd writer, if any,
// before closing the underlying file.
func NewRecordEncoderToFile(filename string, useZstd bool) (*RecordEncoder, func(), error) {
	writer, closeFn, err := MakeCompressedWriter(filename, useZstd)
	if err != nil {
		return nil, nil, err
	}
	return NewRecordEncoder(writer), closeFn, nil
}

// isBrokenPipe reports whether err is (or wraps) a broken-pipe/connection-reset
// condition from the underlying sink, per original_source's dbn-cli main.rs
// "Handle broken pipe as a non-error" branches.
func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}

// writeAll drains buffers into w. Passing w a net.Buffers lets an *os.File or
// *net.TCPConn destination service the whole write with a single vectored writev
// syscall; any other io.Writer falls back to one Write call per buffer. A short
// write leaves the already-written prefix consumed from buffers, so the loop
// simply retries with what remains until nothing is left or a non-retryable
// error occurs. syscall.EINTR is retried transparently; every other error
// (including a broken pipe, which callers typically absorb themselves) is
// returned to the caller unchanged.
func writeAll(w io.Writer, buffers net.Buffers) error {
	for len(buffers) > 0 {
		_, err := buffers.WriteTo(w)
		if err == nil {
			break
		}
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		return err
	}
	return nil
}

// EncodeMetadata writes m's Metadata header, which must precede any records.
func (e *RecordEncoder) EncodeMetadata(m *Metadata) error {
	if err := m.Write(e.w); err != nil {
		if isBrokenPipe(err) {
			return nil
		}
		return err
	}
	return nil
}

// EncodeRecordRef writes ref's underlying record in its native DBN wire format.
// ref.RType() is written in place of the record's own compiled-in RType so that
// schema-sharing families (BBO/CBBO/candles) round-trip the original cadence.
func (e *RecordEncoder) EncodeRecordRef(ref RecordRef) error {
	return e.encodeRecordRef(ref, 0, false)
}

// EncodeRecordRefWithTsOut writes ref's underlying record followed by the 8-byte
// little-endian ts_out gateway send-timestamp suffix. Callers must ensure ref's
// header Length already accounts for the extra 8 bytes; EncodeRecordRefWithTsOut
// does not patch the header.
func (e *RecordEncoder) EncodeRecordRefWithTsOut(ref RecordRef, tsOut uint64) error {
	return e.encodeRecordRef(ref, tsOut, true)
}

func (e *RecordEncoder) encodeRecordRef(ref RecordRef, tsOut uint64, withTsOut bool) error {
	var err error
	switch r := ref.ptr.(type) {
	case *TradeMsg:
		err = e.writeFixed(r)
	case *MboMsg:
		err = e.writeFixed(r)
	case *Mbp1Msg:
		err = e.writeFixed(r)
	case *Mbp10Msg:
		err = e.writeFixed(r)
	case *BboMsg:
		err = e.writeFixed(r)
	case *CbboMsg:
		err = e.writeFixed(r)
	case *Cmbp1Msg:
		err = e.writeFixed(r)
	case *OhlcvMsg:
		err = e.writeFixed(r)
	case *StatusMsg:
		err = e.writeFixed(r)
	case *ImbalanceMsg:
		err = e.writeFixed(r)
	case *StatMsg:
		err = e.writeFixed(r)
	case *StatMsgV3:
		err = e.writeFixed(r)
	case *ErrorMsg:
		err = e.writeFixed(r)
	case *ErrorMsgV3:
		err = e.writeFixed(r)
	case *SystemMsg:
		err = e.writeFixed(r)
	case *SystemMsgV3:
		err = e.writeFixed(r)
	case *InstrumentDefMsg:
		err = e.writeFixed(r)
	case *InstrumentDefMsgV2:
		err = e.writeFixed(r)
	case *InstrumentDefMsgV3:
		err = e.writeFixed(r)
	case *SymbolMappingMsg:
		err = e.encodeSymbolMapping(r)
	default:
		return ErrUnknownRType
	}
	if err != nil {
		if isBrokenPipe(err) {
			return nil
		}
		return err
	}
	if withTsOut {
		var tsBuf [8]byte
		binary.LittleEndian.PutUint64(tsBuf[:], tsOut)
		if err := writeAll(e.w, net.Buffers{tsBuf[:]}); err != nil {
			if isBrokenPipe(err) {
				return nil
			}
			return err
		}
	}
	e.RecordCount++
	return nil
}

func (e *RecordEncoder) writeFixed(r any) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, r); err != nil {
		return err
	}
	return writeAll(e.w, net.Buffers{buf.Bytes()})
}

// encodeSymbolMapping writes r using the c-string length implied by its already
// decoded header: RHeader.Length counts 4-byte words in the whole record, so the
// two symbol fields evenly split what remains after the SymbolMappingMsg_MinSize
// fixed bytes (header, both stype bytes, and the two timestamps). The
// header, both stype/c-string pairs, and the start/end timestamps are handed to
// writeAll together as one net.Buffers, so the whole record goes out as a single
// vectored write rather than six separate ones.
func (e *RecordEncoder) encodeSymbolMapping(r *SymbolMappingMsg) error {
	cstrLength := (uint16(r.Header.Length)*4 - SymbolMappingMsg_MinSize) / 2

	var headerBuf bytes.Buffer
	if err := binary.Write(&headerBuf, binary.LittleEndian, r.Header); err != nil {
		return err
	}

	inSym := make([]byte, cstrLength)
	copy(inSym, r.StypeInSymbol)
	outSym := make([]byte, cstrLength)
	copy(outSym, r.StypeOutSymbol)

	var tail [16]byte
	binary.LittleEndian.PutUint64(tail[0:8], r.StartTs)
	binary.LittleEndian.PutUint64(tail[8:16], r.EndTs)

	return writeAll(e.w, net.Buffers{
		headerBuf.Bytes(),
		{byte(r.StypeIn)},
		inSym,
		{byte(r.StypeOut)},
		outSym,
		tail[:],
	})
}
