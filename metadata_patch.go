// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN C bindings:
//   https://github.com/databento/dbn/blob/main/c/src/metadata.rs
//

package dbn

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeMetadataErrorCode mirrors the C FFI's encode_metadata return codes, for
// callers that need the same -1/-2/-3/-4 surface as the original bindings.
type EncodeMetadataErrorCode int

const (
	EncodeMetadataOk                EncodeMetadataErrorCode = 0
	EncodeMetadataErrNilBuffer      EncodeMetadataErrorCode = -1
	EncodeMetadataErrBadDataset     EncodeMetadataErrorCode = -2
	EncodeMetadataErrEncodeFailed   EncodeMetadataErrorCode = -3
	EncodeMetadataErrInvalidVersion EncodeMetadataErrorCode = -4
)

// EncodeMetadataToBuffer encodes a minimal Metadata (dataset/schema/start, with both
// stypes pinned to SType_InstrumentId) into buffer and returns the number of bytes
// written, or the matching EncodeMetadataErrorCode as a negative int. This is the one
// Go entry point for C-FFI-shaped metadata encoding; it takes no stype parameter.
func EncodeMetadataToBuffer(buffer []byte, version uint8, dataset string, schema Schema, start uint64) int {
	if buffer == nil {
		return int(EncodeMetadataErrNilBuffer)
	}
	if dataset == "" || len(dataset) > Metadata_DatasetCstrLen {
		return int(EncodeMetadataErrBadDataset)
	}
	if version == 0 || version > HeaderVersion3 {
		return int(EncodeMetadataErrInvalidVersion)
	}

	m := Metadata{
		VersionNum: version,
		Dataset:    dataset,
		Schema:     schema,
		Start:      start,
		End:        UNDEF_TIMESTAMP,
		StypeIn:    SType_InstrumentId,
		StypeOut:   SType_InstrumentId,
	}

	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		return int(EncodeMetadataErrEncodeFailed)
	}
	if buf.Len() > len(buffer) {
		return int(EncodeMetadataErrEncodeFailed)
	}
	n := copy(buffer, buf.Bytes())
	return n
}

///////////////////////////////////////////////////////////////////////////////

// PatchStart overwrites the `start` field of an already-encoded Metadata stream
// in place, without re-encoding the whole header. w must accept a positional write
// at MetadataStartOffset, as an *os.File does.
func PatchStart(w io.WriterAt, start uint64) error {
	return patchUint64At(w, MetadataStartOffset, start)
}

// PatchEnd overwrites the `end` field of an already-encoded Metadata stream in place.
func PatchEnd(w io.WriterAt, end uint64) error {
	return patchUint64At(w, MetadataStartOffset+8, end)
}

// PatchLimit overwrites the `limit` field of an already-encoded Metadata stream
// in place.
func PatchLimit(w io.WriterAt, limit uint64) error {
	return patchUint64At(w, MetadataStartOffset+16, limit)
}

func patchUint64At(w io.WriterAt, offset int64, value uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], value)
	n, err := w.WriteAt(b[:], offset)
	if err != nil {
		return NewIoError("patch metadata field", err)
	}
	if n != len(b) {
		return fmt.Errorf("dbn: short write patching metadata field at offset %d", offset)
	}
	return nil
}
