// Copyright (c) 2024 Neomantra Corp

package dbn

import (
	"bufio"
	"encoding/binary"
	"io"
	"sync/atomic"
)

///////////////////////////////////////////////////////////////////////////////

// Default buffer size for decoding
const DEFAULT_DECODE_BUFFER_SIZE = 16 * 1024
// DEFAULT_SCRATCH_BUFFER_SIZE must hold the largest possible record: the header's
// 1-byte Length field counts 4-byte words, so the largest encodable record is
// 255*4 = 1020 bytes (bigger than InstrumentDefMsgV3's 520 bytes plus an 8-byte
// ts_out suffix).
const DEFAULT_SCRATCH_BUFFER_SIZE = 1024

// DbnScanner scans a raw DBN stream
type DbnScanner struct {
	srcReader         io.Reader            // the source we pull data from
	buffReader        *bufio.Reader        // the buffer reader we scan over
	metadata          *Metadata            // the metadata for the stream
	lastError         error                // the last error encountered
	lastRecord        []byte               // last record read, waiting for decode
	lastSize          int                  // the size of the last record read
	abort             atomic.Bool          // cooperative cancellation flag, see Abort/IsAborted
	upgradePolicy     VersionUpgradePolicy // how to handle records from a prior DBN version
	wireVersion       uint8                // the stream's actual on-wire DBN version, captured before any upgrade
	wireSymbolCstrLen uint16               // the wire's actual symbol c-string length, independent of any upgrade to metadata.SymbolCstrLen
}

// Abort requests that subsequent calls to Next() stop without reading further from
// the source. Safe to call concurrently from a different goroutine than the one
// driving the scan loop.
func (s *DbnScanner) Abort() {
	s.abort.Store(true)
}

// IsAborted reports whether Abort has been called.
func (s *DbnScanner) IsAborted() bool {
	return s.abort.Load()
}

// NewDbnScanner creates a new dbn.DbnScanner that decodes records as-is, without
// upgrading them to a newer DBN version.
func NewDbnScanner(sourceReader io.Reader) *DbnScanner {
	return NewDbnScannerWithUpgrade(sourceReader, AsIs)
}

// NewDbnScannerWithUpgrade creates a dbn.DbnScanner that applies policy to both the
// stream's Metadata and every InstrumentDef/Error/System/Statistics record decoded
// through DecodeRecordRef, upgrading them in memory from the stream's actual wire
// version to policy's target version. Visit does not apply policy to records; it
// decodes those rtypes in their v1 shapes.
func NewDbnScannerWithUpgrade(sourceReader io.Reader, policy VersionUpgradePolicy) *DbnScanner {
	return &DbnScanner{
		srcReader:     sourceReader,
		buffReader:    bufio.NewReaderSize(sourceReader, DEFAULT_DECODE_BUFFER_SIZE),
		metadata:      nil,
		lastError:     nil,
		lastRecord:    make([]byte, DEFAULT_SCRATCH_BUFFER_SIZE),
		lastSize:      0,
		upgradePolicy: policy,
	}
}

/////////////////////////////////////////////////////////////////////////////

// Metadata returns the metadata for the stream, or nil if none.
// May try to read the metadata, which may result in an error.
func (s *DbnScanner) Metadata() (*Metadata, error) {
	if s.metadata != nil {
		return s.metadata, nil
	}
	err := s.readMetadata()
	return s.metadata, err
}

// Error returns the last error from Next().  May be io.EOF.
func (s *DbnScanner) Error() error {
	return s.lastError
}

// GetLastHeader returns the RHeader of the last record read, or an error
func (s *DbnScanner) GetLastHeader() (RHeader, error) {
	var rheader RHeader
	err := rheader.Fill_Raw(s.lastRecord[0:RHeader_Size])
	return rheader, err
}

// GetLastRecord returns the raw bytes of the last record read
func (s *DbnScanner) GetLastRecord() []byte {
	return s.lastRecord
}

// GetLastSize returns the size of the last record read
func (s *DbnScanner) GetLastSize() int {
	return s.lastSize
}

// GetLastTsOut returns the trailing 8-byte gateway send-timestamp appended to the
// last record read, and true, when the stream's Metadata.TsOut is set. Returns
// (0, false) when the stream carries no ts_out suffix. Record decoders (Fill_Raw)
// only ever consume each record type's fixed static size, so this suffix is
// otherwise invisible to them.
func (s *DbnScanner) GetLastTsOut() (uint64, bool) {
	if s.metadata == nil || s.metadata.TsOut == 0 || s.lastSize < 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(s.lastRecord[s.lastSize-8 : s.lastSize]), true
}

/////////////////////////////////////////////////////////////////////////////

// readMetadata is an internal method to read metadata from the stream.
func (s *DbnScanner) readMetadata() error {
	if s.metadata != nil {
		return nil
	}
	m, err := ReadMetadata(s.buffReader)
	if err != nil {
		s.lastError = err
		s.lastSize = 0
		return err
	}
	s.wireVersion = m.VersionNum
	s.wireSymbolCstrLen = m.SymbolCstrLen
	if err := applyMetadataUpgrade(m, s.upgradePolicy); err != nil {
		s.lastError = err
		s.lastSize = 0
		return err
	}
	s.lastError = nil
	s.lastSize = 0
	s.metadata = m
	return nil
}

// targetVersion returns the in-memory DBN version this scanner decodes records as,
// after applying its upgrade policy to the stream's wire version.
func (s *DbnScanner) targetVersion() uint8 {
	target, err := targetVersionFor(s.wireVersion, s.upgradePolicy)
	if err != nil {
		return s.wireVersion
	}
	return target
}

// Next parses the next record from the stream
func (s *DbnScanner) Next() bool {
	if s.IsAborted() {
		s.lastError = ErrAborted
		s.lastSize = 0
		return false
	}
	// Read the metadata if we haven't already
	if s.metadata == nil {
		if err := s.readMetadata(); err != nil {
			s.lastError = err
			s.lastSize = 0
			return false
		}
	}

	// Read the next record's header's first byte
	// That stores the record's Length IN WORDS, including Header itself
	recordLen, err := s.buffReader.ReadByte()
	if err != nil {
		s.lastError = err
		s.lastSize = 0
		return false
	}
	s.lastRecord[0] = recordLen
	mustRead := 4 * int(recordLen)

	// Read the header and record
	// 1: because we already got the first size byte
	// :mustRead because we only want a subset of the buffer (the full record size)
	numRead, err := io.ReadFull(s.buffReader, s.lastRecord[1:mustRead])
	if err != nil {
		// we didn't read the full amount by num
		s.lastError = err
		s.lastSize = numRead + 1 // +1 for size byte
		return false
	}
	s.lastError = nil
	s.lastSize = mustRead
	return true
}

// Parses the Scanner's current record as a `Record`.
// This a plain function because receiver functions cannot be generic.
func DbnScannerDecode[R Record, RP RecordPtr[R]](s *DbnScanner) (*R, error) {
	// Ensure there's a record to decode
	if s.lastSize <= RHeader_Size {
		return nil, ErrNoRecord
	}
	recordLen := 4 * int(s.lastRecord[0])
	if s.lastSize < recordLen {
		return nil, ErrMalformedRecord
	}

	// Object to return, instantiating an R and putting it in an RP
	var rp RP = new(R)

	// Make sure it's the right record type
	rtype := RType(s.lastRecord[1])
	if !rtype.IsCompatibleWith(rp.RType()) {
		return nil, unexpectedRTypeError(rtype, rp.RType())
	}

	err := rp.Fill_Raw(s.lastRecord[0:s.lastSize])
	if err != nil {
		return nil, err
	}
	return rp, nil
}

// Parses the current Record and passes it to the Visitor.
func (s *DbnScanner) Visit(visitor Visitor) error {
	// Ensure there's a record to decode
	if s.lastSize <= RHeader_Size {
		return ErrNoRecord
	}
	recordLen := 4 * int(s.lastRecord[0])
	if s.lastSize < recordLen {
		return ErrMalformedRecord
	}

	// Dispatch based on RType Make sure it's the right record type
	switch rtype := RType(s.lastRecord[1]); rtype {
	// Trade
	case RType_Mbp0:
		record := TradeMsg{}
		if err := record.Fill_Raw(s.lastRecord[:TradeMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnMbp0(&record)
		}
	// Market-by-price, 1 depth (also Tbbo, which shares this rtype)
	case RType_Mbp1:
		record := Mbp1Msg{}
		if err := record.Fill_Raw(s.lastRecord[:Mbp1Msg_Size]); err != nil {
			return err
		} else {
			return visitor.OnMbp1(&record)
		}
	// Market-by-price, 10 depth
	case RType_Mbp10:
		record := Mbp10Msg{}
		if err := record.Fill_Raw(s.lastRecord[:Mbp10Msg_Size]); err != nil {
			return err
		} else {
			return visitor.OnMbp10(&record)
		}
	// Market-by-Order
	case RType_Mbo:
		record := MboMsg{}
		if err := record.Fill_Raw(s.lastRecord[:MboMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnMbo(&record)
		}
	// Consolidated market-by-price, 1 depth
	case RType_Cmbp1:
		record := Cmbp1Msg{}
		if err := record.Fill_Raw(s.lastRecord[:Cmbp1Msg_Size]); err != nil {
			return err
		} else {
			return visitor.OnCmbp1(&record)
		}
	// Best bid/offer schemas
	case RType_Bbo1S, RType_Bbo1M:
		record := BboMsg{}
		if err := record.Fill_Raw(s.lastRecord[:BboMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnBbo(&record)
		}
	// Candlestick schemas
	case RType_Ohlcv1S, RType_Ohlcv1M, RType_Ohlcv1H, RType_Ohlcv1D, RType_OhlcvEod, RType_OhlcvDeprecated:
		record := OhlcvMsg{}
		if err := record.Fill_Raw(s.lastRecord[:OhlcvMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnOhlcv(&record)
		}
	// Consolidated BBO schemas
	case RType_Cbbo, RType_Cbbo1S, RType_Cbbo1M, RType_Tcbbo:
		record := CbboMsg{}
		if err := record.Fill_Raw(s.lastRecord[:CbboMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnCbbo(&record)
		}
	// Status
	case RType_Status:
		record := StatusMsg{}
		if err := record.Fill_Raw(s.lastRecord[:StatusMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnStatus(&record)
		}
	// Instrument definitions (v1 shape; callers on v2/v3 streams should prefer
	// ReadDBNToSlice[InstrumentDefMsgV2]/[InstrumentDefMsgV3] directly, since the
	// Visitor interface is necessarily pinned to one wire shape per rtype)
	case RType_InstrumentDef:
		record := InstrumentDefMsg{}
		if err := record.Fill_Raw(s.lastRecord[:InstrumentDefMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnInstrumentDef(&record)
		}
	// Imbalance
	case RType_Imbalance:
		record := ImbalanceMsg{}
		if err := record.Fill_Raw(s.lastRecord[:ImbalanceMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnImbalance(&record)
		}
	// Error
	case RType_Error:
		record := ErrorMsg{}
		if err := record.Fill_Raw(s.lastRecord[:ErrorMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnErrorMsg(&record)
		}
	// SymbolMapping
	case RType_SymbolMapping:
		record := SymbolMappingMsg{}
		if err := record.Fill_Raw(s.lastRecord[:s.lastSize], s.wireSymbolCstrLen); err != nil {
			return err
		} else {
			return visitor.OnSymbolMappingMsg(&record)
		}
	// System
	case RType_System:
		record := SystemMsg{}
		if err := record.Fill_Raw(s.lastRecord[:SystemMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnSystemMsg(&record)
		}
	// Statistics
	case RType_Statistics:
		record := StatMsg{}
		if err := record.Fill_Raw(s.lastRecord[:StatMsg_Size]); err != nil {
			return err
		} else {
			return visitor.OnStatMsg(&record)
		}

	default:
		return ErrUnknownRType
	}
}

// DecodeRecordRef decodes the current record into a type-erased RecordRef, for
// callers (such as filter.go's SchemaFilter/LimitFilter) that want to pass
// heterogeneous records along a pipeline without a Visitor.
func (s *DbnScanner) DecodeRecordRef() (RecordRef, error) {
	if s.lastSize <= RHeader_Size {
		return RecordRef{}, ErrNoRecord
	}
	recordLen := 4 * int(s.lastRecord[0])
	if s.lastSize < recordLen {
		return RecordRef{}, ErrMalformedRecord
	}

	rtype := RType(s.lastRecord[1])
	switch rtype {
	case RType_Mbp0:
		r := &TradeMsg{}
		if err := r.Fill_Raw(s.lastRecord[:TradeMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Mbp1:
		r := &Mbp1Msg{}
		if err := r.Fill_Raw(s.lastRecord[:Mbp1Msg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Mbp10:
		r := &Mbp10Msg{}
		if err := r.Fill_Raw(s.lastRecord[:Mbp10Msg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Mbo:
		r := &MboMsg{}
		if err := r.Fill_Raw(s.lastRecord[:MboMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Cmbp1:
		r := &Cmbp1Msg{}
		if err := r.Fill_Raw(s.lastRecord[:Cmbp1Msg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Bbo1S, RType_Bbo1M:
		r := &BboMsg{}
		if err := r.Fill_Raw(s.lastRecord[:BboMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Ohlcv1S, RType_Ohlcv1M, RType_Ohlcv1H, RType_Ohlcv1D, RType_OhlcvEod, RType_OhlcvDeprecated:
		r := &OhlcvMsg{}
		if err := r.Fill_Raw(s.lastRecord[:OhlcvMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Cbbo, RType_Cbbo1S, RType_Cbbo1M, RType_Tcbbo:
		r := &CbboMsg{}
		if err := r.Fill_Raw(s.lastRecord[:CbboMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Status:
		r := &StatusMsg{}
		if err := r.Fill_Raw(s.lastRecord[:StatusMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_InstrumentDef:
		target := s.targetVersion()
		switch s.wireVersion {
		case HeaderVersion1:
			v1 := &InstrumentDefMsg{}
			if err := v1.Fill_Raw(s.lastRecord[:InstrumentDefMsg_Size]); err != nil {
				return RecordRef{}, err
			}
			return upgradeInstrumentDefRef(s.wireVersion, target, v1, nil, nil, rtype), nil
		case HeaderVersion2:
			v2 := &InstrumentDefMsgV2{}
			if err := v2.Fill_Raw(s.lastRecord[:InstrumentDefMsgV2_Size]); err != nil {
				return RecordRef{}, err
			}
			return upgradeInstrumentDefRef(s.wireVersion, target, nil, v2, nil, rtype), nil
		default:
			v3 := &InstrumentDefMsgV3{}
			if err := v3.Fill_Raw(s.lastRecord[:InstrumentDefMsgV3_Size]); err != nil {
				return RecordRef{}, err
			}
			return upgradeInstrumentDefRef(s.wireVersion, target, nil, nil, v3, rtype), nil
		}
	case RType_Imbalance:
		r := &ImbalanceMsg{}
		if err := r.Fill_Raw(s.lastRecord[:ImbalanceMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_Error:
		target := s.targetVersion()
		if s.wireVersion == HeaderVersion3 {
			v3 := &ErrorMsgV3{}
			if err := v3.Fill_Raw(s.lastRecord[:ErrorMsgV3_Size]); err != nil {
				return RecordRef{}, err
			}
			return upgradeErrorRef(s.wireVersion, target, nil, v3, rtype), nil
		}
		v1 := &ErrorMsg{}
		if err := v1.Fill_Raw(s.lastRecord[:ErrorMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return upgradeErrorRef(s.wireVersion, target, v1, nil, rtype), nil
	case RType_SymbolMapping:
		r := &SymbolMappingMsg{}
		if err := r.Fill_Raw(s.lastRecord[:s.lastSize], s.wireSymbolCstrLen); err != nil {
			return RecordRef{}, err
		}
		return NewRecordRef(r, rtype), nil
	case RType_System:
		target := s.targetVersion()
		if s.wireVersion == HeaderVersion3 {
			v3 := &SystemMsgV3{}
			if err := v3.Fill_Raw(s.lastRecord[:SystemMsgV3_Size]); err != nil {
				return RecordRef{}, err
			}
			return upgradeSystemRef(s.wireVersion, target, nil, v3, rtype), nil
		}
		v1 := &SystemMsg{}
		if err := v1.Fill_Raw(s.lastRecord[:SystemMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return upgradeSystemRef(s.wireVersion, target, v1, nil, rtype), nil
	case RType_Statistics:
		target := s.targetVersion()
		if s.wireVersion == HeaderVersion3 {
			v3 := &StatMsgV3{}
			if err := v3.Fill_Raw(s.lastRecord[:StatMsgV3_Size]); err != nil {
				return RecordRef{}, err
			}
			return upgradeStatRef(s.wireVersion, target, nil, v3, rtype), nil
		}
		v1 := &StatMsg{}
		if err := v1.Fill_Raw(s.lastRecord[:StatMsg_Size]); err != nil {
			return RecordRef{}, err
		}
		return upgradeStatRef(s.wireVersion, target, v1, nil, rtype), nil
	default:
		return RecordRef{}, ErrUnknownRType
	}
}

/////////////////////////////////////////////////////////////////////////////

// ReadDBNToSlice reads the entire raw DBN stream from an io.Reader.
// It will scan for type R (for example TradeMsg) and decode it into a slice of R.
// Returns the slice, the stream's metadata, and any error.
// Example:
//
//	fileReader, err := os.Open(dbnFilename)
//	records, metadata, err := dbn.ReadDBNToSlice[dbn.TradeMsg](fileReader)
func ReadDBNToSlice[R Record, RP RecordPtr[R]](reader io.Reader) ([]R, *Metadata, error) {
	records := make([]R, 0)
	scanner := NewDbnScanner(reader)
	for scanner.Next() {
		r, err := DbnScannerDecode[R, RP](scanner)
		if err != nil {
			return records, scanner.metadata, err
		}
		records = append(records, *r)
	}
	err := scanner.Error()
	if err == io.EOF {
		// In this function, EOF is not propagated as an error
		err = nil
	}

	return records, scanner.metadata, err
}
