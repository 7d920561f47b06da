// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/record_ref.rs
//

package dbn

// RecordRef is a type-erased reference to a decoded record: a pointer to its
// backing bytes-derived struct plus the rtype tag that identifies its concrete
// layout. It lets callers (filters, generic visitors) hold heterogeneous records
// in one stream without a type switch at every call site.
type RecordRef struct {
	ptr   Record
	rtype RType
}

// NewRecordRef wraps a concrete record pointer with its declared rtype. Callers
// normally obtain a RecordRef from a scanner rather than constructing one
// directly; this constructor exists for filters building synthetic records.
func NewRecordRef(ptr Record, rtype RType) RecordRef {
	return RecordRef{ptr: ptr, rtype: rtype}
}

// RType returns the tagged record type.
func (r RecordRef) RType() RType {
	return r.rtype
}

// Header returns the common record header, which every concrete type embeds as its
// first field.
func (r RecordRef) Header() (*RHeader, bool) {
	switch v := r.ptr.(type) {
	case *TradeMsg:
		return &v.Header, true
	case *MboMsg:
		return &v.Header, true
	case *Mbp1Msg:
		return &v.Header, true
	case *Mbp10Msg:
		return &v.Header, true
	case *BboMsg:
		return &v.Header, true
	case *CbboMsg:
		return &v.Header, true
	case *Cmbp1Msg:
		return &v.Header, true
	case *OhlcvMsg:
		return &v.Header, true
	case *StatusMsg:
		return &v.Header, true
	case *ImbalanceMsg:
		return &v.Header, true
	case *StatMsg:
		return &v.Header, true
	case *StatMsgV3:
		return &v.Header, true
	case *ErrorMsg:
		return &v.Header, true
	case *ErrorMsgV3:
		return &v.Header, true
	case *SystemMsg:
		return &v.Header, true
	case *SystemMsgV3:
		return &v.Header, true
	case *SymbolMappingMsg:
		return &v.Header, true
	case *InstrumentDefMsg:
		return &v.Header, true
	case *InstrumentDefMsgV2:
		return &v.Header, true
	case *InstrumentDefMsgV3:
		return &v.Header, true
	default:
		return nil, false
	}
}

// Has reports whether the reference's tagged rtype matches T's static rtype.
func Has[T any, PT RecordPtr[T]](r RecordRef) bool {
	var zero PT
	return zero.RType().IsCompatibleWith(r.rtype)
}

// Get returns the concrete *T and true if the reference holds one, or nil/false
// otherwise. The conversion is a type assertion on the stored pointer, so an
// upgraded record matches only its upgraded type.
func Get[T any, PT RecordPtr[T]](r RecordRef) (PT, bool) {
	if ptr, ok := r.ptr.(PT); ok {
		return ptr, true
	}
	return nil, false
}

// MustGet is like Get but panics if the reference does not hold a *T. It exists
// for call sites that have already validated the rtype via Has.
func MustGet[T any, PT RecordPtr[T]](r RecordRef) PT {
	ptr, ok := Get[T, PT](r)
	if !ok {
		panic("dbn: RecordRef does not hold the requested record type")
	}
	return ptr
}
