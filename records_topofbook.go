// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/record.rs
//
// BBO/CBBO/TBBO/TCBBO/CMBP1 all share Mbp1Msg's 64-byte wire layout (see
// SPEC_FULL.md's Open Question resolution #3); this file holds the family members
// with their own rtype so dispatch can distinguish cadence/consolidation.

package dbn

import (
	"encoding/binary"

	"github.com/valyala/fastjson"
)

// TbboMsg is a record alias: the Tbbo schema reuses Mbp1Msg's rtype and layout
// verbatim, so no separate Go type is required — callers decode Tbbo streams as
// Mbp1Msg directly. See RType_Mbp1's doc comment.
type TbboMsg = Mbp1Msg

// BboMsg is the DataBento Normalized best-bid-and-offer record (Bbo1S/Bbo1M
// schemas): the same 64-byte layout as Mbp1Msg, sampled at a fixed cadence instead
// of on every book update.
type BboMsg struct {
	Header RHeader       `json:"hd" csv:"hd"`
	Price  int64         `json:"price" csv:"price"`
	Size   uint32        `json:"size" csv:"size"`
	Action uint8         `json:"action" csv:"action"`
	Side   uint8         `json:"side" csv:"side"`
	Flags  uint8         `json:"flags" csv:"flags"`
	Depth  uint8         `json:"depth" csv:"depth"`
	Levels [1]BidAskPair `json:"levels" csv:"levels"`
}

const BboMsg_Size = Mbp1Msg_Size

func (*BboMsg) RType() RType {
	return RType_Bbo1S
}

func (*BboMsg) RSize() uint8 {
	return BboMsg_Size
}

func (r *BboMsg) Fill_Raw(b []byte) error {
	if len(b) < int(BboMsg_Size) {
		return unexpectedBytesError(len(b), int(BboMsg_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	r.Price = int64(binary.LittleEndian.Uint64(body[0:8]))
	r.Size = binary.LittleEndian.Uint32(body[8:12])
	r.Action = body[12]
	r.Side = body[13]
	r.Flags = body[14]
	r.Depth = body[15]
	fillBidAskPair_Raw(body[16:48], &r.Levels[0])
	return nil
}

func (r *BboMsg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.Price = fastjson_GetInt64FromString(val, "price")
	r.Size = uint32(val.GetUint("size"))
	r.Action = uint8(val.GetUint("action"))
	r.Side = uint8(val.GetUint("side"))
	r.Flags = uint8(val.GetUint("flags"))
	r.Depth = uint8(val.GetUint("depth"))
	levels := val.GetArray("levels")
	if len(levels) > 0 {
		fillBidAskPair_Json(levels[0], &r.Levels[0])
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// CbboMsg is the DataBento Normalized consolidated best-bid-and-offer record,
// shared by the Cbbo, Cbbo1S, Cbbo1M, and Tcbbo schemas — all four dispatch here
// (see DbnScanner.Visit); the schema/cadence distinction lives in Header.RType.
type CbboMsg struct {
	Header RHeader       `json:"hd" csv:"hd"`
	Price  int64         `json:"price" csv:"price"`
	Size   uint32        `json:"size" csv:"size"`
	Action uint8         `json:"action" csv:"action"`
	Side   uint8         `json:"side" csv:"side"`
	Flags  uint8         `json:"flags" csv:"flags"`
	Depth  uint8         `json:"depth" csv:"depth"`
	Levels [1]BidAskPair `json:"levels" csv:"levels"`
}

const CbboMsg_Size = Mbp1Msg_Size

func (*CbboMsg) RType() RType {
	return RType_Cbbo
}

func (*CbboMsg) RSize() uint8 {
	return CbboMsg_Size
}

func (r *CbboMsg) Fill_Raw(b []byte) error {
	if len(b) < int(CbboMsg_Size) {
		return unexpectedBytesError(len(b), int(CbboMsg_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	r.Price = int64(binary.LittleEndian.Uint64(body[0:8]))
	r.Size = binary.LittleEndian.Uint32(body[8:12])
	r.Action = body[12]
	r.Side = body[13]
	r.Flags = body[14]
	r.Depth = body[15]
	fillBidAskPair_Raw(body[16:48], &r.Levels[0])
	return nil
}

func (r *CbboMsg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.Price = fastjson_GetInt64FromString(val, "price")
	r.Size = uint32(val.GetUint("size"))
	r.Action = uint8(val.GetUint("action"))
	r.Side = uint8(val.GetUint("side"))
	r.Flags = uint8(val.GetUint("flags"))
	r.Depth = uint8(val.GetUint("depth"))
	levels := val.GetArray("levels")
	if len(levels) > 0 {
		fillBidAskPair_Json(levels[0], &r.Levels[0])
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// Cmbp1Msg is the DataBento Normalized consolidated market-by-price record with a
// book depth of 1.
type Cmbp1Msg struct {
	Header RHeader       `json:"hd" csv:"hd"`
	Price  int64         `json:"price" csv:"price"`
	Size   uint32        `json:"size" csv:"size"`
	Action uint8         `json:"action" csv:"action"`
	Side   uint8         `json:"side" csv:"side"`
	Flags  uint8         `json:"flags" csv:"flags"`
	Depth  uint8         `json:"depth" csv:"depth"`
	Levels [1]BidAskPair `json:"levels" csv:"levels"`
}

const Cmbp1Msg_Size = Mbp1Msg_Size

func (*Cmbp1Msg) RType() RType {
	return RType_Cmbp1
}

func (*Cmbp1Msg) RSize() uint8 {
	return Cmbp1Msg_Size
}

func (r *Cmbp1Msg) Fill_Raw(b []byte) error {
	if len(b) < int(Cmbp1Msg_Size) {
		return unexpectedBytesError(len(b), int(Cmbp1Msg_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	r.Price = int64(binary.LittleEndian.Uint64(body[0:8]))
	r.Size = binary.LittleEndian.Uint32(body[8:12])
	r.Action = body[12]
	r.Side = body[13]
	r.Flags = body[14]
	r.Depth = body[15]
	fillBidAskPair_Raw(body[16:48], &r.Levels[0])
	return nil
}

func (r *Cmbp1Msg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.Price = fastjson_GetInt64FromString(val, "price")
	r.Size = uint32(val.GetUint("size"))
	r.Action = uint8(val.GetUint("action"))
	r.Side = uint8(val.GetUint("side"))
	r.Flags = uint8(val.GetUint("flags"))
	r.Depth = uint8(val.GetUint("depth"))
	levels := val.GetArray("levels")
	if len(levels) > 0 {
		fillBidAskPair_Json(levels[0], &r.Levels[0])
	}
	return nil
}
