// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/record.rs
//

package dbn

import (
	"encoding/binary"

	"github.com/valyala/fastjson"
)

// BidAskPair is one level of a market-by-price book, shared by Mbp1Msg, Mbp10Msg,
// and the BBO/CBBO top-of-book family.
type BidAskPair struct {
	BidPx    int64  `json:"bid_px" csv:"bid_px"`
	AskPx    int64  `json:"ask_px" csv:"ask_px"`
	BidSz    uint32 `json:"bid_sz" csv:"bid_sz"`
	AskSz    uint32 `json:"ask_sz" csv:"ask_sz"`
	BidCt    uint32 `json:"bid_ct" csv:"bid_ct"`
	AskCt    uint32 `json:"ask_ct" csv:"ask_ct"`
}

const BidAskPair_Size = 32

func fillBidAskPair_Raw(body []byte, p *BidAskPair) {
	p.BidPx = int64(binary.LittleEndian.Uint64(body[0:8]))
	p.AskPx = int64(binary.LittleEndian.Uint64(body[8:16]))
	p.BidSz = binary.LittleEndian.Uint32(body[16:20])
	p.AskSz = binary.LittleEndian.Uint32(body[20:24])
	p.BidCt = binary.LittleEndian.Uint32(body[24:28])
	p.AskCt = binary.LittleEndian.Uint32(body[28:32])
}

func fillBidAskPair_Json(val *fastjson.Value, p *BidAskPair) {
	p.BidPx = fastjson_GetInt64FromString(val, "bid_px")
	p.AskPx = fastjson_GetInt64FromString(val, "ask_px")
	p.BidSz = uint32(val.GetUint("bid_sz"))
	p.AskSz = uint32(val.GetUint("ask_sz"))
	p.BidCt = uint32(val.GetUint("bid_ct"))
	p.AskCt = uint32(val.GetUint("ask_ct"))
}

///////////////////////////////////////////////////////////////////////////////

// Mbp1Msg is the DataBento Normalized market-by-price record with a book depth of 1
// (also used by the Tbbo schema, which shares this same rtype/layout).
type Mbp1Msg struct {
	Header RHeader    `json:"hd" csv:"hd"`
	Price  int64      `json:"price" csv:"price"`
	Size   uint32     `json:"size" csv:"size"`
	Action uint8      `json:"action" csv:"action"`
	Side   uint8      `json:"side" csv:"side"`
	Flags  uint8      `json:"flags" csv:"flags"`
	Depth  uint8      `json:"depth" csv:"depth"`
	Levels [1]BidAskPair `json:"levels" csv:"levels"`
}

const Mbp1Msg_Size = RHeader_Size + 16 + BidAskPair_Size

func (*Mbp1Msg) RType() RType {
	return RType_Mbp1
}

func (*Mbp1Msg) RSize() uint8 {
	return Mbp1Msg_Size
}

func (r *Mbp1Msg) Fill_Raw(b []byte) error {
	if len(b) < int(Mbp1Msg_Size) {
		return unexpectedBytesError(len(b), int(Mbp1Msg_Size))
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

func (r *Mbp1Msg) Fill_Json(val *fastjson.Value, header *RHeader) error {
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

// Mbp10Msg is the DataBento Normalized market-by-price record with a book depth of
// 10.
type Mbp10Msg struct {
	Header    RHeader        `json:"hd" csv:"hd"`
	Price     int64          `json:"price" csv:"price"`
	Size      uint32         `json:"size" csv:"size"`
	Action    uint8          `json:"action" csv:"action"`
	Side      uint8          `json:"side" csv:"side"`
	Flags     uint8          `json:"flags" csv:"flags"`
	Depth     uint8          `json:"depth" csv:"depth"`
	TsRecv    uint64         `json:"ts_recv" csv:"ts_recv"`
	TsInDelta int32          `json:"ts_in_delta" csv:"ts_in_delta"`
	Sequence  uint32         `json:"sequence" csv:"sequence"`
	Levels    [10]BidAskPair `json:"levels" csv:"levels"`
}

const Mbp10Msg_Size = RHeader_Size + 32 + 10*BidAskPair_Size

func (*Mbp10Msg) RType() RType {
	return RType_Mbp10
}

func (*Mbp10Msg) RSize() uint8 {
	return Mbp10Msg_Size
}

func (r *Mbp10Msg) Fill_Raw(b []byte) error {
	if len(b) < int(Mbp10Msg_Size) {
		return unexpectedBytesError(len(b), int(Mbp10Msg_Size))
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
	r.TsRecv = binary.LittleEndian.Uint64(body[16:24])
	r.TsInDelta = int32(binary.LittleEndian.Uint32(body[24:28]))
	r.Sequence = binary.LittleEndian.Uint32(body[28:32])
	for i := 0; i < 10; i++ {
		off := 32 + i*BidAskPair_Size
		fillBidAskPair_Raw(body[off:off+BidAskPair_Size], &r.Levels[i])
	}
	return nil
}

func (r *Mbp10Msg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.Price = fastjson_GetInt64FromString(val, "price")
	r.Size = uint32(val.GetUint("size"))
	r.Action = uint8(val.GetUint("action"))
	r.Side = uint8(val.GetUint("side"))
	r.Flags = uint8(val.GetUint("flags"))
	r.Depth = uint8(val.GetUint("depth"))
	r.TsRecv = fastjson_GetUint64FromString(val, "ts_recv")
	r.TsInDelta = int32(val.GetInt("ts_in_delta"))
	r.Sequence = uint32(val.GetUint("sequence"))
	for i, lvl := range val.GetArray("levels") {
		if i >= 10 {
			break
		}
		fillBidAskPair_Json(lvl, &r.Levels[i])
	}
	return nil
}
