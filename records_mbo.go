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

// MboMsg is the DataBento Normalized market-by-order record: a single order-book
// event (add/cancel/modify/fill/trade/clear) at full order granularity.
type MboMsg struct {
	Header    RHeader `json:"hd" csv:"hd"`                   // The record header.
	OrderID   uint64  `json:"order_id" csv:"order_id"`       // The order ID assigned by the venue.
	Price     int64   `json:"price" csv:"price"`             // The order price where every 1 unit corresponds to 1e-9.
	Size      uint32  `json:"size" csv:"size"`                // The order quantity.
	Flags     uint8   `json:"flags" csv:"flags"`             // A bit field indicating packet end and data quality. See Flags.
	ChannelID uint8   `json:"channel_id" csv:"channel_id"`   // The channel ID assigned by Databento as an incrementing integer starting at zero.
	Action    uint8   `json:"action" csv:"action"`           // The event action: Add, Cancel, Modify, Clear, Trade, or Fill. See Action.
	Side      uint8   `json:"side" csv:"side"`               // The side that initiates the event. See Side.
	TsRecv    uint64  `json:"ts_recv" csv:"ts_recv"`         // The capture-server-received timestamp in ns since the UNIX epoch.
	TsInDelta int32   `json:"ts_in_delta" csv:"ts_in_delta"` // The matching-engine-sending timestamp expressed as ns before ts_recv.
	Sequence  uint32  `json:"sequence" csv:"sequence"`       // The message sequence number assigned at the venue.
}

const MboMsg_Size = RHeader_Size + 40

func (*MboMsg) RType() RType {
	return RType_Mbo
}

func (*MboMsg) RSize() uint8 {
	return MboMsg_Size
}

func (r *MboMsg) Fill_Raw(b []byte) error {
	if len(b) < int(MboMsg_Size) {
		return unexpectedBytesError(len(b), int(MboMsg_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	r.OrderID = binary.LittleEndian.Uint64(body[0:8])
	r.Price = int64(binary.LittleEndian.Uint64(body[8:16]))
	r.Size = binary.LittleEndian.Uint32(body[16:20])
	r.Flags = body[20]
	r.ChannelID = body[21]
	r.Action = body[22]
	r.Side = body[23]
	r.TsRecv = binary.LittleEndian.Uint64(body[24:32])
	r.TsInDelta = int32(binary.LittleEndian.Uint32(body[32:36]))
	r.Sequence = binary.LittleEndian.Uint32(body[36:40])
	return nil
}

func (r *MboMsg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.OrderID = fastjson_GetUint64FromString(val, "order_id")
	r.Price = fastjson_GetInt64FromString(val, "price")
	r.Size = uint32(val.GetUint("size"))
	r.Flags = uint8(val.GetUint("flags"))
	r.ChannelID = uint8(val.GetUint("channel_id"))
	r.Action = uint8(val.GetUint("action"))
	r.Side = uint8(val.GetUint("side"))
	r.TsRecv = fastjson_GetUint64FromString(val, "ts_recv")
	r.TsInDelta = int32(val.GetInt("ts_in_delta"))
	r.Sequence = uint32(val.GetUint("sequence"))
	return nil
}
