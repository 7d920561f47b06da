// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/v1.rs,
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/v3.rs
//
// StatMsg exists in two wire shapes across DBN versions: v1/v2 share a 64-byte
// layout with a 32-bit quantity; v3 widens quantity to 64 bits and grows the
// reserved tail, per original_source/rust/dbn/src/v3.rs's test_sizes table.

package dbn

import (
	"encoding/binary"

	"github.com/valyala/fastjson"
)

// UndefStatQuantity is the sentinel for an unset StatMsg.Quantity.
const UndefStatQuantity = -1

// StatMsg is the v1/v2 statistics record (64 bytes total).
type StatMsg struct {
	Header       RHeader `json:"hd" csv:"hd"`
	TsRecv       uint64  `json:"ts_recv" csv:"ts_recv"`
	TsRef        uint64  `json:"ts_ref" csv:"ts_ref"`
	Price        int64   `json:"price" csv:"price"`
	Quantity     int32   `json:"quantity" csv:"quantity"`
	Sequence     uint32  `json:"sequence" csv:"sequence"`
	TsInDelta    int32   `json:"ts_in_delta" csv:"ts_in_delta"`
	StatType     uint16  `json:"stat_type" csv:"stat_type"`
	ChannelID    uint16  `json:"channel_id" csv:"channel_id"`
	UpdateAction uint8   `json:"update_action" csv:"update_action"`
	StatFlags    uint8   `json:"stat_flags" csv:"stat_flags"`
	Reserved     [6]byte `json:"-" csv:"-"`
}

const StatMsg_Size = RHeader_Size + 48

func (*StatMsg) RType() RType {
	return RType_Statistics
}

func (*StatMsg) RSize() uint8 {
	return StatMsg_Size
}

func (r *StatMsg) Fill_Raw(b []byte) error {
	if len(b) < int(StatMsg_Size) {
		return unexpectedBytesError(len(b), int(StatMsg_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	r.TsRecv = binary.LittleEndian.Uint64(body[0:8])
	r.TsRef = binary.LittleEndian.Uint64(body[8:16])
	r.Price = int64(binary.LittleEndian.Uint64(body[16:24]))
	r.Quantity = int32(binary.LittleEndian.Uint32(body[24:28]))
	r.Sequence = binary.LittleEndian.Uint32(body[28:32])
	r.TsInDelta = int32(binary.LittleEndian.Uint32(body[32:36]))
	r.StatType = binary.LittleEndian.Uint16(body[36:38])
	r.ChannelID = binary.LittleEndian.Uint16(body[38:40])
	r.UpdateAction = body[40]
	r.StatFlags = body[41]
	copy(r.Reserved[:], body[42:48])
	return nil
}

func (r *StatMsg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.TsRecv = fastjson_GetUint64FromString(val, "ts_recv")
	r.TsRef = fastjson_GetUint64FromString(val, "ts_ref")
	r.Price = fastjson_GetInt64FromString(val, "price")
	r.Quantity = int32(val.GetInt("quantity"))
	r.Sequence = uint32(val.GetUint("sequence"))
	r.TsInDelta = int32(val.GetInt("ts_in_delta"))
	r.StatType = uint16(val.GetUint("stat_type"))
	r.ChannelID = uint16(val.GetUint("channel_id"))
	r.UpdateAction = uint8(val.GetUint("update_action"))
	r.StatFlags = uint8(val.GetUint("stat_flags"))
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// UndefStatQuantityV3 is the sentinel for an unset StatMsgV3.Quantity.
const UndefStatQuantityV3 int64 = -1

// StatMsgV3 is the v3 statistics record (80 bytes total); it widens Quantity to a
// 64-bit integer relative to StatMsg.
type StatMsgV3 struct {
	Header       RHeader  `json:"hd" csv:"hd"`
	TsRecv       uint64   `json:"ts_recv" csv:"ts_recv"`
	TsRef        uint64   `json:"ts_ref" csv:"ts_ref"`
	Price        int64    `json:"price" csv:"price"`
	Quantity     int64    `json:"quantity" csv:"quantity"`
	Sequence     uint32   `json:"sequence" csv:"sequence"`
	TsInDelta    int32    `json:"ts_in_delta" csv:"ts_in_delta"`
	StatType     uint16   `json:"stat_type" csv:"stat_type"`
	ChannelID    uint16   `json:"channel_id" csv:"channel_id"`
	UpdateAction uint8    `json:"update_action" csv:"update_action"`
	StatFlags    uint8    `json:"stat_flags" csv:"stat_flags"`
	Reserved     [18]byte `json:"-" csv:"-"`
}

const StatMsgV3_Size = RHeader_Size + 64

func (*StatMsgV3) RType() RType {
	return RType_Statistics
}

func (*StatMsgV3) RSize() uint8 {
	return StatMsgV3_Size
}

func (r *StatMsgV3) Fill_Raw(b []byte) error {
	if len(b) < int(StatMsgV3_Size) {
		return unexpectedBytesError(len(b), int(StatMsgV3_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	r.TsRecv = binary.LittleEndian.Uint64(body[0:8])
	r.TsRef = binary.LittleEndian.Uint64(body[8:16])
	r.Price = int64(binary.LittleEndian.Uint64(body[16:24]))
	r.Quantity = int64(binary.LittleEndian.Uint64(body[24:32]))
	r.Sequence = binary.LittleEndian.Uint32(body[32:36])
	r.TsInDelta = int32(binary.LittleEndian.Uint32(body[36:40]))
	r.StatType = binary.LittleEndian.Uint16(body[40:42])
	r.ChannelID = binary.LittleEndian.Uint16(body[42:44])
	r.UpdateAction = body[44]
	r.StatFlags = body[45]
	copy(r.Reserved[:], body[46:64])
	return nil
}

func (r *StatMsgV3) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.TsRecv = fastjson_GetUint64FromString(val, "ts_recv")
	r.TsRef = fastjson_GetUint64FromString(val, "ts_ref")
	r.Price = fastjson_GetInt64FromString(val, "price")
	r.Quantity = fastjson_GetInt64FromString(val, "quantity")
	r.Sequence = uint32(val.GetUint("sequence"))
	r.TsInDelta = int32(val.GetInt("ts_in_delta"))
	r.StatType = uint16(val.GetUint("stat_type"))
	r.ChannelID = uint16(val.GetUint("channel_id"))
	r.UpdateAction = uint8(val.GetUint("update_action"))
	r.StatFlags = uint8(val.GetUint("stat_flags"))
	return nil
}

// ToV3 upgrades a v1/v2 StatMsg to the v3 wire shape, widening Quantity.
func (r *StatMsg) ToV3() *StatMsgV3 {
	return &StatMsgV3{
		Header:       r.Header,
		TsRecv:       r.TsRecv,
		TsRef:        r.TsRef,
		Price:        r.Price,
		Quantity:     int64(r.Quantity),
		Sequence:     r.Sequence,
		TsInDelta:    r.TsInDelta,
		StatType:     r.StatType,
		ChannelID:    r.ChannelID,
		UpdateAction: r.UpdateAction,
		StatFlags:    r.StatFlags,
	}
}
