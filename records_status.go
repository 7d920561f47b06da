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

// StatusMsg is the DataBento Normalized exchange trading-status record.
type StatusMsg struct {
	Header                RHeader `json:"hd" csv:"hd"`
	TsRecv                uint64  `json:"ts_recv" csv:"ts_recv"`
	Action                uint16  `json:"action" csv:"action"`                                   // See StatusAction.
	Reason                uint16  `json:"reason" csv:"reason"`                                   // See StatusReason.
	TradingEvent          uint16  `json:"trading_event" csv:"trading_event"`                     // See TradingEvent.
	IsTrading             uint8   `json:"is_trading" csv:"is_trading"`                           // See TriState.
	IsQuoting             uint8   `json:"is_quoting" csv:"is_quoting"`                           // See TriState.
	IsShortSellRestricted uint8   `json:"is_short_sell_restricted" csv:"is_short_sell_restricted"` // See TriState.
	Reserved              [7]byte `json:"-" csv:"-"`
}

const StatusMsg_Size = RHeader_Size + 24

func (*StatusMsg) RType() RType {
	return RType_Status
}

func (*StatusMsg) RSize() uint8 {
	return StatusMsg_Size
}

func (r *StatusMsg) Fill_Raw(b []byte) error {
	if len(b) < int(StatusMsg_Size) {
		return unexpectedBytesError(len(b), int(StatusMsg_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	r.TsRecv = binary.LittleEndian.Uint64(body[0:8])
	r.Action = binary.LittleEndian.Uint16(body[8:10])
	r.Reason = binary.LittleEndian.Uint16(body[10:12])
	r.TradingEvent = binary.LittleEndian.Uint16(body[12:14])
	r.IsTrading = body[14]
	r.IsQuoting = body[15]
	r.IsShortSellRestricted = body[16]
	copy(r.Reserved[:], body[17:24])
	return nil
}

func (r *StatusMsg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	r.TsRecv = fastjson_GetUint64FromString(val, "ts_recv")
	r.Action = uint16(val.GetUint("action"))
	r.Reason = uint16(val.GetUint("reason"))
	r.TradingEvent = uint16(val.GetUint("trading_event"))
	r.IsTrading = uint8(val.GetUint("is_trading"))
	r.IsQuoting = uint8(val.GetUint("is_quoting"))
	r.IsShortSellRestricted = uint8(val.GetUint("is_short_sell_restricted"))
	return nil
}
