// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/v1.rs,
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/v3.rs
//
// ErrorMsg and SystemMsg both widen their embedded c-string message field between
// v1 and v3 (80 -> 320 bytes total), per original_source's test_sizes tables.

package dbn

import "github.com/valyala/fastjson"

// ErrorMsg is the v1 gateway error record (80 bytes total).
type ErrorMsg struct {
	Header RHeader  `json:"hd" csv:"hd"`
	Err    [64]byte `json:"err" csv:"err"` // A free-form error message, NUL-padded.
}

const ErrorMsg_Size = RHeader_Size + 64

func (*ErrorMsg) RType() RType { return RType_Error }
func (*ErrorMsg) RSize() uint8 { return ErrorMsg_Size }

func (r *ErrorMsg) Fill_Raw(b []byte) error {
	if len(b) < int(ErrorMsg_Size) {
		return unexpectedBytesError(len(b), int(ErrorMsg_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	copy(r.Err[:], b[RHeader_Size:ErrorMsg_Size])
	return nil
}

func (r *ErrorMsg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	copy(r.Err[:], val.GetStringBytes("err"))
	return nil
}

// ErrText returns the NUL-trimmed error message.
func (r *ErrorMsg) ErrText() string { return TrimNullBytes(r.Err[:]) }

///////////////////////////////////////////////////////////////////////////////

// ErrorMsgV3 is the v3 gateway error record (320 bytes total): a longer message
// field plus an error code and a flag marking the last error of a burst.
type ErrorMsgV3 struct {
	Header RHeader   `json:"hd" csv:"hd"`
	Err    [302]byte `json:"err" csv:"err"`
	Code   uint8     `json:"code" csv:"code"`
	IsLast uint8     `json:"is_last" csv:"is_last"`
}

const ErrorMsgV3_Size = RHeader_Size + 304

func (*ErrorMsgV3) RType() RType { return RType_Error }
func (*ErrorMsgV3) RSize() uint8 { return ErrorMsgV3_Size }

func (r *ErrorMsgV3) Fill_Raw(b []byte) error {
	if len(b) < int(ErrorMsgV3_Size) {
		return unexpectedBytesError(len(b), int(ErrorMsgV3_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	copy(r.Err[:], body[0:302])
	r.Code = body[302]
	r.IsLast = body[303]
	return nil
}

func (r *ErrorMsgV3) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	copy(r.Err[:], val.GetStringBytes("err"))
	r.Code = uint8(val.GetUint("code"))
	r.IsLast = uint8(val.GetUint("is_last"))
	return nil
}

// ErrText returns the NUL-trimmed error message.
func (r *ErrorMsgV3) ErrText() string { return TrimNullBytes(r.Err[:]) }

// ToV3 upgrades a v1 ErrorMsg to the v3 wire shape.
func (r *ErrorMsg) ToV3() *ErrorMsgV3 {
	out := &ErrorMsgV3{Header: r.Header, IsLast: 1}
	copy(out.Err[:], r.Err[:])
	return out
}

///////////////////////////////////////////////////////////////////////////////

// SystemMsg is the v1 gateway heartbeat/informational record (80 bytes total).
type SystemMsg struct {
	Header RHeader  `json:"hd" csv:"hd"`
	Msg    [64]byte `json:"msg" csv:"msg"`
}

const SystemMsg_Size = RHeader_Size + 64

func (*SystemMsg) RType() RType { return RType_System }
func (*SystemMsg) RSize() uint8 { return SystemMsg_Size }

func (r *SystemMsg) Fill_Raw(b []byte) error {
	if len(b) < int(SystemMsg_Size) {
		return unexpectedBytesError(len(b), int(SystemMsg_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	copy(r.Msg[:], b[RHeader_Size:SystemMsg_Size])
	return nil
}

func (r *SystemMsg) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	copy(r.Msg[:], val.GetStringBytes("msg"))
	return nil
}

// MsgText returns the NUL-trimmed system message. "A heartbeat" indicates a
// keep-alive with no other content, matching the Rust IS_HEARTBEAT constant.
func (r *SystemMsg) MsgText() string { return TrimNullBytes(r.Msg[:]) }

///////////////////////////////////////////////////////////////////////////////

// SystemMsgV3 is the v3 gateway heartbeat/informational record (320 bytes total).
type SystemMsgV3 struct {
	Header RHeader   `json:"hd" csv:"hd"`
	Msg    [303]byte `json:"msg" csv:"msg"`
	Code   uint8     `json:"code" csv:"code"`
}

const SystemMsgV3_Size = RHeader_Size + 304

func (*SystemMsgV3) RType() RType { return RType_System }
func (*SystemMsgV3) RSize() uint8 { return SystemMsgV3_Size }

func (r *SystemMsgV3) Fill_Raw(b []byte) error {
	if len(b) < int(SystemMsgV3_Size) {
		return unexpectedBytesError(len(b), int(SystemMsgV3_Size))
	}
	if err := FillRHeader_Raw(b[0:RHeader_Size], &r.Header); err != nil {
		return err
	}
	body := b[RHeader_Size:]
	copy(r.Msg[:], body[0:303])
	r.Code = body[303]
	return nil
}

func (r *SystemMsgV3) Fill_Json(val *fastjson.Value, header *RHeader) error {
	r.Header = *header
	copy(r.Msg[:], val.GetStringBytes("msg"))
	r.Code = uint8(val.GetUint("code"))
	return nil
}

// MsgText returns the NUL-trimmed system message.
func (r *SystemMsgV3) MsgText() string { return TrimNullBytes(r.Msg[:]) }

// ToV3 upgrades a v1 SystemMsg to the v3 wire shape.
func (r *SystemMsg) ToV3() *SystemMsgV3 {
	out := &SystemMsgV3{Header: r.Header}
	copy(out.Msg[:], r.Msg[:])
	return out
}
