// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn/src/enums.rs
//

package dbn

import (
	"fmt"
	"math"

	"github.com/spf13/pflag"
)

// Compile-time checks that the enum types below actually satisfy pflag.Value,
// so callers can register them as flags (e.g. `flags.Var(&schema, ...)`)
// without this package importing a CLI framework for anything beyond the
// interface it implements.
var (
	_ pflag.Value = (*SType)(nil)
	_ pflag.Value = (*Schema)(nil)
	_ pflag.Value = (*VersionUpgradePolicy)(nil)
)

// Sentinel values for fixed-point prices and timestamps: a field holding one of
// these means "undefined", not a literal price of math.MaxInt64 or a timestamp of
// math.MaxUint64.
const (
	UNDEF_PRICE         int64  = math.MaxInt64
	UNDEF_ORDER_SIZE    uint32 = math.MaxUint32
	UNDEF_TIMESTAMP     uint64 = math.MaxUint64
	UNDEF_STAT_QUANTITY int32  = math.MaxInt32
)

// DBN_VERSION is the highest wire-format version this package produces and
// understands.
const DBN_VERSION uint8 = 3

// MAX_RECORD_LEN is the byte size of the largest catalogued record
// (InstrumentDefMsgV3) plus an 8-byte ts_out suffix.
const MAX_RECORD_LEN = 520 + 8

// Side
type Side uint8

const (
	// A sell order or sell aggressor in a trade.
	Side_Ask Side = 'A'
	// A buy order or a buy aggressor in a trade.
	Side_Bid Side = 'B'
	// No side specified by the original source.
	Side_None Side = 'N'
)

func (s Side) String() string {
	switch s {
	case Side_Ask:
		return "ask"
	case Side_Bid:
		return "bid"
	case Side_None:
		return "none"
	default:
		return "unknown"
	}
}

// Action
type Action uint8

const (
	// An existing order was modified.
	Action_Modify Action = 'M'
	// A trade executed.
	Action_Trade Action = 'T'
	// An existing order was filled.
	Action_Fill Action = 'F'
	// An order was cancelled.
	Action_Cancel Action = 'C'
	// A new order was added.
	Action_Add Action = 'A'
	// Reset the book; clear all orders for an instrument.
	Action_Clear Action = 'R'
)

func (a Action) String() string {
	switch a {
	case Action_Modify:
		return "modify"
	case Action_Trade:
		return "trade"
	case Action_Fill:
		return "fill"
	case Action_Cancel:
		return "cancel"
	case Action_Add:
		return "add"
	case Action_Clear:
		return "clear"
	default:
		return "unknown"
	}
}

// InstrumentClass
type InstrumentClass uint8

const (
	// A bond.
	InstrumentClass_Bond InstrumentClass = 'B'
	// A call option.
	InstrumentClass_Call InstrumentClass = 'C'
	// A future.
	InstrumentClass_Future InstrumentClass = 'F'
	// A stock.
	InstrumentClass_Stock InstrumentClass = 'K'
	// A spread composed of multiple instrument classes
	InstrumentClass_MixedSpread InstrumentClass = 'M'
	// A put option
	InstrumentClass_Put InstrumentClass = 'P'
	// A spread composed of futures.
	InstrumentClass_FutureSpread InstrumentClass = 'S'
	// A spread composed of options.
	InstrumentClass_OptionSpread InstrumentClass = 'T'
	// A foreign exchange spot.
	InstrumentClass_FxSpot InstrumentClass = 'X'
)

func (c InstrumentClass) String() string {
	switch c {
	case InstrumentClass_Bond:
		return "bond"
	case InstrumentClass_Call:
		return "call"
	case InstrumentClass_Future:
		return "future"
	case InstrumentClass_Stock:
		return "stock"
	case InstrumentClass_MixedSpread:
		return "mixed_spread"
	case InstrumentClass_Put:
		return "put"
	case InstrumentClass_FutureSpread:
		return "future_spread"
	case InstrumentClass_OptionSpread:
		return "option_spread"
	case InstrumentClass_FxSpot:
		return "fx_spot"
	default:
		return "unknown"
	}
}

// MatchAlgorithm
type MatchAlgorithm uint8

const (
	// First-in-first-out matching.
	MatchAlgorithm_Fifo MatchAlgorithm = 'F'
	// A configurable match algorithm.
	MatchAlgorithm_Configurable MatchAlgorithm = 'K'
	// Trade quantity is allocated to resting orders based on a pro-rata percentage:
	// resting order quantity divided by total quantity.
	MatchAlgorithm_ProRata MatchAlgorithm = 'C'
	// Like [`Self::Fifo`] but with LMM allocations prior to FIFO allocations.
	MatchAlgorithm_FifoLmm MatchAlgorithm = 'T'
	// Like [`Self::ProRata`] but includes a configurable allocation to the first order that improves the market.
	MatchAlgorithm_ThresholdProRata MatchAlgorithm = 'O'
	// Like [`Self::FifoLmm`] but includes a configurable allocation to the first order that improves the market.
	MatchAlgorithm_FifoTopLmm MatchAlgorithm = 'S'
	// Like [`Self::ThresholdProRata`] but includes a special priority to LMMs.
	MatchAlgorithm_ThresholdProRataLmm MatchAlgorithm = 'Q'
	// Special variant used only for Eurodollar futures on CME. See
	// [CME documentation](https://www.cmegroup.com/confluence/display/EPICSANDBOX/Supported+Matching+Algorithms#SupportedMatchingAlgorithms-Pro-RataAllocationforEurodollarFutures).
	MatchAlgorithm_EurodollarFutures MatchAlgorithm = 'Y'
)

func (m MatchAlgorithm) String() string {
	switch m {
	case MatchAlgorithm_Fifo:
		return "fifo"
	case MatchAlgorithm_Configurable:
		return "configurable"
	case MatchAlgorithm_ProRata:
		return "pro_rata"
	case MatchAlgorithm_FifoLmm:
		return "fifo_lmm"
	case MatchAlgorithm_ThresholdProRata:
		return "threshold_pro_rata"
	case MatchAlgorithm_FifoTopLmm:
		return "fifo_top_lmm"
	case MatchAlgorithm_ThresholdProRataLmm:
		return "threshold_pro_rata_lmm"
	case MatchAlgorithm_EurodollarFutures:
		return "eurodollar_futures"
	default:
		return "unknown"
	}
}

// UserDefinedInstrument
type UserDefinedInstrument uint8

const (
	/// The instrument is not user-defined.
	UserDefinedInstrument_No UserDefinedInstrument = 'N'
	/// The instrument is user-defined.
	UserDefinedInstrument_Yes UserDefinedInstrument = 'Y'
)

func (u UserDefinedInstrument) String() string {
	switch u {
	case UserDefinedInstrument_No:
		return "no"
	case UserDefinedInstrument_Yes:
		return "yes"
	default:
		return "unknown"
	}
}

// SType Symbology type
type SType uint8

const (
	/// Symbology using a unique numeric ID.
	SType_InstrumentId SType = 0
	/// Symbology using the original symbols provided by the publisher.
	SType_RawSymbol SType = 1
	/// Deprecated: A set of Databento-specific symbologies for referring to groups of symbols.
	SType_Smart SType = 2
	/// A Databento-specific symbology where one symbol may point to different
	/// instruments at different points of time, e.g. to always refer to the front month
	/// future.
	SType_Continuous SType = 3
	/// A Databento-specific symbology for referring to a group of symbols by one
	/// "parent" symbol, e.g. ES.FUT to refer to all ES futures.
	SType_Parent SType = 4
	/// Symbology for US equities using NASDAQ Integrated suffix conventions.
	SType_Nasdaq SType = 5
	/// Symbology for US equities using CMS suffix conventions.
	SType_Cms SType = 6
)

func (s SType) String() string {
	switch s {
	case SType_InstrumentId:
		return "instrument_id"
	case SType_RawSymbol:
		return "raw_symbol"
	case SType_Smart:
		return "smart"
	case SType_Continuous:
		return "continuous"
	case SType_Parent:
		return "parent"
	case SType_Nasdaq:
		return "nasdaq"
	case SType_Cms:
		return "cms"
	default:
		return "unknown"
	}
}

// Type implements pflag.Value.
func (s *SType) Type() string { return "SType" }

// Set implements pflag.Value.
func (s *SType) Set(value string) error {
	for cand := SType(0); cand <= SType_Cms; cand++ {
		if cand.String() == value {
			*s = cand
			return nil
		}
	}
	return fmt.Errorf("dbn: unknown stype %q", value)
}

type RType uint8

const (
	// Sentinel values for different DBN record types.
	// comments from: https://github.com/databento/dbn/blob/main/rust/dbn/src/enums.rs
	RType_Mbp0            RType = 0x00 // Denotes a market-by-price record with a book depth of 0 (used for the Trades schema)
	RType_Mbp1            RType = 0x01 // Denotes a market-by-price record with a book depth of 1 (also used for the Tbbo schema)
	RType_Mbp10           RType = 0x0A // Denotes a market-by-price record with a book depth of 10.
	RType_OhlcvDeprecated RType = 0x11 // Deprecated in 0.4.0. Denotes an open, high, low, close, and volume record at an unspecified cadence.
	RType_Ohlcv1S         RType = 0x20 // Denotes an open, high, low, close, and volume record at a 1-second cadence.
	RType_Ohlcv1M         RType = 0x21 // Denotes an open, high, low, close, and volume record at a 1-minute cadence.
	RType_Ohlcv1H         RType = 0x22 // Denotes an open, high, low, close, and volume record at an hourly cadence.
	RType_Ohlcv1D         RType = 0x23 // Denotes an open, high, low, close, and volume record at a daily cadence based on the UTC date.
	RType_OhlcvEod        RType = 0x24 // Denotes an open, high, low, close, and volume record at a daily cadence based on the end of the trading session.
	RType_Status          RType = 0x12 // Denotes an exchange status record.
	RType_InstrumentDef   RType = 0x13 // Denotes an instrument definition record.
	RType_Imbalance       RType = 0x14 // Denotes an order imbalance record.
	RType_Error           RType = 0x15 // Denotes an error from gateway.
	RType_SymbolMapping   RType = 0x16 // Denotes a symbol mapping record.
	RType_System          RType = 0x17 // Denotes a non-error message from the gateway. Also used for heartbeats.
	RType_Statistics      RType = 0x18 // Denotes a statistics record from the publisher (not calculated by Databento).
	RType_Mbo             RType = 0xA0 // Denotes a market by order record.
	RType_Cmbp1           RType = 0xB1 // Denotes a consolidated market-by-price record with a book depth of 1.
	RType_Cbbo            RType = 0xB2 // Denotes a consolidated best bid and offer record.
	RType_Cbbo1S          RType = 0xC0 // Denotes a consolidated best bid and offer record at a 1-second cadence.
	RType_Cbbo1M          RType = 0xC1 // Denotes a consolidated best bid and offer record at a 1-minute cadence.
	RType_Tcbbo           RType = 0xC2 // Denotes a consolidated best bid and offer record subsampled on trades.
	RType_Bbo1S           RType = 0xC3 // Denotes a best bid and offer record at a 1-second cadence.
	RType_Bbo1M           RType = 0xC4 // Denotes a best bid and offer record at a 1-minute cadence.
	RType_Unknown         RType = 0xFF // Golang-only: Unknown or invalid record type
)

// String renders the record type mnemonic, matching the Rust `RType::Debug` output.
func (r RType) String() string {
	switch r {
	case RType_Mbp0:
		return "Mbp0"
	case RType_Mbp1:
		return "Mbp1"
	case RType_Mbp10:
		return "Mbp10"
	case RType_OhlcvDeprecated:
		return "OhlcvDeprecated"
	case RType_Ohlcv1S:
		return "Ohlcv1S"
	case RType_Ohlcv1M:
		return "Ohlcv1M"
	case RType_Ohlcv1H:
		return "Ohlcv1H"
	case RType_Ohlcv1D:
		return "Ohlcv1D"
	case RType_OhlcvEod:
		return "OhlcvEod"
	case RType_Status:
		return "Status"
	case RType_InstrumentDef:
		return "InstrumentDef"
	case RType_Imbalance:
		return "Imbalance"
	case RType_Error:
		return "Error"
	case RType_SymbolMapping:
		return "SymbolMapping"
	case RType_System:
		return "System"
	case RType_Statistics:
		return "Statistics"
	case RType_Mbo:
		return "Mbo"
	case RType_Cmbp1:
		return "Cmbp1"
	case RType_Cbbo:
		return "Cbbo"
	case RType_Cbbo1S:
		return "Cbbo1S"
	case RType_Cbbo1M:
		return "Cbbo1M"
	case RType_Tcbbo:
		return "Tcbbo"
	case RType_Bbo1S:
		return "Bbo1S"
	case RType_Bbo1M:
		return "Bbo1M"
	default:
		return "Unknown"
	}
}

type Schema uint16

const (
	/// The data record schema. u16::MAX indicates a potential mix of schemas and record types, which will always be the case for live data.
	Schema_Mixed Schema = 0xFFFF
	/// Market by order.
	Schema_Mbo Schema = 0
	/// Market by price with a book depth of 1.
	Schema_Mbp1 Schema = 1
	/// Market by price with a book depth of 10.
	Schema_Mbp10 Schema = 2
	/// All trade events with the best bid and offer (BBO) immediately **before** the
	/// effect of the trade.
	Schema_Tbbo Schema = 3
	/// All trade events.
	Schema_Trades Schema = 4
	/// Open, high, low, close, and volume at a one-second interval.
	Schema_Ohlcv1S Schema = 5
	/// Open, high, low, close, and volume at a one-minute interval.
	Schema_Ohlcv1M Schema = 6
	/// Open, high, low, close, and volume at an hourly interval.
	Schema_Ohlcv1H Schema = 7
	/// Open, high, low, close, and volume at a daily interval based on the UTC date.
	Schema_Ohlcv1D Schema = 8
	/// Instrument definitions.
	Schema_Definition Schema = 9
	/// Additional data disseminated by publishers.
	Schema_Statistics Schema = 10
	/// Trading status events.
	Schema_Status Schema = 11
	/// Auction imbalance events.
	Schema_Imbalance Schema = 12
	/// Open, high, low, close, and volume at a daily cadence based on the end of the
	/// trading session.
	Schema_OhlcvEod Schema = 13
	/// Consolidated market by price with a book depth of 1.
	Schema_Cmbp1 Schema = 14
	/// All trade events with the consolidated best bid and offer (CBBO) immediately
	/// **before** the effect of the trade.
	Schema_Tcbbo Schema = 15
	/// Consolidated best bid and offer subsampled at a 1-second cadence.
	Schema_Cbbo1S Schema = 16
	/// Consolidated best bid and offer subsampled at a 1-minute cadence.
	Schema_Cbbo1M Schema = 17
	/// Best bid and offer subsampled at a 1-second cadence.
	Schema_Bbo1S Schema = 18
	/// Best bid and offer subsampled at a 1-minute cadence.
	Schema_Bbo1M Schema = 19
)

// String renders the schema name using the lowercase-hyphenated form Databento uses
// in dataset documentation and HTTP APIs.
func (s Schema) String() string {
	switch s {
	case Schema_Mixed:
		return "mixed"
	case Schema_Mbo:
		return "mbo"
	case Schema_Mbp1:
		return "mbp-1"
	case Schema_Mbp10:
		return "mbp-10"
	case Schema_Tbbo:
		return "tbbo"
	case Schema_Trades:
		return "trades"
	case Schema_Ohlcv1S:
		return "ohlcv-1s"
	case Schema_Ohlcv1M:
		return "ohlcv-1m"
	case Schema_Ohlcv1H:
		return "ohlcv-1h"
	case Schema_Ohlcv1D:
		return "ohlcv-1d"
	case Schema_Definition:
		return "definition"
	case Schema_Statistics:
		return "statistics"
	case Schema_Status:
		return "status"
	case Schema_Imbalance:
		return "imbalance"
	case Schema_OhlcvEod:
		return "ohlcv-eod"
	case Schema_Cmbp1:
		return "cmbp-1"
	case Schema_Tcbbo:
		return "tcbbo"
	case Schema_Cbbo1S:
		return "cbbo-1s"
	case Schema_Cbbo1M:
		return "cbbo-1m"
	case Schema_Bbo1S:
		return "bbo-1s"
	case Schema_Bbo1M:
		return "bbo-1m"
	default:
		return "unknown"
	}
}

// Type implements pflag.Value.
func (s *Schema) Type() string { return "Schema" }

// Set implements pflag.Value, parsing the lowercase-hyphenated schema name.
func (s *Schema) Set(value string) error {
	for cand := Schema(0); cand < 20; cand++ {
		if cand.String() == value {
			*s = cand
			return nil
		}
	}
	if value == "mixed" {
		*s = Schema_Mixed
		return nil
	}
	return fmt.Errorf("dbn: unknown schema %q", value)
}

// RTypeFromSchema returns the rtype of records the given schema's stream decodes
// to. Tbbo and Mbp1 share an rtype, since their wire layout is identical; a
// SchemaFilter built from either only needs the rtype.
func RTypeFromSchema(s Schema) RType {
	switch s {
	case Schema_Mbo:
		return RType_Mbo
	case Schema_Mbp1, Schema_Tbbo:
		return RType_Mbp1
	case Schema_Mbp10:
		return RType_Mbp10
	case Schema_Trades:
		return RType_Mbp0
	case Schema_Ohlcv1S:
		return RType_Ohlcv1S
	case Schema_Ohlcv1M:
		return RType_Ohlcv1M
	case Schema_Ohlcv1H:
		return RType_Ohlcv1H
	case Schema_Ohlcv1D:
		return RType_Ohlcv1D
	case Schema_OhlcvEod:
		return RType_OhlcvEod
	case Schema_Definition:
		return RType_InstrumentDef
	case Schema_Statistics:
		return RType_Statistics
	case Schema_Status:
		return RType_Status
	case Schema_Imbalance:
		return RType_Imbalance
	case Schema_Cmbp1:
		return RType_Cmbp1
	case Schema_Tcbbo:
		return RType_Tcbbo
	case Schema_Cbbo1S:
		return RType_Cbbo1S
	case Schema_Cbbo1M:
		return RType_Cbbo1M
	case Schema_Bbo1S:
		return RType_Bbo1S
	case Schema_Bbo1M:
		return RType_Bbo1M
	default:
		return RType(0)
	}
}

// / Encoding A data encoding format.
type Encoding uint8

const (
	/// Databento Binary Encoding.
	Dbn Encoding = 0
	/// Comma-separated values.
	Csv Encoding = 1
	/// JavaScript object notation.
	Json Encoding = 2
)

func (e Encoding) String() string {
	switch e {
	case Dbn:
		return "dbn"
	case Csv:
		return "csv"
	case Json:
		return "json"
	default:
		return "unknown"
	}
}

// / A compression format or none if uncompressed.
type Compression uint8

const (
	/// Uncompressed.
	None Compression = 0
	/// Zstandard compressed.
	ZStd Compression = 1
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case ZStd:
		return "zstd"
	default:
		return "unknown"
	}
}

// / Constants for the bit flag record fields.
const (
	/// Indicates it's the last message in the packet from the venue for a given
	/// `instrument_id`.
	RFlag_LAST uint8 = 1 << 7
	/// Indicates a top-of-book message, not an individual order.
	RFlag_TOB uint8 = 1 << 6
	/// Indicates the message was sourced from a replay, such as a snapshot server.
	RFlag_SNAPSHOT uint8 = 1 << 5
	/// Indicates an aggregated price level message, not an individual order.
	RFlag_MBP uint8 = 1 << 4
	/// Indicates the `ts_recv` value is inaccurate due to clock issues or packet
	/// reordering.
	RFlag_BAD_TS_RECV uint8 = 1 << 3
	/// Indicates an unrecoverable gap was detected in the channel.
	RFlag_MAYBE_BAD_BOOK uint8 = 1 << 2
)

// / The type of [`InstrumentDefMsg`](crate::record::InstrumentDefMsg) update.
type SecurityUpdateAction uint8

const (
	/// A new instrument definition.
	Add SecurityUpdateAction = 'A'
	/// A modified instrument definition of an existing one.
	Modify SecurityUpdateAction = 'M'
	/// Removal of an instrument definition.
	Delete SecurityUpdateAction = 'D'
	// Deprecated: Still present in legacy files."
	Invalid SecurityUpdateAction = '~'
)

func (a SecurityUpdateAction) String() string {
	switch a {
	case Add:
		return "add"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// / The type of statistic contained in a [`StatMsg`](crate::record::StatMsg).
type StatType uint8

const (
	/// The price of the first trade of an instrument. `price` will be set.
	StatType_OpeningPrice StatType = 1
	/// The probable price of the first trade of an instrument published during pre-
	/// open. Both `price` and `quantity` will be set.
	StatType_IndicativeOpeningPrice StatType = 2
	/// The settlement price of an instrument. `price` will be set and `flags` indicate
	/// whether the price is final or preliminary and actual or theoretical. `ts_ref`
	/// will indicate the trading date of the settlement price.
	StatType_SettlementPrice StatType = 3
	/// The lowest trade price of an instrument during the trading session. `price` will
	/// be set.
	StatType_TradingSessionLowPrice StatType = 4
	/// The highest trade price of an instrument during the trading session. `price` will
	/// be set.
	StatType_TradingSessionHighPrice StatType = 5
	/// The number of contracts cleared for an instrument on the previous trading date.
	/// `quantity` will be set. `ts_ref` will indicate the trading date of the volume.
	StatType_ClearedVolume StatType = 6
	/// The lowest offer price for an instrument during the trading session. `price`
	/// will be set.
	StatType_LowestOffer StatType = 7
	/// The highest bid price for an instrument during the trading session. `price`
	/// will be set.
	StatType_HighestBid StatType = 8
	/// The current number of outstanding contracts of an instrument. `quantity` will
	/// be set. `ts_ref` will indicate the trading date for which the open interest was
	/// calculated.
	StatType_OpenInterest StatType = 9
	/// The volume-weighted average price (VWAP) for a fixing period. `price` will be
	/// set.
	StatType_FixingPrice StatType = 10
	/// The last trade price during a trading session. `price` will be set.
	StatType_ClosePrice StatType = 11
	/// The change in price from the close price of the previous trading session to the
	/// most recent trading session. `price` will be set.
	StatType_NetChange StatType = 12
	/// The volume-weighted average price (VWAP) during the trading session.
	/// `price` will be set to the VWAP while `quantity` will be the traded
	/// volume.
	StatType_Vwap StatType = 13
)

func (t StatType) String() string {
	switch t {
	case StatType_OpeningPrice:
		return "opening_price"
	case StatType_IndicativeOpeningPrice:
		return "indicative_opening_price"
	case StatType_SettlementPrice:
		return "settlement_price"
	case StatType_TradingSessionLowPrice:
		return "trading_session_low_price"
	case StatType_TradingSessionHighPrice:
		return "trading_session_high_price"
	case StatType_ClearedVolume:
		return "cleared_volume"
	case StatType_LowestOffer:
		return "lowest_offer"
	case StatType_HighestBid:
		return "highest_bid"
	case StatType_OpenInterest:
		return "open_interest"
	case StatType_FixingPrice:
		return "fixing_price"
	case StatType_ClosePrice:
		return "close_price"
	case StatType_NetChange:
		return "net_change"
	case StatType_Vwap:
		return "vwap"
	default:
		return "unknown"
	}
}

// / The type of [`StatMsg`](crate::record::StatMsg) update.
type StatUpdateAction uint8

const (
	/// A new statistic.
	StatUpdateAction_New StatUpdateAction = 1
	/// A removal of a statistic.
	StatUpdateAction_Delete StatUpdateAction = 2
)

func (a StatUpdateAction) String() string {
	switch a {
	case StatUpdateAction_New:
		return "new"
	case StatUpdateAction_Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// / The primary enum for the type of [`StatusMsg`](crate::record::StatusMsg) update.
type StatusAction uint8

const (
	/// No change.
	StatusAction_None StatusAction = 0
	/// The instrument is in a pre-open period.
	StatusAction_PreOpen StatusAction = 1
	/// The instrument is in a pre-cross period.
	StatusAction_PreCross StatusAction = 2
	/// The instrument is quoting but not trading.
	StatusAction_Quoting StatusAction = 3
	/// The instrument is in a cross/auction.
	StatusAction_Cross StatusAction = 4
	/// The instrument is being opened through a trading rotation.
	StatusAction_Rotation StatusAction = 5
	/// A new price indication is available for the instrument.
	StatusAction_NewPriceIndication StatusAction = 6
	/// The instrument is trading.
	StatusAction_Trading StatusAction = 7
	/// Trading in the instrument has been halted.
	StatusAction_Halt StatusAction = 8
	/// Trading in the instrument has been paused.
	StatusAction_Pause StatusAction = 9
	/// Trading in the instrument has been suspended.
	StatusAction_Suspend StatusAction = 10
	/// The instrument is in a pre-close period.
	StatusAction_PreClose StatusAction = 11
	/// Trading in the instrument has closed.
	StatusAction_Close StatusAction = 12
	/// The instrument is in a post-close period.
	StatusAction_PostClose StatusAction = 13
	/// A change in short-selling restrictions.
	StatusAction_SsrChange StatusAction = 14
	/// The instrument is not available for trading, either trading has closed or been
	/// halted.
	StatusAction_NotAvailableForTrading StatusAction = 15
)

func (a StatusAction) String() string {
	switch a {
	case StatusAction_None:
		return "none"
	case StatusAction_PreOpen:
		return "pre_open"
	case StatusAction_PreCross:
		return "pre_cross"
	case StatusAction_Quoting:
		return "quoting"
	case StatusAction_Cross:
		return "cross"
	case StatusAction_Rotation:
		return "rotation"
	case StatusAction_NewPriceIndication:
		return "new_price_indication"
	case StatusAction_Trading:
		return "trading"
	case StatusAction_Halt:
		return "halt"
	case StatusAction_Pause:
		return "pause"
	case StatusAction_Suspend:
		return "suspend"
	case StatusAction_PreClose:
		return "pre_close"
	case StatusAction_Close:
		return "close"
	case StatusAction_PostClose:
		return "post_close"
	case StatusAction_SsrChange:
		return "ssr_change"
	case StatusAction_NotAvailableForTrading:
		return "not_available_for_trading"
	default:
		return "unknown"
	}
}

// / The secondary enum for a [`StatusMsg`](crate::record::StatusMsg) update, explains
// / the cause of a halt or other change in `action`.
type StatusReason uint8

const (
	/// No reason is given.
	StatusReason_None StatusReason = 0
	/// The change in status occurred as scheduled.
	StatusReason_Scheduled StatusReason = 1
	/// The instrument stopped due to a market surveillance intervention.
	StatusReason_SurveillanceIntervention StatusReason = 2
	/// The status changed due to activity in the market.
	StatusReason_MarketEvent StatusReason = 3
	/// The derivative instrument began trading.
	StatusReason_InstrumentActivation StatusReason = 4
	/// The derivative instrument expired.
	StatusReason_InstrumentExpiration StatusReason = 5
	/// Recovery in progress.
	StatusReason_RecoveryInProcess StatusReason = 6
	/// The status change was caused by a regulatory action.
	StatusReason_Regulatory StatusReason = 10
	/// The status change was caused by an administrative action.
	StatusReason_Administrative StatusReason = 11
	/// The status change was caused by the issuer not being compliance with regulatory
	/// requirements.
	StatusReason_NonCompliance StatusReason = 12
	/// Trading halted because the issuer's filings are not current.
	StatusReason_FilingsNotCurrent StatusReason = 13
	/// Trading halted due to an SEC trading suspension.
	StatusReason_SecTradingSuspension StatusReason = 14
	/// The status changed because a new issue is available.
	StatusReason_NewIssue StatusReason = 15
	/// The status changed because an issue is available.
	StatusReason_IssueAvailable StatusReason = 16
	/// The status changed because the issue was reviewed.
	StatusReason_IssuesReviewed StatusReason = 17
	/// The status changed because the filing requirements were satisfied.
	StatusReason_FilingReqsSatisfied StatusReason = 18
	/// Relevant news is pending.
	StatusReason_NewsPending StatusReason = 30
	/// Relevant news was released.
	StatusReason_NewsReleased StatusReason = 31
	/// The news has been fully disseminated and times are available for the resumption
	/// in quoting and trading.
	StatusReason_NewsAndResumptionTimes StatusReason = 32
	/// The relevants news was not forthcoming.
	StatusReason_NewsNotForthcoming StatusReason = 33
	/// Halted for order imbalance.
	StatusReason_OrderImbalance StatusReason = 40
	/// The instrument hit limit up or limit down.
	StatusReason_LuldPause StatusReason = 50
	/// An operational issue occurred with the venue.
	StatusReason_Operational StatusReason = 60
	/// The status changed until the exchange receives additional information.
	StatusReason_AdditionalInformationRequested StatusReason = 70
	/// Trading halted due to merger becoming effective.
	StatusReason_MergerEffective StatusReason = 80
	/// Trading is halted in an ETF due to conditions with the component securities.
	StatusReason_Etf StatusReason = 90
	/// Trading is halted for a corporate action.
	StatusReason_CorporateAction StatusReason = 100
	/// Trading is halted because the instrument is a new offering.
	StatusReason_NewSecurityOffering StatusReason = 110
	/// Halted due to the market-wide circuit breaker level 1.
	StatusReason_MarketWideHaltLevel1 StatusReason = 120
	/// Halted due to the market-wide circuit breaker level 2.
	StatusReason_MarketWideHaltLevel2 StatusReason = 121
	/// Halted due to the market-wide circuit breaker level 3.
	StatusReason_MarketWideHaltLevel3 StatusReason = 122
	/// Halted due to the carryover of a market-wide circuit breaker from the previous
	/// trading day.
	StatusReason_MarketWideHaltCarryover StatusReason = 123
	/// Resumption due to the end of the a market-wide circuit breaker halt.
	StatusReason_MarketWideHaltResumption StatusReason = 124
	/// Halted because quotation is not available.
	StatusReason_QuotationNotAvailable StatusReason = 130
)

func (r StatusReason) String() string {
	switch r {
	case StatusReason_None:
		return "none"
	case StatusReason_Scheduled:
		return "scheduled"
	case StatusReason_SurveillanceIntervention:
		return "surveillance_intervention"
	case StatusReason_MarketEvent:
		return "market_event"
	case StatusReason_InstrumentActivation:
		return "instrument_activation"
	case StatusReason_InstrumentExpiration:
		return "instrument_expiration"
	case StatusReason_RecoveryInProcess:
		return "recovery_in_process"
	case StatusReason_Regulatory:
		return "regulatory"
	case StatusReason_Administrative:
		return "administrative"
	case StatusReason_NonCompliance:
		return "non_compliance"
	case StatusReason_FilingsNotCurrent:
		return "filings_not_current"
	case StatusReason_SecTradingSuspension:
		return "sec_trading_suspension"
	case StatusReason_NewIssue:
		return "new_issue"
	case StatusReason_IssueAvailable:
		return "issue_available"
	case StatusReason_IssuesReviewed:
		return "issues_reviewed"
	case StatusReason_FilingReqsSatisfied:
		return "filing_reqs_satisfied"
	case StatusReason_NewsPending:
		return "news_pending"
	case StatusReason_NewsReleased:
		return "news_released"
	case StatusReason_NewsAndResumptionTimes:
		return "news_and_resumption_times"
	case StatusReason_NewsNotForthcoming:
		return "news_not_forthcoming"
	case StatusReason_OrderImbalance:
		return "order_imbalance"
	case StatusReason_LuldPause:
		return "luld_pause"
	case StatusReason_Operational:
		return "operational"
	case StatusReason_AdditionalInformationRequested:
		return "additional_information_requested"
	case StatusReason_MergerEffective:
		return "merger_effective"
	case StatusReason_Etf:
		return "etf"
	case StatusReason_CorporateAction:
		return "corporate_action"
	case StatusReason_NewSecurityOffering:
		return "new_security_offering"
	case StatusReason_MarketWideHaltLevel1:
		return "market_wide_halt_level1"
	case StatusReason_MarketWideHaltLevel2:
		return "market_wide_halt_level2"
	case StatusReason_MarketWideHaltLevel3:
		return "market_wide_halt_level3"
	case StatusReason_MarketWideHaltCarryover:
		return "market_wide_halt_carryover"
	case StatusReason_MarketWideHaltResumption:
		return "market_wide_halt_resumption"
	case StatusReason_QuotationNotAvailable:
		return "quotation_not_available"
	default:
		return "unknown"
	}
}

// / Further information about a status update.
type TradingEvent uint8

const (
	/// No additional information given.
	TradingEvent_None TradingEvent = 0
	/// Order entry and modification are not allowed.
	TradingEvent_NoCancel TradingEvent = 1
	/// A change of trading session occurred. Daily statistics are reset.
	TradingEvent_ChangeTradingSession TradingEvent = 2
	/// Implied matching is available.
	TradingEvent_ImpliedMatchingOn TradingEvent = 3
	/// Implied matching is not available.
	TradingEvent_ImpliedMatchingOff TradingEvent = 4
)

func (e TradingEvent) String() string {
	switch e {
	case TradingEvent_None:
		return "none"
	case TradingEvent_NoCancel:
		return "no_cancel"
	case TradingEvent_ChangeTradingSession:
		return "change_trading_session"
	case TradingEvent_ImpliedMatchingOn:
		return "implied_matching_on"
	case TradingEvent_ImpliedMatchingOff:
		return "implied_matching_off"
	default:
		return "unknown"
	}
}

// / An enum for representing unknown, true, or false values. Equivalent to
// / `Option<bool>` but with a human-readable repr.
type TriState uint8

const (
	/// The value is not applicable or not known.
	TriState_NotAvailable TriState = '~'
	/// False
	TriState_No TriState = 'N'
	/// True
	TriState_Yes TriState = 'Y'
)

func (t TriState) String() string {
	switch t {
	case TriState_NotAvailable:
		return "not_available"
	case TriState_No:
		return "no"
	case TriState_Yes:
		return "yes"
	default:
		return "unknown"
	}
}

// / How to handle decoding DBN data from a prior version.
type VersionUpgradePolicy uint8

const (
	/// Decode data from previous versions as-is.
	AsIs VersionUpgradePolicy = 0
	/// Decode data from DBN version 1 to version 2.
	/// Rejects version-3 input (use AsIs or UpgradeToV3 instead).
	UpgradeToV2 VersionUpgradePolicy = 1
	/// Decode data from any prior version to version 3, the latest version. This
	/// breaks zero-copy decoding for structs that need updating, but makes usage
	/// simpler.
	UpgradeToV3 VersionUpgradePolicy = 2
)

func (v VersionUpgradePolicy) String() string {
	switch v {
	case AsIs:
		return "as_is"
	case UpgradeToV2:
		return "upgrade_to_v2"
	case UpgradeToV3:
		return "upgrade_to_v3"
	default:
		return "unknown"
	}
}

// Type implements pflag.Value.
func (v *VersionUpgradePolicy) Type() string { return "VersionUpgradePolicy" }

// Set implements pflag.Value.
func (v *VersionUpgradePolicy) Set(value string) error {
	switch value {
	case "as_is":
		*v = AsIs
	case "upgrade_to_v2":
		*v = UpgradeToV2
	case "upgrade_to_v3":
		*v = UpgradeToV3
	default:
		return fmt.Errorf("dbn: unknown version upgrade policy %q", value)
	}
	return nil
}
