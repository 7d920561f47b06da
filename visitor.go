// Copyright (c) 2024 Neomantra Corp

package dbn

// Visitor receives decoded records from a DbnScanner or JsonScanner. It is the
// dispatch target for DBN's centralised rtype switch (see DbnScanner.Visit).
type Visitor interface {
	OnMbp0(record *TradeMsg) error
	OnMbp1(record *Mbp1Msg) error
	OnMbp10(record *Mbp10Msg) error
	OnMbo(record *MboMsg) error
	OnCbbo(record *CbboMsg) error
	OnBbo(record *BboMsg) error
	OnCmbp1(record *Cmbp1Msg) error

	OnOhlcv(record *OhlcvMsg) error
	OnStatus(record *StatusMsg) error
	OnImbalance(record *ImbalanceMsg) error
	OnStatMsg(record *StatMsg) error
	OnInstrumentDef(record *InstrumentDefMsg) error

	OnErrorMsg(record *ErrorMsg) error
	OnSystemMsg(record *SystemMsg) error
	OnSymbolMappingMsg(record *SymbolMappingMsg) error

	OnStreamEnd() error
}
