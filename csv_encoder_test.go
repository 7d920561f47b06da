// Copyright (c) 2024 Neomantra Corp

package dbn_test

import (
	"bytes"
	"strings"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CsvEncoder", func() {
	It("derives the header row and a plain row from OhlcvMsg's csv tags", func() {
		rec := dbn.OhlcvMsg{
			Header: dbn.RHeader{RType: dbn.RType_Ohlcv1S, PublisherID: 1, InstrumentID: 5482, TsEvent: 1609160400000000000},
			Open:   4_500_000_000_000,
			High:   4_510_000_000_000,
			Low:    4_490_000_000_000,
			Close:  4_505_000_000_000,
			Volume: 1000,
		}

		var buf bytes.Buffer
		enc := dbn.NewCsvEncoder(&buf)
		Expect(enc.EncodeHeader(rec)).To(Succeed())
		Expect(enc.EncodeRecord(rec)).To(Succeed())

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(Equal("rtype,publisher_id,instrument_id,ts_event,open,high,low,close,volume"))
		Expect(lines[1]).To(Equal("32,1,5482,1609160400000000000,4500000000000,4510000000000,4490000000000,4505000000000,1000"))
	})

	It("renders pretty prices and timestamps when requested", func() {
		rec := dbn.OhlcvMsg{
			Header: dbn.RHeader{RType: dbn.RType_Ohlcv1S, PublisherID: 1, InstrumentID: 5482, TsEvent: 1609160400000000000},
			Open:   4_500_000_000_000,
			High:   4_510_000_000_000,
			Low:    4_490_000_000_000,
			Close:  4_505_000_000_000,
			Volume: 1000,
		}

		var buf bytes.Buffer
		enc := dbn.NewCsvEncoder(&buf)
		enc.PrettyPx = true
		enc.PrettyTs = true
		Expect(enc.EncodeHeader(rec)).To(Succeed())
		Expect(enc.EncodeRecord(rec)).To(Succeed())

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[1]).To(ContainSubstring("4500.000000000"))
		Expect(lines[1]).ToNot(ContainSubstring("1609160400000000000"))
	})

	It("flattens BidAskPair levels in Mbp10Msg with per-level suffixes", func() {
		var rec dbn.Mbp10Msg
		rec.Header = dbn.RHeader{RType: dbn.RType_Mbp10, PublisherID: 1, InstrumentID: 5482}
		rec.Levels[0] = dbn.BidAskPair{BidPx: 100, AskPx: 200, BidSz: 1, AskSz: 2, BidCt: 1, AskCt: 1}

		cols := func() []string {
			var buf bytes.Buffer
			enc := dbn.NewCsvEncoder(&buf)
			Expect(enc.EncodeHeader(rec)).To(Succeed())
			return strings.Split(strings.TrimRight(buf.String(), "\n"), ",")
		}()
		Expect(cols).To(ContainElement("bid_px_00"))
		Expect(cols).To(ContainElement("ask_ct_09"))
	})
})
