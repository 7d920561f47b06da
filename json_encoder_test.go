// Copyright (c) 2024 Neomantra Corp

package dbn_test

import (
	"bytes"
	"strings"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("JsonEncoder", func() {
	It("writes one compact JSON object per line by default", func() {
		rec := dbn.OhlcvMsg{
			Header: dbn.RHeader{RType: dbn.RType_Ohlcv1S, PublisherID: 1, InstrumentID: 5482, TsEvent: 1609160400000000000},
			Open:   4_500_000_000_000,
			Volume: 1000,
		}

		var buf bytes.Buffer
		enc := dbn.NewJsonEncoder(&buf)
		Expect(enc.EncodeRecord(rec)).To(Succeed())
		Expect(enc.EncodeRecord(rec)).To(Succeed())
		Expect(enc.Close()).To(Succeed())

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring(`"instrument_id":5482`))
		Expect(lines[0]).ToNot(HavePrefix("["))
	})

	It("writes an indented JSON array when Pretty is set", func() {
		rec := dbn.OhlcvMsg{
			Header: dbn.RHeader{RType: dbn.RType_Ohlcv1S, PublisherID: 1, InstrumentID: 5482},
		}

		var buf bytes.Buffer
		enc := dbn.NewJsonEncoder(&buf)
		enc.Pretty = true
		Expect(enc.EncodeRecord(rec)).To(Succeed())
		Expect(enc.EncodeRecord(rec)).To(Succeed())
		Expect(enc.Close()).To(Succeed())

		out := buf.String()
		Expect(out).To(HavePrefix("[\n"))
		Expect(out).To(HaveSuffix("\n]\n"))
		Expect(strings.Count(out, "instrument_id")).To(Equal(2))
	})
})
