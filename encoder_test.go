// Copyright (c) 2024 Neomantra Corp

package dbn_test

import (
	"bytes"
	"encoding/binary"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RecordEncoder", func() {
	It("round-trips a fixed-layout record (OhlcvMsg) byte-for-byte", func() {
		raw := make([]byte, dbn.OhlcvMsg_Size)
		putHeader(raw, uint8(dbn.OhlcvMsg_Size/4), dbn.RType_Ohlcv1S, 1, 5482, 1609160400000000000)
		binary.LittleEndian.PutUint64(raw[16:24], uint64(4_500_000_000_000))
		binary.LittleEndian.PutUint64(raw[24:32], uint64(4_510_000_000_000))
		binary.LittleEndian.PutUint64(raw[32:40], uint64(4_490_000_000_000))
		binary.LittleEndian.PutUint64(raw[40:48], uint64(4_505_000_000_000))
		binary.LittleEndian.PutUint64(raw[48:56], uint64(1000))

		var rec dbn.OhlcvMsg
		Expect(rec.Fill_Raw(raw)).To(Succeed())

		var buf bytes.Buffer
		enc := dbn.NewRecordEncoder(&buf)
		Expect(enc.EncodeRecordRef(dbn.NewRecordRef(&rec, dbn.RType_Ohlcv1S))).To(Succeed())
		Expect(buf.Bytes()).To(Equal(raw))
	})

	It("round-trips a SymbolMappingMsg with its variable-length c-strings", func() {
		const cstrLength = uint16(71)
		size := dbn.SymbolMappingMsg_MinSize + 2*cstrLength
		raw := make([]byte, size)
		putHeader(raw, uint8(size/4), dbn.RType_SymbolMapping, 1, 5482, 0)
		raw[16] = byte(dbn.SType_RawSymbol)
		copy(raw[17:17+cstrLength], "ESH1")
		pos := 17 + int(cstrLength)
		raw[pos] = byte(dbn.SType_InstrumentId)
		copy(raw[pos+1:pos+1+int(cstrLength)], "5482")
		tailPos := pos + 1 + int(cstrLength)
		binary.LittleEndian.PutUint64(raw[tailPos:tailPos+8], 1609160400000000000)
		binary.LittleEndian.PutUint64(raw[tailPos+8:tailPos+16], 1609200000000000000)

		var rec dbn.SymbolMappingMsg
		Expect(rec.Fill_Raw(raw, cstrLength)).To(Succeed())
		Expect(rec.StypeInSymbol).To(Equal("ESH1"))
		Expect(rec.StypeOutSymbol).To(Equal("5482"))

		var buf bytes.Buffer
		enc := dbn.NewRecordEncoder(&buf)
		Expect(enc.EncodeRecordRef(dbn.NewRecordRef(&rec, dbn.RType_SymbolMapping))).To(Succeed())
		Expect(buf.Bytes()).To(Equal(raw))
	})

	It("writes metadata ahead of records via EncodeMetadata", func() {
		m := sampleMetadata(dbn.HeaderVersion2)
		var buf bytes.Buffer
		enc := dbn.NewRecordEncoder(&buf)
		Expect(enc.EncodeMetadata(&m)).To(Succeed())

		m2, err := dbn.ReadMetadata(&buf)
		Expect(err).To(BeNil())
		Expect(m2.Dataset).To(Equal("GLBX.MDP3"))
	})
})
