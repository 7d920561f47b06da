package dbn_test

import (
	"bytes"
	"encoding/binary"
	"syscall"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// buildInstrumentDefStream encodes a v1 Metadata header followed by one v1
// InstrumentDefMsg record into an in-memory DBN byte stream.
func buildInstrumentDefStream() []byte {
	var buf bytes.Buffer
	m := dbn.Metadata{
		VersionNum: dbn.HeaderVersion1,
		Dataset:    "GLBX.MDP3",
		Schema:     dbn.Schema_Definition,
		StypeIn:    dbn.SType_RawSymbol,
		StypeOut:   dbn.SType_InstrumentId,
	}
	if err := m.Write(&buf); err != nil {
		panic(err)
	}

	rec := make([]byte, dbn.InstrumentDefMsg_Size)
	putHeader(rec, uint8(dbn.InstrumentDefMsg_Size/4), dbn.RType_InstrumentDef, 1, 5482, 1609160400000000000)
	// RawSymbol starts after TsRecv..StrikePriceCurrency fixed fields: see
	// InstrumentDefMsg.Fill_Raw's pos accounting (162 + 4 + 4 + 6 = 176).
	copy(rec[dbn.RHeader_Size+176:], "ESH1")
	buf.Write(rec)
	return buf.Bytes()
}

var _ = Describe("VersionUpgradePolicy", func() {
	It("leaves a v1 InstrumentDef record alone under AsIs", func() {
		reader := bytes.NewReader(buildInstrumentDefStream())
		scanner := dbn.NewDbnScannerWithUpgrade(reader, dbn.AsIs)
		_, err := scanner.Metadata()
		Expect(err).To(BeNil())

		Expect(scanner.Next()).To(BeTrue())
		ref, err := scanner.DecodeRecordRef()
		Expect(err).To(BeNil())
		def, ok := dbn.Get[dbn.InstrumentDefMsg, *dbn.InstrumentDefMsg](ref)
		Expect(ok).To(BeTrue())
		symbol, err := def.RawSymbolStr()
		Expect(err).To(BeNil())
		Expect(symbol).To(Equal("ESH1"))
	})

	It("upgrades a v1 InstrumentDef record to the v3 wire shape under UpgradeToV3", func() {
		reader := bytes.NewReader(buildInstrumentDefStream())
		scanner := dbn.NewDbnScannerWithUpgrade(reader, dbn.UpgradeToV3)
		m, err := scanner.Metadata()
		Expect(err).To(BeNil())
		Expect(m.VersionNum).To(Equal(uint8(dbn.HeaderVersion3)))
		Expect(m.SymbolCstrLen).To(Equal(uint16(dbn.MetadataV2_SymbolCstrLen)))

		Expect(scanner.Next()).To(BeTrue())
		ref, err := scanner.DecodeRecordRef()
		Expect(err).To(BeNil())
		def, ok := dbn.Get[dbn.InstrumentDefMsgV3, *dbn.InstrumentDefMsgV3](ref)
		Expect(ok).To(BeTrue())
		symbol, err := def.RawSymbolStr()
		Expect(err).To(BeNil())
		Expect(symbol).To(Equal("ESH1"))
		Expect(def.LegCount).To(Equal(uint16(0)))
	})

	It("rejects UpgradeToV2 applied to a v3 stream", func() {
		var buf bytes.Buffer
		m := dbn.Metadata{VersionNum: dbn.HeaderVersion3, Dataset: "GLBX.MDP3", StypeIn: dbn.SType_RawSymbol, StypeOut: dbn.SType_InstrumentId}
		Expect(m.Write(&buf)).To(Succeed())

		scanner := dbn.NewDbnScannerWithUpgrade(&buf, dbn.UpgradeToV2)
		_, err := scanner.Metadata()
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("ts_out", func() {
	It("decodes a ts_out suffix via GetLastTsOut when Metadata.TsOut is set", func() {
		var buf bytes.Buffer
		m := dbn.Metadata{
			VersionNum: dbn.HeaderVersion2,
			Dataset:    "GLBX.MDP3",
			Schema:     dbn.Schema_Ohlcv1S,
			StypeIn:    dbn.SType_RawSymbol,
			StypeOut:   dbn.SType_InstrumentId,
			TsOut:      1,
		}
		Expect(m.Write(&buf)).To(Succeed())

		const tsOut = uint64(1700000000000000000)
		recSize := int(dbn.OhlcvMsg_Size) + 8
		rec := make([]byte, recSize)
		putHeader(rec, uint8(recSize/4), dbn.RType_Ohlcv1S, 1, 5482, 1609160400000000000)
		binary.LittleEndian.PutUint64(rec[recSize-8:], tsOut)
		buf.Write(rec)

		scanner := dbn.NewDbnScanner(&buf)
		_, err := scanner.Metadata()
		Expect(err).To(BeNil())
		Expect(scanner.Next()).To(BeTrue())

		got, ok := scanner.GetLastTsOut()
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(tsOut))
	})

	It("writes the ts_out suffix via EncodeRecordRefWithTsOut", func() {
		var encBuf bytes.Buffer
		enc := dbn.NewRecordEncoder(&encBuf)
		var ohlcv dbn.OhlcvMsg
		rec := make([]byte, dbn.OhlcvMsg_Size)
		putHeader(rec, uint8(dbn.OhlcvMsg_Size/4)+2, dbn.RType_Ohlcv1S, 1, 5482, 1609160400000000000)
		Expect(ohlcv.Fill_Raw(rec)).To(Succeed())

		Expect(enc.EncodeRecordRefWithTsOut(dbn.NewRecordRef(&ohlcv, dbn.RType_Ohlcv1S), 1700000000000000000)).To(Succeed())
		Expect(enc.RecordCount).To(Equal(1))
		Expect(encBuf.Len()).To(Equal(int(dbn.OhlcvMsg_Size) + 8))
	})
})

var _ = Describe("broken pipe absorption", func() {
	It("treats EPIPE from the sink as a clean stop, not an error", func() {
		enc := dbn.NewRecordEncoder(&brokenPipeWriter{})
		m := sampleMetadata(dbn.HeaderVersion2)
		Expect(enc.EncodeMetadata(&m)).To(Succeed())
	})
})

type brokenPipeWriter struct{}

func (brokenPipeWriter) Write(p []byte) (int, error) {
	return 0, syscall.EPIPE
}
