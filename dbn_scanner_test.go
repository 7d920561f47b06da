package dbn_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Test Launcher
func TestDbn(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "dbn-go suite")
}

// buildOhlcvStream encodes a versionNum Metadata header followed by two Ohlcv1S records
// into an in-memory DBN byte stream.
func buildOhlcvStream(versionNum uint8) []byte {
	var buf bytes.Buffer
	m := dbn.Metadata{
		VersionNum: versionNum,
		Dataset:    "GLBX.MDP3",
		Schema:     dbn.Schema_Ohlcv1S,
		Start:      1609160400000000000,
		End:        1609200000000000000,
		Limit:      2,
		StypeIn:    dbn.SType_RawSymbol,
		StypeOut:   dbn.SType_InstrumentId,
		Symbols:    []string{"ESH1"},
		Mappings: []dbn.SymbolMapping{
			{
				RawSymbol: "ESH1",
				Intervals: []dbn.MappingInterval{
					{StartDate: 20201228, EndDate: 20201229, Symbol: "5482"},
				},
			},
		},
	}
	if err := m.Write(&buf); err != nil {
		panic(err)
	}

	rec0 := make([]byte, dbn.OhlcvMsg_Size)
	putHeader(rec0, uint8(dbn.OhlcvMsg_Size/4), dbn.RType_Ohlcv1S, 1, 5482, 1609160400000000000)
	body0 := rec0[dbn.RHeader_Size:]
	binary.LittleEndian.PutUint64(body0[0:8], uint64(372025000000000))
	binary.LittleEndian.PutUint64(body0[8:16], uint64(372050000000000))
	binary.LittleEndian.PutUint64(body0[16:24], uint64(372025000000000))
	binary.LittleEndian.PutUint64(body0[24:32], uint64(372050000000000))
	binary.LittleEndian.PutUint64(body0[32:40], uint64(57))
	buf.Write(rec0)

	rec1 := make([]byte, dbn.OhlcvMsg_Size)
	putHeader(rec1, uint8(dbn.OhlcvMsg_Size/4), dbn.RType_Ohlcv1S, 1, 5482, 1609160401000000000)
	body1 := rec1[dbn.RHeader_Size:]
	binary.LittleEndian.PutUint64(body1[0:8], uint64(372050000000000))
	binary.LittleEndian.PutUint64(body1[8:16], uint64(372050000000000))
	binary.LittleEndian.PutUint64(body1[16:24], uint64(372050000000000))
	binary.LittleEndian.PutUint64(body1[24:32], uint64(372050000000000))
	binary.LittleEndian.PutUint64(body1[32:40], uint64(13))
	buf.Write(rec1)

	return buf.Bytes()
}

var _ = Describe("DbnScanner", func() {
	Context("v1 streams", func() {
		It("should read a v1 stream correctly", func() {
			reader := bytes.NewReader(buildOhlcvStream(dbn.HeaderVersion1))
			records, metadata, err := dbn.ReadDBNToSlice[dbn.OhlcvMsg](reader)
			Expect(err).To(BeNil())
			Expect(metadata).ToNot(BeNil())
			Expect(metadata.VersionNum).To(Equal(uint8(dbn.HeaderVersion1)))
			Expect(len(records)).To(Equal(2))
			Expect(records[0].Close).To(Equal(int64(372050000000000)))
			Expect(records[1].Volume).To(Equal(uint64(13)))
		})
	})

	Context("v2 streams", func() {
		It("should read a v2 stream correctly", func() {
			reader := bytes.NewReader(buildOhlcvStream(dbn.HeaderVersion2))
			records, metadata, err := dbn.ReadDBNToSlice[dbn.OhlcvMsg](reader)
			Expect(err).To(BeNil())
			Expect(metadata).ToNot(BeNil())
			Expect(metadata.VersionNum).To(Equal(uint8(dbn.HeaderVersion2)))
			Expect(len(records)).To(Equal(2))
		})
	})

	Context("SchemaFilter and LimitFilter", func() {
		It("filters out records of the wrong schema", func() {
			reader := bytes.NewReader(buildOhlcvStream(dbn.HeaderVersion2))
			scanner := dbn.NewDbnScanner(reader)
			_, err := scanner.Metadata()
			Expect(err).To(BeNil())

			tradeSchema := dbn.Schema_Trades
			filter := dbn.NewSchemaFilterNoMetadata(scanner, &tradeSchema)
			Expect(filter.Next()).To(BeFalse())
		})

		It("stops early once the limit is reached", func() {
			reader := bytes.NewReader(buildOhlcvStream(dbn.HeaderVersion2))
			scanner := dbn.NewDbnScanner(reader)
			_, err := scanner.Metadata()
			Expect(err).To(BeNil())

			filter := dbn.NewLimitFilterNoMetadata(scanner, 1)
			count := 0
			for filter.Next() {
				count++
			}
			Expect(count).To(Equal(1))
		})
	})
})
