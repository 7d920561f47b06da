package dbn_test

import (
	"strings"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("JsonScanner", func() {
	Context("json streams", func() {
		It("should read a JSONL stream of ohlcv-1s records correctly", func() {
			jsonl := strings.Join([]string{
				`{"hd":{"ts_event":"1609160400000000000","rtype":32,"publisher_id":1,"instrument_id":5482},"open":"372025000000000","high":"372050000000000","low":"372025000000000","close":"372050000000000","volume":"57"}`,
				`{"hd":{"ts_event":"1609160401000000000","rtype":32,"publisher_id":1,"instrument_id":5482},"open":"372050000000000","high":"372050000000000","low":"372050000000000","close":"372050000000000","volume":"13"}`,
			}, "\n")

			records, err := dbn.ReadJsonToSlice[dbn.OhlcvMsg](strings.NewReader(jsonl))
			Expect(err).To(BeNil())
			Expect(len(records)).To(Equal(2))

			r0, r0h := records[0], records[0].Header
			Expect(r0h.TsEvent).To(Equal(uint64(1609160400000000000)))
			Expect(r0h.RType).To(Equal(dbn.RType(32)))
			Expect(r0h.PublisherID).To(Equal(uint16(1)))
			Expect(r0h.InstrumentID).To(Equal(uint32(5482)))
			Expect(r0.Open).To(Equal(int64(372025000000000)))
			Expect(r0.High).To(Equal(int64(372050000000000)))
			Expect(r0.Low).To(Equal(int64(372025000000000)))
			Expect(r0.Close).To(Equal(int64(372050000000000)))
			Expect(r0.Volume).To(Equal(uint64(57)))

			r1, r1h := records[1], records[1].Header
			Expect(r1h.TsEvent).To(Equal(uint64(1609160401000000000)))
			Expect(r1h.RType).To(Equal(dbn.RType(32)))
			Expect(r1.Open).To(Equal(int64(372050000000000)))
			Expect(r1.Volume).To(Equal(uint64(13)))
		})

		It("rejects a record of an incompatible rtype", func() {
			jsonl := `{"hd":{"ts_event":"1","rtype":0,"publisher_id":1,"instrument_id":1},"ts_recv":"1","price":"1","size":1,"action":84,"side":65,"flags":0,"depth":0,"ts_in_delta":0,"sequence":0}`
			_, err := dbn.ReadJsonToSlice[dbn.OhlcvMsg](strings.NewReader(jsonl))
			Expect(err).ToNot(BeNil())
		})
	})
})
