// Copyright (c) 2025 Neomantra Corp

package dbn_test

import (
	"bytes"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// buildStreamWithBadRecord encodes a v2 Metadata header followed by the two valid
// Ohlcv1S records from buildOhlcvStream and then one record whose rtype byte
// DecodeRecordRef does not recognize.
func buildStreamWithBadRecord() []byte {
	buf := bytes.NewBuffer(buildOhlcvStream(dbn.HeaderVersion2))

	bad := make([]byte, dbn.OhlcvMsg_Size)
	putHeader(bad, uint8(dbn.OhlcvMsg_Size/4), dbn.RType(0xFE), 1, 5482, 1609160402000000000)
	buf.Write(bad)

	return buf.Bytes()
}

var _ = Describe("Filters", func() {
	Context("error propagation", func() {
		It("SchemaFilter stops and reports a decode error instead of skipping it", func() {
			reader := bytes.NewReader(buildStreamWithBadRecord())
			scanner := dbn.NewDbnScanner(reader)
			_, err := scanner.Metadata()
			Expect(err).To(BeNil())

			ohlcvSchema := dbn.Schema_Ohlcv1S
			filter := dbn.NewSchemaFilterNoMetadata(scanner, &ohlcvSchema)

			Expect(filter.Next()).To(BeTrue())
			Expect(filter.Next()).To(BeTrue())
			Expect(filter.Next()).To(BeFalse())
			Expect(filter.Error()).To(Equal(dbn.ErrUnknownRType))

			_, err = filter.DecodeRecordRef()
			Expect(err).To(Equal(dbn.ErrUnknownRType))
		})

		It("LimitFilter stops and reports a decode error instead of treating it as end-of-stream", func() {
			reader := bytes.NewReader(buildStreamWithBadRecord())
			scanner := dbn.NewDbnScanner(reader)
			_, err := scanner.Metadata()
			Expect(err).To(BeNil())

			filter := dbn.NewLimitFilterNoMetadata(scanner, 10)

			Expect(filter.Next()).To(BeTrue())
			Expect(filter.Next()).To(BeTrue())
			Expect(filter.Next()).To(BeFalse())
			Expect(filter.Error()).To(Equal(dbn.ErrUnknownRType))

			_, err = filter.DecodeRecordRef()
			Expect(err).To(Equal(dbn.ErrUnknownRType))
		})
	})
})
