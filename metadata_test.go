// Copyright (c) 2024 Neomantra Corp

package dbn_test

import (
	"bytes"
	"unsafe"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sampleMetadata(versionNum uint8) dbn.Metadata {
	return dbn.Metadata{
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
}

var _ = Describe("Metadata", func() {
	Context("correctness", func() {
		It("metadata sizes should be correct", func() {
			Expect(unsafe.Sizeof(dbn.RType_Error)).To(Equal(uintptr(1)))
			Expect(unsafe.Sizeof(dbn.SType_RawSymbol)).To(Equal(uintptr(1)))
			Expect(unsafe.Sizeof(dbn.Schema_Mixed)).To(Equal(uintptr(2)))
			Expect(unsafe.Sizeof(dbn.MetadataPrefix{})).To(Equal(uintptr(dbn.Metadata_PrefixSize)))
			Expect(unsafe.Sizeof(dbn.MetadataHeaderV1{})).To(Equal(uintptr(dbn.MetadataHeaderV1_Size + dbn.MetadataHeaderV1_SizeFuzz)))
			Expect(unsafe.Sizeof(dbn.MetadataHeaderV2{})).To(Equal(uintptr(dbn.MetadataHeaderV2_Size + dbn.MetadataHeaderV2_SizeFuzz)))

			// If this changes, we need to update offsets in metadata.go
			Expect(dbn.Metadata_DatasetCstrLen).To(Equal(16))
		})
	})

	Context("round-tripping", func() {
		It("should write and decode v1 metadata properly", func() {
			m := sampleMetadata(dbn.HeaderVersion1)
			var buf bytes.Buffer
			Expect(m.Write(&buf)).To(Succeed())

			m1, err := dbn.ReadMetadata(&buf)
			Expect(err).To(BeNil())
			Expect(m1).ToNot(BeNil())
			Expect(m1.VersionNum).To(Equal(uint8(1)))
			Expect(m1.Schema).To(Equal(dbn.Schema_Ohlcv1S))
			Expect(m1.Start).To(Equal(uint64(1609160400000000000)))
			Expect(m1.End).To(Equal(uint64(1609200000000000000)))
			Expect(m1.Limit).To(Equal(uint64(2)))
			Expect(m1.StypeIn).To(Equal(dbn.SType_RawSymbol))
			Expect(m1.StypeOut).To(Equal(dbn.SType_InstrumentId))
			Expect(m1.TsOut).To(Equal(uint8(0)))
			Expect(m1.Dataset).To(Equal("GLBX.MDP3"))
			Expect(m1.SymbolCstrLen).To(Equal(uint16(dbn.MetadataV1_SymbolCstrLen)))
			Expect(len(m1.Symbols)).To(Equal(1))
			Expect(m1.Symbols[0]).To(Equal("ESH1"))
			Expect(len(m1.Partial)).To(Equal(0))
			Expect(len(m1.NotFound)).To(Equal(0))
			Expect(len(m1.Mappings)).To(Equal(1))
			Expect(m1.Mappings[0].RawSymbol).To(Equal("ESH1"))
			intervals := m1.Mappings[0].Intervals
			Expect(len(intervals)).To(Equal(1))
			Expect(intervals[0].StartDate).To(Equal(uint32(20201228)))
			Expect(intervals[0].EndDate).To(Equal(uint32(20201229)))
			Expect(intervals[0].Symbol).To(Equal("5482"))
		})

		It("should write and decode v2 metadata properly", func() {
			m := sampleMetadata(dbn.HeaderVersion2)
			var buf bytes.Buffer
			Expect(m.Write(&buf)).To(Succeed())

			m2, err := dbn.ReadMetadata(&buf)
			Expect(err).To(BeNil())
			Expect(m2).ToNot(BeNil())
			Expect(m2.VersionNum).To(Equal(uint8(2)))
			Expect(m2.Schema).To(Equal(dbn.Schema_Ohlcv1S))
			Expect(m2.Start).To(Equal(uint64(1609160400000000000)))
			Expect(m2.End).To(Equal(uint64(1609200000000000000)))
			Expect(m2.Limit).To(Equal(uint64(2)))
			Expect(m2.StypeIn).To(Equal(dbn.SType_RawSymbol))
			Expect(m2.StypeOut).To(Equal(dbn.SType_InstrumentId))
			Expect(m2.TsOut).To(Equal(uint8(0)))
			Expect(m2.Dataset).To(Equal("GLBX.MDP3"))
			Expect(m2.SymbolCstrLen).To(Equal(uint16(dbn.MetadataV2_SymbolCstrLen)))
			Expect(len(m2.Symbols)).To(Equal(1))
			Expect(m2.Symbols[0]).To(Equal("ESH1"))
			Expect(len(m2.Partial)).To(Equal(0))
			Expect(len(m2.NotFound)).To(Equal(0))
			Expect(len(m2.Mappings)).To(Equal(1))
			Expect(m2.Mappings[0].RawSymbol).To(Equal("ESH1"))
			intervals := m2.Mappings[0].Intervals
			Expect(len(intervals)).To(Equal(1))
			Expect(intervals[0].StartDate).To(Equal(uint32(20201228)))
			Expect(intervals[0].EndDate).To(Equal(uint32(20201229)))
			Expect(intervals[0].Symbol).To(Equal("5482"))
		})

		It("should round-trip v3 metadata using the v2 wire layout", func() {
			m := sampleMetadata(dbn.HeaderVersion3)
			var buf bytes.Buffer
			Expect(m.Write(&buf)).To(Succeed())

			m3, err := dbn.ReadMetadata(&buf)
			Expect(err).To(BeNil())
			Expect(m3.VersionNum).To(Equal(uint8(3)))
			Expect(m3.SymbolCstrLen).To(Equal(uint16(dbn.MetadataV2_SymbolCstrLen)))
		})
	})
})
