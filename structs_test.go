// Copyright (c) 2024 Neomantra Corp

package dbn_test

import (
	"encoding/binary"
	"unsafe"

	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// putHeader writes a 16-byte RHeader into b[0:16].
func putHeader(b []byte, rsizeWords uint8, rtype dbn.RType, publisherID uint16, instrumentID uint32, tsEvent uint64) {
	b[0] = rsizeWords
	b[1] = byte(rtype)
	binary.LittleEndian.PutUint16(b[2:4], publisherID)
	binary.LittleEndian.PutUint32(b[4:8], instrumentID)
	binary.LittleEndian.PutUint64(b[8:16], tsEvent)
}

func putBidAskPair(b []byte, bidPx, askPx int64, bidSz, askSz, bidCt, askCt uint32) {
	binary.LittleEndian.PutUint64(b[0:8], uint64(bidPx))
	binary.LittleEndian.PutUint64(b[8:16], uint64(askPx))
	binary.LittleEndian.PutUint32(b[16:20], bidSz)
	binary.LittleEndian.PutUint32(b[20:24], askSz)
	binary.LittleEndian.PutUint32(b[24:28], bidCt)
	binary.LittleEndian.PutUint32(b[28:32], askCt)
}

var _ = Describe("Struct", func() {
	Context("correctness", func() {
		It("struct consts should match unsafe.Sizeof and RSize", func() {
			Expect(unsafe.Sizeof(dbn.RHeader{})).To(Equal(uintptr(dbn.RHeader_Size)))
			Expect(unsafe.Sizeof(dbn.BidAskPair{})).To(Equal(uintptr(dbn.BidAskPair_Size)))
			Expect(unsafe.Sizeof(dbn.TradeMsg{})).To(Equal(uintptr(dbn.TradeMsg_Size)))
			Expect(unsafe.Sizeof(dbn.Mbp1Msg{})).To(Equal(uintptr(dbn.Mbp1Msg_Size)))
			Expect(unsafe.Sizeof(dbn.Mbp10Msg{})).To(Equal(uintptr(dbn.Mbp10Msg_Size)))
			Expect(unsafe.Sizeof(dbn.Cmbp1Msg{})).To(Equal(uintptr(dbn.Cmbp1Msg_Size)))
			Expect(unsafe.Sizeof(dbn.OhlcvMsg{})).To(Equal(uintptr(dbn.OhlcvMsg_Size)))
			Expect(unsafe.Sizeof(dbn.ImbalanceMsg{})).To(Equal(uintptr(dbn.ImbalanceMsg_Size)))
			Expect(unsafe.Sizeof(dbn.ErrorMsg{})).To(Equal(uintptr(dbn.ErrorMsg_Size)))
			Expect(unsafe.Sizeof(dbn.SystemMsg{})).To(Equal(uintptr(dbn.SystemMsg_Size)))
			Expect(unsafe.Sizeof(dbn.StatMsg{})).To(Equal(uintptr(dbn.StatMsg_Size)))
			Expect(unsafe.Sizeof(dbn.StatusMsg{})).To(Equal(uintptr(dbn.StatusMsg_Size)))
			Expect(unsafe.Sizeof(dbn.BboMsg{})).To(Equal(uintptr(dbn.BboMsg_Size)))
			Expect(unsafe.Sizeof(dbn.InstrumentDefMsg{})).To(Equal(uintptr(dbn.InstrumentDefMsg_Size)))
			Expect(unsafe.Sizeof(dbn.InstrumentDefMsgV2{})).To(Equal(uintptr(dbn.InstrumentDefMsgV2_Size)))
			Expect(unsafe.Sizeof(dbn.InstrumentDefMsgV3{})).To(Equal(uintptr(dbn.InstrumentDefMsgV3_Size)))

			Expect(int((&dbn.RHeader{}).RSize())).To(Equal(dbn.RHeader_Size))
			Expect(int((&dbn.TradeMsg{}).RSize())).To(Equal(dbn.TradeMsg_Size))
			Expect(int((&dbn.Mbp1Msg{}).RSize())).To(Equal(dbn.Mbp1Msg_Size))
			Expect(int((&dbn.Mbp10Msg{}).RSize())).To(Equal(dbn.Mbp10Msg_Size))
			Expect(int((&dbn.Cmbp1Msg{}).RSize())).To(Equal(dbn.Cmbp1Msg_Size))
			Expect(int((&dbn.OhlcvMsg{}).RSize())).To(Equal(dbn.OhlcvMsg_Size))
			Expect(int((&dbn.ImbalanceMsg{}).RSize())).To(Equal(dbn.ImbalanceMsg_Size))
			Expect(int((&dbn.ErrorMsg{}).RSize())).To(Equal(dbn.ErrorMsg_Size))
			Expect(int((&dbn.StatMsg{}).RSize())).To(Equal(dbn.StatMsg_Size))
			Expect(int((&dbn.StatusMsg{}).RSize())).To(Equal(dbn.StatusMsg_Size))
			Expect(int((&dbn.BboMsg{}).RSize())).To(Equal(dbn.BboMsg_Size))
			Expect(int((&dbn.InstrumentDefMsg{}).RSize())).To(Equal(dbn.InstrumentDefMsg_Size))
		})

		It("RType dispatch helpers classify candles and top-of-book schemas", func() {
			Expect(dbn.RType_Ohlcv1S.IsCandle()).To(BeTrue())
			Expect(dbn.RType_OhlcvEod.IsCandle()).To(BeTrue())
			Expect(dbn.RType_Mbp0.IsCandle()).To(BeFalse())
			Expect(dbn.RType_Bbo1S.IsTopOfBook()).To(BeTrue())
			Expect(dbn.RType_Cbbo.IsTopOfBook()).To(BeTrue())
		})

		It("rejects a header whose publisher_id isn't a known Publisher", func() {
			b := make([]byte, dbn.OhlcvMsg_Size)
			putHeader(b, uint8(dbn.OhlcvMsg_Size/4), dbn.RType_Ohlcv1S, dbn.PUBLISHER_COUNT+1, 5482, 1609160400000000000)

			var r dbn.OhlcvMsg
			Expect(r.Fill_Raw(b)).To(MatchError(dbn.ErrUnknownPublisher))

			var h dbn.RHeader
			h.PublisherID = dbn.PUBLISHER_COUNT + 1
			_, err := h.Publisher()
			Expect(err).To(Equal(dbn.ErrUnknownPublisher))

			h.PublisherID = 1
			p, err := h.Publisher()
			Expect(err).To(BeNil())
			Expect(p).To(Equal(dbn.Publisher_GlbxMdp3Glbx))
		})
	})

	Context("OhlcvMsg", func() {
		It("decodes a raw record", func() {
			b := make([]byte, dbn.OhlcvMsg_Size)
			putHeader(b, uint8(dbn.OhlcvMsg_Size/4), dbn.RType_Ohlcv1S, 1, 5482, 1609160400000000000)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], uint64(372025000000000))
			binary.LittleEndian.PutUint64(body[8:16], uint64(372050000000000))
			binary.LittleEndian.PutUint64(body[16:24], uint64(372025000000000))
			binary.LittleEndian.PutUint64(body[24:32], uint64(372050000000000))
			binary.LittleEndian.PutUint64(body[32:40], uint64(57))

			var r dbn.OhlcvMsg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.Header.TsEvent).To(Equal(uint64(1609160400000000000)))
			Expect(r.Header.RType).To(Equal(dbn.RType_Ohlcv1S))
			Expect(r.Header.PublisherID).To(Equal(uint16(1)))
			Expect(r.Header.InstrumentID).To(Equal(uint32(5482)))
			Expect(r.Open).To(Equal(int64(372025000000000)))
			Expect(r.High).To(Equal(int64(372050000000000)))
			Expect(r.Low).To(Equal(int64(372025000000000)))
			Expect(r.Close).To(Equal(int64(372050000000000)))
			Expect(r.Volume).To(Equal(uint64(57)))
		})

		It("rejects a buffer shorter than its fixed size", func() {
			b := make([]byte, dbn.OhlcvMsg_Size-1)
			var r dbn.OhlcvMsg
			Expect(r.Fill_Raw(b)).ToNot(Succeed())
		})
	})

	Context("TradeMsg", func() {
		It("decodes a raw Mbp0 trade record", func() {
			b := make([]byte, dbn.TradeMsg_Size)
			putHeader(b, uint8(dbn.TradeMsg_Size/4), dbn.RType_Mbp0, 1, 5482, 1609160400098821953)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], uint64(1609160400099150057))
			binary.LittleEndian.PutUint64(body[8:16], uint64(3720250000000))
			binary.LittleEndian.PutUint32(body[16:20], 5)
			body[20] = 'T'
			body[21] = 'A'
			body[22] = 129
			body[23] = 0
			binary.LittleEndian.PutUint32(body[24:28], uint32(int32(19251)))
			binary.LittleEndian.PutUint32(body[28:32], 1170380)

			var r dbn.TradeMsg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.Header.RType).To(Equal(dbn.RType_Mbp0))
			Expect(string(r.Action)).To(Equal("T"))
			Expect(string(r.Side)).To(Equal("A"))
			Expect(r.Depth).To(Equal(uint8(0)))
			Expect(r.Price).To(Equal(int64(3720250000000)))
			Expect(r.Size).To(Equal(uint32(5)))
			Expect(r.Flags).To(Equal(uint8(129)))
			Expect(r.TsRecv).To(Equal(uint64(1609160400099150057)))
			Expect(r.TsInDelta).To(Equal(int32(19251)))
			Expect(r.Sequence).To(Equal(uint32(1170380)))
		})
	})

	Context("Mbp1Msg", func() {
		It("decodes a raw record with one book level", func() {
			b := make([]byte, dbn.Mbp1Msg_Size)
			putHeader(b, uint8(dbn.Mbp1Msg_Size/4), dbn.RType_Mbp1, 1, 5482, 1609160400006001487)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], uint64(3720500000000))
			binary.LittleEndian.PutUint32(body[8:12], 1)
			body[12] = 'A'
			body[13] = 'A'
			body[14] = 128
			body[15] = 0
			putBidAskPair(body[16:48], 3720250000000, 3720500000000, 24, 11, 15, 9)

			var r dbn.Mbp1Msg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.Price).To(Equal(int64(3720500000000)))
			Expect(r.Size).To(Equal(uint32(1)))
			Expect(string(r.Action)).To(Equal("A"))
			Expect(r.Flags).To(Equal(uint8(128)))
			Expect(r.Levels[0].BidPx).To(Equal(int64(3720250000000)))
			Expect(r.Levels[0].AskPx).To(Equal(int64(3720500000000)))
			Expect(r.Levels[0].BidSz).To(Equal(uint32(24)))
			Expect(r.Levels[0].AskSz).To(Equal(uint32(11)))
			Expect(r.Levels[0].BidCt).To(Equal(uint32(15)))
			Expect(r.Levels[0].AskCt).To(Equal(uint32(9)))
		})
	})

	Context("Mbp10Msg", func() {
		It("decodes a raw record with ten book levels", func() {
			b := make([]byte, dbn.Mbp10Msg_Size)
			putHeader(b, uint8(dbn.Mbp10Msg_Size/4), dbn.RType_Mbp10, 1, 5482, 1609160400000429831)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], uint64(3722750000000))
			binary.LittleEndian.PutUint32(body[8:12], 1)
			body[12] = 'C'
			body[13] = 'A'
			body[14] = 128
			body[15] = 9
			binary.LittleEndian.PutUint64(body[16:24], uint64(1609160400000704060))
			binary.LittleEndian.PutUint32(body[24:28], uint32(int32(22993)))
			binary.LittleEndian.PutUint32(body[28:32], 1170352)
			for i := 0; i < 10; i++ {
				off := 32 + i*dbn.BidAskPair_Size
				putBidAskPair(body[off:off+dbn.BidAskPair_Size],
					int64(3720250000000-int64(i)*250000000), int64(3720500000000+int64(i)*250000000),
					uint32(24+i), uint32(10+i), uint32(15+i), uint32(8+i))
			}

			var r dbn.Mbp10Msg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.Depth).To(Equal(uint8(9)))
			Expect(r.TsRecv).To(Equal(uint64(1609160400000704060)))
			Expect(r.Sequence).To(Equal(uint32(1170352)))
			Expect(len(r.Levels)).To(Equal(10))
			Expect(r.Levels[0].BidPx).To(Equal(int64(3720250000000)))
			Expect(r.Levels[9].AskCt).To(Equal(uint32(17)))
		})
	})

	Context("ImbalanceMsg", func() {
		It("decodes a raw auction imbalance record", func() {
			b := make([]byte, dbn.ImbalanceMsg_Size)
			putHeader(b, uint8(dbn.ImbalanceMsg_Size/4), dbn.RType_Imbalance, 2, 9439, 1633353900633854579)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], uint64(1633353900633864350))
			binary.LittleEndian.PutUint64(body[8:16], uint64(229430000000))
			binary.LittleEndian.PutUint32(body[76:80], 2000)
			body[88] = 'O'
			body[89] = 'B'
			body[93] = 'N'
			body[94] = '~'

			var r dbn.ImbalanceMsg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.TsRecv).To(Equal(uint64(1633353900633864350)))
			Expect(r.RefPrice).To(Equal(int64(229430000000)))
			Expect(r.TotalImbalanceQty).To(Equal(uint32(2000)))
			Expect(string(r.AuctionType)).To(Equal("O"))
			Expect(string(r.Side)).To(Equal("B"))
			Expect(string(r.UnpairedSide)).To(Equal("N"))
			Expect(string(r.SignificantImbalance)).To(Equal("~"))
		})
	})

	Context("StatMsg and StatMsgV3", func() {
		It("decodes a raw v1/v2 statistics record and upgrades to v3", func() {
			b := make([]byte, dbn.StatMsg_Size)
			putHeader(b, uint8(dbn.StatMsg_Size/4), dbn.RType_Statistics, 1, 100, 42)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], 1)
			binary.LittleEndian.PutUint64(body[8:16], 2)
			binary.LittleEndian.PutUint64(body[16:24], uint64(1_000_000_000))
			binary.LittleEndian.PutUint32(body[24:28], uint32(int32(dbn.UndefStatQuantity)))

			var r dbn.StatMsg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.Quantity).To(Equal(int32(dbn.UndefStatQuantity)))
			Expect(r.Price).To(Equal(int64(1_000_000_000)))

			v3 := r.ToV3()
			Expect(v3.Quantity).To(Equal(int64(dbn.UndefStatQuantity)))
			Expect(v3.Price).To(Equal(r.Price))
			Expect(v3.Header).To(Equal(r.Header))
		})
	})

	Context("ErrorMsg and SystemMsg", func() {
		It("trims NUL padding and upgrades to v3", func() {
			b := make([]byte, dbn.ErrorMsg_Size)
			putHeader(b, uint8(dbn.ErrorMsg_Size/4), dbn.RType_Error, 1, 1, 1)
			copy(b[dbn.RHeader_Size:], []byte("symbology lookup failed"))

			var r dbn.ErrorMsg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.ErrText()).To(Equal("symbology lookup failed"))

			v3 := r.ToV3()
			Expect(v3.ErrText()).To(Equal("symbology lookup failed"))
			Expect(v3.IsLast).To(Equal(uint8(1)))
		})

		It("round-trips a system heartbeat", func() {
			b := make([]byte, dbn.SystemMsg_Size)
			putHeader(b, uint8(dbn.SystemMsg_Size/4), dbn.RType_System, 1, 1, 1)
			copy(b[dbn.RHeader_Size:], []byte("A heartbeat"))

			var r dbn.SystemMsg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.MsgText()).To(Equal("A heartbeat"))
		})
	})

	Context("StatusMsg", func() {
		It("decodes a raw trading-status record", func() {
			b := make([]byte, dbn.StatusMsg_Size)
			putHeader(b, uint8(dbn.StatusMsg_Size/4), dbn.RType_Status, 1, 1, 1)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], 5)
			binary.LittleEndian.PutUint16(body[8:10], 2)
			binary.LittleEndian.PutUint16(body[10:12], 3)
			binary.LittleEndian.PutUint16(body[12:14], 1)
			body[14] = 1
			body[15] = 1
			body[16] = 0

			var r dbn.StatusMsg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.TsRecv).To(Equal(uint64(5)))
			Expect(r.Action).To(Equal(uint16(2)))
			Expect(r.Reason).To(Equal(uint16(3)))
			Expect(r.IsTrading).To(Equal(uint8(1)))
			Expect(r.IsShortSellRestricted).To(Equal(uint8(0)))
		})
	})

	Context("Cmbp1Msg and CbboMsg", func() {
		It("share Mbp1Msg's 64-byte wire layout but carry their own rtype", func() {
			b := make([]byte, dbn.Cmbp1Msg_Size)
			putHeader(b, uint8(dbn.Cmbp1Msg_Size/4), dbn.RType_Cmbp1, 1, 5482, 1609160400006001487)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], uint64(3720500000000))
			binary.LittleEndian.PutUint32(body[8:12], 1)
			body[12] = 'A'
			body[13] = 'A'
			body[14] = 128
			putBidAskPair(body[16:48], 3720250000000, 3720500000000, 24, 11, 15, 9)

			var r dbn.Cmbp1Msg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.Header.RType).To(Equal(dbn.RType_Cmbp1))
			Expect(r.Levels[0].BidSz).To(Equal(uint32(24)))
		})
	})

	Context("BboMsg", func() {
		It("decodes a raw cadence-sampled top-of-book record", func() {
			b := make([]byte, dbn.BboMsg_Size)
			putHeader(b, uint8(dbn.BboMsg_Size/4), dbn.RType_Bbo1S, 1, 5482, 1609113599045849637)
			body := b[dbn.RHeader_Size:]
			binary.LittleEndian.PutUint64(body[0:8], uint64(3702500000000))
			binary.LittleEndian.PutUint32(body[8:12], 2)
			body[12] = 0
			body[13] = 'A'
			body[14] = 168
			putBidAskPair(body[16:48], 3702250000000, 3702750000000, 18, 13, 10, 13)

			var r dbn.BboMsg
			Expect(r.Fill_Raw(b)).To(Succeed())
			Expect(r.Header.RType).To(Equal(dbn.RType_Bbo1S))
			Expect(string(r.Side)).To(Equal("A"))
			Expect(r.Flags).To(Equal(uint8(168)))
			Expect(r.Levels[0].BidSz).To(Equal(uint32(18)))
			Expect(r.Levels[0].AskCt).To(Equal(uint32(13)))
		})
	})

	Context("SymbolMappingMsg", func() {
		It("decodes a raw record sized to a given symbol c-string length", func() {
			const cstrLen = uint16(22)
			rsize := (&dbn.SymbolMappingMsg{}).RSize(cstrLen)
			b := make([]byte, rsize)
			putHeader(b, uint8(rsize/4), dbn.RType_SymbolMapping, 1, 1, 1)
			body := b[dbn.RHeader_Size:]
			body[0] = byte(dbn.SType_RawSymbol)
			copy(body[1:1+cstrLen], []byte("ESH1"))
			pos := 1 + cstrLen
			body[pos] = byte(dbn.SType_InstrumentId)
			copy(body[pos+1:pos+1+cstrLen], []byte("5482"))
			pos = pos + 1 + cstrLen
			binary.LittleEndian.PutUint64(body[pos:pos+8], 20201228000000000)
			binary.LittleEndian.PutUint64(body[pos+8:pos+16], 20201229000000000)

			var r dbn.SymbolMappingMsg
			Expect(r.Fill_Raw(b, cstrLen)).To(Succeed())
			Expect(r.StypeIn).To(Equal(dbn.SType_RawSymbol))
			Expect(r.StypeInSymbol).To(Equal("ESH1"))
			Expect(r.StypeOutSymbol).To(Equal("5482"))
			Expect(r.StartTs).To(Equal(uint64(20201228000000000)))
			Expect(r.EndTs).To(Equal(uint64(20201229000000000)))
		})
	})
})
