// Copyright (c) 2024 Neomantra Corp

package dbn_test

import (
	dbn "github.com/dbnio/dbn-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("enum String()", func() {
	It("renders Side/Action/InstrumentClass in snake_case", func() {
		Expect(dbn.Side_Bid.String()).To(Equal("bid"))
		Expect(dbn.Action_Trade.String()).To(Equal("trade"))
		Expect(dbn.InstrumentClass_FutureSpread.String()).To(Equal("future_spread"))
		Expect(dbn.Side(0xFF).String()).To(Equal("unknown"))
	})

	It("renders StatusAction/StatusReason", func() {
		Expect(dbn.StatusAction_Trading.String()).To(Equal("trading"))
		Expect(dbn.StatusReason_SurveillanceIntervention.String()).To(Equal("surveillance_intervention"))
	})

	It("renders TriState and TradingEvent", func() {
		Expect(dbn.TriState_Yes.String()).To(Equal("yes"))
		Expect(dbn.TriState_NotAvailable.String()).To(Equal("not_available"))
		Expect(dbn.TradingEvent_ImpliedMatchingOn.String()).To(Equal("implied_matching_on"))
	})

	It("renders Encoding and Compression", func() {
		Expect(dbn.Json.String()).To(Equal("json"))
		Expect(dbn.ZStd.String()).To(Equal("zstd"))
	})

	It("satisfies pflag.Value for the round-trippable enums", func() {
		var schema dbn.Schema
		Expect(schema.Set("ohlcv-1s")).To(Succeed())
		Expect(schema).To(Equal(dbn.Schema_Ohlcv1S))
		Expect(schema.Type()).To(Equal("Schema"))

		var policy dbn.VersionUpgradePolicy
		Expect(policy.Set("upgrade_to_v3")).To(Succeed())
		Expect(policy).To(Equal(dbn.UpgradeToV3))
	})
})
