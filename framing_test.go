// Copyright (c) 2024 Neomantra Corp

package dbn_test

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"

	dbn "github.com/dbnio/dbn-go"
	"github.com/klauspost/compress/zstd"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stream framing", func() {
	It("detects a plain DBN stream by its magic prefix", func() {
		m := sampleMetadata(dbn.HeaderVersion2)
		var buf bytes.Buffer
		Expect(m.Write(&buf)).To(Succeed())

		framing, err := dbn.DetectFraming(bufio.NewReader(&buf))
		Expect(err).To(BeNil())
		Expect(framing).To(Equal(dbn.StreamFraming_Dbn))
	})

	It("detects a zstd-compressed stream by its magic number", func() {
		m := sampleMetadata(dbn.HeaderVersion2)
		var plain bytes.Buffer
		Expect(m.Write(&plain)).To(Succeed())

		var compressed bytes.Buffer
		zw, err := zstd.NewWriter(&compressed)
		Expect(err).To(BeNil())
		_, err = zw.Write(plain.Bytes())
		Expect(err).To(BeNil())
		Expect(zw.Close()).To(Succeed())

		framing, err := dbn.DetectFraming(bufio.NewReader(&compressed))
		Expect(err).To(BeNil())
		Expect(framing).To(Equal(dbn.StreamFraming_Zstd))

		scanner, err := dbn.NewAutoDbnScanner(bytes.NewReader(compressed.Bytes()))
		Expect(err).To(BeNil())
		md, err := scanner.Metadata()
		Expect(err).To(BeNil())
		Expect(md).ToNot(BeNil())
		Expect(md.Dataset).To(Equal("GLBX.MDP3"))
	})

	It("reports unknown framing for unrelated content", func() {
		framing, err := dbn.DetectFraming(bufio.NewReader(bytes.NewReader([]byte("not a dbn stream"))))
		Expect(err).To(BeNil())
		Expect(framing).To(Equal(dbn.StreamFraming_Unknown))
	})

	It("round-trips a zstd-compressed file by its .zst suffix", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "metadata.dbn.zst")

		encoder, closeWriter, err := dbn.NewRecordEncoderToFile(path, false)
		Expect(err).To(BeNil())
		m := sampleMetadata(dbn.HeaderVersion2)
		Expect(encoder.EncodeMetadata(&m)).To(Succeed())
		closeWriter()

		raw, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		Expect(len(raw)).To(BeNumerically(">", 0))

		scanner, closeReader, err := dbn.NewDbnScannerFromFile(path, false)
		Expect(err).To(BeNil())
		defer closeReader()
		md, err := scanner.Metadata()
		Expect(err).To(BeNil())
		Expect(md.Dataset).To(Equal(m.Dataset))
	})
})
