// Package sweep implements the wideband spectrum sweep engine: a
// USB-transfer-driven tuning program that windows, FFTs and slices
// incoming IQ blocks into a power-spectrum stream, independent of any
// particular radio peripheral or output sink.
package sweep

// Frequency and timing constants mirrored from the reference sweep
// implementation. The engine only ever validates against FreqMinMHz and
// FreqMaxMHz; DefaultSampleRateHz is the only sample rate the peripheral
// contract in this package is exercised against.
const (
	FreqOneMHz = 1_000_000

	FreqMinMHz uint16 = 0
	FreqMaxMHz uint16 = 7250

	DefaultSampleRateHz             uint64 = 20_000_000
	DefaultBasebandFilterBandwidth  uint64 = 15_000_000
	OffsetHz                        uint64 = 7_500_000

	// BlocksPerTransfer is the number of fixed-size USB blocks bundled
	// into a single transfer delivered to the pipeline.
	BlocksPerTransfer = 16

	// ThrowawayBlocks is how many leading blocks of each tuning step the
	// peripheral is expected to discard while the synthesizer settles;
	// it is documented here for callers wiring a Device, the pipeline
	// itself never consumes it directly.
	ThrowawayBlocks = 2

	// BlockSize is the byte length of one fixed-size USB block: a 10-byte
	// header ([0x7F, 0x7F, little-endian uint64 frequency]) followed by
	// signed 8-bit interleaved IQ samples.
	BlockSize = 16384

	// BlockHeaderSize is the length of the magic+frequency prefix at the
	// start of every block.
	BlockHeaderSize = 10

	blockMagic0 = 0x7F
	blockMagic1 = 0x7F

	// MaxSweepRanges is the largest number of frequency ranges a single
	// sweep program may cover.
	MaxSweepRanges = 10
)
