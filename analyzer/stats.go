package analyzer

import (
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
)

// Default statistics parameters: a 32KiB LZ window with a 3-byte
// minimum match, and zstd level 16.
const (
	DefaultLZWindow   = 32 * 1024
	DefaultLZMinMatch = 3
	DefaultZstdLevel  = 16
)

// StatsConfig tunes the field statistics engine.
type StatsConfig struct {
	ZstdLevel  int
	LZWindow   int
	LZMinMatch int
}

// DefaultStatsConfig returns the engine's documented defaults.
func DefaultStatsConfig() StatsConfig {
	return StatsConfig{
		ZstdLevel:  DefaultZstdLevel,
		LZWindow:   DefaultLZWindow,
		LZMinMatch: DefaultLZMinMatch,
	}
}

func (c StatsConfig) WithDefaults() StatsConfig {
	if c.LZWindow <= 0 {
		c.LZWindow = DefaultLZWindow
	}
	if c.LZMinMatch <= 0 {
		c.LZMinMatch = DefaultLZMinMatch
	}
	if c.ZstdLevel <= 0 {
		c.ZstdLevel = DefaultZstdLevel
	}
	return c
}

// Metrics is the set of measurements taken over one byte stream
// (a leaf, a group, or a layout-replay synthetic stream).
type Metrics struct {
	OriginalBits  uint64
	OriginalBytes uint64
	Entropy       float64 // bits per byte
	LZMatches     int     // LZ77 back-references counted over this stream
	EstimatedSize float64
	ZstdSize      int
	ZstdOK        bool // false when the zstd encoder failed
}

// PercentOfOriginal reports estimated size as a percentage of the
// original byte size, or 0 if the original is empty.
func (m Metrics) PercentOfOriginal() float64 {
	if m.OriginalBytes == 0 {
		return 0
	}
	return 100 * m.EstimatedSize / float64(m.OriginalBytes)
}

// Measure runs the field statistics engine over data, the byte-padded
// form of a bits-long accumulator or synthetic stream.
func Measure(data []byte, bits uint64, cfg StatsConfig) Metrics {
	cfg = cfg.WithDefaults()
	m := Metrics{
		OriginalBits:  bits,
		OriginalBytes: uint64(len(data)),
	}
	m.Entropy = byteEntropy(data)
	m.LZMatches = countLZMatches(data, cfg.LZWindow, cfg.LZMinMatch)
	m.EstimatedSize = float64(len(data)) * m.Entropy / 8

	size, err := zstdSize(data, cfg.ZstdLevel)
	if err == nil {
		m.ZstdSize = size
		m.ZstdOK = true
	}
	return m
}

// byteEntropy computes the Shannon entropy, in bits per byte, of
// data's byte-value distribution.
func byteEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var hist [256]int
	for _, b := range data {
		hist[b]++
	}
	n := float64(len(data))
	var h float64
	for _, c := range hist {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

func zstdSize(data []byte, level int) (int, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		return 0, fmt.Errorf("analyzer: zstd encoder: %w", err)
	}
	defer enc.Close()
	return len(enc.EncodeAll(data, nil)), nil
}
