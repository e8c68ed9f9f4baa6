package analyzer

import (
	"github.com/Sewer56/struct-compression-analyzer/bitio"
	"github.com/Sewer56/struct-compression-analyzer/schema"
)

// DefaultFreqCap and MaxFreqCap bound value-frequency histograms.
const (
	DefaultFreqCap = 16
	MaxFreqCap     = 64
)

// Histogram is a bounded value->count table. Widths up to 16 use a
// dense array (faster for small domains); wider fields fall back to a
// map. A disabled histogram (skipped or over FreqCap) is a harmless
// no-op on Inc.
type Histogram struct {
	dense   []uint64
	sparse  map[uint64]uint64
	enabled bool
}

func newHistogram(width int, skipFreq bool, freqCap int) *Histogram {
	if skipFreq || width > freqCap {
		return &Histogram{}
	}
	h := &Histogram{enabled: true}
	if width <= 16 {
		h.dense = make([]uint64, 1<<uint(width))
	} else {
		h.sparse = make(map[uint64]uint64)
	}
	return h
}

func (h *Histogram) inc(v uint64) {
	if h == nil || !h.enabled {
		return
	}
	if h.dense != nil {
		h.dense[v]++
		return
	}
	h.sparse[v]++
}

// Snapshot materializes the histogram as a sparse map, or nil if
// histogramming is disabled for this field.
func (h *Histogram) Snapshot() map[uint64]uint64 {
	if h == nil || !h.enabled {
		return nil
	}
	out := make(map[uint64]uint64)
	if h.dense != nil {
		for v, c := range h.dense {
			if c > 0 {
				out[uint64(v)] = c
			}
		}
		return out
	}
	for v, c := range h.sparse {
		out[v] = c
	}
	return out
}

// merge sums two histograms pointwise. Either side may be disabled, in
// which case the other side passes through unchanged.
func (h *Histogram) merge(o *Histogram) *Histogram {
	if h == nil || !h.enabled {
		return o
	}
	if o == nil || !o.enabled {
		return h
	}
	out := &Histogram{enabled: true}
	if h.dense != nil {
		out.dense = make([]uint64, len(h.dense))
		copy(out.dense, h.dense)
		for v, c := range o.dense {
			out.dense[v] += c
		}
		return out
	}
	out.sparse = make(map[uint64]uint64, len(h.sparse))
	for v, c := range h.sparse {
		out.sparse[v] = c
	}
	for v, c := range o.sparse {
		out.sparse[v] += c
	}
	return out
}

// BitCount is the 0/1 tally at one bit position within a field.
type BitCount struct{ Zeros, Ones uint64 }

// Accumulator is the per-leaf accumulator of a field's values: the
// concatenation of a field's values across every record, plus the
// derived counts the statistics engine needs.
type Accumulator struct {
	Field *schema.Field

	w          *bitio.Writer
	ValueCount uint64
	Histogram  *Histogram
	BitCounts  [64]BitCount
}

// NewAccumulator returns an empty accumulator for f.
func NewAccumulator(f *schema.Field, freqCap int) *Accumulator {
	return &Accumulator{
		Field:     f,
		w:         bitio.NewWriter(),
		Histogram: newHistogram(f.Bits, f.SkipFreq, freqCap),
	}
}

// Append records one value of the field: written to the bit buffer in
// the field's own order, counted in the histogram (if enabled), and
// tallied per bit position.
func (a *Accumulator) Append(v uint64) {
	a.w.Write(v, a.Field.Bits, a.Field.Order)
	a.ValueCount++
	a.Histogram.inc(v)

	width := a.Field.Bits
	for i := 0; i < width; i++ {
		if (v>>uint(width-1-i))&1 == 1 {
			a.BitCounts[i].Ones++
		} else {
			a.BitCounts[i].Zeros++
		}
	}
}

// Bits returns the total number of bits written so far: always
// ValueCount * Field.Bits.
func (a *Accumulator) Bits() uint64 { return a.ValueCount * uint64(a.Field.Bits) }

// Bytes returns the accumulator's bit buffer, zero-padded to a byte
// boundary. The caller must not mutate it.
func (a *Accumulator) Bytes() []byte { return a.w.Bytes() }

// Cursor returns a fresh, independent read cursor over the
// accumulator's values. Every LayoutOp reference gets its own.
func (a *Accumulator) Cursor() *Cursor {
	return &Cursor{acc: a, r: bitio.NewReader(a.Bytes())}
}

// Cursor walks an Accumulator's values one at a time. Multiple cursors
// over the same accumulator never interfere with each other.
type Cursor struct {
	acc *Accumulator
	r   *bitio.Reader
	pos uint64
}

// Exhausted reports whether every value has already been consumed.
func (c *Cursor) Exhausted() bool { return c.pos >= c.acc.ValueCount }

// Next returns the next value and advances the cursor, or ok=false if
// the field is exhausted.
func (c *Cursor) Next() (v uint64, ok bool) {
	if c.Exhausted() {
		return 0, false
	}
	val, err := c.r.Read(c.acc.Field.Bits, c.acc.Field.Order)
	if err != nil {
		return 0, false
	}
	c.pos++
	return val, true
}

// Width reports the field's bit width backing this cursor.
func (c *Cursor) Width() int { return c.acc.Field.Bits }

// mergeAccumulator concatenates two accumulators' bit buffers in merge
// order and sums their derived counts. Concatenation happens at the
// bit level, not the byte level, so a non-byte-aligned first operand
// never strands stray padding mid-stream.
func mergeAccumulator(a, b *Accumulator) *Accumulator {
	out := &Accumulator{Field: a.Field, w: bitio.NewWriter()}

	if err := bitio.CopyBits(out.w, bitio.NewReader(a.Bytes()), a.Bits()); err != nil {
		panic("analyzer: accumulator merge: " + err.Error())
	}
	if err := bitio.CopyBits(out.w, bitio.NewReader(b.Bytes()), b.Bits()); err != nil {
		panic("analyzer: accumulator merge: " + err.Error())
	}

	out.ValueCount = a.ValueCount + b.ValueCount
	out.Histogram = a.Histogram.merge(b.Histogram)
	for i := range out.BitCounts {
		out.BitCounts[i].Zeros = a.BitCounts[i].Zeros + b.BitCounts[i].Zeros
		out.BitCounts[i].Ones = a.BitCounts[i].Ones + b.BitCounts[i].Ones
	}
	return out
}
