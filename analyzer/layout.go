package analyzer

import (
	"github.com/Sewer56/struct-compression-analyzer/bitio"
	"github.com/Sewer56/struct-compression-analyzer/schema"
)

// ReplaySplitGroup resolves a split_groups entry into the two synthetic
// streams it compares: the concatenation of group_1's constituent
// accumulators' bit buffers, and the same for group_2, both in
// declaration order. accs is indexed by schema.Field.Index.
func ReplaySplitGroup(sg *schema.SplitGroup, accs []*Accumulator) (group1, group2 []byte, bits1, bits2 uint64) {
	group1, bits1 = concatLeaves(sg.Group1Leaves, accs)
	group2, bits2 = concatLeaves(sg.Group2Leaves, accs)
	return
}

func concatLeaves(indices []int, accs []*Accumulator) ([]byte, uint64) {
	w := bitio.NewWriter()
	var bits uint64
	for _, idx := range indices {
		a := accs[idx]
		if err := bitio.CopyBits(w, bitio.NewReader(a.Bytes()), a.Bits()); err != nil {
			panic("analyzer: split group replay: " + err.Error())
		}
		bits += a.Bits()
	}
	return w.Bytes(), bits
}

// ReplayLayoutOps runs a compare_groups layout plan (the baseline or
// one comparison) against accs, producing a single synthetic byte
// stream. Each top-level op gets its own per-field cursors, starting
// at each field's first value, so two ops naming the same field each
// see all of its values. Within one op, every reference to a field
// shares that op's cursor for it, created lazily on first reference.
//
// order is the schema's default bit order: it governs how each
// emitted slice's bits are composed into the output stream, distinct
// from the field's own bit order used when the value was extracted.
func ReplayLayoutOps(ops []schema.LayoutOp, accs []*Accumulator, order bitio.Order) (data []byte, bits uint64) {
	w := bitio.NewWriter()

	var total uint64
	for _, op := range ops {
		cursors := make(map[int]*Cursor)
		cursorFor := func(idx int) *Cursor {
			c, ok := cursors[idx]
			if !ok {
				c = accs[idx].Cursor()
				cursors[idx] = c
			}
			return c
		}
		switch v := op.(type) {
		case schema.ArrayOp:
			total += replayArray(w, cursorFor(v.FieldIndex), v.Offset, v.Bits, order)
		case schema.StructOp:
			total += replayStruct(w, v.Fields, cursorFor, order)
		}
	}
	return w.Bytes(), total
}

// replayArray emits the [offset, offset+bits) slice (high-to-low
// within the value) of every remaining value of c, stopping when c is
// exhausted.
func replayArray(w *bitio.Writer, c *Cursor, offset, bits int, order bitio.Order) uint64 {
	var total uint64
	mask := sliceMask(bits)
	for {
		v, ok := c.Next()
		if !ok {
			break
		}
		shift := c.Width() - offset - bits
		w.Write((v>>uint(shift))&mask, bits, order)
		total += uint64(bits)
	}
	return total
}

// replayStruct repeats a row of StructField operations until a full
// pass produces no field-backed output. A row is buffered separately
// and only committed to w if it produced at least one field-backed
// emission — the terminating, unproductive row (including any padding
// it would otherwise have emitted) is discarded entirely.
func replayStruct(w *bitio.Writer, fields []schema.StructField, cursorFor func(int) *Cursor, order bitio.Order) uint64 {
	var total uint64
	for {
		row := bitio.NewWriter()
		var rowBits uint64
		producedAny := false

		for _, sf := range fields {
			switch v := sf.(type) {
			case schema.FieldStructOp:
				c := cursorFor(v.FieldIndex)
				val, ok := c.Next()
				if !ok {
					continue
				}
				shift := c.Width() - v.Bits
				row.Write((val>>uint(shift))&sliceMask(v.Bits), v.Bits, order)
				rowBits += uint64(v.Bits)
				producedAny = true
			case schema.PaddingStructOp:
				row.Write(v.Value, v.Bits, order)
				rowBits += uint64(v.Bits)
			case schema.SkipStructOp:
				cursorFor(v.FieldIndex).Next()
			}
		}

		if !producedAny {
			break
		}
		if err := bitio.CopyBits(w, bitio.NewReader(row.Bytes()), rowBits); err != nil {
			panic("analyzer: struct replay: " + err.Error())
		}
		total += rowBits
	}
	return total
}

func sliceMask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(bits)) - 1
}
