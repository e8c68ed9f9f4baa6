package analyzer_test

import (
	"bytes"
	"testing"

	"github.com/Sewer56/struct-compression-analyzer/analyzer"
	"github.com/Sewer56/struct-compression-analyzer/bitio"
	"github.com/Sewer56/struct-compression-analyzer/schema"
)

func fieldAcc(name string, bits int, values ...uint64) (*schema.Field, *analyzer.Accumulator) {
	f := &schema.Field{NameStr: name, Bits: bits, Order: bitio.MSB, Index: 0}
	a := analyzer.NewAccumulator(f, analyzer.MaxFreqCap)
	for _, v := range values {
		a.Append(v)
	}
	return f, a
}

// TestInterleaveStruct mirrors the three-channel interleave scenario:
// three 5-bit accumulators interleaved by a struct op must emit
// r0 g0 b0 r1 g1 b1 r2 g2 b2, 45 bits total, zero-padded to 6 bytes.
func TestInterleaveStruct(t *testing.T) {
	rf, racc := fieldAcc("r", 5, 1, 2, 3)
	gf, gacc := fieldAcc("g", 5, 4, 5, 6)
	bf, bacc := fieldAcc("b", 5, 7, 8, 9)
	rf.Index, gf.Index, bf.Index = 0, 1, 2
	accs := []*analyzer.Accumulator{racc, gacc, bacc}

	ops := []schema.LayoutOp{
		schema.StructOp{Fields: []schema.StructField{
			schema.FieldStructOp{FieldIndex: 0, Bits: 5},
			schema.FieldStructOp{FieldIndex: 1, Bits: 5},
			schema.FieldStructOp{FieldIndex: 2, Bits: 5},
		}},
	}
	data, bits := analyzer.ReplayLayoutOps(ops, accs, bitio.MSB)
	if bits != 45 {
		t.Fatalf("expected 45 bits, got %d", bits)
	}
	if len(data) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(data))
	}

	r := bitio.NewReader(data)
	want := []uint64{1, 4, 7, 2, 5, 8, 3, 6, 9}
	for i, w := range want {
		v, err := r.Read(5, bitio.MSB)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if v != w {
			t.Fatalf("value %d: got %d want %d", i, v, w)
		}
	}
}

// TestStructTermination mirrors the uneven-length struct scenario: A
// has one value, B has two (4 bits each). Row 1 emits a0 b0. Row 2: A
// is exhausted, B emits b1. Row 3: both exhausted, terminate. Total
// output is 12 bits.
func TestStructTermination(t *testing.T) {
	af, aacc := fieldAcc("a", 4, 0xA)
	bf, bacc := fieldAcc("b", 4, 0xB, 0xC)
	af.Index, bf.Index = 0, 1
	accs := []*analyzer.Accumulator{aacc, bacc}

	ops := []schema.LayoutOp{
		schema.StructOp{Fields: []schema.StructField{
			schema.FieldStructOp{FieldIndex: 0, Bits: 4},
			schema.FieldStructOp{FieldIndex: 1, Bits: 4},
		}},
	}
	data, bits := analyzer.ReplayLayoutOps(ops, accs, bitio.MSB)
	if bits != 12 {
		t.Fatalf("expected 12 bits, got %d", bits)
	}
	r := bitio.NewReader(data)
	for _, want := range []uint64{0xA, 0xB, 0xC} {
		v, err := r.Read(4, bitio.MSB)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != want {
			t.Fatalf("got %d want %d", v, want)
		}
	}
}

// TestStructRoundtrip exercises the roundtrip property: extracting then
// re-emitting every leaf through one Struct op holding a Field op per
// leaf, in declaration order, reproduces the original bytes.
func TestStructRoundtrip(t *testing.T) {
	const doc = `
root:
  type: group
  fields:
    a:
      type: field
      bits: 8
    b:
      type: field
      bits: 8
`
	s := mustParse(t, doc)
	original := []byte{0x12, 0x34, 0x56, 0x78} // two records of (a,b)
	ext, err := analyzer.Extract(s, original, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ops := []schema.LayoutOp{
		schema.StructOp{Fields: []schema.StructField{
			schema.FieldStructOp{FieldIndex: s.Leaves[0].Index, Bits: 8},
			schema.FieldStructOp{FieldIndex: s.Leaves[1].Index, Bits: 8},
		}},
	}
	data, bits := analyzer.ReplayLayoutOps(ops, ext.Accumulators, s.DefaultOrder)
	if bits != 32 {
		t.Fatalf("expected 32 bits, got %d", bits)
	}
	if !bytes.Equal(data, original) {
		t.Fatalf("roundtrip mismatch: got %x want %x", data, original)
	}
}

// TestPaddingNeutrality: inserting constant-value padding between
// field emissions must not raise the measured entropy above that of
// the non-padded stream.
func TestPaddingNeutrality(t *testing.T) {
	af, aacc := fieldAcc("a", 8, 0x11, 0x22, 0x33, 0x44)
	af.Index = 0
	accs := []*analyzer.Accumulator{aacc}

	plain, plainBits := analyzer.ReplayLayoutOps(
		[]schema.LayoutOp{schema.ArrayOp{FieldIndex: 0, Bits: 8}}, accs, bitio.MSB)

	aacc2 := analyzer.NewAccumulator(af, analyzer.MaxFreqCap)
	for _, v := range []uint64{0x11, 0x22, 0x33, 0x44} {
		aacc2.Append(v)
	}
	padded, paddedBits := analyzer.ReplayLayoutOps([]schema.LayoutOp{
		schema.StructOp{Fields: []schema.StructField{
			schema.FieldStructOp{FieldIndex: 0, Bits: 8},
			schema.PaddingStructOp{Bits: 8, Value: 0},
		}},
	}, []*analyzer.Accumulator{aacc2}, bitio.MSB)

	if plainBits != 32 || paddedBits != 64 {
		t.Fatalf("unexpected bit lengths: plain=%d padded=%d", plainBits, paddedBits)
	}

	plainMetrics := analyzer.Measure(plain, plainBits, analyzer.DefaultStatsConfig())
	paddedMetrics := analyzer.Measure(padded, paddedBits, analyzer.DefaultStatsConfig())

	// the padded stream is half constant zero bytes: its entropy must
	// not exceed the plain stream's (up to float rounding).
	if paddedMetrics.Entropy > plainMetrics.Entropy+1e-9 {
		t.Fatalf("padded entropy %.4f exceeds plain entropy %.4f", paddedMetrics.Entropy, plainMetrics.Entropy)
	}
}

// TestSplitVsConcatEquivalence: scoring split_groups' group_1 = [G]
// must equal scoring the concatenation of G's descendants' accumulators
// in declaration order.
func TestSplitVsConcatEquivalence(t *testing.T) {
	rf, racc := fieldAcc("r", 8, 1, 2)
	gf, gacc := fieldAcc("g", 8, 3, 4)
	rf.Index, gf.Index = 0, 1
	accs := []*analyzer.Accumulator{racc, gacc}

	sg := &schema.SplitGroup{
		Name:         "rg",
		Group1Leaves: []int{0, 1},
		Group2Leaves: []int{1, 0},
	}
	group1, group2, bits1, bits2 := analyzer.ReplaySplitGroup(sg, accs)
	if bits1 != 32 || bits2 != 32 {
		t.Fatalf("unexpected bit lengths: %d %d", bits1, bits2)
	}
	wantGroup1 := []byte{1, 2, 3, 4}
	wantGroup2 := []byte{3, 4, 1, 2}
	if !bytes.Equal(group1, wantGroup1) {
		t.Fatalf("group1 = %v, want %v", group1, wantGroup1)
	}
	if !bytes.Equal(group2, wantGroup2) {
		t.Fatalf("group2 = %v, want %v", group2, wantGroup2)
	}
}
