// Package schema models the bit-packed record schema described in a
// YAML descriptor: a tree of fields and groups with resolved bit
// widths, bit orders, and skip predicates, plus the layout-comparison
// plans that are replayed against extracted field bits.
package schema

import "github.com/Sewer56/struct-compression-analyzer/bitio"

// Node is the closed FieldOrGroup sum type: either a *Field leaf or a
// *Group. The unexported marker method keeps the variant set fixed,
// favoring pattern-match dispatch over a virtual interface table for
// this small, closed set.
type Node interface {
	Name() string
	Width() int
	node()
}

// Condition is one clause of a ConditionalOffset or a SkipIfNot
// predicate: a byte/bit-aligned window compared against a big-endian
// expected value.
type Condition struct {
	ByteOffset int
	BitOffset  int // 0-7
	Bits       int // 1-64
	Order      bitio.Order
	Value      uint64
}

// ConditionalOffset is one entry of the schema's conditional_offsets
// list: if every Condition matches, RecordStart fixes the byte offset
// at which record parsing begins.
type ConditionalOffset struct {
	RecordStart int
	Conditions  []Condition
}

// Field is a leaf of the schema tree.
type Field struct {
	NameStr   string
	Bits      int
	Order     bitio.Order
	SkipFreq  bool
	SkipIfNot []Condition

	// Index is this leaf's position in the schema's flat Leaves array,
	// assigned during resolution.
	Index int
}

func (f *Field) Name() string { return f.NameStr }
func (f *Field) Width() int   { return f.Bits }
func (*Field) node()          {}

// Group is an organizational node: it contributes no bits of its own,
// its Width is the sum of its children's widths.
type Group struct {
	NameStr     string
	Description string
	Order       bitio.Order
	SkipFreq    bool
	SkipIfNot   []Condition
	Children    []Node

	width int
}

func (g *Group) Name() string { return g.NameStr }
func (g *Group) Width() int   { return g.width }
func (*Group) node()          {}

// Leaves returns every *Field transitively under g, in declaration
// order.
func (g *Group) Leaves() []*Field {
	var out []*Field
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Field:
			out = append(out, v)
		case *Group:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(g)
	return out
}

// LayoutOp is the closed sum type for layout-replay operations:
// ArrayOp or StructOp at the top level, with StructOp made of
// StructField operations.
type LayoutOp interface {
	layoutOp()
}

// ArrayOp emits all remaining values of Field, taking the slice
// [Offset, Offset+Bits) of each value.
type ArrayOp struct {
	FieldName  string
	FieldIndex int
	Offset     int
	Bits       int
}

func (ArrayOp) layoutOp() {}

// StructOp repeats a row of StructField operations until a full pass
// produces no field-backed output.
type StructOp struct {
	Fields []StructField
}

func (StructOp) layoutOp() {}

// StructField is the closed sum type for one operation inside a
// StructOp row.
type StructField interface {
	structField()
}

// FieldStructOp consumes one value of Field and emits its high Bits
// bits.
type FieldStructOp struct {
	FieldName  string
	FieldIndex int
	Bits       int
}

func (FieldStructOp) structField() {}

// PaddingStructOp emits Bits bits of the fixed Value; it never
// produces "data written" signal.
type PaddingStructOp struct {
	Bits  int
	Value uint64
}

func (PaddingStructOp) structField() {}

// SkipStructOp advances Field's cursor past exactly one value without
// emitting anything. Bits is resolved (defaulting to the field's
// width) but the replay does not read it: a skip of a different bit
// count still skips one whole value.
type SkipStructOp struct {
	FieldName  string
	FieldIndex int
	Bits       int
}

func (SkipStructOp) structField() {}

// SplitGroup compares a parent group against the concatenation of two
// named sets of descendants.
type SplitGroup struct {
	Name        string
	Description string
	Group1      []string
	Group2      []string
	Group1Leaves []int
	Group2Leaves []int
}

// CompareGroup is a named plan that replays one baseline layout and
// one-or-more labeled comparison layouts into synthetic streams for
// scoring.
type CompareGroup struct {
	Name            string
	Description     string
	Baseline        []LayoutOp
	Comparisons     map[string][]LayoutOp
	ComparisonOrder []string // declaration order of Comparisons' keys
}

// Schema is the fully-resolved, immutable schema tree.
type Schema struct {
	Version     string
	Name        string
	Description string

	DefaultOrder       bitio.Order
	ConditionalOffsets []ConditionalOffset
	Root               *Group

	SplitGroups   []SplitGroup
	CompareGroups []CompareGroup

	// Leaves is the flat, declaration-ordered array of every leaf in
	// the tree; Leaves[i].Index == i.
	Leaves []*Field

	// RecordBits is the sum of every leaf's width; invariant: a
	// multiple of 8.
	RecordBits int

	byName map[string]Node
}

// Lookup resolves a field or group name to its Node, or nil if unknown.
func (s *Schema) Lookup(name string) Node {
	return s.byName[name]
}
