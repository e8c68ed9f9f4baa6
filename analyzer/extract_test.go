package analyzer_test

import (
	"testing"

	"github.com/Sewer56/struct-compression-analyzer/analyzer"
	"github.com/Sewer56/struct-compression-analyzer/schema"
)

const bc1Schema = `
root:
  type: group
  fields:
    colors:
      type: field
      bits: 32
    indices:
      type: field
      bits: 32
`

func mustParse(t *testing.T, doc string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return s
}

func TestExtractTwoRecords(t *testing.T) {
	s := mustParse(t, bc1Schema)
	data := make([]byte, 16) // two 8-byte records
	ext, err := analyzer.Extract(s, data, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.RecordCount != 2 {
		t.Fatalf("expected 2 records, got %d", ext.RecordCount)
	}
	colors := ext.Accumulators[s.Leaves[0].Index]
	indices := ext.Accumulators[s.Leaves[1].Index]
	if colors.Bits() != 64 {
		t.Fatalf("expected colors bit length 64, got %d", colors.Bits())
	}
	if indices.Bits() != 64 {
		t.Fatalf("expected indices bit length 64, got %d", indices.Bits())
	}
}

func TestExtractInputTooShort(t *testing.T) {
	s := mustParse(t, bc1Schema)
	ext, err := analyzer.Extract(s, make([]byte, 4), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.RecordCount != 0 {
		t.Fatalf("expected 0 records, got %d", ext.RecordCount)
	}
	found := false
	for _, w := range ext.Warnings {
		if w.Kind == analyzer.WarnInputTooShort {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an InputTooShort warning, got %v", ext.Warnings)
	}
}

func TestExtractResidualBitsDiscarded(t *testing.T) {
	s := mustParse(t, bc1Schema)
	ext, err := analyzer.Extract(s, make([]byte, 19), 0, 0) // 2 records + 3 residual bytes
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.RecordCount != 2 {
		t.Fatalf("expected 2 records, got %d", ext.RecordCount)
	}
	found := false
	for _, w := range ext.Warnings {
		if w.Kind == analyzer.WarnResidualBitsDiscarded {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a ResidualBitsDiscarded warning, got %v", ext.Warnings)
	}
}

func TestFrequencyCapExceededWarning(t *testing.T) {
	s := mustParse(t, bc1Schema) // both fields are 32 bits, above the default 16-bit cap
	ext, err := analyzer.Extract(s, make([]byte, 8), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, w := range ext.Warnings {
		if w.Kind == analyzer.WarnFrequencyCapExceeded {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 FrequencyCapExceeded warnings, got %d (%v)", count, ext.Warnings)
	}
	for _, a := range ext.Accumulators {
		if a.Histogram.Snapshot() != nil {
			t.Fatalf("expected histogram disabled for %q", a.Field.NameStr)
		}
	}
}

func TestSkipIfNotElision(t *testing.T) {
	const doc = `
root:
  type: group
  fields:
    header:
      type: field
      bits: 8
    locked:
      type: group
      skip_if_not:
        - byte_offset: 0
          bits: 8
          value: 0xFF
      fields:
        secret: 8
    plain:
      type: field
      bits: 8
`
	s := mustParse(t, doc)

	// header byte is 0x00, so locked's skip_if_not fails.
	data := []byte{0x00, 0xAA, 0xBB}
	ext, err := analyzer.Extract(s, data, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byName := map[string]*analyzer.Accumulator{}
	for _, a := range ext.Accumulators {
		byName[a.Field.NameStr] = a
	}
	if byName["secret"].Bits() != 0 {
		t.Fatalf("expected secret to contribute zero bits, got %d", byName["secret"].Bits())
	}
	if byName["header"].Bits() != 8 || byName["plain"].Bits() != 8 {
		t.Fatalf("expected siblings unaffected: header=%d plain=%d",
			byName["header"].Bits(), byName["plain"].Bits())
	}
}
