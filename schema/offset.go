package schema

import "github.com/Sewer56/struct-compression-analyzer/bitio"

// ResolveOffset picks the first ConditionalOffset entry (in
// declaration order) whose conditions all match, and returns its
// byte offset. If none match, parsing starts at offset 0.
func ResolveOffset(data []byte, offsets []ConditionalOffset) int {
	for _, co := range offsets {
		if allConditionsMatch(data, co.Conditions) {
			return co.RecordStart
		}
	}
	return 0
}

// ConditionsMatch reports whether every condition in conds matches
// data; used both for conditional_offsets and for skip_if_not
// predicates.
func ConditionsMatch(data []byte, conds []Condition) bool {
	return allConditionsMatch(data, conds)
}

func allConditionsMatch(data []byte, conds []Condition) bool {
	for _, c := range conds {
		if !conditionMatches(data, c) {
			return false
		}
	}
	return true
}

// conditionMatches never returns an error: a condition whose read
// range exceeds the file length simply fails.
func conditionMatches(data []byte, c Condition) bool {
	start := uint64(c.ByteOffset)*8 + uint64(c.BitOffset)
	end := start + uint64(c.Bits)
	if end > uint64(len(data))*8 {
		return false
	}
	r := bitio.NewReader(data)
	if err := r.SeekBits(start); err != nil {
		return false
	}
	v, err := r.Read(c.Bits, c.Order)
	if err != nil {
		return false
	}
	return v == c.Value
}
