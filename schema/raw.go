package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sewer56/struct-compression-analyzer/bitio"
)

// mapEntries returns the keys and value nodes of a YAML mapping node in
// declaration order. gopkg.in/yaml.v3 stores mapping Content as
// alternating key/value node pairs, which is what lets this function
// (and therefore every caller) preserve order recursively -- the
// property sigs.k8s.io/yaml and a bare map[string]any cannot offer.
func mapEntries(n *yaml.Node) ([]string, []*yaml.Node, error) {
	if n == nil {
		return nil, nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("schema: expected mapping at line %d, got %v", n.Line, n.Kind)
	}
	keys := make([]string, 0, len(n.Content)/2)
	vals := make([]*yaml.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var k string
		if err := n.Content[i].Decode(&k); err != nil {
			return nil, nil, fmt.Errorf("schema: mapping key at line %d: %w", n.Content[i].Line, err)
		}
		keys = append(keys, k)
		vals = append(vals, n.Content[i+1])
	}
	return keys, vals, nil
}

func mapLookup(n *yaml.Node, key string) *yaml.Node {
	keys, vals, err := mapEntries(n)
	if err != nil {
		return nil
	}
	for i, k := range keys {
		if k == key {
			return vals[i]
		}
	}
	return nil
}

func parseOrder(s string) bitio.Order {
	if strings.EqualFold(s, "lsb") {
		return bitio.LSB
	}
	return bitio.MSB
}

func decodeValue(n *yaml.Node) (uint64, error) {
	var u uint64
	if err := n.Decode(&u); err == nil {
		return u, nil
	}
	var s string
	if err := n.Decode(&s); err != nil {
		return 0, fmt.Errorf("schema: condition value at line %d must be an integer or hex string: %w", n.Line, err)
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("schema: condition value %q at line %d: %w", s, n.Line, err)
	}
	return v, nil
}

func decodeCondition(n *yaml.Node) (Condition, error) {
	keys, vals, err := mapEntries(n)
	if err != nil {
		return Condition{}, err
	}
	c := Condition{Bits: 8, Order: bitio.MSB}
	for i, k := range keys {
		v := vals[i]
		switch k {
		case "byte_offset":
			if err := v.Decode(&c.ByteOffset); err != nil {
				return Condition{}, err
			}
		case "bit_offset":
			if err := v.Decode(&c.BitOffset); err != nil {
				return Condition{}, err
			}
		case "bits":
			if err := v.Decode(&c.Bits); err != nil {
				return Condition{}, err
			}
		case "bit_order":
			var s string
			if err := v.Decode(&s); err != nil {
				return Condition{}, err
			}
			c.Order = parseOrder(s)
		case "value":
			val, err := decodeValue(v)
			if err != nil {
				return Condition{}, err
			}
			c.Value = val
		}
	}
	if c.Bits < 1 || c.Bits > 64 {
		return Condition{}, invalidf(ErrInvalidWidth, "condition at line %d: %d", n.Line, c.Bits)
	}
	return c, nil
}

func decodeConditions(n *yaml.Node) ([]Condition, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("schema: expected sequence of conditions at line %d", n.Line)
	}
	out := make([]Condition, 0, len(n.Content))
	for _, item := range n.Content {
		c, err := decodeCondition(item)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeConditionalOffsets(n *yaml.Node) ([]ConditionalOffset, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("schema: conditional_offsets must be a sequence")
	}
	out := make([]ConditionalOffset, 0, len(n.Content))
	for _, item := range n.Content {
		keys, vals, err := mapEntries(item)
		if err != nil {
			return nil, err
		}
		co := ConditionalOffset{}
		for i, k := range keys {
			v := vals[i]
			switch k {
			case "offset":
				if err := v.Decode(&co.RecordStart); err != nil {
					return nil, err
				}
			case "conditions":
				conds, err := decodeConditions(v)
				if err != nil {
					return nil, err
				}
				co.Conditions = conds
			}
		}
		out = append(out, co)
	}
	return out, nil
}

func decodeStringList(n *yaml.Node) ([]string, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("schema: expected sequence of names at line %d", n.Line)
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		var s string
		if err := item.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// decodeNode builds a Node (Field or Group) from a YAML field-or-group
// entry: either a bare integer shorthand, or a mapping with an explicit
// "type". Bit order and skip_frequency_analysis inherit from the
// parent unless overridden.
func decodeNode(n *yaml.Node, name string, inheritedOrder bitio.Order, inheritedSkipFreq bool) (Node, error) {
	if n.Kind == yaml.ScalarNode {
		var bits int
		if err := n.Decode(&bits); err == nil {
			if bits < 1 || bits > 64 {
				return nil, invalidf(ErrInvalidWidth, "field %q: %d", name, bits)
			}
			return &Field{NameStr: name, Bits: bits, Order: inheritedOrder, SkipFreq: inheritedSkipFreq}, nil
		}
	}

	keys, vals, err := mapEntries(n)
	if err != nil {
		return nil, fmt.Errorf("schema: field %q: %w", name, err)
	}

	var typ, description, bitOrderStr string
	bits, hasBits := 0, false
	skipFreq := inheritedSkipFreq
	var skipIfNot []Condition
	var fieldsNode *yaml.Node

	for i, k := range keys {
		v := vals[i]
		var err error
		switch k {
		case "type":
			err = v.Decode(&typ)
		case "description":
			err = v.Decode(&description)
		case "bit_order":
			err = v.Decode(&bitOrderStr)
		case "bits":
			err = v.Decode(&bits)
			hasBits = true
		case "skip_frequency_analysis":
			err = v.Decode(&skipFreq)
		case "skip_if_not":
			skipIfNot, err = decodeConditions(v)
		case "fields":
			fieldsNode = v
		}
		if err != nil {
			return nil, fmt.Errorf("schema: field %q key %q: %w", name, k, err)
		}
	}

	order := inheritedOrder
	if bitOrderStr != "" {
		order = parseOrder(bitOrderStr)
	}
	if typ == "" {
		if fieldsNode != nil {
			typ = "group"
		} else {
			typ = "field"
		}
	}

	switch typ {
	case "field":
		if !hasBits {
			return nil, fmt.Errorf("schema: field %q: bits is required", name)
		}
		if bits < 1 || bits > 64 {
			return nil, invalidf(ErrInvalidWidth, "field %q: %d", name, bits)
		}
		return &Field{
			NameStr:   name,
			Bits:      bits,
			Order:     order,
			SkipFreq:  skipFreq,
			SkipIfNot: skipIfNot,
		}, nil
	case "group":
		if fieldsNode == nil {
			return nil, fmt.Errorf("schema: group %q: fields is required", name)
		}
		childKeys, childVals, err := mapEntries(fieldsNode)
		if err != nil {
			return nil, fmt.Errorf("schema: group %q: %w", name, err)
		}
		children := make([]Node, 0, len(childKeys))
		for i, ck := range childKeys {
			child, err := decodeNode(childVals[i], ck, order, skipFreq)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		width := 0
		for _, c := range children {
			width += c.Width()
		}
		return &Group{
			NameStr:     name,
			Description: description,
			Order:       order,
			SkipFreq:    skipFreq,
			SkipIfNot:   skipIfNot,
			Children:    children,
			width:       width,
		}, nil
	default:
		return nil, fmt.Errorf("schema: field %q: unknown type %q", name, typ)
	}
}

func decodeStructFieldOp(n *yaml.Node) (StructField, error) {
	keys, vals, err := mapEntries(n)
	if err != nil {
		return nil, err
	}
	var typ, field string
	bits := -1
	var value uint64
	for i, k := range keys {
		v := vals[i]
		var err error
		switch k {
		case "type":
			err = v.Decode(&typ)
		case "field":
			err = v.Decode(&field)
		case "bits":
			err = v.Decode(&bits)
		case "value":
			value, err = decodeValue(v)
		}
		if err != nil {
			return nil, err
		}
	}
	switch typ {
	case "field":
		return FieldStructOp{FieldName: field, Bits: bits}, nil
	case "padding":
		if bits < 0 {
			return nil, fmt.Errorf("schema: padding op requires bits")
		}
		return PaddingStructOp{Bits: bits, Value: value}, nil
	case "skip":
		if bits < 0 {
			return nil, fmt.Errorf("schema: skip op requires bits")
		}
		return SkipStructOp{FieldName: field, Bits: bits}, nil
	case "struct":
		return nil, ErrNestedStruct
	default:
		return nil, fmt.Errorf("schema: unknown struct op type %q", typ)
	}
}

func decodeLayoutOp(n *yaml.Node) (LayoutOp, error) {
	keys, vals, err := mapEntries(n)
	if err != nil {
		return nil, err
	}
	var typ, field string
	offset, bits := 0, -1
	var fieldsNode *yaml.Node
	for i, k := range keys {
		v := vals[i]
		var err error
		switch k {
		case "type":
			err = v.Decode(&typ)
		case "field":
			err = v.Decode(&field)
		case "offset":
			err = v.Decode(&offset)
		case "bits":
			err = v.Decode(&bits)
		case "fields":
			fieldsNode = v
		}
		if err != nil {
			return nil, err
		}
	}
	switch typ {
	case "array":
		return ArrayOp{FieldName: field, Offset: offset, Bits: bits}, nil
	case "struct":
		if fieldsNode == nil || fieldsNode.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("schema: struct op requires a fields sequence")
		}
		ops := make([]StructField, 0, len(fieldsNode.Content))
		for _, item := range fieldsNode.Content {
			op, err := decodeStructFieldOp(item)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
		}
		return StructOp{Fields: ops}, nil
	default:
		return nil, fmt.Errorf("schema: unknown layout op type %q", typ)
	}
}

func decodeLayoutOps(n *yaml.Node) ([]LayoutOp, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, ErrStructAtNonTopLevel
	}
	out := make([]LayoutOp, 0, len(n.Content))
	for _, item := range n.Content {
		op, err := decodeLayoutOp(item)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}

func decodeSplitGroups(n *yaml.Node) ([]SplitGroup, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("schema: analysis.split_groups must be a sequence")
	}
	out := make([]SplitGroup, 0, len(n.Content))
	for _, item := range n.Content {
		keys, vals, err := mapEntries(item)
		if err != nil {
			return nil, err
		}
		sg := SplitGroup{}
		for i, k := range keys {
			v := vals[i]
			var err error
			switch k {
			case "name":
				err = v.Decode(&sg.Name)
			case "description":
				err = v.Decode(&sg.Description)
			case "group_1":
				sg.Group1, err = decodeStringList(v)
			case "group_2":
				sg.Group2, err = decodeStringList(v)
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, sg)
	}
	return out, nil
}

func decodeCompareGroups(n *yaml.Node) ([]CompareGroup, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("schema: analysis.compare_groups must be a sequence")
	}
	out := make([]CompareGroup, 0, len(n.Content))
	for _, item := range n.Content {
		keys, vals, err := mapEntries(item)
		if err != nil {
			return nil, err
		}
		cg := CompareGroup{Comparisons: map[string][]LayoutOp{}}
		for i, k := range keys {
			v := vals[i]
			switch k {
			case "name":
				if err := v.Decode(&cg.Name); err != nil {
					return nil, err
				}
			case "description":
				if err := v.Decode(&cg.Description); err != nil {
					return nil, err
				}
			case "baseline":
				ops, err := decodeLayoutOps(v)
				if err != nil {
					return nil, err
				}
				cg.Baseline = ops
			case "comparisons":
				labelKeys, labelVals, err := mapEntries(v)
				if err != nil {
					return nil, err
				}
				for j, label := range labelKeys {
					ops, err := decodeLayoutOps(labelVals[j])
					if err != nil {
						return nil, err
					}
					cg.Comparisons[label] = ops
					cg.ComparisonOrder = append(cg.ComparisonOrder, label)
				}
			}
		}
		out = append(out, cg)
	}
	return out, nil
}
