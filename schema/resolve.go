package schema

// resolve assigns flat leaf indices, enforces global name uniqueness,
// validates record alignment, and resolves every name reference in
// the analysis plans to a concrete field/leaf index.
func (s *Schema) resolve() error {
	s.byName = map[string]Node{}
	s.Leaves = nil

	var walk func(Node) error
	walk = func(n Node) error {
		if _, dup := s.byName[n.Name()]; dup {
			return invalidf(ErrDuplicateName, "%q", n.Name())
		}
		s.byName[n.Name()] = n
		switch v := n.(type) {
		case *Field:
			v.Index = len(s.Leaves)
			s.Leaves = append(s.Leaves, v)
		case *Group:
			for _, c := range v.Children {
				if err := walk(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(s.Root); err != nil {
		return err
	}

	s.RecordBits = s.Root.Width()
	if s.RecordBits < 1 {
		return ErrGroupTooNarrow
	}
	if s.RecordBits%8 != 0 {
		return invalidf(ErrRecordNotByteAligned, "%d bits", s.RecordBits)
	}

	for i := range s.SplitGroups {
		if err := s.resolveSplitGroup(&s.SplitGroups[i]); err != nil {
			return err
		}
	}
	for i := range s.CompareGroups {
		if err := s.resolveCompareGroup(&s.CompareGroups[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) resolveSplitGroup(sg *SplitGroup) error {
	leaves, err := s.resolveNameSet(sg.Group1)
	if err != nil {
		return invalidf(ErrUnknownReference, "split_group %q group_1: %v", sg.Name, err)
	}
	sg.Group1Leaves = leaves
	leaves, err = s.resolveNameSet(sg.Group2)
	if err != nil {
		return invalidf(ErrUnknownReference, "split_group %q group_2: %v", sg.Name, err)
	}
	sg.Group2Leaves = leaves
	return nil
}

func (s *Schema) resolveNameSet(names []string) ([]int, error) {
	var out []int
	for _, name := range names {
		n, ok := s.byName[name]
		if !ok {
			return nil, invalidf(ErrUnknownReference, "%q", name)
		}
		switch v := n.(type) {
		case *Field:
			out = append(out, v.Index)
		case *Group:
			for _, f := range v.Leaves() {
				out = append(out, f.Index)
			}
		}
	}
	return out, nil
}

func (s *Schema) resolveField(name string) (*Field, error) {
	n, ok := s.byName[name]
	if !ok {
		return nil, invalidf(ErrUnknownReference, "%q", name)
	}
	f, ok := n.(*Field)
	if !ok {
		return nil, invalidf(ErrUnknownReference, "%q is a group, not a field", name)
	}
	return f, nil
}

func (s *Schema) resolveCompareGroup(cg *CompareGroup) error {
	resolved, err := s.resolveLayoutOps(cg.Baseline)
	if err != nil {
		return invalidf(ErrUnknownReference, "compare_group %q baseline: %v", cg.Name, err)
	}
	cg.Baseline = resolved

	for _, label := range cg.ComparisonOrder {
		resolved, err := s.resolveLayoutOps(cg.Comparisons[label])
		if err != nil {
			return invalidf(ErrUnknownReference, "compare_group %q comparison %q: %v", cg.Name, label, err)
		}
		cg.Comparisons[label] = resolved
	}
	return nil
}

func (s *Schema) resolveLayoutOps(ops []LayoutOp) ([]LayoutOp, error) {
	out := make([]LayoutOp, len(ops))
	for i, op := range ops {
		switch v := op.(type) {
		case ArrayOp:
			f, err := s.resolveField(v.FieldName)
			if err != nil {
				return nil, err
			}
			v.FieldIndex = f.Index
			if v.Bits <= 0 {
				v.Bits = f.Bits - v.Offset
			}
			out[i] = v
		case StructOp:
			fields := make([]StructField, len(v.Fields))
			for j, sf := range v.Fields {
				resolved, err := s.resolveStructField(sf)
				if err != nil {
					return nil, err
				}
				fields[j] = resolved
			}
			out[i] = StructOp{Fields: fields}
		default:
			out[i] = op
		}
	}
	return out, nil
}

func (s *Schema) resolveStructField(sf StructField) (StructField, error) {
	switch v := sf.(type) {
	case FieldStructOp:
		f, err := s.resolveField(v.FieldName)
		if err != nil {
			return nil, err
		}
		v.FieldIndex = f.Index
		if v.Bits <= 0 {
			v.Bits = f.Bits
		}
		return v, nil
	case SkipStructOp:
		f, err := s.resolveField(v.FieldName)
		if err != nil {
			return nil, err
		}
		v.FieldIndex = f.Index
		if v.Bits <= 0 {
			v.Bits = f.Bits
		}
		return v, nil
	case PaddingStructOp:
		return v, nil
	default:
		return nil, ErrNestedStruct
	}
}
