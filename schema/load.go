package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sewer56/struct-compression-analyzer/bitio"
)

// Load reads and resolves a schema descriptor from path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse resolves a schema descriptor already read into memory.
func Parse(data []byte) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("schema: empty document")
	}
	root := doc.Content[0]

	s := &Schema{DefaultOrder: bitio.MSB}

	if v := mapLookup(root, "version"); v != nil {
		if err := v.Decode(&s.Version); err != nil {
			return nil, fmt.Errorf("schema: version: %w", err)
		}
	}
	if md := mapLookup(root, "metadata"); md != nil {
		if v := mapLookup(md, "name"); v != nil {
			v.Decode(&s.Name)
		}
		if v := mapLookup(md, "description"); v != nil {
			v.Decode(&s.Description)
		}
	}
	if v := mapLookup(root, "bit_order"); v != nil {
		var o string
		if err := v.Decode(&o); err != nil {
			return nil, fmt.Errorf("schema: bit_order: %w", err)
		}
		s.DefaultOrder = parseOrder(o)
	}

	offsets, err := decodeConditionalOffsets(mapLookup(root, "conditional_offsets"))
	if err != nil {
		return nil, err
	}
	s.ConditionalOffsets = offsets

	rootNode := mapLookup(root, "root")
	if rootNode == nil {
		return nil, fmt.Errorf("schema: missing root")
	}
	decoded, err := decodeNode(rootNode, "root", s.DefaultOrder, false)
	if err != nil {
		return nil, err
	}
	group, ok := decoded.(*Group)
	if !ok {
		return nil, ErrRootNotGroup
	}
	s.Root = group

	if analysis := mapLookup(root, "analysis"); analysis != nil {
		splitGroups, err := decodeSplitGroups(mapLookup(analysis, "split_groups"))
		if err != nil {
			return nil, err
		}
		s.SplitGroups = splitGroups

		compareGroups, err := decodeCompareGroups(mapLookup(analysis, "compare_groups"))
		if err != nil {
			return nil, err
		}
		s.CompareGroups = compareGroups
	}

	if err := s.resolve(); err != nil {
		return nil, err
	}
	return s, nil
}
