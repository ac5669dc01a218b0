package records

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// readYAML accepts a top-level sequence of mappings or a mapping with a
// "records" sequence. JSON documents parse as YAML.
func readYAML(r io.Reader) ([]Record, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	seq := &root
	if seq.Kind == yaml.DocumentNode && len(seq.Content) > 0 {
		seq = seq.Content[0]
	}
	if seq.Kind == yaml.MappingNode {
		seq = recordsKey(seq)
		if seq == nil {
			return nil, fmt.Errorf("mapping has no \"records\" sequence: %w", pgbulk.ErrUnsupportedFormat)
		}
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence of records: %w", seq.Line, pgbulk.ErrUnsupportedFormat)
	}

	out := make([]Record, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind == yaml.ScalarNode && item.ShortTag() == "!!null" {
			out = append(out, nil)
			continue
		}
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("record %d (line %d): expected a mapping: %w", i+1, item.Line, pgbulk.ErrUnsupportedFormat)
		}
		var rec Record
		if err := item.Decode(&rec); err != nil {
			return nil, fmt.Errorf("record %d (line %d): %w", i+1, item.Line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func recordsKey(m *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == "records" {
			return m.Content[i+1]
		}
	}
	return nil
}
