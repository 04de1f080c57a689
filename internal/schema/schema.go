// Package schema loads the per-collection search field configuration: the
// mapping from public field aliases to backend schema field names, plus the
// set of raw field names callers may reference without a rename. It is the
// source of the allow-list enforced by the lucene rebuilder.
package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Schema is the full field configuration, keyed by collection name.
type Schema struct {
	Collections map[string]Collection `yaml:"collections"`
}

// Collection holds one collection's field aliases and raw pass-through names.
type Collection struct {
	Fields    map[string]string `yaml:"fields"`
	RawFields []string          `yaml:"raw_fields"`
}

// Load reads and validates a schema YAML file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the schema for empty names and alias/raw collisions.
func (s *Schema) Validate() error {
	for name, col := range s.Collections {
		raw := make(map[string]struct{}, len(col.RawFields))
		for _, f := range col.RawFields {
			if f == "" {
				return fmt.Errorf("collection %q: empty raw field name", name)
			}
			if _, dup := raw[f]; dup {
				return fmt.Errorf("collection %q: duplicate raw field %q", name, f)
			}
			raw[f] = struct{}{}
		}
		for alias, target := range col.Fields {
			if alias == "" {
				return fmt.Errorf("collection %q: empty field alias", name)
			}
			if target == "" {
				return fmt.Errorf("collection %q: field alias %q has an empty target", name, alias)
			}
			if _, clash := raw[alias]; clash {
				return fmt.Errorf("collection %q: field alias %q is also a raw field", name, alias)
			}
		}
	}
	return nil
}

// Collection returns the replacement mapping and raw allow-set for name.
// The returned maps are fresh copies, so callers cannot mutate the schema.
func (s *Schema) Collection(name string) (map[string]string, map[string]struct{}, bool) {
	col, ok := s.Collections[name]
	if !ok {
		return nil, nil, false
	}
	fields := make(map[string]string, len(col.Fields))
	for alias, target := range col.Fields {
		fields[alias] = target
	}
	raw := make(map[string]struct{}, len(col.RawFields))
	for _, f := range col.RawFields {
		raw[f] = struct{}{}
	}
	return fields, raw, true
}
