// Package loaders reads YAML descriptions of named phase functions and
// builds them.
package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the top level of a phase description document
type File struct {
	Phases map[string]*Description `yaml:"phases"`
}

// Description describes one phase function. Either Ref or Type is set.
type Description struct {
	Type string `yaml:"type"` // hg, isotropic, rayleigh or blend
	Ref  string `yaml:"ref"`  // Name of another entry to share

	// hg
	G *float64 `yaml:"g"`

	// blend: children either as phase_0/phase_1 or as a list
	Weight *FieldDescription `yaml:"weight"`
	Phase0 *Description      `yaml:"phase_0"`
	Phase1 *Description      `yaml:"phase_1"`
	Phases []*Description    `yaml:"phases"`
}

// FieldDescription describes a scalar field. A bare number is shorthand for
// a constant field.
type FieldDescription struct {
	Type string `yaml:"type"` // constant, gradient or grid

	// constant
	Value float64 `yaml:"value"`

	// gradient
	Axis  string  `yaml:"axis"` // x, y or z
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	From  float64 `yaml:"from"`
	To    float64 `yaml:"to"`

	// grid
	Min        [3]float64 `yaml:"min"`
	Max        [3]float64 `yaml:"max"`
	Resolution [3]int     `yaml:"resolution"`
	Data       []float64  `yaml:"data"`
}

// UnmarshalYAML accepts either a mapping or a bare number
func (f *FieldDescription) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var value float64
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("line %d: field shorthand must be a number: %w", node.Line, err)
		}
		*f = FieldDescription{Type: "constant", Value: value}
		return nil
	}

	// Decode through an alias type to avoid recursing into this method.
	// Node.Decode ignores KnownFields, so the node is re-encoded first.
	type plain FieldDescription
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var decoded plain
	if err := dec.Decode(&decoded); err != nil {
		return fmt.Errorf("line %d: field: %w", node.Line, err)
	}
	*f = FieldDescription(decoded)
	return nil
}

// Parse parses a phase description from an io.Reader.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Parse(reader io.Reader) (*File, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var file File
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("phase description is empty")
		}
		return nil, fmt.Errorf("failed to parse phase description: %w", err)
	}
	if len(file.Phases) == 0 {
		return nil, fmt.Errorf("phase description defines no phases")
	}
	return &file, nil
}

// Load loads and parses a phase description file
func Load(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open phase description: %w", err)
	}
	defer file.Close()

	parsed, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return parsed, nil
}
