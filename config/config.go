// Package config parses chunking processor definitions, either from YAML or
// from an already-decoded map.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/textchunk/processor"
	"github.com/sevigo/textchunk/schema"
)

// Definition is the configuration surface of one chunking processor.
type Definition struct {
	// FieldMap maps source fields to output fields, possibly nested.
	FieldMap map[string]any `yaml:"field_map" mapstructure:"field_map"`
	// Algorithm maps exactly one algorithm name to its parameters.
	Algorithm map[string]map[string]any `yaml:"algorithm" mapstructure:"algorithm"`
	// MaxChunkLimit is an optional positive integer; -1 disables the check.
	MaxChunkLimit *int `yaml:"max_chunk_limit" mapstructure:"max_chunk_limit"`
}

// Load reads and parses a YAML processor definition.
func Load(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading definition: %v", schema.ErrInvalidConfig, err)
	}
	return Parse(data)
}

// Parse parses a YAML processor definition. Unknown top-level keys are
// rejected.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing definition: %v", schema.ErrInvalidConfig, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// FromMap builds a definition from an already-decoded map, the shape a host
// pipeline configuration typically hands over.
func FromMap(raw map[string]any) (*Definition, error) {
	var def Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &def,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidConfig, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: parsing definition: %v", schema.ErrInvalidConfig, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition-level invariants: a structurally valid
// field map, exactly one configured algorithm and a usable chunk limit.
func (d *Definition) Validate() error {
	if err := schema.FieldMap(d.FieldMap).Validate(); err != nil {
		return err
	}
	if len(d.Algorithm) != 1 {
		return fmt.Errorf("%w: [algorithm] must contain and only contain 1 algorithm", schema.ErrInvalidConfig)
	}
	if d.MaxChunkLimit != nil {
		limit := *d.MaxChunkLimit
		if limit <= 0 && limit != processor.DisabledChunkLimit {
			return fmt.Errorf("%w: parameter [max_chunk_limit] must be a positive integer", schema.ErrInvalidConfig)
		}
	}
	return nil
}

// ProcessorConfig converts the definition into a processor configuration.
func (d *Definition) ProcessorConfig() processor.Config {
	cfg := processor.Config{
		FieldMap:      schema.FieldMap(d.FieldMap),
		MaxChunkLimit: processor.DisabledChunkLimit,
	}
	for name, params := range d.Algorithm {
		cfg.Algorithm = name
		cfg.AlgorithmParams = params
	}
	if d.MaxChunkLimit != nil {
		cfg.MaxChunkLimit = *d.MaxChunkLimit
	}
	return cfg
}
