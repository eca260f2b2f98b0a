package schema

import (
	"errors"
	"fmt"
)

// Document is the mutable source tree of one document being processed. Nodes
// are strings, lists ([]any or []string) or nested maps. The document is
// owned by the caller for the duration of one processing call; the engine
// mutates it in place and keeps no references afterwards.
type Document = map[string]any

// IndexField is the metadata key naming the index a document belongs to.
// It is consulted only to resolve index-specific settings.
const IndexField = "_index"

var (
	ErrInvalidConfig     = errors.New("invalid chunking configuration")
	ErrInvalidFieldValue = errors.New("invalid field value")
	ErrDepthLimit        = errors.New("depth limit exceeded")
	ErrChunkLimit        = errors.New("chunk limit exceeded")
	ErrTokenization      = errors.New("tokenization failed")
)

// FieldMap maps a source field name to either an output field name (string)
// or a nested FieldMap describing how to descend into a map-valued source
// field. A FieldMap is configured once and must not be modified afterwards;
// it is safe to share across concurrent processing calls.
type FieldMap map[string]any

// AsFieldMap reports whether v is a nested field map and converts it.
// Nested maps parsed from YAML or JSON arrive as plain map[string]any.
func AsFieldMap(v any) (FieldMap, bool) {
	switch m := v.(type) {
	case FieldMap:
		return m, true
	case map[string]any:
		return FieldMap(m), true
	}
	return nil, false
}

// Validate checks the structural invariant of the field map: every value is
// either a non-empty output field name or a non-empty nested field map.
func (fm FieldMap) Validate() error {
	if len(fm) == 0 {
		return fmt.Errorf("%w: field map must not be empty", ErrInvalidConfig)
	}
	for key, value := range fm {
		if key == "" {
			return fmt.Errorf("%w: field map contains an empty source field name", ErrInvalidConfig)
		}
		switch target := value.(type) {
		case string:
			if target == "" {
				return fmt.Errorf("%w: field map entry [%s] has an empty output field name", ErrInvalidConfig, key)
			}
		default:
			nested, ok := AsFieldMap(value)
			if !ok {
				return fmt.Errorf("%w: field map entry [%s] must be an output field name or a nested field map", ErrInvalidConfig, key)
			}
			if len(nested) == 0 {
				return fmt.Errorf("%w: field map entry [%s] has an empty nested field map", ErrInvalidConfig, key)
			}
			if err := nested.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
