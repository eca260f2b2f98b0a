package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/textchunk/schema"
)

func TestFieldMap_Validate(t *testing.T) {
	tests := []struct {
		name     string
		fieldMap schema.FieldMap
		wantErr  bool
	}{
		{"simple mapping", schema.FieldMap{"body": "body_chunks"}, false},
		{"nested mapping", schema.FieldMap{"article": map[string]any{"body": "body_chunks"}}, false},
		{"deeply nested mapping", schema.FieldMap{
			"a": map[string]any{"b": map[string]any{"c": "c_chunks"}},
		}, false},
		{"empty field map", schema.FieldMap{}, true},
		{"nil field map", nil, true},
		{"empty source key", schema.FieldMap{"": "chunks"}, true},
		{"empty output name", schema.FieldMap{"body": ""}, true},
		{"empty nested map", schema.FieldMap{"article": map[string]any{}}, true},
		{"non-string non-map target", schema.FieldMap{"body": 7}, true},
		{"invalid nested entry", schema.FieldMap{"article": map[string]any{"body": 7}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fieldMap.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, schema.ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAsFieldMap(t *testing.T) {
	if _, ok := schema.AsFieldMap(map[string]any{"a": "b"}); !ok {
		t.Error("AsFieldMap(map[string]any) = false, want true")
	}
	if _, ok := schema.AsFieldMap(schema.FieldMap{"a": "b"}); !ok {
		t.Error("AsFieldMap(FieldMap) = false, want true")
	}
	if _, ok := schema.AsFieldMap("output"); ok {
		t.Error("AsFieldMap(string) = true, want false")
	}
	if _, ok := schema.AsFieldMap(nil); ok {
		t.Error("AsFieldMap(nil) = true, want false")
	}
}
