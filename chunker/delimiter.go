package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/sevigo/textchunk/schema"
)

type delimiterParams struct {
	Delimiter *string `mapstructure:"delimiter"`
}

// DelimiterChunker splits text at every occurrence of a literal delimiter
// substring. Each chunk keeps its trailing delimiter except possibly the
// last one. It needs no tokenizer and ignores runtime parameters.
type DelimiterChunker struct {
	delimiter string
}

// NewDelimiterChunker validates the parameter map and builds the chunker.
// The delimiter parameter is required and must be a non-empty string.
func NewDelimiterChunker(params map[string]any) (*DelimiterChunker, error) {
	var p delimiterParams
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &p,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidConfig, err)
	}
	if err := decoder.Decode(params); err != nil {
		return nil, fmt.Errorf("%w: delimiter algorithm parameters: %v", schema.ErrInvalidConfig, err)
	}
	if p.Delimiter == nil {
		return nil, fmt.Errorf("%w: delimiter algorithm parameters must contain field [delimiter]", schema.ErrInvalidConfig)
	}
	if *p.Delimiter == "" {
		return nil, fmt.Errorf("%w: delimiter parameter [delimiter] must be a non-empty string", schema.ErrInvalidConfig)
	}
	return &DelimiterChunker{delimiter: *p.Delimiter}, nil
}

// Chunk scans the text left to right. The delimiter is matched as a literal
// substring, never as a regular expression. Empty text produces zero chunks.
func (c *DelimiterChunker) Chunk(_ context.Context, text string, _ RuntimeParams) ([]string, error) {
	var chunks []string
	position := 0
	for {
		next := strings.Index(text[position:], c.delimiter)
		if next < 0 {
			break
		}
		end := position + next + len(c.delimiter)
		chunks = append(chunks, text[position:end])
		position = end
	}
	if position < len(text) {
		chunks = append(chunks, text[position:])
	}
	return chunks, nil
}
