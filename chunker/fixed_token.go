package chunker

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/sevigo/textchunk/schema"
	"github.com/sevigo/textchunk/tokenizer"
)

// Defaults for the fixed_token_length algorithm.
const (
	DefaultTokenLimit        = 384
	DefaultOverlapRate       = 0.0
	DefaultTokenizer         = tokenizer.TokenizerStandard
	DefaultTokenConcatenator = " "
	// MaxOverlapRate bounds overlap_rate so a window always advances by at
	// least half the token limit.
	MaxOverlapRate = 0.5
)

type fixedTokenParams struct {
	TokenLimit        *int     `mapstructure:"token_limit"`
	OverlapRate       *float64 `mapstructure:"overlap_rate"`
	Tokenizer         *string  `mapstructure:"tokenizer"`
	TokenConcatenator *string  `mapstructure:"token_concatenator"`
}

// FixedTokenChunker splits text into sliding windows of a fixed number of
// tokens, with an optional fractional overlap between consecutive windows.
type FixedTokenChunker struct {
	tokenLimit    int
	overlapTokens int
	tokenizerName string
	concatenator  string
	tokenizer     tokenizer.Tokenizer
}

// NewFixedTokenChunker validates the static parameter map and builds the
// chunker. All parameters are optional.
func NewFixedTokenChunker(tok tokenizer.Tokenizer, params map[string]any) (*FixedTokenChunker, error) {
	if tok == nil {
		return nil, fmt.Errorf("%w: fixed length algorithm requires a tokenizer", schema.ErrInvalidConfig)
	}

	var p fixedTokenParams
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &p,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidConfig, err)
	}
	if err := decoder.Decode(params); err != nil {
		return nil, fmt.Errorf("%w: fixed length algorithm parameters: %v", schema.ErrInvalidConfig, err)
	}

	tokenLimit := DefaultTokenLimit
	if p.TokenLimit != nil {
		if *p.TokenLimit <= 0 {
			return nil, fmt.Errorf("%w: fixed length parameter [token_limit] must be positive", schema.ErrInvalidConfig)
		}
		tokenLimit = *p.TokenLimit
	}

	overlapRate := DefaultOverlapRate
	if p.OverlapRate != nil {
		if *p.OverlapRate < 0 || *p.OverlapRate > MaxOverlapRate {
			return nil, fmt.Errorf(
				"%w: fixed length parameter [overlap_rate] must be between 0 and %v",
				schema.ErrInvalidConfig, MaxOverlapRate,
			)
		}
		overlapRate = *p.OverlapRate
	}

	tokenizerName := DefaultTokenizer
	if p.Tokenizer != nil {
		if *p.Tokenizer == "" {
			return nil, fmt.Errorf("%w: fixed length parameter [tokenizer] must be a non-empty string", schema.ErrInvalidConfig)
		}
		tokenizerName = *p.Tokenizer
	}

	concatenator := DefaultTokenConcatenator
	if p.TokenConcatenator != nil {
		concatenator = *p.TokenConcatenator
	}

	return &FixedTokenChunker{
		tokenLimit:    tokenLimit,
		overlapTokens: overlapTokens(overlapRate, tokenLimit),
		tokenizerName: tokenizerName,
		concatenator:  concatenator,
		tokenizer:     tok,
	}, nil
}

// overlapTokens rounds overlap_rate * token_limit half-up and clamps the
// result below the token limit, so a window always advances.
func overlapTokens(rate float64, tokenLimit int) int {
	overlap := int(math.Floor(rate*float64(tokenLimit) + 0.5))
	if overlap > tokenLimit-1 {
		overlap = tokenLimit - 1
	}
	return overlap
}

// Chunk tokenizes the text and emits token windows joined with the
// configured concatenator. Zero tokens produce zero chunks.
func (c *FixedTokenChunker) Chunk(ctx context.Context, text string, rp RuntimeParams) ([]string, error) {
	tokens, err := c.tokenizer.Tokenize(ctx, text, c.tokenizerName, rp.MaxTokenCount)
	if err != nil {
		return nil, err
	}

	var passages []string
	for start := 0; start < len(tokens); start += c.tokenLimit - c.overlapTokens {
		if start+c.tokenLimit >= len(tokens) {
			// the final window covers the last token
			passages = append(passages, strings.Join(tokens[start:], c.concatenator))
			break
		}
		passages = append(passages, strings.Join(tokens[start:start+c.tokenLimit], c.concatenator))
	}
	return passages, nil
}
