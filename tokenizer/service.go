package tokenizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"

	"github.com/sevigo/textchunk/schema"
)

// Named word-oriented tokenizers.
const (
	TokenizerStandard   = "standard"
	TokenizerWhitespace = "whitespace"
	TokenizerLetter     = "letter"
	TokenizerLowercase  = "lowercase"
)

// DefaultMaxTokenCount is the cutoff applied when the caller supplies none.
const DefaultMaxTokenCount = 10000

// bpeEncodings lists the supported tiktoken encoding names.
var bpeEncodings = map[string]bool{
	"cl100k_base": true,
	"o200k_base":  true,
	"r50k_base":   true,
	"p50k_base":   true,
	"p50k_edit":   true,
}

// Service resolves tokenizer names to implementations. Word-oriented
// tokenizers are stateless; BPE encodings are loaded once and cached.
// A Service is safe for concurrent use.
type Service struct {
	logger *slog.Logger

	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
}

// NewService creates a tokenizer service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:    logger,
		encodings: make(map[string]*tiktoken.Tiktoken),
	}
}

// Tokenize implements the Tokenizer interface.
func (s *Service) Tokenize(_ context.Context, text, tokenizerName string, maxTokenCount int) ([]string, error) {
	if maxTokenCount <= 0 {
		maxTokenCount = DefaultMaxTokenCount
	}

	var tokens []string
	switch tokenizerName {
	case "", TokenizerStandard:
		tokens = standardTokens(text)
	case TokenizerWhitespace:
		tokens = strings.Fields(text)
	case TokenizerLetter:
		tokens = letterTokens(text, false)
	case TokenizerLowercase:
		tokens = letterTokens(text, true)
	default:
		if !bpeEncodings[tokenizerName] {
			return nil, fmt.Errorf("%w: unknown tokenizer [%s]", schema.ErrTokenization, tokenizerName)
		}
		var err error
		tokens, err = s.encodingTokens(text, tokenizerName)
		if err != nil {
			return nil, err
		}
	}

	if len(tokens) > maxTokenCount {
		return nil, fmt.Errorf(
			"%w: tokenizer [%s] produced [%d] tokens, exceeding the max token count [%d]",
			schema.ErrTokenization, tokenizerName, len(tokens), maxTokenCount,
		)
	}
	return tokens, nil
}

// standardTokens segments NFC-normalized text at Unicode word boundaries and
// keeps the segments that carry at least one letter or digit.
func standardTokens(text string) []string {
	var tokens []string
	state := -1
	var word string
	for rest := norm.NFC.String(text); len(rest) > 0; {
		word, rest, state = uniseg.FirstWordInString(rest, state)
		if hasAlphanumeric(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func letterTokens(text string, lowercase bool) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if lowercase {
		for i, token := range tokens {
			tokens[i] = strings.ToLower(token)
		}
	}
	return tokens
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// encodingTokens splits text into BPE token strings using the named
// tiktoken encoding.
func (s *Service) encodingTokens(text, encodingName string) ([]string, error) {
	encoding, err := s.encoding(encodingName)
	if err != nil {
		return nil, err
	}
	ids := encoding.Encode(text, nil, nil)
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, encoding.Decode([]int{id}))
	}
	return tokens, nil
}

func (s *Service) encoding(name string) (*tiktoken.Tiktoken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if encoding, ok := s.encodings[name]; ok {
		return encoding, nil
	}
	encoding, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: loading encoding [%s]: %v", schema.ErrTokenization, name, err)
	}
	s.logger.Debug("loaded token encoding", "encoding", name)
	s.encodings[name] = encoding
	return encoding, nil
}
