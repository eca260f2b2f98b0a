package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/textchunk/chunker"
	"github.com/sevigo/textchunk/schema"
)

// DefaultMaxNestingDepth matches the default index mapping depth limit.
const DefaultMaxNestingDepth = 20

// Config describes one chunking processor.
type Config struct {
	// FieldMap maps source fields to output fields, possibly nested.
	FieldMap schema.FieldMap
	// Algorithm names the chunking algorithm to use.
	Algorithm string
	// AlgorithmParams holds the algorithm's static parameters.
	AlgorithmParams map[string]any
	// MaxChunkLimit bounds the total chunk count per document.
	// DisabledChunkLimit (or zero) disables the check.
	MaxChunkLimit int
	// MaxNestingDepth bounds nested traversal; non-positive means the default.
	MaxNestingDepth int
}

// ChunkingProcessor chunks the mapped text fields of a document and writes
// the chunk lists back next to their source fields. It is immutable after
// construction and safe for concurrent Execute calls: every call owns a
// fresh quota and write buffer.
type ChunkingProcessor struct {
	fieldMap      schema.FieldMap
	chunker       chunker.Chunker
	needsRuntime  bool
	maxChunkLimit int
	maxDepth      int
	settings      SettingsLookup
	logger        *slog.Logger
}

// NewChunkingProcessor validates the configuration, builds the configured
// chunking algorithm and returns a ready processor.
func NewChunkingProcessor(cfg Config, deps chunker.Dependencies, settings SettingsLookup, logger *slog.Logger) (*ChunkingProcessor, error) {
	if err := cfg.FieldMap.Validate(); err != nil {
		return nil, err
	}

	maxChunkLimit := cfg.MaxChunkLimit
	if maxChunkLimit == 0 {
		maxChunkLimit = DisabledChunkLimit
	}
	if maxChunkLimit <= 0 && maxChunkLimit != DisabledChunkLimit {
		return nil, fmt.Errorf("%w: parameter [max_chunk_limit] must be a positive integer", schema.ErrInvalidConfig)
	}

	maxDepth := cfg.MaxNestingDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestingDepth
	}

	c, err := chunker.New(cfg.Algorithm, deps, cfg.AlgorithmParams)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		settings = StaticSettings{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ChunkingProcessor{
		fieldMap:      cfg.FieldMap,
		chunker:       c,
		needsRuntime:  chunker.RequiresRuntimeParameters(cfg.Algorithm),
		maxChunkLimit: maxChunkLimit,
		maxDepth:      maxDepth,
		settings:      settings,
		logger:        logger,
	}, nil
}

// Execute chunks every mapped text field of doc and writes each chunk list
// under its output key, as a sibling of the source field. The document is
// mutated only after the whole walk has succeeded; on error it is returned
// unmodified.
func (p *ChunkingProcessor) Execute(ctx context.Context, doc schema.Document) error {
	if err := p.validateFields(doc); err != nil {
		return err
	}

	var rp chunker.RuntimeParams
	if p.needsRuntime {
		indexName, _ := doc[schema.IndexField].(string)
		rp.MaxTokenCount = p.settings.MaxTokenCount(indexName)
	}

	quota := NewQuota(p.maxChunkLimit)
	var buf writeBuffer
	if err := p.chunkMap(ctx, doc, p.fieldMap, rp, quota, &buf); err != nil {
		return err
	}
	buf.commit()

	p.logger.Debug("document chunking complete", "chunks", quota.Count())
	return nil
}

// validateFields checks every mapped source value for shape and depth
// violations before anything is chunked or written.
func (p *ChunkingProcessor) validateFields(doc schema.Document) error {
	for sourceKey := range p.fieldMap {
		sourceValue, ok := doc[sourceKey]
		if !ok || sourceValue == nil {
			continue
		}
		switch sourceValue.(type) {
		case string:
		case []any, []string, map[string]any:
			if err := p.validateNested(sourceKey, sourceValue, 1); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: field [%s] is neither string nor nested type, cannot process it",
				schema.ErrInvalidFieldValue, sourceKey)
		}
	}
	return nil
}

func (p *ChunkingProcessor) validateNested(sourceKey string, value any, depth int) error {
	if depth > p.maxDepth {
		return fmt.Errorf("%w: map type field [%s] reached max depth limit, cannot process it",
			schema.ErrDepthLimit, sourceKey)
	}
	switch v := value.(type) {
	case string, []string:
		return nil
	case []any:
		return p.validateList(sourceKey, v, depth)
	case map[string]any:
		for _, nested := range v {
			if nested == nil {
				continue
			}
			if err := p.validateNested(sourceKey, nested, depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: map type field [%s] has non-string type, cannot process it",
			schema.ErrInvalidFieldValue, sourceKey)
	}
}

func (p *ChunkingProcessor) validateList(sourceKey string, list []any, depth int) error {
	for _, element := range list {
		switch element.(type) {
		case nil:
			return fmt.Errorf("%w: list type field [%s] has null, cannot process it",
				schema.ErrInvalidFieldValue, sourceKey)
		case map[string]any:
			if err := p.validateNested(sourceKey, element, depth+1); err != nil {
				return err
			}
		case string:
		default:
			return fmt.Errorf("%w: list type field [%s] has non string value, cannot process it",
				schema.ErrInvalidFieldValue, sourceKey)
		}
	}
	return nil
}

// chunkMap walks one document level against one field map level. Output
// writes are buffered so a failure anywhere leaves the document untouched.
func (p *ChunkingProcessor) chunkMap(
	ctx context.Context,
	level map[string]any,
	fieldMap schema.FieldMap,
	rp chunker.RuntimeParams,
	quota *Quota,
	buf *writeBuffer,
) error {
	for sourceKey, target := range fieldMap {
		if nested, ok := schema.AsFieldMap(target); ok {
			switch source := level[sourceKey].(type) {
			case []any:
				for _, element := range source {
					if m, ok := element.(map[string]any); ok {
						if err := p.chunkMap(ctx, m, nested, rp, quota, buf); err != nil {
							return err
						}
					}
				}
			case map[string]any:
				if err := p.chunkMap(ctx, source, nested, rp, quota, buf); err != nil {
					return err
				}
			}
			continue
		}

		chunks, err := p.chunkLeaf(ctx, level[sourceKey], rp, quota)
		if err != nil {
			return err
		}
		buf.add(level, target.(string), chunks)
	}
	return nil
}

// chunkLeaf flattens a leaf value into text units and chunks each unit in
// order. Values that are not a string or a list of strings yield an empty
// chunk list.
func (p *ChunkingProcessor) chunkLeaf(ctx context.Context, value any, rp chunker.RuntimeParams, quota *Quota) ([]string, error) {
	chunks := []string{}
	appendUnit := func(text string) error {
		produced, err := p.chunker.Chunk(ctx, text, rp)
		if err != nil {
			return err
		}
		if err := quota.Add(len(produced)); err != nil {
			return err
		}
		chunks = append(chunks, produced...)
		return nil
	}

	switch v := value.(type) {
	case string:
		if err := appendUnit(v); err != nil {
			return nil, err
		}
	case []string:
		for _, text := range v {
			if err := appendUnit(text); err != nil {
				return nil, err
			}
		}
	case []any:
		if !isStringList(v) {
			return chunks, nil
		}
		for _, element := range v {
			if err := appendUnit(element.(string)); err != nil {
				return nil, err
			}
		}
	}
	return chunks, nil
}

func isStringList(list []any) bool {
	for _, element := range list {
		if _, ok := element.(string); !ok {
			return false
		}
	}
	return true
}

type pendingWrite struct {
	level  map[string]any
	key    string
	chunks []string
}

// writeBuffer defers output writes until the whole walk has succeeded.
type writeBuffer struct {
	writes []pendingWrite
}

func (b *writeBuffer) add(level map[string]any, key string, chunks []string) {
	b.writes = append(b.writes, pendingWrite{level: level, key: key, chunks: chunks})
}

func (b *writeBuffer) commit() {
	for _, w := range b.writes {
		w.level[w.key] = w.chunks
	}
}
