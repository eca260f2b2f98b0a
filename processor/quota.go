package processor

import (
	"fmt"

	"github.com/sevigo/textchunk/schema"
)

// DisabledChunkLimit disables chunk-count checking.
const DisabledChunkLimit = -1

// Quota tracks the running total of chunks produced while one document is
// processed. A fresh Quota is created for every processing call and must
// never be shared across calls.
type Quota struct {
	limit int
	count int
}

// NewQuota creates a quota with the given maximum total chunk count.
// DisabledChunkLimit turns checking off.
func NewQuota(limit int) *Quota {
	return &Quota{limit: limit}
}

// Add records n newly produced chunks. The first increment that pushes the
// running total past the limit fails, reporting the exact total and the
// configured limit.
func (q *Quota) Add(n int) error {
	q.count += n
	if q.limit != DisabledChunkLimit && q.count > q.limit {
		return fmt.Errorf(
			"%w: the number of chunks [%d] exceeds the maximum chunk limit [%d]",
			schema.ErrChunkLimit, q.count, q.limit,
		)
	}
	return nil
}

// Count returns the running total of produced chunks.
func (q *Quota) Count() int {
	return q.count
}
