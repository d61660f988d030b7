// Package pipeline implements the announcement reconciliation chain: raw
// payload extraction, content classification, normalization, deduplication
// and ranking. Every stage is total over its input; malformed payloads
// degrade to documented defaults instead of failing a batch.
package pipeline

import (
	"sync/atomic"

	"github.com/filingradar/filingradar/internal/domain"
)

// Pipeline runs extract, classify and normalize as one step. The sequence
// counter feeds the fallback identity-key synthesis.
type Pipeline struct {
	classifier *Classifier
	seq        atomic.Int64
}

func New(rules Rules) *Pipeline {
	return &Pipeline{classifier: NewClassifier(rules)}
}

func (pl *Pipeline) Process(payload domain.RawPayload) domain.Announcement {
	partial := Extract(payload)
	partial = pl.classifier.Classify(partial)
	return Normalize(payload, partial, pl.seq.Add(1))
}
