package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable ids: prefix-0001, prefix-0002, ...
//
// Golden report output stays byte-identical across runs when artifacts
// take their ids from a SequenceIDs. Safe for concurrent use.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. An empty prefix uses "report".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "report"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
