package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns the same operation id every time.
//
// This keeps log output byte-identical between runs, which golden
// comparisons rely on.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed id generator.
// If id is empty, Generate returns "test-op-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-op-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// SequenceIDGenerator returns op-0001, op-0002, ... in call order.
//
// Unlike FixedIDGenerator, every operation gets a distinct id, so tests can
// tell apart the log records of consecutive calls.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceIDGenerator struct {
	mu  sync.Mutex
	seq int
}

// NewSequenceIDGenerator creates a generator whose first id is op-0001.
func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

// Generate returns the next id.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("op-%04d", g.seq)
}

// Reset restarts the sequence at op-0001.
func (g *SequenceIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
