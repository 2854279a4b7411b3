package core

import "math"

// Sequence hands out strictly increasing identifiers starting at 1.
// It is owned by the ledger instance that consumes it; there is no
// ambient global counter.
type Sequence struct {
	last uint64
}

// Next allocates the next identifier. Exhausting a uint64 counter is
// unreachable at realistic volumes and treated as fatal.
func (s *Sequence) Next() uint64 {
	if s.last == math.MaxUint64 {
		panic("core: identifier sequence exhausted")
	}
	s.last++
	return s.last
}

// Observe advances the sequence past an identifier seen during state
// rehydration.
func (s *Sequence) Observe(id uint64) {
	if id > s.last {
		s.last = id
	}
}

// Last returns the most recently allocated identifier, 0 if none.
func (s *Sequence) Last() uint64 { return s.last }
