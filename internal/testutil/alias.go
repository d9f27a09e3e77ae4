package testutil

import (
	"sync"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
)

// AliasSequence hands out table aliases T0, T1, ... in order.
//
// Tests that build several sources share one sequence so aliases stay
// unique within a statement. Reset starts over for the next statement.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type AliasSequence struct {
	mu   sync.Mutex
	next int
}

// NewAliasSequence creates a sequence whose first alias is T0.
func NewAliasSequence() *AliasSequence {
	return &AliasSequence{}
}

// Next returns the next table alias.
func (s *AliasSequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	alias := dialect.TableAlias(s.next)
	s.next++
	return alias
}

// Issued returns how many aliases have been handed out.
func (s *AliasSequence) Issued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Reset makes the next call to Next return T0 again.
func (s *AliasSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 0
}
