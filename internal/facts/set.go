package facts

import (
	"iter"

	"github.com/toyz/mockable/internal/models"
)

// FactSet is an insertion-ordered set of facts keyed by structural signature.
// The first fact with a given key wins; later ones are dropped.
type FactSet struct {
	facts []models.MethodFact
	keys  map[models.SignatureKey]struct{}
}

// NewFactSet creates an empty set
func NewFactSet() *FactSet {
	return &FactSet{keys: make(map[models.SignatureKey]struct{})}
}

// Add inserts the fact unless an equal signature is present and reports whether it was added
func (s *FactSet) Add(fact models.MethodFact) bool {
	key := fact.Key()
	if _, exists := s.keys[key]; exists {
		return false
	}
	s.keys[key] = struct{}{}
	s.facts = append(s.facts, fact)
	return true
}

// AddAll inserts every fact of seq and returns how many were new
func (s *FactSet) AddAll(seq iter.Seq[models.MethodFact]) int {
	added := 0
	for fact := range seq {
		if s.Add(fact) {
			added++
		}
	}
	return added
}

// Contains reports whether a fact with the same signature is present
func (s *FactSet) Contains(fact models.MethodFact) bool {
	_, exists := s.keys[fact.Key()]
	return exists
}

// Len returns the number of facts
func (s *FactSet) Len() int {
	return len(s.facts)
}

// All yields the facts in insertion order
func (s *FactSet) All() iter.Seq[models.MethodFact] {
	return func(yield func(models.MethodFact) bool) {
		for _, fact := range s.facts {
			if !yield(fact) {
				return
			}
		}
	}
}

// Facts returns a copy of the facts in insertion order
func (s *FactSet) Facts() []models.MethodFact {
	out := make([]models.MethodFact, len(s.facts))
	copy(out, s.facts)
	return out
}
