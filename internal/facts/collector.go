package facts

import (
	"github.com/toyz/mockable/internal/models"
)

// Collector groups the facts of one annotated package into generation units.
// Markers resolving to the same owner and wrapper name share a unit, so a
// function reached twice is emitted once.
type Collector struct {
	units []*unitEntry
	index map[string]*unitEntry
}

type unitEntry struct {
	target models.GenerationTarget
	set    *FactSet
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{index: make(map[string]*unitEntry)}
}

func unitKey(t models.GenerationTarget) string {
	return t.Identity() + "#" + t.BaseName()
}

// Add merges facts into the unit of target, creating it on first use,
// and returns how many facts were new
func (c *Collector) Add(target models.GenerationTarget, facts ...models.MethodFact) int {
	key := unitKey(target)
	entry, ok := c.index[key]
	if !ok {
		entry = &unitEntry{target: target, set: NewFactSet()}
		c.index[key] = entry
		c.units = append(c.units, entry)
	}

	added := 0
	for _, fact := range facts {
		if entry.set.Add(fact) {
			added++
		}
	}
	return added
}

// Has reports whether a unit exists for target
func (c *Collector) Has(target models.GenerationTarget) bool {
	_, ok := c.index[unitKey(target)]
	return ok
}

// Units returns the non-empty units in first-seen order
func (c *Collector) Units() []*models.GenerationUnit {
	var out []*models.GenerationUnit
	for _, entry := range c.units {
		if entry.set.Len() == 0 {
			continue
		}
		unit := models.NewGenerationUnit(entry.target)
		unit.Facts = entry.set.Facts()
		out = append(out, unit)
	}
	return out
}

// FactCount returns the number of unique facts across all units
func (c *Collector) FactCount() int {
	total := 0
	for _, entry := range c.units {
		total += entry.set.Len()
	}
	return total
}
