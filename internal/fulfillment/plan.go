package fulfillment

// Plan is the working allocation state: a furnish arena indexed by reference
// so quantity updates are O(1) and never alias. The ordered list is only
// exposed again at the compiler boundary.
type Plan struct {
	furnishes  []Furnish
	index      map[string]int
	overridden map[string]bool
}

// NewPlan builds a plan from generated candidates. Later duplicates of a
// reference are dropped; references are unique within one invocation.
func NewPlan(candidates []Furnish) *Plan {
	p := &Plan{
		index:      make(map[string]int, len(candidates)),
		overridden: make(map[string]bool),
	}
	for _, c := range candidates {
		if _, exists := p.index[c.Ref]; exists {
			continue
		}
		p.index[c.Ref] = len(p.furnishes)
		p.furnishes = append(p.furnishes, c)
	}
	return p
}

// ApplyOverrides replaces candidates wholesale with caller-supplied furnishes
// sharing the same reference and freezes them against reallocation. Overrides
// without a matching candidate are dropped; the dangling references are
// returned so callers can log them.
func (p *Plan) ApplyOverrides(overrides []Furnish) []string {
	var dangling []string
	for _, o := range overrides {
		idx, ok := p.index[o.Ref]
		if !ok {
			dangling = append(dangling, o.Ref)
			continue
		}
		p.furnishes[idx] = o
		p.overridden[o.Ref] = true
	}
	return dangling
}

// RefreshTotals recomputes TotalToFurnish on every furnish from current
// demand so stale override snapshots do not desynchronise downstream math.
// Override quantities are never touched.
func (p *Plan) RefreshTotals(demands map[int64]Demand) {
	for i := range p.furnishes {
		p.furnishes[i].TotalToFurnish = demands[p.furnishes[i].ArticleID].TotalToFurnish
	}
}

// Get returns the furnish stored under ref.
func (p *Plan) Get(ref string) (Furnish, bool) {
	idx, ok := p.index[ref]
	if !ok {
		return Furnish{}, false
	}
	return p.furnishes[idx], true
}

// SetQuantity assigns a quantity to the furnish stored under ref.
func (p *Plan) SetQuantity(ref string, quantity float64) {
	if idx, ok := p.index[ref]; ok {
		p.furnishes[idx].Quantity = quantity
	}
}

// Overridden reports whether the reference was frozen by the caller.
func (p *Plan) Overridden(ref string) bool {
	return p.overridden[ref]
}

// Furnishes returns a copy of the ordered furnish list.
func (p *Plan) Furnishes() []Furnish {
	out := make([]Furnish, len(p.furnishes))
	copy(out, p.furnishes)
	return out
}
