/*
budget.go - Budget definitions, consumption tracking, threshold alerts

PURPOSE:
  Tracks cumulative consumption per budget definition and raises an alert
  the first time a configured threshold ratio is met or exceeded.

CONSUMPTION MODEL:
  - One consumption record per definition, created on upsert
  - Every committed entry matching the definition's company and scope/key
    adds its hours; non-matching definitions are skipped entirely
  - Consumption is never decremented (entry removal is unsupported)

ALERTS:
  The ratio used against thresholds is the maximum across whichever limits
  are configured (hours and/or amount). Per definition per entry, at most
  ONE alert fires: the scan stops at the first threshold the ratio meets.

SCOPE MATCHING:
  - project: definition key must equal the entry's project ID
  - team/phase: entries carry no team/phase key, so these definitions
    accrue every entry of their company
    TODO: match team/phase keys once entries carry an assignment

SEE ALSO:
  - engine.go: AddTimeEntry feeds committed entries here, best-effort
  - notify/: the engine converts alerts into budget.threshold events
*/
package tracking

// BudgetAlert is raised when cumulative consumption first crosses a
// configured threshold.
type BudgetAlert struct {
	BudgetID string
	Ratio    float64
	Hours    float64
}

// BudgetTracker observes committed entries and accumulates consumption.
// Definitions are scanned in upsert order.
type BudgetTracker struct {
	order       []string
	definitions map[string]BudgetDefinition
	consumption map[string]*BudgetConsumption
}

func NewBudgetTracker() *BudgetTracker {
	return &BudgetTracker{
		definitions: make(map[string]BudgetDefinition),
		consumption: make(map[string]*BudgetConsumption),
	}
}

// Upsert registers or replaces a definition. Consumption is created on first
// upsert and preserved on replacement.
func (t *BudgetTracker) Upsert(def BudgetDefinition) {
	if _, exists := t.definitions[def.ID]; !exists {
		t.order = append(t.order, def.ID)
	}
	t.definitions[def.ID] = def
	if _, exists := t.consumption[def.ID]; !exists {
		cons := &BudgetConsumption{}
		if def.LimitAmount != nil {
			zero := NewMoney(0, def.LimitAmount.Currency)
			cons.Amount = &zero
		}
		t.consumption[def.ID] = cons
	}
}

func (t *BudgetTracker) List() []BudgetDefinition {
	out := make([]BudgetDefinition, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.definitions[id])
	}
	return out
}

func (t *BudgetTracker) Consumption(id string) *BudgetConsumption {
	return t.consumption[id]
}

func (t *BudgetTracker) Clear() {
	t.order = nil
	t.definitions = make(map[string]BudgetDefinition)
	t.consumption = make(map[string]*BudgetConsumption)
}

// ApplyEntry adds the entry's hours to every matching definition and invokes
// emit at most once per definition whose max consumption ratio meets a
// configured threshold.
func (t *BudgetTracker) ApplyEntry(e *TimeEntry, emit func(BudgetAlert)) {
	for _, id := range t.order {
		def := t.definitions[id]
		if def.CompanyID != e.CompanyID {
			continue
		}
		if def.Scope == ScopeProject && def.Key != string(e.ProjectID) {
			continue
		}
		cons := t.consumption[id]
		cons.Hours += e.Hours()

		ratio := t.maxRatio(def, cons)
		for _, threshold := range def.AlertThresholds {
			if ratio >= threshold {
				if emit != nil {
					emit(BudgetAlert{BudgetID: def.ID, Ratio: ratio, Hours: cons.Hours})
				}
				break // first crossing only
			}
		}
	}
}

func (t *BudgetTracker) maxRatio(def BudgetDefinition, cons *BudgetConsumption) float64 {
	max := 0.0
	if def.LimitHours > 0 {
		if r := cons.Hours / def.LimitHours; r > max {
			max = r
		}
	}
	if def.LimitAmount != nil && def.LimitAmount.Amount.IsPositive() && cons.Amount != nil {
		r, _ := cons.Amount.Amount.Div(def.LimitAmount.Amount).Float64()
		if r > max {
			max = r
		}
	}
	return max
}
