/*
rates.go - Rate card registry and resolution

PURPOSE:
  Holds all rate cards and resolves which one applies to a time entry:
  filter by company and validity window, then pick by strict priority
  employee > project > role.

TIE-BREAKING:
  Within a priority tier, the first matching card in insertion order wins.
  Cards are not re-ranked by recency or by validity window. This is a
  documented limitation, not an error: callers who need determinism should
  avoid registering overlapping cards in the same tier.

SEE ALSO:
  - engine.go: AddTimeEntry attaches billability via Resolve
  - report/: billing amounts are computed from resolved cards
*/
package tracking

import "time"

// RateBook stores rate cards in insertion order. Uniqueness is not enforced;
// selection is by priority.
type RateBook struct {
	cards []RateCard
}

func NewRateBook() *RateBook { return &RateBook{} }

func (b *RateBook) Add(card RateCard) { b.cards = append(b.cards, card) }

// List returns the cards for a company, or all cards when companyID is empty.
func (b *RateBook) List(companyID CompanyID) []RateCard {
	if companyID == "" {
		return append([]RateCard(nil), b.cards...)
	}
	var out []RateCard
	for _, c := range b.cards {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out
}

func (b *RateBook) Clear() { b.cards = nil }

// Resolve picks the applicable card for the selector at time at, or nil when
// no tier matches. Priority is employee > project > role; within a tier the
// first valid card in scan order wins.
func (b *RateBook) Resolve(companyID CompanyID, sel RateSelector, at time.Time) *RateCard {
	var pool []RateCard
	for _, c := range b.cards {
		if c.CompanyID == companyID && c.ValidAt(at) {
			pool = append(pool, c)
		}
	}

	firstMatch := func(target RateTarget, key string) *RateCard {
		if key == "" {
			return nil
		}
		for i := range pool {
			if pool[i].Target == target && pool[i].Key == key {
				return &pool[i]
			}
		}
		return nil
	}

	if card := firstMatch(TargetEmployee, string(sel.EmployeeID)); card != nil {
		return card
	}
	if card := firstMatch(TargetProject, string(sel.ProjectID)); card != nil {
		return card
	}
	return firstMatch(TargetRole, sel.Role)
}
