/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON documents into CompanyPolicy, RateCard and BudgetDefinition
  values. This enables policy configuration without code changes - admins
  can author company policies in JSON, and the factory validates and builds
  the proper Go structs.

WHY JSON?
  - Non-developers can modify policies
  - Easy integration with an admin surface later
  - Version control for policy definitions

JSON SCHEMAS:
  Company policy:
    {
      "rounding": {"step_minutes": 15, "mode": "nearest", "apply_on": "duration"},
      "overlap_handling": "auto-split",
      "allow_overlapping": false,
      "block_holidays": true,
      "block_approved_leave": true
    }

  Rate card:
    {
      "id": "r1", "company_id": "c1", "target": "employee", "key": "e1",
      "billable": true, "rate": "100", "currency": "EUR",
      "valid_from": "2025-01-01T00:00:00Z"
    }

  Budget definition:
    {
      "id": "b1", "company_id": "c1", "scope": "project", "key": "p1",
      "limit_hours": 100, "alert_thresholds": [0.8, 1.0]
    }

KEY FEATURES:
  - Validates enum fields and threshold ranges
  - Sets sensible defaults (nearest rounding, duration application)
  - RFC 3339 validity windows

SEE ALSO:
  - tracking/types.go: The structs built here
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akimsoule/timelyhub/tracking"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type PolicyJSON struct {
	Rounding           *RoundingJSON `json:"rounding,omitempty"`
	OverlapHandling    string        `json:"overlap_handling,omitempty"`
	AllowOverlapping   bool          `json:"allow_overlapping,omitempty"`
	BlockHolidays      bool          `json:"block_holidays,omitempty"`
	BlockApprovedLeave bool          `json:"block_approved_leave,omitempty"`
}

type RoundingJSON struct {
	StepMinutes int    `json:"step_minutes"`
	Mode        string `json:"mode,omitempty"`     // nearest, up, down
	ApplyOn     string `json:"apply_on,omitempty"` // duration, endTime, both
}

type RateCardJSON struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Target    string `json:"target"` // employee, project, role
	Key       string `json:"key"`
	Billable  bool   `json:"billable"`
	Rate      string `json:"rate"` // decimal string, e.g. "100" or "87.50"
	Currency  string `json:"currency"`
	ValidFrom string `json:"valid_from,omitempty"` // RFC 3339
	ValidTo   string `json:"valid_to,omitempty"`
}

type BudgetJSON struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"company_id"`
	Scope           string     `json:"scope"` // project, team, phase
	Key             string     `json:"key"`
	LimitHours      float64    `json:"limit_hours,omitempty"`
	LimitAmount     *MoneyJSON `json:"limit_amount,omitempty"`
	AlertThresholds []float64  `json:"alert_thresholds,omitempty"`
}

type MoneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// =============================================================================
// POLICY PARSING
// =============================================================================

// ParsePolicy parses a JSON company policy with validation and defaulting.
func ParsePolicy(jsonStr string) (*tracking.CompanyPolicy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse policy JSON: %w", err)
	}

	policy := &tracking.CompanyPolicy{
		AllowOverlapping:   pj.AllowOverlapping,
		BlockHolidays:      pj.BlockHolidays,
		BlockApprovedLeave: pj.BlockApprovedLeave,
	}

	switch pj.OverlapHandling {
	case "":
		// legacy flag applies
	case string(tracking.OverlapAllow), string(tracking.OverlapReject), string(tracking.OverlapAutoSplit):
		policy.OverlapHandling = tracking.OverlapMode(pj.OverlapHandling)
	default:
		return nil, fmt.Errorf("unknown overlap handling: %q", pj.OverlapHandling)
	}

	if pj.Rounding != nil {
		rule, err := parseRounding(pj.Rounding)
		if err != nil {
			return nil, err
		}
		policy.Rounding = rule
	}
	return policy, nil
}

func parseRounding(rj *RoundingJSON) (*tracking.RoundingRule, error) {
	if rj.StepMinutes <= 0 {
		return nil, fmt.Errorf("rounding step must be positive, got %d", rj.StepMinutes)
	}
	rule := &tracking.RoundingRule{
		StepMinutes: rj.StepMinutes,
		Mode:        tracking.RoundNearest,
		ApplyOn:     tracking.ApplyDuration,
	}
	switch rj.Mode {
	case "", string(tracking.RoundNearest):
	case string(tracking.RoundUp):
		rule.Mode = tracking.RoundUp
	case string(tracking.RoundDown):
		rule.Mode = tracking.RoundDown
	default:
		return nil, fmt.Errorf("unknown rounding mode: %q", rj.Mode)
	}
	switch rj.ApplyOn {
	case "", string(tracking.ApplyDuration):
	case string(tracking.ApplyEndTime):
		rule.ApplyOn = tracking.ApplyEndTime
	case string(tracking.ApplyBoth):
		rule.ApplyOn = tracking.ApplyBoth
	default:
		return nil, fmt.Errorf("unknown rounding application: %q", rj.ApplyOn)
	}
	return rule, nil
}

// =============================================================================
// RATE CARD PARSING
// =============================================================================

// ParseRateCard parses a JSON rate card. Rates are decimal strings so no
// precision is lost in transit.
func ParseRateCard(jsonStr string) (tracking.RateCard, error) {
	var rj RateCardJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return tracking.RateCard{}, fmt.Errorf("failed to parse rate card JSON: %w", err)
	}
	if rj.ID == "" || rj.CompanyID == "" {
		return tracking.RateCard{}, fmt.Errorf("rate card requires id and company_id")
	}

	card := tracking.RateCard{
		ID:        rj.ID,
		CompanyID: tracking.CompanyID(rj.CompanyID),
		Key:       rj.Key,
		Billable:  rj.Billable,
		Currency:  rj.Currency,
	}

	switch rj.Target {
	case string(tracking.TargetEmployee), string(tracking.TargetProject), string(tracking.TargetRole):
		card.Target = tracking.RateTarget(rj.Target)
	default:
		return tracking.RateCard{}, fmt.Errorf("unknown rate target: %q", rj.Target)
	}

	rate, err := decimal.NewFromString(rj.Rate)
	if err != nil {
		return tracking.RateCard{}, fmt.Errorf("invalid rate %q: %w", rj.Rate, err)
	}
	card.Rate = rate

	if card.ValidFrom, err = parseTime(rj.ValidFrom); err != nil {
		return tracking.RateCard{}, err
	}
	if card.ValidTo, err = parseTime(rj.ValidTo); err != nil {
		return tracking.RateCard{}, err
	}
	return card, nil
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return &t, nil
}

// =============================================================================
// BUDGET PARSING
// =============================================================================

// ParseBudget parses a JSON budget definition. Alert thresholds must fall
// in (0, 1].
func ParseBudget(jsonStr string) (tracking.BudgetDefinition, error) {
	var bj BudgetJSON
	if err := json.Unmarshal([]byte(jsonStr), &bj); err != nil {
		return tracking.BudgetDefinition{}, fmt.Errorf("failed to parse budget JSON: %w", err)
	}
	if bj.ID == "" || bj.CompanyID == "" {
		return tracking.BudgetDefinition{}, fmt.Errorf("budget requires id and company_id")
	}

	def := tracking.BudgetDefinition{
		ID:         bj.ID,
		CompanyID:  tracking.CompanyID(bj.CompanyID),
		Key:        bj.Key,
		LimitHours: bj.LimitHours,
	}

	switch bj.Scope {
	case string(tracking.ScopeProject), string(tracking.ScopeTeam), string(tracking.ScopePhase):
		def.Scope = tracking.BudgetScope(bj.Scope)
	default:
		return tracking.BudgetDefinition{}, fmt.Errorf("unknown budget scope: %q", bj.Scope)
	}

	if bj.LimitAmount != nil {
		amount, err := decimal.NewFromString(bj.LimitAmount.Amount)
		if err != nil {
			return tracking.BudgetDefinition{}, fmt.Errorf("invalid limit amount %q: %w", bj.LimitAmount.Amount, err)
		}
		def.LimitAmount = &tracking.Money{Amount: amount, Currency: bj.LimitAmount.Currency}
	}

	for _, threshold := range bj.AlertThresholds {
		if threshold <= 0 || threshold > 1 {
			return tracking.BudgetDefinition{}, fmt.Errorf("alert threshold out of range (0,1]: %v", threshold)
		}
	}
	def.AlertThresholds = bj.AlertThresholds
	return def, nil
}
