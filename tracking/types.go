/*
Package tracking provides the core time entry policy and aggregation engine.

PURPOSE:
  This package contains the multi-company time tracking domain: companies,
  employees, projects, time entries, and the policy machinery that turns a
  proposed entry into a compliant, billable record. The Tracker facade wires
  the pieces together (see engine.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: A unit of tracked work with a lifecycle status
  - CompanyPolicy: Per-company rounding/overlap/holiday/leave rules
  - RateCard: A priced tariff scoped to an employee, project, or role
  - BudgetDefinition: Consumption limits with alert thresholds
  - Money: A decimal amount with a currency code

DESIGN PRINCIPLES:
  1. Identity over aliasing: entities cross-reference by typed ID, and
     callers re-fetch by ID rather than caching pointers across mutations
  2. Precision: Uses decimal.Decimal for money to avoid floating-point errors
  3. Policy as data: CompanyPolicy is a plain snapshot read per validation
  4. Computed billability: TimeEntry.Billable is set by the rate resolver,
     never by the caller

SEE ALSO:
  - engine.go: Tracker facade and the entry validation pipeline
  - rates.go: Rate resolution priority rules
  - budget.go: Budget consumption and threshold alerts
  - errors.go: Error taxonomy (NotFound/Conflict/Forbidden/PolicyViolation)
*/
package tracking

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CompanyID string
type EmployeeID string
type ProjectID string
type EntryID string

// =============================================================================
// MONEY - Decimal amount with currency
// =============================================================================

type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

func (m Money) IsZero() bool { return m.Amount.IsZero() }

// =============================================================================
// COMPANY & POLICY
// =============================================================================

type RoundingMode string

const (
	RoundNearest RoundingMode = "nearest" // half away from zero
	RoundUp      RoundingMode = "up"      // ceiling
	RoundDown    RoundingMode = "down"    // floor
)

// RoundingApply selects which entry fields a rounding rule rewrites.
type RoundingApply string

const (
	ApplyDuration RoundingApply = "duration"
	ApplyEndTime  RoundingApply = "endTime"
	ApplyBoth     RoundingApply = "both"
)

type RoundingRule struct {
	StepMinutes int // e.g. 5, 10, 15
	Mode        RoundingMode
	ApplyOn     RoundingApply
}

type OverlapMode string

const (
	OverlapAllow     OverlapMode = "allow"
	OverlapReject    OverlapMode = "reject"
	OverlapAutoSplit OverlapMode = "auto-split"
)

// CompanyPolicy configures per-company entry validation. A company without a
// policy gets the defaults: no rounding, overlaps rejected, holidays and
// approved leave not blocking.
type CompanyPolicy struct {
	Rounding *RoundingRule

	// OverlapHandling takes precedence over the legacy AllowOverlapping flag.
	OverlapHandling  OverlapMode
	AllowOverlapping bool

	BlockHolidays      bool
	BlockApprovedLeave bool
}

// EffectiveOverlapMode resolves the explicit mode against the legacy flag.
func (p *CompanyPolicy) EffectiveOverlapMode() OverlapMode {
	if p == nil {
		return OverlapReject
	}
	if p.OverlapHandling != "" {
		return p.OverlapHandling
	}
	if p.AllowOverlapping {
		return OverlapAllow
	}
	return OverlapReject
}

type Company struct {
	ID      CompanyID
	Name    string
	Address string
	Policy  *CompanyPolicy
}

// =============================================================================
// EMPLOYEES & PROJECTS
// =============================================================================

type Employee struct {
	ID        EmployeeID
	CompanyID CompanyID
	Name      string
	Email     string
	Role      string
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
)

type Project struct {
	ID        ProjectID
	CompanyID CompanyID
	Name      string
	ClientID  string
	Status    ProjectStatus
}

// =============================================================================
// TIME ENTRY - The unit of tracked work
// =============================================================================

type EntryStatus string

const (
	StatusDraft     EntryStatus = "draft"
	StatusSubmitted EntryStatus = "submitted"
	StatusApproved  EntryStatus = "approved"
	StatusRejected  EntryStatus = "rejected"
)

// TimeEntry is mutated in place by the policy pipeline (duration derivation,
// rounding, auto-split) and by workflow transitions (status).
type TimeEntry struct {
	ID          EntryID
	CompanyID   CompanyID
	EmployeeID  EmployeeID
	ProjectID   ProjectID
	Description string
	Start       time.Time
	End         time.Time

	// Duration in minutes. Zero means "derive from Start/End".
	Duration int

	Tags   []string
	Status EntryStatus // zero value means draft

	// Billable is computed via rate cards, never set by the caller.
	Billable bool
}

// Minutes returns the entry duration, deriving it when unset.
func (e *TimeEntry) Minutes() int {
	if e.Duration != 0 {
		return e.Duration
	}
	return DurationMinutes(e.Start, e.End)
}

// Hours returns the entry duration in fractional hours.
func (e *TimeEntry) Hours() float64 { return float64(e.Minutes()) / 60 }

// EffectiveStatus treats an unset status as draft.
func (e *TimeEntry) EffectiveStatus() EntryStatus {
	if e.Status == "" {
		return StatusDraft
	}
	return e.Status
}

// =============================================================================
// RATE CARDS - Priced tariffs with validity windows
// =============================================================================

type RateTarget string

const (
	TargetEmployee RateTarget = "employee"
	TargetProject  RateTarget = "project"
	TargetRole     RateTarget = "role"
)

// RateCard prices work for an employee, project, or role. Both validity
// bounds are inclusive; a nil bound is unbounded on that side.
type RateCard struct {
	ID        string
	CompanyID CompanyID
	Target    RateTarget
	Key       string // employee ID, project ID, or role name
	Billable  bool
	Rate      decimal.Decimal // per hour
	Currency  string
	ValidFrom *time.Time
	ValidTo   *time.Time
}

// ValidAt reports whether the card's validity window contains t.
func (r RateCard) ValidAt(t time.Time) bool {
	if r.ValidFrom != nil && t.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && t.After(*r.ValidTo) {
		return false
	}
	return true
}

// RateSelector carries the lookup keys for rate resolution. Unset fields
// skip the corresponding priority tier.
type RateSelector struct {
	EmployeeID EmployeeID
	ProjectID  ProjectID
	Role       string
}

// =============================================================================
// BUDGETS
// =============================================================================

type BudgetScope string

const (
	ScopeProject BudgetScope = "project"
	ScopeTeam    BudgetScope = "team"
	ScopePhase   BudgetScope = "phase"
)

type BudgetDefinition struct {
	ID          string
	CompanyID   CompanyID
	Scope       BudgetScope
	Key         string // project ID, team ID, or phase ID
	LimitHours  float64
	LimitAmount *Money

	// AlertThresholds are ratios in (0,1], e.g. [0.8, 1.0]. They need not
	// be sorted; the first threshold met by the max consumption ratio fires.
	AlertThresholds []float64
}

// BudgetConsumption is a running total per definition. It is never
// decremented; entry removal is unsupported.
type BudgetConsumption struct {
	Hours  float64
	Amount *Money
}

// =============================================================================
// PERIODS, LEAVE, HOLIDAYS, AUDIT
// =============================================================================

// Period is an immutable closed interval per company. Entries overlapping a
// closed period are rejected outright.
type Period struct {
	CompanyID CompanyID
	Start     time.Time
	End       time.Time
}

type LeaveStatus string

const (
	LeaveApproved LeaveStatus = "approved"
	LeavePending  LeaveStatus = "pending"
	LeaveRejected LeaveStatus = "rejected"
)

type Leave struct {
	ID         string
	CompanyID  CompanyID
	EmployeeID EmployeeID
	Start      time.Time
	End        time.Time
	Status     LeaveStatus
}

type Holiday struct {
	ID        string
	CompanyID CompanyID
	Date      time.Time // whole day, UTC
	Name      string
}

type AuditAction string

const (
	AuditSubmit  AuditAction = "submit"
	AuditApprove AuditAction = "approve"
	AuditReject  AuditAction = "reject"
)

type AuditRecord struct {
	ID      string
	EntryID EntryID
	Action  AuditAction
	Reason  string
	At      time.Time
}
