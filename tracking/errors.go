/*
errors.go - Centralized error taxonomy for the tracking engine

PURPOSE:
  All mutating operations fail with one of four categories, surfaced
  synchronously to the caller and never retried internally:

  1. NotFound        - missing company/employee/project/entry
  2. Conflict        - closed period, overlap under reject mode, invalid
                       workflow transition
  3. Forbidden       - cross-company entity mixing, RBAC denial
  4. PolicyViolation - holiday/leave blocking

  Side-channel failures (audit, events, notifications, email) are swallowed
  at the call site and never change this taxonomy.

USAGE:
  if errors.Is(err, tracking.ErrNotFound) { ... }

  var conflict *tracking.TransitionError
  if errors.As(err, &conflict) { ... }

SEE ALSO:
  - engine.go: The validation pipeline producing these errors
*/
package tracking

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for closed periods, rejected overlaps, and
	// invalid workflow transitions.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned for cross-company mixing and RBAC denials.
	ErrForbidden = errors.New("forbidden")

	// ErrPolicyViolation is returned when a company policy blocks the entry
	// (holiday or approved leave).
	ErrPolicyViolation = errors.New("policy violation")

	// ErrInvalidPeriod is returned when a period closure is malformed.
	ErrInvalidPeriod = errors.New("invalid period: end not after start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which entity kind and ID was missing.
type NotFoundError struct {
	Kind string // "company", "employee", "project", "entry"
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PeriodClosedError is raised when the candidate interval overlaps a closed
// period for its company.
type PeriodClosedError struct {
	CompanyID CompanyID
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("period is closed for company %s", e.CompanyID)
}
func (e *PeriodClosedError) Unwrap() error { return ErrConflict }

// OverlapError is raised under reject mode, or under auto-split when the
// candidate is fully covered by existing entries.
type OverlapError struct {
	EmployeeID EmployeeID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping time entries are not allowed for employee %s", e.EmployeeID)
}
func (e *OverlapError) Unwrap() error { return ErrConflict }

// TransitionError names the state a workflow transition required.
type TransitionError struct {
	EntryID  EntryID
	Action   AuditAction
	Required EntryStatus
	Actual   EntryStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s requires a %s entry, %s is %s",
		e.Action, e.Required, e.EntryID, e.Actual)
}
func (e *TransitionError) Unwrap() error { return ErrConflict }

// CrossCompanyError is raised when an entry references an employee or
// project belonging to a different company.
type CrossCompanyError struct {
	CompanyID CompanyID
	Kind      string // "employee" or "project"
}

func (e *CrossCompanyError) Error() string {
	return fmt.Sprintf("cross-company data is not allowed: %s does not belong to company %s",
		e.Kind, e.CompanyID)
}
func (e *CrossCompanyError) Unwrap() error { return ErrForbidden }

// AccessDeniedError is raised by RBAC-gated operations.
type AccessDeniedError struct {
	UserID string
	Action PermissionAction
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("forbidden: %s for user %s", e.Action, e.UserID)
}
func (e *AccessDeniedError) Unwrap() error { return ErrForbidden }

// PolicyViolationError names the blocking rule.
type PolicyViolationError struct {
	Rule string // "holiday" or "approved-leave"
}

func (e *PolicyViolationError) Error() string {
	switch e.Rule {
	case "holiday":
		return "time entries are not allowed on holidays"
	case "approved-leave":
		return "time entries are not allowed during approved leave"
	}
	return fmt.Sprintf("policy violation: %s", e.Rule)
}
func (e *PolicyViolationError) Unwrap() error { return ErrPolicyViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool  { return errors.Is(err, ErrConflict) }
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsClientError returns true if the error is due to invalid caller input
// rather than an engine defect.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrPolicyViolation) ||
		errors.Is(err, ErrInvalidPeriod)
}
