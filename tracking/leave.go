package tracking

import "time"

// =============================================================================
// LEAVE BOOK - Absence registry feeding the approved-leave gate
// =============================================================================

type LeaveBook struct {
	leaves []Leave
}

func NewLeaveBook() *LeaveBook { return &LeaveBook{} }

func (b *LeaveBook) Add(l Leave) { b.leaves = append(b.leaves, l) }

// List filters by company and employee; empty arguments match everything.
func (b *LeaveBook) List(companyID CompanyID, employeeID EmployeeID) []Leave {
	var out []Leave
	for _, l := range b.leaves {
		if companyID != "" && l.CompanyID != companyID {
			continue
		}
		if employeeID != "" && l.EmployeeID != employeeID {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ApprovedInRange reports whether the employee has an approved leave
// overlapping [start, end), half-open.
func (b *LeaveBook) ApprovedInRange(companyID CompanyID, employeeID EmployeeID, start, end time.Time) bool {
	for _, l := range b.leaves {
		if l.CompanyID == companyID && l.EmployeeID == employeeID &&
			l.Status == LeaveApproved && Overlaps(start, end, l.Start, l.End) {
			return true
		}
	}
	return false
}

func (b *LeaveBook) Clear() { b.leaves = nil }
