package tracking_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akimsoule/timelyhub/notify"
	"github.com/akimsoule/timelyhub/tracking"
	"github.com/akimsoule/timelyhub/tracking/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestTracker wires one company (optionally with a policy), one employee
// and one project.
func newTestTracker(t *testing.T, policy *tracking.CompanyPolicy) *tracking.Tracker {
	t.Helper()
	tr := tracking.New(store.NewAdapter())
	tr.AddCompany(&tracking.Company{ID: "c1", Name: "Acme", Policy: policy})
	require.NoError(t, tr.AddEmployee(&tracking.Employee{ID: "e1", CompanyID: "c1", Name: "Dev Dan", Email: "dev@acme.io", Role: "developer"}))
	require.NoError(t, tr.AddProject(&tracking.Project{ID: "p1", CompanyID: "c1", Name: "Client", Status: tracking.ProjectActive}))
	return tr
}

func entry(id string, start, end time.Time) *tracking.TimeEntry {
	return &tracking.TimeEntry{
		ID:         tracking.EntryID(id),
		CompanyID:  "c1",
		EmployeeID: "e1",
		ProjectID:  "p1",
		Start:      start,
		End:        end,
	}
}

// =============================================================================
// RELATIONSHIP GATES
// =============================================================================

func TestAddTimeEntry_UnknownCompany(t *testing.T) {
	tr := tracking.New(store.NewAdapter())

	err := tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0)))

	assert.True(t, tracking.IsNotFound(err))
	assert.ErrorContains(t, err, "company")
}

func TestAddTimeEntry_UnknownEmployeeAndProject(t *testing.T) {
	tr := newTestTracker(t, nil)

	ghost := entry("t1", at(9, 0), at(10, 0))
	ghost.EmployeeID = "nobody"
	err := tr.AddTimeEntry(ghost)
	assert.True(t, tracking.IsNotFound(err))
	assert.ErrorContains(t, err, "employee")

	orphan := entry("t2", at(9, 0), at(10, 0))
	orphan.ProjectID = "nothing"
	err = tr.AddTimeEntry(orphan)
	assert.True(t, tracking.IsNotFound(err))
	assert.ErrorContains(t, err, "project")
}

func TestAddTimeEntry_CrossCompanyForbidden(t *testing.T) {
	// GIVEN: A second company owning its own employee
	tr := newTestTracker(t, nil)
	tr.AddCompany(&tracking.Company{ID: "c2", Name: "Globex"})
	require.NoError(t, tr.AddEmployee(&tracking.Employee{ID: "e2", CompanyID: "c2", Name: "Outsider"}))

	// WHEN: An entry for c1 references c2's employee
	mixed := entry("t1", at(9, 0), at(10, 0))
	mixed.EmployeeID = "e2"
	err := tr.AddTimeEntry(mixed)

	// THEN: Forbidden, not NotFound
	assert.True(t, tracking.IsForbidden(err))
}

// =============================================================================
// DEFAULTS & DURATION
// =============================================================================

func TestAddTimeEntry_DefaultsAndDerivedDuration(t *testing.T) {
	tr := newTestTracker(t, nil)

	e := entry("t1", at(9, 0), at(11, 0))
	require.NoError(t, tr.AddTimeEntry(e))

	assert.Equal(t, tracking.StatusDraft, e.Status)
	assert.Equal(t, 120, e.Duration)

	persisted, ok := tr.Entry("t1")
	require.True(t, ok)
	assert.Equal(t, e, persisted)
}

func TestAddTimeEntry_ExplicitDurationKept(t *testing.T) {
	tr := newTestTracker(t, nil)

	e := entry("t1", at(9, 0), at(11, 0))
	e.Duration = 90
	require.NoError(t, tr.AddTimeEntry(e))

	assert.Equal(t, 90, e.Duration)
}

// =============================================================================
// PERIOD, HOLIDAY & LEAVE GATES
// =============================================================================

func TestAddTimeEntry_ClosedPeriodRejected(t *testing.T) {
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.ClosePeriod("c1",
		time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)))

	err := tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0)))

	assert.True(t, tracking.IsConflict(err))
	assert.ErrorContains(t, err, "period is closed")
}

func TestAddTimeEntry_EntryTouchingClosedPeriodBoundaryAllowed(t *testing.T) {
	// Half-open semantics: an entry starting exactly at the closure end is fine.
	tr := newTestTracker(t, nil)
	closeEnd := at(9, 0)
	require.NoError(t, tr.ClosePeriod("c1", at(0, 0), closeEnd))

	assert.NoError(t, tr.AddTimeEntry(entry("t1", closeEnd, at(10, 0))))
}

func TestAddTimeEntry_HolidayBlocked(t *testing.T) {
	// GIVEN: A policy blocking holidays, and Sep 14 declared as one
	tr := newTestTracker(t, &tracking.CompanyPolicy{BlockHolidays: true})
	tr.Holidays().Add(tracking.Holiday{ID: "h1", CompanyID: "c1", Date: at(0, 0), Name: "Engine Day"})

	err := tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0)))

	assert.ErrorIs(t, err, tracking.ErrPolicyViolation)
	assert.ErrorContains(t, err, "holidays")
}

func TestAddTimeEntry_HolidayIgnoredWithoutPolicy(t *testing.T) {
	tr := newTestTracker(t, nil)
	tr.Holidays().Add(tracking.Holiday{ID: "h1", CompanyID: "c1", Date: at(0, 0), Name: "Engine Day"})

	assert.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))
}

func TestAddTimeEntry_ApprovedLeaveBlocked(t *testing.T) {
	tr := newTestTracker(t, &tracking.CompanyPolicy{BlockApprovedLeave: true})
	tr.Leaves().Add(tracking.Leave{
		ID: "l1", CompanyID: "c1", EmployeeID: "e1",
		Start: at(0, 0), End: at(23, 59), Status: tracking.LeaveApproved,
	})

	err := tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0)))

	assert.ErrorIs(t, err, tracking.ErrPolicyViolation)
	assert.ErrorContains(t, err, "approved leave")
}

func TestAddTimeEntry_PendingLeaveDoesNotBlock(t *testing.T) {
	tr := newTestTracker(t, &tracking.CompanyPolicy{BlockApprovedLeave: true})
	tr.Leaves().Add(tracking.Leave{
		ID: "l1", CompanyID: "c1", EmployeeID: "e1",
		Start: at(0, 0), End: at(23, 59), Status: tracking.LeavePending,
	})

	assert.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))
}

// =============================================================================
// ROUNDING
// =============================================================================

func TestAddTimeEntry_RoundingDurationOnly(t *testing.T) {
	tr := newTestTracker(t, &tracking.CompanyPolicy{
		Rounding: &tracking.RoundingRule{StepMinutes: 15, Mode: tracking.RoundNearest, ApplyOn: tracking.ApplyDuration},
	})

	e := entry("t1", at(9, 0), at(10, 52)) // 112 minutes
	require.NoError(t, tr.AddTimeEntry(e))

	assert.Equal(t, 105, e.Duration)
	assert.Equal(t, at(10, 52), e.End, "endTime untouched under duration-only rounding")
}

func TestAddTimeEntry_RoundingEndTime(t *testing.T) {
	tr := newTestTracker(t, &tracking.CompanyPolicy{
		Rounding: &tracking.RoundingRule{StepMinutes: 15, Mode: tracking.RoundUp, ApplyOn: tracking.ApplyEndTime},
	})

	e := entry("t1", at(9, 0), at(10, 52))
	require.NoError(t, tr.AddTimeEntry(e))

	// 112 min ceils to 120; end recomputed from start
	assert.Equal(t, 120, e.Duration)
	assert.Equal(t, at(11, 0), e.End)
}

func TestAddTimeEntry_RoundingBothKeepsFieldsConsistent(t *testing.T) {
	// For "both", end time is derived from the rounded duration rather than
	// rounded independently.
	tr := newTestTracker(t, &tracking.CompanyPolicy{
		Rounding: &tracking.RoundingRule{StepMinutes: 15, Mode: tracking.RoundNearest, ApplyOn: tracking.ApplyBoth},
	})

	e := entry("t1", at(9, 0), at(10, 52))
	require.NoError(t, tr.AddTimeEntry(e))

	assert.Equal(t, 105, e.Duration)
	assert.Equal(t, e.Start.Add(105*time.Minute), e.End)
}

// =============================================================================
// OVERLAP HANDLING
// =============================================================================

func TestAddTimeEntry_OverlapRejectedByDefault(t *testing.T) {
	// No policy at all: overlaps are rejected
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))

	err := tr.AddTimeEntry(entry("t2", at(9, 30), at(10, 30)))

	assert.True(t, tracking.IsConflict(err))
	assert.ErrorContains(t, err, "overlapping")
}

func TestAddTimeEntry_LegacyAllowFlag(t *testing.T) {
	tr := newTestTracker(t, &tracking.CompanyPolicy{AllowOverlapping: true})
	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))

	assert.NoError(t, tr.AddTimeEntry(entry("t2", at(9, 30), at(10, 30))))
}

func TestAddTimeEntry_ExplicitModeBeatsLegacyFlag(t *testing.T) {
	// Explicit reject wins over the legacy allow flag
	tr := newTestTracker(t, &tracking.CompanyPolicy{
		AllowOverlapping: true,
		OverlapHandling:  tracking.OverlapReject,
	})
	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))

	assert.Error(t, tr.AddTimeEntry(entry("t2", at(9, 30), at(10, 30))))
}

func TestAddTimeEntry_AutoSplitFullyCoveredRejected(t *testing.T) {
	// GIVEN: Base entry 09:00-10:00 and a candidate fully inside it
	tr := newTestTracker(t, &tracking.CompanyPolicy{OverlapHandling: tracking.OverlapAutoSplit})
	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))

	err := tr.AddTimeEntry(entry("t2", at(9, 10), at(9, 20)))

	assert.True(t, tracking.IsConflict(err))
}

func TestAddTimeEntry_AutoSplitTruncatesStart(t *testing.T) {
	// GIVEN: Base 09:00-10:00 and candidate 09:30-12:00
	tr := newTestTracker(t, &tracking.CompanyPolicy{OverlapHandling: tracking.OverlapAutoSplit})
	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))

	e := entry("t2", at(9, 30), at(12, 0))
	require.NoError(t, tr.AddTimeEntry(e))

	// THEN: Start moved to 10:00, duration recomputed to 120 minutes
	assert.Equal(t, at(10, 0), e.Start)
	assert.Equal(t, 120, e.Duration)
}

func TestAddTimeEntry_AutoSplitUsesLatestConflictingEnd(t *testing.T) {
	tr := newTestTracker(t, &tracking.CompanyPolicy{OverlapHandling: tracking.OverlapAutoSplit})
	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))
	require.NoError(t, tr.AddTimeEntry(entry("t2", at(10, 0), at(10, 45))))

	e := entry("t3", at(9, 30), at(12, 0))
	require.NoError(t, tr.AddTimeEntry(e))

	assert.Equal(t, at(10, 45), e.Start)
	assert.Equal(t, 75, e.Duration)
}

func TestAddTimeEntry_OverlapScopedToEmployeeAndCompany(t *testing.T) {
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.AddEmployee(&tracking.Employee{ID: "e2", CompanyID: "c1", Name: "Other"}))
	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))

	// Same interval, different employee: no conflict
	other := entry("t2", at(9, 0), at(10, 0))
	other.EmployeeID = "e2"
	assert.NoError(t, tr.AddTimeEntry(other))
}

// =============================================================================
// BILLABILITY & SIDE EFFECTS
// =============================================================================

func TestAddTimeEntry_BillableAttachedViaRoleFallback(t *testing.T) {
	// GIVEN: Only a role card for the employee's role
	tr := newTestTracker(t, nil)
	tr.Rates().Add(tracking.RateCard{
		ID: "r1", CompanyID: "c1", Target: tracking.TargetRole, Key: "developer",
		Billable: true, Rate: decimal.NewFromInt(80), Currency: "USD",
	})

	e := entry("t1", at(9, 0), at(10, 0))
	require.NoError(t, tr.AddTimeEntry(e))

	assert.True(t, e.Billable)
}

func TestAddTimeEntry_NoRateMeansNotBillable(t *testing.T) {
	tr := newTestTracker(t, nil)

	e := entry("t1", at(9, 0), at(10, 0))
	require.NoError(t, tr.AddTimeEntry(e))

	assert.False(t, e.Billable)
}

func TestAddTimeEntry_EmitsEventAndBudgetAlert(t *testing.T) {
	tr := newTestTracker(t, nil)
	tr.Budgets().Upsert(tracking.BudgetDefinition{
		ID: "b1", CompanyID: "c1", Scope: tracking.ScopeProject, Key: "p1",
		LimitHours: 2, AlertThresholds: []float64{0.5, 1},
	})
	tr.Hub().SubscribeWebhook(notify.WebhookSubscription{ID: "wh1", URL: "https://hooks.acme.io/time"})

	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))

	names := tr.Events().Names()
	assert.Contains(t, names, "entry.added")
	assert.Contains(t, names, "budget.threshold")

	// Both events fanned out to the subscribed webhook
	assert.Len(t, tr.Hub().Outbox(), 2)
}

func TestAddTimeEntry_ImportHolidays(t *testing.T) {
	tr := newTestTracker(t, nil)

	added := tr.ImportHolidays(tracking.StaticSource{}, "c1", "FR", 2025)

	assert.Equal(t, 2, added)
	assert.True(t, tr.Holidays().IsHoliday("c1", time.Date(2025, time.May, 1, 10, 30, 0, 0, time.UTC)))
	assert.False(t, tr.Holidays().IsHoliday("c2", time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)))
}
