package tracking_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akimsoule/timelyhub/notify"
	"github.com/akimsoule/timelyhub/tracking"
	"github.com/akimsoule/timelyhub/tracking/store"
)

func trackerWithEntry(t *testing.T) *tracking.Tracker {
	t.Helper()
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.AddTimeEntry(entry("t1", at(9, 0), at(10, 0))))
	return tr
}

// =============================================================================
// STATE MACHINE
// =============================================================================

func TestWorkflow_HappyPathApprove(t *testing.T) {
	tr := trackerWithEntry(t)

	require.NoError(t, tr.SubmitEntry("t1", "weekly timesheet"))
	require.NoError(t, tr.ApproveEntry("t1", "looks good"))

	e, ok := tr.Entry("t1")
	require.True(t, ok)
	assert.Equal(t, tracking.StatusApproved, e.Status)
}

func TestWorkflow_HappyPathReject(t *testing.T) {
	tr := trackerWithEntry(t)

	require.NoError(t, tr.SubmitEntry("t1", ""))
	require.NoError(t, tr.RejectEntry("t1", "wrong project"))

	e, _ := tr.Entry("t1")
	assert.Equal(t, tracking.StatusRejected, e.Status)
}

func TestWorkflow_InvalidTransitions(t *testing.T) {
	tr := trackerWithEntry(t)

	// Approving or rejecting a draft fails
	assert.True(t, tracking.IsConflict(tr.ApproveEntry("t1", "")))
	assert.True(t, tracking.IsConflict(tr.RejectEntry("t1", "")))

	// Re-submitting a submitted entry fails
	require.NoError(t, tr.SubmitEntry("t1", ""))
	err := tr.SubmitEntry("t1", "")
	var transition *tracking.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, tracking.StatusDraft, transition.Required)
	assert.Equal(t, tracking.StatusSubmitted, transition.Actual)

	// Approved is terminal
	require.NoError(t, tr.ApproveEntry("t1", ""))
	assert.Error(t, tr.RejectEntry("t1", ""))
	assert.Error(t, tr.ApproveEntry("t1", ""))
}

func TestWorkflow_UnknownEntry(t *testing.T) {
	tr := newTestTracker(t, nil)

	assert.True(t, tracking.IsNotFound(tr.SubmitEntry("ghost", "")))
	assert.True(t, tracking.IsNotFound(tr.ApproveEntry("ghost", "")))
	assert.True(t, tracking.IsNotFound(tr.RejectEntry("ghost", "")))
}

func TestWorkflow_EmptyStatusTreatedAsDraft(t *testing.T) {
	// Entries loaded from elsewhere may carry no status at all.
	tr := newTestTracker(t, nil)
	tr.Stores().Entries().Upsert(&tracking.TimeEntry{
		ID: "raw", CompanyID: "c1", EmployeeID: "e1", ProjectID: "p1",
		Start: at(9, 0), End: at(10, 0), Duration: 60,
	})

	assert.NoError(t, tr.SubmitEntry("raw", ""))
}

// =============================================================================
// AUDIT & EVENTS
// =============================================================================

func TestWorkflow_AuditTrail(t *testing.T) {
	tr := trackerWithEntry(t)

	require.NoError(t, tr.SubmitEntry("t1", "please review"))
	require.NoError(t, tr.RejectEntry("t1", "duplicate"))

	records := tr.Audit().All()
	require.Len(t, records, 2)

	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, tracking.EntryID("t1"), records[0].EntryID)
	assert.Equal(t, tracking.AuditSubmit, records[0].Action)
	assert.Equal(t, "please review", records[0].Reason)
	assert.False(t, records[0].At.IsZero())

	assert.Equal(t, tracking.AuditReject, records[1].Action)
	assert.Equal(t, "duplicate", records[1].Reason)
}

func TestWorkflow_FailedTransitionLeavesNoTrace(t *testing.T) {
	tr := trackerWithEntry(t)
	tr.Events().Clear()

	require.Error(t, tr.ApproveEntry("t1", ""))

	assert.Empty(t, tr.Audit().All())
	assert.Empty(t, tr.Events().All())
}

func TestWorkflow_TransitionEvents(t *testing.T) {
	tr := trackerWithEntry(t)
	tr.Events().Clear()

	require.NoError(t, tr.SubmitEntry("t1", ""))
	require.NoError(t, tr.ApproveEntry("t1", ""))

	assert.Equal(t, []string{"entry.submitted", "entry.approved"}, tr.Events().Names())
}

// =============================================================================
// EMAIL NOTIFICATIONS
// =============================================================================

func TestWorkflow_EmailUsesTemplate(t *testing.T) {
	// GIVEN: A submitted template with tokens
	tr := trackerWithEntry(t)
	tr.Mail().AddTemplate(notify.Template{
		Name:    notify.TemplateEntrySubmitted,
		Subject: "Timesheet from {{employee}}",
		Body:    "Entry {{entryId}}: {{reason}}",
	})

	require.NoError(t, tr.SubmitEntry("t1", "sprint 12"))

	outbox := tr.Mail().Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, []string{"dev@acme.io"}, outbox[0].To)
	assert.Equal(t, "Timesheet from Dev Dan", outbox[0].Subject)
	assert.Equal(t, "Entry t1: sprint 12", outbox[0].Body)
}

func TestWorkflow_EmailFallsBackWithoutTemplate(t *testing.T) {
	tr := trackerWithEntry(t)

	require.NoError(t, tr.SubmitEntry("t1", ""))

	outbox := tr.Mail().Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, "Entry submitted: t1", outbox[0].Subject)
}

func TestWorkflow_NoEmailWithoutAddress(t *testing.T) {
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.AddEmployee(&tracking.Employee{ID: "e2", CompanyID: "c1", Name: "No Mail"}))
	silent := entry("t2", at(13, 0), at(14, 0))
	silent.EmployeeID = "e2"
	require.NoError(t, tr.AddTimeEntry(silent))

	require.NoError(t, tr.SubmitEntry("t2", ""))

	assert.Empty(t, tr.Mail().Outbox())
}

// =============================================================================
// PERIOD CLOSURE
// =============================================================================

func TestClosePeriod_RejectsInvalidRange(t *testing.T) {
	tr := newTestTracker(t, nil)

	err := tr.ClosePeriod("c1", at(10, 0), at(9, 0))

	assert.ErrorIs(t, err, tracking.ErrInvalidPeriod)
	assert.Empty(t, tr.Periods().List("c1"))
}

func TestClosePeriod_NotifiesCompanyEmployees(t *testing.T) {
	tr := newTestTracker(t, nil)
	tr.AddCompany(&tracking.Company{ID: "c2", Name: "Globex"})
	require.NoError(t, tr.AddEmployee(&tracking.Employee{ID: "e9", CompanyID: "c2", Name: "Elsewhere", Email: "x@globex.io"}))

	require.NoError(t, tr.ClosePeriod("c1", at(0, 0), at(23, 0)))

	assert.Contains(t, tr.Events().Names(), "period.closed")
	outbox := tr.Mail().Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, []string{"dev@acme.io"}, outbox[0].To, "only c1 staff is mailed")
}

// =============================================================================
// RBAC-GATED OPERATIONS
// =============================================================================

func TestRBAC_ApproveAs(t *testing.T) {
	// GIVEN: A manager allowed to approve, an employee who is not
	tr := trackerWithEntry(t)
	tr.Access().SetUserRole("c1", "alice", tracking.RoleManager)
	tr.Access().SetUserRole("c1", "bob", tracking.RoleEmployee)
	tr.Access().Allow("c1", tracking.ActionApprove, tracking.RoleManager)
	require.NoError(t, tr.SubmitEntry("t1", ""))

	// WHEN/THEN: The employee is denied before any transition check runs
	err := tr.ApproveEntryAs("bob", "t1", "")
	assert.True(t, tracking.IsForbidden(err))
	var denied *tracking.AccessDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "bob", denied.UserID)

	// AND: The manager succeeds
	require.NoError(t, tr.ApproveEntryAs("alice", "t1", "ok"))
	e, _ := tr.Entry("t1")
	assert.Equal(t, tracking.StatusApproved, e.Status)
}

func TestRBAC_UnknownUserDenied(t *testing.T) {
	tr := trackerWithEntry(t)
	tr.Access().Allow("c1", tracking.ActionReject, tracking.RoleManager)
	require.NoError(t, tr.SubmitEntry("t1", ""))

	assert.True(t, tracking.IsForbidden(tr.RejectEntryAs("stranger", "t1", "")))
}

func TestRBAC_ClosePeriodAs(t *testing.T) {
	tr := newTestTracker(t, nil)
	tr.Access().SetUserRole("c1", "alice", tracking.RoleAdmin)
	tr.Access().Allow("c1", tracking.ActionClosePeriod, tracking.RoleAdmin)

	assert.True(t, tracking.IsForbidden(tr.ClosePeriodAs("bob", "c1", at(0, 0), at(23, 0))))

	require.NoError(t, tr.ClosePeriodAs("alice", "c1", at(0, 0), at(23, 0)))
	assert.True(t, tr.IsPeriodClosed("c1", at(1, 0), at(2, 0)))
}

func TestRBAC_RolesAreCompanyScoped(t *testing.T) {
	tr := trackerWithEntry(t)
	tr.Access().SetUserRole("c2", "alice", tracking.RoleManager)
	tr.Access().Allow("c2", tracking.ActionApprove, tracking.RoleManager)
	require.NoError(t, tr.SubmitEntry("t1", ""))

	// alice's c2 role grants nothing in c1
	assert.True(t, tracking.IsForbidden(tr.ApproveEntryAs("alice", "t1", "")))
}

// =============================================================================
// SNAPSHOT PERSISTENCE
// =============================================================================

func TestSaveTo_ExportsEveryEntity(t *testing.T) {
	tr := trackerWithEntry(t)

	backup := store.NewAdapter()
	tr.SaveTo(backup)

	assert.True(t, backup.Companies().Has("c1"))
	assert.True(t, backup.Employees().Has("e1"))
	assert.True(t, backup.Projects().Has("p1"))
	assert.True(t, backup.Entries().Has("t1"))
}

func TestLoadFrom_HydratesFreshEngine(t *testing.T) {
	// GIVEN: A populated source adapter
	src := trackerWithEntry(t)
	backup := store.NewAdapter()
	src.SaveTo(backup)

	// WHEN: A brand-new engine loads it
	tr := tracking.New(store.NewAdapter())
	tr.LoadFrom(backup)

	// THEN: Entities are usable for new operations immediately
	e, ok := tr.Entry("t1")
	require.True(t, ok)
	assert.Equal(t, 60, e.Duration)
	assert.NoError(t, tr.AddTimeEntry(entry("t2", at(11, 0), at(12, 0))))
}
