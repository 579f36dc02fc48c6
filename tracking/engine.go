/*
engine.go - Tracker facade and the entry policy pipeline

PURPOSE:
  Tracker wires the entity stores, policy books, rate resolver, budget
  tracker and side channels into one orchestrator. AddTimeEntry is the
  heart: a fixed-order validation pipeline that mutates the candidate entry
  (duration derivation, rounding, auto-split) before persisting it.

PIPELINE ORDER (each step short-circuits on failure):
   1. Company must exist
   2. Interval must not touch a closed period (half-open overlap)
   3. Employee and project must exist and share the entry's company
   4. Status defaults to draft
   5. Duration derived from start/end when unset
   6. Holiday gate (policy-controlled)
   7. Approved-leave gate (policy-controlled)
   8. Rounding per policy (duration / endTime / both)
   9. Overlap handling: allow / reject / auto-split
  10. Persist, attach billability, fire best-effort side effects

SIDE EFFECTS:
  Audit, events, budget updates, notifications and email run after the
  primary state change, each in its own failure boundary. A panicking hook
  never rolls back the insertion and never blocks the other hooks. This is
  an explicit best-effort policy, not missing error handling.

SEE ALSO:
  - reporting.go: Report generation, billing, CSV export
  - errors.go: The error taxonomy this pipeline produces
*/
package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/akimsoule/timelyhub/notify"
)

// Tracker is the multi-company time tracking engine. Single logical writer;
// no concurrent callers are assumed.
type Tracker struct {
	stores   Adapter
	periods  *PeriodBook
	audit    *AuditLog
	leaves   *LeaveBook
	holidays *HolidayBook
	rates    *RateBook
	budgets  *BudgetTracker
	access   *AccessList
	events   *notify.EventLog
	hub      *notify.Hub
	mail     *notify.Mailer
}

func New(stores Adapter) *Tracker {
	return &Tracker{
		stores:   stores,
		periods:  NewPeriodBook(),
		audit:    NewAuditLog(),
		leaves:   NewLeaveBook(),
		holidays: NewHolidayBook(),
		rates:    NewRateBook(),
		budgets:  NewBudgetTracker(),
		access:   NewAccessList(),
		events:   notify.NewEventLog(),
		hub:      notify.NewHub(),
		mail:     notify.NewMailer(),
	}
}

// Collaborator accessors. Callers configure policy data (rates, budgets,
// leaves, holidays, RBAC, subscriptions) directly on these.
func (t *Tracker) Stores() Adapter           { return t.stores }
func (t *Tracker) Periods() *PeriodBook      { return t.periods }
func (t *Tracker) Audit() *AuditLog          { return t.audit }
func (t *Tracker) Leaves() *LeaveBook        { return t.leaves }
func (t *Tracker) Holidays() *HolidayBook    { return t.holidays }
func (t *Tracker) Rates() *RateBook          { return t.rates }
func (t *Tracker) Budgets() *BudgetTracker   { return t.budgets }
func (t *Tracker) Access() *AccessList       { return t.access }
func (t *Tracker) Events() *notify.EventLog  { return t.events }
func (t *Tracker) Hub() *notify.Hub          { return t.hub }
func (t *Tracker) Mail() *notify.Mailer      { return t.mail }

// =============================================================================
// ENTITY MANAGEMENT
// =============================================================================

func (t *Tracker) AddCompany(c *Company) {
	t.stores.Companies().Upsert(c)
}

func (t *Tracker) Company(id CompanyID) (*Company, bool) {
	return t.stores.Companies().Get(id)
}

func (t *Tracker) AddEmployee(e *Employee) error {
	if !t.stores.Companies().Has(e.CompanyID) {
		return &NotFoundError{Kind: "company", ID: string(e.CompanyID)}
	}
	t.stores.Employees().Upsert(e)
	return nil
}

func (t *Tracker) Employee(id EmployeeID) (*Employee, bool) {
	return t.stores.Employees().Get(id)
}

func (t *Tracker) AddProject(p *Project) error {
	if !t.stores.Companies().Has(p.CompanyID) {
		return &NotFoundError{Kind: "company", ID: string(p.CompanyID)}
	}
	t.stores.Projects().Upsert(p)
	return nil
}

func (t *Tracker) Project(id ProjectID) (*Project, bool) {
	return t.stores.Projects().Get(id)
}

func (t *Tracker) Entry(id EntryID) (*TimeEntry, bool) {
	return t.stores.Entries().Get(id)
}

// =============================================================================
// ENTRY POLICY PIPELINE
// =============================================================================

// AddTimeEntry validates and persists a candidate entry. The entry may be
// mutated even though insertion succeeds with adjusted values (rounding,
// auto-split); on failure the entry is not persisted.
func (t *Tracker) AddTimeEntry(entry *TimeEntry) error {
	// 1. Company gate
	if !t.stores.Companies().Has(entry.CompanyID) {
		return &NotFoundError{Kind: "company", ID: string(entry.CompanyID)}
	}

	// 2. Closed-period gate
	if t.periods.IsClosed(entry.CompanyID, entry.Start, entry.End) {
		return &PeriodClosedError{CompanyID: entry.CompanyID}
	}

	// 3. Relationship gates
	emp, ok := t.stores.Employees().Get(entry.EmployeeID)
	if !ok {
		return &NotFoundError{Kind: "employee", ID: string(entry.EmployeeID)}
	}
	proj, ok := t.stores.Projects().Get(entry.ProjectID)
	if !ok {
		return &NotFoundError{Kind: "project", ID: string(entry.ProjectID)}
	}
	if emp.CompanyID != entry.CompanyID {
		return &CrossCompanyError{CompanyID: entry.CompanyID, Kind: "employee"}
	}
	if proj.CompanyID != entry.CompanyID {
		return &CrossCompanyError{CompanyID: entry.CompanyID, Kind: "project"}
	}

	// 4. Default status
	if entry.Status == "" {
		entry.Status = StatusDraft
	}

	// 5. Derive duration
	if entry.Duration == 0 {
		entry.Duration = DurationMinutes(entry.Start, entry.End)
	}

	policy := t.policyFor(entry.CompanyID)

	// 6. Holiday gate
	if policy != nil && policy.BlockHolidays {
		if t.holidays.IsHoliday(entry.CompanyID, entry.Start) {
			return &PolicyViolationError{Rule: "holiday"}
		}
	}

	// 7. Approved-leave gate
	if policy != nil && policy.BlockApprovedLeave {
		if t.leaves.ApprovedInRange(entry.CompanyID, entry.EmployeeID, entry.Start, entry.End) {
			return &PolicyViolationError{Rule: "approved-leave"}
		}
	}

	// 8. Rounding
	if policy != nil && policy.Rounding != nil {
		applyRounding(entry, policy.Rounding)
	}

	// 9. Overlap handling
	if err := t.handleOverlap(entry, policy.EffectiveOverlapMode()); err != nil {
		return err
	}

	// 10. Persist, then enrich and fan out
	t.stores.Entries().Upsert(entry)

	if resolved := t.rates.Resolve(entry.CompanyID, RateSelector{
		EmployeeID: entry.EmployeeID,
		ProjectID:  entry.ProjectID,
		Role:       emp.Role,
	}, entry.Start); resolved != nil {
		entry.Billable = resolved.Billable
	}

	added := t.events.Emit(notify.EventEntryAdded, map[string]any{
		"id":        string(entry.ID),
		"companyId": string(entry.CompanyID),
	})
	t.sideEffect(func() {
		t.budgets.ApplyEntry(entry, func(alert BudgetAlert) {
			ev := t.events.Emit(notify.EventBudgetThreshold, map[string]any{
				"budgetId": alert.BudgetID,
				"ratio":    alert.Ratio,
				"hours":    alert.Hours,
			})
			t.hub.Dispatch(ev)
		})
	})
	t.sideEffect(func() { t.hub.Dispatch(added) })
	return nil
}

// applyRounding rewrites duration and/or end time per the rule. For "both",
// the end time is derived from the rounded duration so the two fields stay
// consistent.
func applyRounding(entry *TimeEntry, rule *RoundingRule) {
	if rule.ApplyOn == ApplyDuration || rule.ApplyOn == ApplyBoth {
		entry.Duration = RoundMinutes(entry.Duration, rule.StepMinutes, rule.Mode)
	}
	if rule.ApplyOn == ApplyEndTime || rule.ApplyOn == ApplyBoth {
		minutes := entry.Duration
		if rule.ApplyOn == ApplyEndTime {
			minutes = RoundMinutes(DurationMinutes(entry.Start, entry.End), rule.StepMinutes, rule.Mode)
		}
		entry.End = entry.Start.Add(time.Duration(minutes) * time.Minute)
		entry.Duration = minutes
	}
}

// handleOverlap evaluates the candidate against existing entries for the
// same company and employee.
func (t *Tracker) handleOverlap(entry *TimeEntry, mode OverlapMode) error {
	if mode == OverlapAllow {
		return nil
	}

	var conflicts []*TimeEntry
	for _, existing := range t.stores.Entries().List() {
		if existing.CompanyID == entry.CompanyID &&
			existing.EmployeeID == entry.EmployeeID &&
			Overlaps(existing.Start, existing.End, entry.Start, entry.End) {
			conflicts = append(conflicts, existing)
		}
	}
	if len(conflicts) == 0 {
		return nil
	}

	if mode == OverlapReject {
		return &OverlapError{EmployeeID: entry.EmployeeID}
	}

	// Auto-split: truncate the candidate to start after the latest
	// conflicting end. Fully covered candidates are rejected.
	latest := conflicts[0].End
	for _, c := range conflicts[1:] {
		if c.End.After(latest) {
			latest = c.End
		}
	}
	if !latest.Before(entry.End) {
		return &OverlapError{EmployeeID: entry.EmployeeID}
	}
	entry.Start = latest
	entry.Duration = DurationMinutes(entry.Start, entry.End)
	return nil
}

func (t *Tracker) policyFor(companyID CompanyID) *CompanyPolicy {
	company, ok := t.stores.Companies().Get(companyID)
	if !ok {
		return nil
	}
	return company.Policy
}

// =============================================================================
// WORKFLOW TRANSITIONS
// =============================================================================

// SubmitEntry moves a draft entry to submitted.
func (t *Tracker) SubmitEntry(id EntryID, reason string) error {
	entry, ok := t.stores.Entries().Get(id)
	if !ok {
		return &NotFoundError{Kind: "entry", ID: string(id)}
	}
	if entry.EffectiveStatus() != StatusDraft {
		return &TransitionError{EntryID: id, Action: AuditSubmit, Required: StatusDraft, Actual: entry.EffectiveStatus()}
	}
	entry.Status = StatusSubmitted
	t.recordTransition(entry, AuditSubmit, reason, notify.EventEntrySubmitted, notify.TemplateEntrySubmitted)
	return nil
}

// ApproveEntry moves a submitted entry to approved. Approved is terminal.
func (t *Tracker) ApproveEntry(id EntryID, reason string) error {
	entry, ok := t.stores.Entries().Get(id)
	if !ok {
		return &NotFoundError{Kind: "entry", ID: string(id)}
	}
	if entry.EffectiveStatus() != StatusSubmitted {
		return &TransitionError{EntryID: id, Action: AuditApprove, Required: StatusSubmitted, Actual: entry.EffectiveStatus()}
	}
	entry.Status = StatusApproved
	t.recordTransition(entry, AuditApprove, reason, notify.EventEntryApproved, notify.TemplateEntryApproved)
	return nil
}

// RejectEntry moves a submitted entry to rejected. Rejected is terminal;
// there is no re-submission path.
func (t *Tracker) RejectEntry(id EntryID, reason string) error {
	entry, ok := t.stores.Entries().Get(id)
	if !ok {
		return &NotFoundError{Kind: "entry", ID: string(id)}
	}
	if entry.EffectiveStatus() != StatusSubmitted {
		return &TransitionError{EntryID: id, Action: AuditReject, Required: StatusSubmitted, Actual: entry.EffectiveStatus()}
	}
	entry.Status = StatusRejected
	t.recordTransition(entry, AuditReject, reason, notify.EventEntryRejected, notify.TemplateEntryRejected)
	return nil
}

// recordTransition appends the audit record (primary) and fires the
// best-effort side channels.
func (t *Tracker) recordTransition(entry *TimeEntry, action AuditAction, reason string, eventName string, template notify.TemplateName) {
	t.audit.Append(AuditRecord{
		ID:      uuid.NewString(),
		EntryID: entry.ID,
		Action:  action,
		Reason:  reason,
		At:      time.Now().UTC(),
	})
	ev := t.events.Emit(eventName, map[string]any{"id": string(entry.ID)})
	t.sideEffect(func() { t.hub.Dispatch(ev) })
	t.sideEffect(func() { t.emailEmployee(entry, template, reason) })
}

// emailEmployee renders the transition template (or a fallback) and queues
// mail when the employee has an address.
func (t *Tracker) emailEmployee(entry *TimeEntry, name notify.TemplateName, reason string) {
	emp, _ := t.stores.Employees().Get(entry.EmployeeID)

	empName := ""
	if emp != nil {
		empName = emp.Name
	}
	rendered, err := t.mail.Render(name, map[string]string{
		"employee": empName,
		"entryId":  string(entry.ID),
		"reason":   reason,
	})
	if err != nil {
		rendered = fallbackMail(name, entry.ID, empName)
	}
	if emp != nil && emp.Email != "" {
		t.mail.Send(notify.Message{To: []string{emp.Email}, Subject: rendered.Subject, Body: rendered.Body})
	}
}

func fallbackMail(name notify.TemplateName, id EntryID, employee string) notify.Rendered {
	switch name {
	case notify.TemplateEntrySubmitted:
		return notify.Rendered{
			Subject: "Entry submitted: " + string(id),
			Body:    "Employee " + employee + " submitted entry " + string(id),
		}
	case notify.TemplateEntryApproved:
		return notify.Rendered{
			Subject: "Entry approved: " + string(id),
			Body:    "Your entry " + string(id) + " was approved",
		}
	default:
		return notify.Rendered{
			Subject: "Entry rejected: " + string(id),
			Body:    "Your entry " + string(id) + " was rejected",
		}
	}
}

// =============================================================================
// PERIODS
// =============================================================================

// ClosePeriod records an immutable closure and notifies company employees.
func (t *Tracker) ClosePeriod(companyID CompanyID, start, end time.Time) error {
	if err := t.periods.Close(companyID, start, end); err != nil {
		return err
	}
	ev := t.events.Emit(notify.EventPeriodClosed, map[string]any{
		"companyId": string(companyID),
		"start":     start,
		"end":       end,
	})
	t.sideEffect(func() { t.hub.Dispatch(ev) })
	t.sideEffect(func() { t.emailPeriodClosed(companyID, start, end) })
	return nil
}

func (t *Tracker) emailPeriodClosed(companyID CompanyID, start, end time.Time) {
	var recipients []string
	for _, emp := range t.stores.Employees().List() {
		if emp.CompanyID == companyID && emp.Email != "" {
			recipients = append(recipients, emp.Email)
		}
	}
	if len(recipients) == 0 {
		return
	}
	rendered, err := t.mail.Render(notify.TemplatePeriodClosed, map[string]string{
		"start": start.Format(time.RFC3339),
		"end":   end.Format(time.RFC3339),
	})
	if err != nil {
		rendered = notify.Rendered{
			Subject: "Period closed",
			Body:    "Period " + start.Format(time.RFC3339) + " - " + end.Format(time.RFC3339) + " closed",
		}
	}
	t.mail.Send(notify.Message{To: recipients, Subject: rendered.Subject, Body: rendered.Body})
}

func (t *Tracker) IsPeriodClosed(companyID CompanyID, start, end time.Time) bool {
	return t.periods.IsClosed(companyID, start, end)
}

// =============================================================================
// RBAC-GATED OPERATIONS
// =============================================================================

func (t *Tracker) ApproveEntryAs(userID string, id EntryID, reason string) error {
	entry, ok := t.stores.Entries().Get(id)
	if !ok {
		return &NotFoundError{Kind: "entry", ID: string(id)}
	}
	if !t.access.Can(entry.CompanyID, userID, ActionApprove) {
		return &AccessDeniedError{UserID: userID, Action: ActionApprove}
	}
	return t.ApproveEntry(id, reason)
}

func (t *Tracker) RejectEntryAs(userID string, id EntryID, reason string) error {
	entry, ok := t.stores.Entries().Get(id)
	if !ok {
		return &NotFoundError{Kind: "entry", ID: string(id)}
	}
	if !t.access.Can(entry.CompanyID, userID, ActionReject) {
		return &AccessDeniedError{UserID: userID, Action: ActionReject}
	}
	return t.RejectEntry(id, reason)
}

func (t *Tracker) ClosePeriodAs(userID string, companyID CompanyID, start, end time.Time) error {
	if !t.access.Can(companyID, userID, ActionClosePeriod) {
		return &AccessDeniedError{UserID: userID, Action: ActionClosePeriod}
	}
	return t.ClosePeriod(companyID, start, end)
}

// =============================================================================
// HOLIDAYS & PERSISTENCE HELPERS
// =============================================================================

// ImportHolidays fetches the source's list and attaches every holiday to the
// company. Returns the number imported.
func (t *Tracker) ImportHolidays(src HolidaySource, companyID CompanyID, country string, year int) int {
	added := 0
	for _, h := range src.Fetch(country, year) {
		h.CompanyID = companyID
		t.holidays.Add(h)
		added++
	}
	return added
}

// SaveTo copies all entities into another adapter, for batch export.
func (t *Tracker) SaveTo(dst Adapter) {
	for _, c := range t.stores.Companies().List() {
		dst.Companies().Upsert(c)
	}
	for _, e := range t.stores.Employees().List() {
		dst.Employees().Upsert(e)
	}
	for _, p := range t.stores.Projects().List() {
		dst.Projects().Upsert(p)
	}
	for _, entry := range t.stores.Entries().List() {
		dst.Entries().Upsert(entry)
	}
}

// LoadFrom upserts all entities from another adapter into the engine's
// stores, for batch import.
func (t *Tracker) LoadFrom(src Adapter) {
	for _, c := range src.Companies().List() {
		t.stores.Companies().Upsert(c)
	}
	for _, e := range src.Employees().List() {
		t.stores.Employees().Upsert(e)
	}
	for _, p := range src.Projects().List() {
		t.stores.Projects().Upsert(p)
	}
	for _, entry := range src.Entries().List() {
		t.stores.Entries().Upsert(entry)
	}
}

// sideEffect runs f in an isolated failure boundary. Side channels are
// best-effort and must never abort the primary operation.
func (t *Tracker) sideEffect(f func()) {
	defer func() { _ = recover() }()
	f()
}
