/*
Package store provides in-memory implementations of the tracking ports.

PURPOSE:
  Memory is an insertion-ordered, identity-keyed repository. Adapter bundles
  one Memory per entity kind and satisfies tracking.Adapter. UnitOfWork adds
  snapshot/rollback on top, for test and batch-import scenarios only.

SNAPSHOT SEMANTICS:
  Begin() shallow-copies every store's contents (one struct copy per entity,
  nested slices shared). Rollback() fully replaces store contents with that
  copy; Commit() simply discards it. A second Begin() before the first is
  resolved creates an independent, unrelated snapshot - both remain
  rollback-able until explicitly resolved.

SEE ALSO:
  - tracking/store.go: The ports implemented here
*/
package store

import (
	"fmt"

	"github.com/akimsoule/timelyhub/tracking"
)

// =============================================================================
// MEMORY - Insertion-ordered repository
// =============================================================================

// Memory stores entities keyed by ID, preserving insertion order.
type Memory[K ~string, T any] struct {
	key   func(T) K
	clone func(T) T
	order []K
	items map[K]T
}

func NewMemory[K ~string, T any](key func(T) K, clone func(T) T) *Memory[K, T] {
	return &Memory[K, T]{key: key, clone: clone, items: make(map[K]T)}
}

func (m *Memory[K, T]) Get(id K) (T, bool) {
	v, ok := m.items[id]
	return v, ok
}

func (m *Memory[K, T]) Has(id K) bool {
	_, ok := m.items[id]
	return ok
}

func (m *Memory[K, T]) Upsert(entity T) {
	id := m.key(entity)
	if _, exists := m.items[id]; !exists {
		m.order = append(m.order, id)
	}
	m.items[id] = entity
}

func (m *Memory[K, T]) Remove(id K) {
	if _, exists := m.items[id]; !exists {
		return
	}
	delete(m.items, id)
	for i, k := range m.order {
		if k == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Memory[K, T]) List() []T {
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out
}

func (m *Memory[K, T]) Clear() {
	m.order = nil
	m.items = make(map[K]T)
}

// capture returns a shallow copy of the contents, in insertion order.
func (m *Memory[K, T]) capture() []T {
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.clone(m.items[id]))
	}
	return out
}

// restore replaces contents with a previously captured state.
func (m *Memory[K, T]) restore(state []T) {
	m.Clear()
	for _, entity := range state {
		m.Upsert(entity)
	}
}

// snapshotter lets the unit of work treat heterogeneous repositories
// uniformly.
type snapshotter interface {
	captureAny() any
	restoreAny(state any)
}

func (m *Memory[K, T]) captureAny() any { return m.capture() }

func (m *Memory[K, T]) restoreAny(state any) {
	if s, ok := state.([]T); ok {
		m.restore(s)
	}
}

// =============================================================================
// ADAPTER - The four entity stores
// =============================================================================

type Adapter struct {
	companies *Memory[tracking.CompanyID, *tracking.Company]
	employees *Memory[tracking.EmployeeID, *tracking.Employee]
	projects  *Memory[tracking.ProjectID, *tracking.Project]
	entries   *Memory[tracking.EntryID, *tracking.TimeEntry]
}

func NewAdapter() *Adapter {
	return &Adapter{
		companies: NewMemory(
			func(c *tracking.Company) tracking.CompanyID { return c.ID },
			func(c *tracking.Company) *tracking.Company { dup := *c; return &dup },
		),
		employees: NewMemory(
			func(e *tracking.Employee) tracking.EmployeeID { return e.ID },
			func(e *tracking.Employee) *tracking.Employee { dup := *e; return &dup },
		),
		projects: NewMemory(
			func(p *tracking.Project) tracking.ProjectID { return p.ID },
			func(p *tracking.Project) *tracking.Project { dup := *p; return &dup },
		),
		entries: NewMemory(
			func(e *tracking.TimeEntry) tracking.EntryID { return e.ID },
			func(e *tracking.TimeEntry) *tracking.TimeEntry { dup := *e; return &dup },
		),
	}
}

func (a *Adapter) Companies() tracking.Repository[tracking.CompanyID, *tracking.Company] {
	return a.companies
}

func (a *Adapter) Employees() tracking.Repository[tracking.EmployeeID, *tracking.Employee] {
	return a.employees
}

func (a *Adapter) Projects() tracking.Repository[tracking.ProjectID, *tracking.Project] {
	return a.projects
}

func (a *Adapter) Entries() tracking.Repository[tracking.EntryID, *tracking.TimeEntry] {
	return a.entries
}

// =============================================================================
// UNIT OF WORK - Snapshot/rollback over the adapter's stores
// =============================================================================

type Snapshot struct {
	id string
}

// UnitOfWork supports multiple outstanding snapshots; each is independent.
// No concurrent transactions in the database sense - this is a shallow-copy
// restore point, nothing more.
type UnitOfWork struct {
	repos     map[string]snapshotter
	snapshots map[string]map[string]any
	counter   int
}

func NewUnitOfWork(a *Adapter) *UnitOfWork {
	return &UnitOfWork{
		repos: map[string]snapshotter{
			"companies": a.companies,
			"employees": a.employees,
			"projects":  a.projects,
			"entries":   a.entries,
		},
		snapshots: make(map[string]map[string]any),
	}
}

// Begin captures the current contents of every store.
func (u *UnitOfWork) Begin() Snapshot {
	u.counter++
	id := fmt.Sprintf("uow:%d", u.counter)
	state := make(map[string]any, len(u.repos))
	for name, repo := range u.repos {
		state[name] = repo.captureAny()
	}
	u.snapshots[id] = state
	return Snapshot{id: id}
}

// Commit discards the snapshot; writes were applied directly.
func (u *UnitOfWork) Commit(s Snapshot) {
	delete(u.snapshots, s.id)
}

// Rollback replaces every store's contents with the snapshot. Unknown or
// already-resolved snapshots are a no-op.
func (u *UnitOfWork) Rollback(s Snapshot) {
	state, ok := u.snapshots[s.id]
	if !ok {
		return
	}
	for name, repo := range u.repos {
		repo.restoreAny(state[name])
	}
	delete(u.snapshots, s.id)
}
