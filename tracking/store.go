/*
store.go - Persistence ports for the tracking engine

PURPOSE:
  Defines the interface between the engine and entity storage. Stores are
  plain identity-keyed repositories: insert/lookup/list, no querying. The
  engine always re-fetches by ID rather than caching references across
  mutation boundaries.

CONTRACT:
  - List() returns entities in insertion order (overlap scans, reports and
    CSV exports depend on stable order)
  - Upsert replaces by ID without error; uniqueness is by identity only
  - No locking is assumed: there is exactly one logical writer path

IMPLEMENTATIONS:
  - store/memory.go: In-memory repositories with unit-of-work snapshots

SEE ALSO:
  - engine.go: The single writer path
*/
package tracking

// Repository is an identity-keyed entity store.
type Repository[K ~string, T any] interface {
	Get(id K) (T, bool)
	Has(id K) bool
	Upsert(entity T)
	Remove(id K)
	List() []T
	Clear()
}

// Adapter bundles the four entity stores the engine owns.
type Adapter interface {
	Companies() Repository[CompanyID, *Company]
	Employees() Repository[EmployeeID, *Employee]
	Projects() Repository[ProjectID, *Project]
	Entries() Repository[EntryID, *TimeEntry]
}
