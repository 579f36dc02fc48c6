/*
rbac.go - Role and permission lookup table

PURPOSE:
  A plain in-memory role/permission table: per company, users are assigned
  a role, and actions are allowed per role. No sessions, no tokens; the
  engine's *As operations call Can() and fail with AccessDeniedError.
*/
package tracking

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

type PermissionAction string

const (
	ActionAddEntry    PermissionAction = "addEntry"
	ActionSubmit      PermissionAction = "submit"
	ActionApprove     PermissionAction = "approve"
	ActionReject      PermissionAction = "reject"
	ActionClosePeriod PermissionAction = "closePeriod"
)

// AccessList maps users to roles and actions to allowed roles, per company.
type AccessList struct {
	roles    map[CompanyID]map[string]Role
	policies map[CompanyID]map[PermissionAction]map[Role]bool
}

func NewAccessList() *AccessList {
	return &AccessList{
		roles:    make(map[CompanyID]map[string]Role),
		policies: make(map[CompanyID]map[PermissionAction]map[Role]bool),
	}
}

func (a *AccessList) SetUserRole(companyID CompanyID, userID string, role Role) {
	if a.roles[companyID] == nil {
		a.roles[companyID] = make(map[string]Role)
	}
	a.roles[companyID][userID] = role
}

func (a *AccessList) Allow(companyID CompanyID, action PermissionAction, role Role) {
	if a.policies[companyID] == nil {
		a.policies[companyID] = make(map[PermissionAction]map[Role]bool)
	}
	if a.policies[companyID][action] == nil {
		a.policies[companyID][action] = make(map[Role]bool)
	}
	a.policies[companyID][action][role] = true
}

// Can reports whether the user's role for the company is allowed the action.
// Users without a role are denied.
func (a *AccessList) Can(companyID CompanyID, userID string, action PermissionAction) bool {
	role, ok := a.roles[companyID][userID]
	if !ok {
		return false
	}
	return a.policies[companyID][action][role]
}

func (a *AccessList) Clear() {
	a.roles = make(map[CompanyID]map[string]Role)
	a.policies = make(map[CompanyID]map[PermissionAction]map[Role]bool)
}
