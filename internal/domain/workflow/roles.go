package workflow

import "strings"

// RoleSet is a set of role identifiers held by a user
type RoleSet map[string]bool

// NewRoleSet builds a RoleSet from role identifiers
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = true
	}
	return set
}

// Contains reports whether the set holds the given role
func (s RoleSet) Contains(role string) bool {
	return s[role]
}

// adminRoles may act at any approval stage regardless of the stage label.
var adminRoles = []string{"it_admin", "business_admin"}

// stageLabelRoles maps a canonical (lower-cased) stage label to the roles
// allowed to act at a stage carrying that label. A label missing from this
// table resolves to the empty set, which means only admins may approve —
// that is deliberate policy, not a gap.
var stageLabelRoles = map[string][]string{
	"grower":         {"grower"},
	"manager":        {"manager"},
	"qa":             {"qa"},
	"grower/manager": {"grower", "manager"},
	"staff":          {"assistant_grower", "grower"},
	"performer":      {"assistant_grower", "grower"},
}

// RolesForLabel resolves a stage role label to the set of roles allowed at
// that stage. Resolution is case-insensitive.
func RolesForLabel(label string) []string {
	return stageLabelRoles[strings.ToLower(strings.TrimSpace(label))]
}

// CanUserApprove decides whether a user holding the given roles may act at
// the current approval stage of a category's workflow. It returns false
// when the stage index is at or past the final stage (nothing left to
// approve), and true for admin roles at any live stage.
func CanUserApprove(category Category, currentStage int, roles RoleSet) bool {
	wf, err := ApprovalWorkflowFor(category)
	if err != nil {
		return false
	}
	if currentStage < 0 || currentStage >= wf.TotalStages() {
		return false
	}

	for _, admin := range adminRoles {
		if roles.Contains(admin) {
			return true
		}
	}

	for _, allowed := range RolesForLabel(wf.StageLabel(currentStage)) {
		if roles.Contains(allowed) {
			return true
		}
	}
	return false
}
