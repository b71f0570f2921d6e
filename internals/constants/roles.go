package constants

import "fmt"

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

// Role error templates
const (
	ErrOnlyAdminsCanAccess  = "only admin may access %s"
	ErrOnlyParentsCanAccess = "only parent accounts may access %s"
	ErrOnlyStaffCanAccess   = "only admin or teacher may access %s"
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorParent(feature string) string {
	return fmt.Sprintf(ErrOnlyParentsCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

// ==========================
// Grouped role slices
// ==========================
var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleParent}

	StaffRoles = []string{RoleAdmin, RoleTeacher}

	AdminOnly = []string{RoleAdmin}

	ParentOnly = []string{RoleParent}
)

func ValidRole(r string) bool {
	for _, x := range AllRoles {
		if x == r {
			return true
		}
	}
	return false
}
