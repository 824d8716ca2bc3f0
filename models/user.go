package models

// UserRole mirrors the role claim issued by the external auth service. Only
// club admins may drive tournament mutations.
type UserRole string

const (
	RoleClubAdmin UserRole = "club_admin"
	RolePlayer    UserRole = "player"
)
