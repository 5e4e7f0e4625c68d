package models

// Member roles within a group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember ties a user to a group with a role.
type GroupMember struct {
	// UserID identifies the member.
	UserID string

	// Role is either RoleAdmin or RoleMember.
	Role string

	// JoinedAt is the Unix millisecond timestamp when the user joined.
	JoinedAt int64
}

// Group represents a named set of members. A group's membership determines
// which group-scoped expenses and settlements are relevant to which users.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Roommates").
	Name string

	// Description is an optional free-form description.
	Description string

	// CreatedBy is the user who created the group.
	CreatedBy string

	// Members is the set of group members. The creator is always a member
	// with the admin role.
	Members []GroupMember

	// CreatedAt is the Unix millisecond timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether the user belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
