package model

// Well-known role names. These are the stable contract surface consumed by
// every downstream authorization check; renaming one breaks them all.
const (
	RoleAdmin      = "Admin"
	RoleAuthor     = "Author"
	RoleEditor     = "Editor"
	RoleSubscriber = "Subscriber"
)

// BaselineRoles lists the roles provisioned in a fresh deployment.
var BaselineRoles = []Role{
	{Name: RoleAdmin, Description: "Administrator with full access"},
	{Name: RoleAuthor, Description: "Can create and manage blog posts"},
	{Name: RoleEditor, Description: "Can edit and approve content"},
	{Name: RoleSubscriber, Description: "Regular user with basic privileges"},
}

// Role is immutable reference data once created.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UserRole is a (user, role) membership. The pair carries a uniqueness
// constraint, so granting the same role twice collapses to one row.
type UserRole struct {
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}
