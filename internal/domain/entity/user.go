package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSeller  = "seller"
)

// User representa un usuario del sistema. Su gestión es externa; el ledger solo lo re-adjunta.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// Actor identidad autenticada que ejecuta una operación (extraída del JWT).
type Actor struct {
	UserID string
	Role   string
}

// HasRole indica si el actor trae identidad y rol.
func (a *Actor) HasRole() bool {
	return a != nil && a.UserID != "" && a.Role != ""
}

// IsManagement indica si el actor es admin o manager.
func (a *Actor) IsManagement() bool {
	return a != nil && (a.Role == RoleAdmin || a.Role == RoleManager)
}

// IsSeller indica si el actor es vendedor.
func (a *Actor) IsSeller() bool {
	return a != nil && a.Role == RoleSeller
}
