package entity

// Roles válidos para los usuarios. Solo RoleSeller y RoleAdmin pueden ver estadísticas.
const (
	RoleAdmin  = "admin"
	RoleSeller = "umkm"
)

// Actor identidad del llamante ya verificada (extraída del token).
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin true si el actor tiene capacidad administrativa.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
