package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles stored in users.role and carried in the tipo_usuario claim.
const (
	RoleAdmin  = "Administrador"
	RoleClient = "Cliente"
)

// SystemUserID identifies the seeded account that inherits authorship of
// room types, rooms and services when their creator is deleted.
var SystemUserID = uuid.Nil

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool { return r == RoleAdmin || r == RoleClient }

// User represents a row of the `users` table.  The password hash never
// leaves the process; handlers serialize this struct directly.
type User struct {
	ID           uuid.UUID  `json:"id_usuario"`     // users.id
	FirstName    string     `json:"nombre"`         // users.first_name
	LastName     string     `json:"apellidos"`      // users.last_name
	Phone        string     `json:"telefono"`       // users.phone
	Role         string     `json:"tipo_usuario"`   // users.role
	Username     string     `json:"nombre_usuario"` // users.username
	PasswordHash string     `json:"-"`              // users.password_hash (bcrypt)
	CreatedAt    time.Time  `json:"fecha_creacion"` // users.created_at
	UpdatedAt    *time.Time `json:"fecha_edicion"`  // users.updated_at (nullable)
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
