package models

// RoleCustomer is the usuarios.rol_id given to every self-registered account.
const RoleCustomer = 1

// User represents a storefront account. PasswordHash is nil for accounts
// created through Google sign-in.
type User struct {
	BaseModel
	DisplayName  string  `gorm:"column:nombre" json:"nombre"`
	Email        string  `gorm:"size:191;uniqueIndex" json:"email"`
	PasswordHash *string `gorm:"column:password_hash" json:"-"`
	RoleID       int     `gorm:"column:rol_id;default:1" json:"rol_id"`
	GoogleID     *string `gorm:"column:google_id;size:191;uniqueIndex" json:"-"`
	IsVerified   bool    `gorm:"column:verificado" json:"verificado"`
}

func (User) TableName() string { return "usuarios" }

// Sanitized returns the public view of the user.
func (u User) Sanitized() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"nombre":     u.DisplayName,
		"email":      u.Email,
		"rol_id":     u.RoleID,
		"verificado": u.IsVerified,
		"google":     u.GoogleID != nil,
	}
}
