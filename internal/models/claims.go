package models

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are the bearer token claims of a dashboard operator.
type AdminClaims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission.
// Without explicit permissions the role defaults apply.
func (c *AdminClaims) HasPermission(permission string) bool {
	granted := c.Permissions
	if len(granted) == 0 {
		granted = GetDefaultPermissions(c.Role)
	}
	for _, p := range granted {
		if p == permission {
			return true
		}
	}
	return false
}
