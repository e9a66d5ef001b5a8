package domain

// UserContext is the authenticated staff context injected into admin handlers.
// Tokens are issued by the external session provider.
type UserContext struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// RoleAdmin grants access to /api/v1/admin.
const RoleAdmin = "admin"
