package models

import "github.com/golang-jwt/jwt/v5"

// Roles recognised by the authorization boundary.
const (
	RoleAdmin     = "admin"
	RoleAllocator = "allocator"
	RoleViewer    = "viewer"
)

// JWTClaims is the token payload issued by the external identity provider.
type JWTClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
