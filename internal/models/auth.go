package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload issued by the site's identity service.
// Platform linkage is not embedded in tokens; the identity service resolves it
// per request from platform_accounts.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
