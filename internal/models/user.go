package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleManager  Role = "Manager"
	RoleAdmin    Role = "Admin"
)

// Claims carries the identity minted by the (external) login service.
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
