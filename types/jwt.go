package types

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT payload for dashboard admin sessions
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}
