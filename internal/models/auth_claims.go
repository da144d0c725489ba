package models

import "github.com/golang-jwt/jwt/v5"

type JwtCustomClaims struct {
	DriverID string `json:"driverId"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}
