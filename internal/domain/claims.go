package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims são as claims JWT emitidas pelo serviço de autenticação
// (fora do escopo deste serviço; aqui apenas validadas).
type Claims struct {
	UserID     int    `json:"user_id"`
	UserRoleID int    `json:"user_role_id"`
	AccountID  string `json:"account_id,omitempty"`
	jwt.RegisteredClaims
}
