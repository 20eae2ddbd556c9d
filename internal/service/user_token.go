package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims 用户态 JWT 载荷（由外部认证服务签发）
type UserClaims struct {
	UserID   uint   `json:"user_id"`
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// ParseUserToken 解析并校验用户令牌
func ParseUserToken(tokenString, secret string) (*UserClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" || secret == "" {
		return nil, ErrTokenInvalid
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	claims := &UserClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
