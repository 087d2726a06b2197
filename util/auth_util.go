package util

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	TokenRoleStoryteller = "STORYTELLER"
	TokenRolePlayer      = "PLAYER"
)

var ErrInvalidToken = errors.New("トークンが無効です")

type ViewerClaims struct {
	Room   string
	UserID string
	Role   string
}

func (c ViewerClaims) IsStoryteller() bool {
	return c.Role == TokenRoleStoryteller
}

func IssueToken(secret string, room string, userID string, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"room": room,
		"sub":  userID,
		"role": role,
		"iat":  time.Now().Unix(),
	}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret string, tokenString string) (ViewerClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		slog.Warn("トークンの検証に失敗しました", "error", err)
		return ViewerClaims{}, ErrInvalidToken
	}
	if !token.Valid {
		slog.Warn("トークンの有効期限が切れています")
		return ViewerClaims{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		slog.Warn("クレームの取得に失敗しました")
		return ViewerClaims{}, ErrInvalidToken
	}
	room, _ := claims["room"].(string)
	userID, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || (role != TokenRoleStoryteller && role != TokenRolePlayer) {
		slog.Warn("クレームが不正です", "room", room, "role", role)
		return ViewerClaims{}, ErrInvalidToken
	}
	return ViewerClaims{Room: room, UserID: userID, Role: role}, nil
}
