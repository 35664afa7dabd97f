package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity embedded in a session token. There is no expiry
// claim: issued tokens stay valid until the signing secret rotates.
type Claims struct {
	Username string
	ID       uint
}

// TokenIssuer signs and verifies compact HS256 session tokens.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue signs a token embedding the user's identity.
func (t *TokenIssuer) Issue(username string, id uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"id":       id,
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and decodes the embedded identity.
func (t *TokenIssuer) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	username, ok := mapClaims["username"].(string)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	// JSON numbers decode as float64.
	id, ok := mapClaims["id"].(float64)
	if !ok || id < 0 {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Username: username, ID: uint(id)}, nil
}
