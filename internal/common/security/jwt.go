package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT(key []byte) {
	TokenAuth = jwtauth.New("HS256", key, nil)
}

// GenerateSessionToken issues the login marker for username. The marker carries no
// expiry; it only proves that this server issued it for that username.
func GenerateSessionToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"jti":      uuid.NewString(),
		"iat":      time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// UsernameFromToken verifies a marker and returns the username it was issued for.
func UsernameFromToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(TokenAuth, tokenString)
	if err != nil {
		return "", err
	}
	return GetUsernameFromClaims(token.PrivateClaims())
}

func GetUsernameFromClaims(claims map[string]interface{}) (string, error) {
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", errors.New("username claim is missing or not a string")
	}
	return username, nil
}
