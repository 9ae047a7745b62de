package utils

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie browsers may carry instead of an Authorization header.
const SessionCookieName = "sessionToken"

const sessionTokenType = "session"

var secretKey []byte

func SetSecret(key string) {
	secretKey = []byte(key)
}

// GenerateSessionToken signs a token whose subject is the session id.
func GenerateSessionToken(sessionID string, expiry time.Duration) (string, time.Time, error) {
	if len(secretKey) == 0 {
		return "", time.Time{}, fmt.Errorf("jwt secret not set")
	}

	now := time.Now()
	expiresAt := now.Add(expiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sessionID,
		"typ": sessionTokenType,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func ValidateJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// ExtractSessionID reads the session token from the Authorization header or
// the session cookie and returns the session id it was issued for.
func ExtractSessionID(r *http.Request) (string, error) {
	tokenString := ""
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	} else if cookie, err := r.Cookie(SessionCookieName); err == nil {
		tokenString = cookie.Value
	}

	if tokenString == "" {
		return "", fmt.Errorf("no token found")
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return "", err
	}

	if typ, _ := claims["typ"].(string); typ != sessionTokenType {
		return "", fmt.Errorf("not a session token")
	}
	sessionID, _ := claims["sub"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sessionID, nil
}
