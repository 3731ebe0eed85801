package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"movie-api/internal/domain"
)

// Scheme is the Authorization header prefix expected on protected requests.
const Scheme = "Bearer"

// ErrUnauthorized is the single error returned for any token problem: missing
// or malformed header, bad signature, expired token. Callers must not be able
// to tell these apart.
var ErrUnauthorized = errors.New("unauthorized")

// Principal is the authenticated identity carried by a verified token. It
// lives only for the duration of a request.
type Principal struct {
	UserID   int64
	Username string
}

// Manager issues and verifies HS256 access tokens with a process-wide secret.
// A zero ttl disables the expiration claim.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the user's immutable id and username.
func (m *Manager) Issue(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"iat":      now.Unix(),
	}
	if m.ttl != 0 {
		claims["exp"] = now.Add(m.ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a raw token string and returns the principal it encodes.
func (m *Manager) Verify(raw string) (Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || username == "" {
		return Principal{}, ErrUnauthorized
	}

	return Principal{UserID: id, Username: username}, nil
}

// VerifyHeader validates a raw Authorization header of the form
// "Bearer <token>".
func (m *Manager) VerifyHeader(header string) (Principal, error) {
	if !strings.HasPrefix(header, Scheme+" ") {
		return Principal{}, ErrUnauthorized
	}
	return m.Verify(strings.TrimPrefix(header, Scheme+" "))
}
