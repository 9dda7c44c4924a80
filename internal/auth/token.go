package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// Principal is the authenticated caller resolved from a session token.
type Principal struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Company string `json:"companyName,omitempty"`
	Role    Role   `json:"role"`
}

// Claims carried by every session token. The subject is the account id.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Company string `json:"companyName,omitempty"`
	Role    Role   `json:"role"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid or expired token")

const issuer = "tourism-api"

// Sessions issues and verifies HS256 session tokens and manages the cookies
// that carry them.
type Sessions struct {
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secureCookie bool) *Sessions {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, secureCookie: secureCookie, now: time.Now}
}

// Issue signs a token for p valid for the configured TTL.
func (s *Sessions) Issue(p Principal) (string, error) {
	if p.ID == 0 || p.Role == "" {
		return "", errors.New("principal needs an id and a role")
	}
	now := s.now()
	claims := &Claims{
		Email:   p.Email,
		Name:    p.Name,
		Company: p.Company,
		Role:    p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(p.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the principal of a valid token.
func (s *Sessions) Verify(tokenStr string) (*Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}
	return &Principal{ID: uint(id), Email: c.Email, Name: c.Name, Company: c.Company, Role: c.Role}, nil
}
