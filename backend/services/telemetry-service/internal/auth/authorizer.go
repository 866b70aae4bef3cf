package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin may open the settings page.
const RoleAdmin = "admin"

var (
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrForbidden    = errors.New("auth: forbidden")
)

// Identity is the caller as seen by the authorizer.
type Identity struct {
	Username  string
	Role      string
	Anonymous bool
}

// Authorizer answers whether a request comes from an authorized caller.
type Authorizer interface {
	Authorize(r *http.Request) (Identity, error)
}

// Claims is the token payload issued by the login service.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthorizer validates HS256 tokens from the Authorization header or a cookie.
type JWTAuthorizer struct {
	secret     []byte
	cookieName string
}

// NewJWTAuthorizer returns authorizer.
func NewJWTAuthorizer(secret, cookieName string) *JWTAuthorizer {
	return &JWTAuthorizer{secret: []byte(secret), cookieName: cookieName}
}

// Authorize implements Authorizer.
func (a *JWTAuthorizer) Authorize(r *http.Request) (Identity, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" && a.cookieName != "" {
		if c, err := r.Cookie(a.cookieName); err == nil {
			tokenStr = c.Value
		}
	}
	if tokenStr == "" {
		return Identity{}, ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthorized
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	return Identity{Username: username, Role: claims.Role}, nil
}

// IssueToken signs a token for username. The login flow lives elsewhere;
// this is used by operators and tests.
func IssueToken(secret, username, role string, ttl time.Duration) (string, error) {
	if username == "" {
		return "", errors.New("auth: username is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now().UTC()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// OpenAuthorizer lets everyone through as an anonymous caller.
type OpenAuthorizer struct{}

// Authorize implements Authorizer.
func (OpenAuthorizer) Authorize(*http.Request) (Identity, error) {
	return Identity{Anonymous: true}, nil
}

// RequireRole wraps an authorizer so only callers with role pass. Anonymous
// callers are unauthorized even when inner lets them through.
func RequireRole(inner Authorizer, role string) Authorizer {
	return roleAuthorizer{inner: inner, role: role}
}

type roleAuthorizer struct {
	inner Authorizer
	role  string
}

func (a roleAuthorizer) Authorize(r *http.Request) (Identity, error) {
	id, err := a.inner.Authorize(r)
	if err != nil {
		return Identity{}, err
	}
	if id.Anonymous {
		return Identity{}, ErrUnauthorized
	}
	if id.Role != a.role {
		return Identity{}, ErrForbidden
	}
	return id, nil
}
