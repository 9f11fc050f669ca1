// Package auth verifies bearer tokens issued by the identity provider.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"

	userIDKey = "auth.user_id"
	roleKey   = "auth.role"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Parse validates an HS256 token and returns its claims.
func Parse(raw, secret string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if claims.Role == "" {
		claims.Role = RoleClient
	}
	return claims, nil
}

// Issue signs a token for subject. Used by tests and local tooling.
func Issue(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Middleware rejects requests without a valid bearer token and stores the
// caller identity on the gin context.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing bearer token"})
			return
		}

		claims, err := Parse(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid token"})
			return
		}

		SetIdentity(c, claims.Subject, claims.Role)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "admin role required"})
			return
		}
		c.Next()
	}
}

func SetIdentity(c *gin.Context, userID, role string) {
	c.Set(userIDKey, userID)
	c.Set(roleKey, role)
}

func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(roleKey) == RoleAdmin
}
