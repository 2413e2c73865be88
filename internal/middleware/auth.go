package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserFinder loads the account behind a token subject.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// RevokedTokens reports whether a token id was logged out.
type RevokedTokens interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	users   UserFinder
	secret  string
	revoked RevokedTokens
}

// NewAuthMiddleware builds the auth middleware. revoked may be nil.
func NewAuthMiddleware(users UserFinder, secret string, revoked RevokedTokens) *AuthMiddleware {
	return &AuthMiddleware{
		users:   users,
		secret:  secret,
		revoked: revoked,
	}
}

// RequireAuth resolves the bearer token to a user and stores it as the
// request's actor.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			response.Message(c, http.StatusUnauthorized, "unauthenticated")
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})
		if err != nil || !token.Valid {
			response.Message(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			response.Message(c, http.StatusUnauthorized, "invalid token claims")
			c.Abort()
			return
		}

		if m.revoked != nil && claims.ID != "" {
			revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// redis outage: the signature and expiry still hold
				response.Logger(c).WithError(err).Warn("token deny-list check failed")
			}
			if revoked {
				response.Message(c, http.StatusUnauthorized, "token has been revoked")
				c.Abort()
				return
			}
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			response.Message(c, http.StatusUnauthorized, "invalid token subject")
			c.Abort()
			return
		}

		actor, err := m.users.FindByID(c.Request.Context(), uint(userID))
		if err != nil {
			response.Message(c, http.StatusUnauthorized, "unauthenticated")
			c.Abort()
			return
		}

		c.Set(response.UserIDKey, actor.ID)
		c.Set(response.ActorKey, actor)
		c.Set(response.TokenIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(response.TokenExpiryKey, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := response.GetActor(c)
		if err != nil {
			response.Message(c, http.StatusUnauthorized, "unauthenticated")
			c.Abort()
			return
		}

		if !actor.IsAdmin {
			response.Message(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
