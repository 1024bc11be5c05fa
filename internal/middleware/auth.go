package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Missing authorization header", nil)
			c.Abort()
			return
		}

		// 2. Parse Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format", nil)
			c.Abort()
			return
		}

		// 3. Verify token
		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, http.StatusUnauthorized, "Token expired", err)
			} else {
				common.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", err)
			}
			c.Abort()
			return
		}

		// 4. Store the actor in context
		SetActor(c, &domain.Actor{
			EmployeeID: claims.EmployeeID,
			Name:       claims.Name,
			Role:       claims.Role,
		})
		c.Next()
	}
}

// SetActor stores the request actor
func SetActor(c *gin.Context, actor *domain.Actor) {
	c.Set(actorKey, actor)
}

// GetActor extracts the request actor (nil when unauthenticated)
func GetActor(c *gin.Context) *domain.Actor {
	v, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	if actor, ok := v.(*domain.Actor); ok {
		return actor
	}
	return nil
}

// GetEmployeeID extracts the actor's employee id
func GetEmployeeID(c *gin.Context) string {
	if actor := GetActor(c); actor != nil {
		return actor.EmployeeID
	}
	return ""
}
