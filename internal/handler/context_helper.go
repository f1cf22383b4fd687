package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tapin-io/attendance-api/internal/middleware"
	"github.com/tapin-io/attendance-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// orgIDFromContext extracts the organization scope resolved at login.
// Returns "" for tokens without one.
func orgIDFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.OrganizationID
}

func studentIDFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.StudentID
}
