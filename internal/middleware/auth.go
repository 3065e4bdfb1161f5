package middleware

import (
	"net/http"
	"strings"

	"pdv/internal/apierror"

	"github.com/gin-gonic/gin"
)

const (
	EmailKey = "email"
)

// TokenValidator is satisfied by service.AuthService.
type TokenValidator interface {
	ValidarToken(token string) (string, error)
}

// JWTAuth validates the Bearer token on every protected route and stores the
// token subject (user email) under EmailKey.
func JWTAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Não autenticado"))
			return
		}

		email, err := v.ValidarToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}

		c.Set(EmailKey, email)
		c.Next()
	}
}

// GetEmail returns the authenticated user's email from the Gin context.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}
