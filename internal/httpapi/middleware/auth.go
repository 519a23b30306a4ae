package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/notechat/internal/auth"
	"github.com/suPer8Hu/notechat/internal/common"
)

const (
	OwnerKey = "owner"
	EmailKey = "email"
)

// AuthRequired verifies the bearer token and stores the owner id (the
// token subject) in the gin context.
func AuthRequired(secret, audience string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			common.Abort(c, http.StatusUnauthorized, 40101, "missing bearer token")
			return
		}

		claims, err := auth.ParseJWT(strings.TrimSpace(token), secret, audience)
		if err != nil {
			common.Abort(c, http.StatusUnauthorized, 40102, "invalid token")
			return
		}

		c.Set(OwnerKey, claims.Subject)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// Owner returns the authenticated owner id, or "" if none.
func Owner(c *gin.Context) string {
	return c.GetString(OwnerKey)
}
