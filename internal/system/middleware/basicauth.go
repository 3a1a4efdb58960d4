package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/wso2/psd2-consent-mgt/internal/system/error/apierror"
)

// BasicAuthMiddleware guards routes with HTTP basic auth. Stored passwords may be
// bcrypt hashes or plain values.
func BasicAuthMiddleware(accounts map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || !passwordMatches(accounts[username], password) {
			c.Header("WWW-Authenticate", `Basic realm="consent-mgt"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.ErrorResponse{
				Code:        "unauthorized",
				Description: "Invalid or missing credentials",
			})
			return
		}
		c.Set(gin.AuthUserKey, username)
		c.Next()
	}
}

func passwordMatches(stored, given string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
