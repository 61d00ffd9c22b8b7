package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const metricsRealm = "metrics"

// metricsAuthMiddleware enforces Basic Auth on /metrics. An empty password
// leaves the endpoint open.
func metricsAuthMiddleware(username, password string) gin.HandlerFunc {
	if password == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !credentialsMatch(user, pass, username, password) {
			c.Header("WWW-Authenticate", `Basic realm="`+metricsRealm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// credentialsMatch compares both values in constant time, without
// short-circuiting on the username.
func credentialsMatch(user, pass, wantUser, wantPass string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser))
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass))
	return userMatch&passMatch == 1
}
