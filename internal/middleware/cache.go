package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ETag formats the entity tag of a store version.
func ETag(version uint64) string {
	return `W/"v` + strconv.FormatUint(version, 10) + `"`
}

// ConditionalGET tags snapshot reads with the current store version and
// answers 304 when the client already holds it.
func ConditionalGET(version func() uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		tag := ETag(version())
		c.Header("ETag", tag)
		if etagMatches(c.GetHeader("If-None-Match"), tag) {
			c.AbortWithStatus(http.StatusNotModified)
			return
		}
		c.Next()
	}
}

func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(tag, "W/") {
			return true
		}
	}
	return false
}
