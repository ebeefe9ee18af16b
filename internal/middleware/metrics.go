package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kita-portal/kita-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided service.
// Unmatched routes share one label to keep cardinality bounded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, portalArea(path), c.Writer.Status(), time.Since(start))
	}
}

// portalArea groups a route pattern into the section of the portal it serves.
func portalArea(route string) string {
	switch {
	case route == "/" || route == "/kinder-ansicht":
		return "public"
	case hasSegmentPrefix(route, "/admin"):
		return "admin"
	case hasSegmentPrefix(route, "/eltern"):
		return "parent"
	case hasSegmentPrefix(route, "/mitarbeiter"):
		return "employee"
	case hasSegmentPrefix(route, "/api"):
		return "api"
	}
	return "system"
}

func hasSegmentPrefix(route, prefix string) bool {
	return route == prefix || strings.HasPrefix(route, prefix+"/")
}
