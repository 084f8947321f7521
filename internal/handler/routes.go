package handler

import "github.com/gin-gonic/gin"

// Stream route paths relative to the API group; the metrics middleware skips them.
const (
	EventsPath    = "/courses/events"
	WebSocketPath = "/courses/ws"
)

// RegisterCourseRoutes mounts the course, selection and stream endpoints on
// group. reads run in front of the plain snapshot reads only.
func RegisterCourseRoutes(group *gin.RouterGroup, courses *CourseHandler, streams *StreamHandler, reads ...gin.HandlerFunc) {
	read := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, reads...), h)
	}

	group.GET("/courses", read(courses.List)...)
	group.POST("/courses", courses.Create)
	group.GET("/courses/export", courses.Export)
	group.GET("/courses/:id", read(courses.Get)...)
	group.PUT("/courses/:id", courses.Update)
	group.DELETE("/courses/:id", courses.Delete)

	group.GET("/selection", read(courses.Selected)...)
	group.PUT("/selection", courses.Select)
	group.DELETE("/selection", courses.ClearSelection)

	if streams != nil {
		group.GET(EventsPath, streams.Events)
		group.GET(WebSocketPath, streams.WebSocket)
	}
}

// RegisterOpsRoutes mounts health, readiness and metrics endpoints on the engine root.
func RegisterOpsRoutes(r gin.IRoutes, metrics *MetricsHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/ready", metrics.Ready)
	r.GET("/metrics", metrics.Prometheus)
	r.GET("/stats", metrics.Summary)
}
