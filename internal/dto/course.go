package dto

import "github.com/noah-isme/course-viewer/internal/models"

// CourseInput carries the editable course fields. Blank values are accepted
// here and ignored by the store.
type CourseInput struct {
	Department string `json:"department" validate:"max=64"`
	Number     string `json:"number" validate:"max=32"`
	Location   string `json:"location" validate:"max=64"`
}

// SelectCourseRequest picks the course shown in the details pane.
type SelectCourseRequest struct {
	ID string `json:"id" validate:"required,max=64"`
}

// CourseMutationResult reports the store state after a mutation and whether
// the call changed it.
type CourseMutationResult struct {
	Snapshot models.CourseSnapshot `json:"snapshot"`
	Changed  bool                  `json:"changed"`
}

// CourseExport is a rendered course listing ready for download.
type CourseExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// MetricsSummary is a lightweight view over the Prometheus collectors.
type MetricsSummary struct {
	RequestsTotal            uint64  `json:"requests_total"`
	AverageRequestDurationMs float64 `json:"average_request_duration_ms"`
	MutationsApplied         uint64  `json:"mutations_applied"`
	MutationsIgnored         uint64  `json:"mutations_ignored"`
	Courses                  int     `json:"courses"`
	Subscribers              int     `json:"subscribers"`
	Goroutines               int     `json:"goroutines"`
}
