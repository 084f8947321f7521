package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-viewer/internal/dto"
	"github.com/noah-isme/course-viewer/internal/models"
	appErrors "github.com/noah-isme/course-viewer/pkg/errors"
	"github.com/noah-isme/course-viewer/pkg/response"
)

type courseService interface {
	Snapshot(ctx context.Context) models.CourseSnapshot
	Get(ctx context.Context, id string) (*models.Course, error)
	Selected(ctx context.Context) *models.Course
	Add(ctx context.Context, req dto.CourseInput) (*dto.CourseMutationResult, error)
	Update(ctx context.Context, id string, req dto.CourseInput) (*dto.CourseMutationResult, error)
	Delete(ctx context.Context, id string) *dto.CourseMutationResult
	Select(ctx context.Context, req dto.SelectCourseRequest) (*dto.CourseMutationResult, error)
	ClearSelection(ctx context.Context) *dto.CourseMutationResult
	Export(ctx context.Context, format string) (*dto.CourseExport, error)
}

// CourseHandler handles course and selection endpoints.
type CourseHandler struct {
	service        courseService
	exportsEnabled bool
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc courseService, exportsEnabled bool) *CourseHandler {
	return &CourseHandler{service: svc, exportsEnabled: exportsEnabled}
}

// List godoc
// @Summary Current course list and selection
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	snap := h.service.Snapshot(c.Request.Context())
	response.JSON(c, http.StatusOK, snap, versionMeta(snap.Version))
}

// Get godoc
// @Summary Get course by id
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Add a course
// @Description Blank fields (after trimming) are ignored; meta.changed reports whether the course was added.
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CourseInput true "Course payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Changed {
		status = http.StatusCreated
	}
	writeResult(c, status, result)
}

// Update godoc
// @Summary Update a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.CourseInput true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeResult(c, http.StatusOK, result)
}

// Delete godoc
// @Summary Delete a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	writeResult(c, http.StatusOK, h.service.Delete(c.Request.Context(), c.Param("id")))
}

// Selected godoc
// @Summary Current selection
// @Tags Selection
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /selection [get]
func (h *CourseHandler) Selected(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Selected(c.Request.Context()))
}

// Select godoc
// @Summary Select a course
// @Tags Selection
// @Accept json
// @Produce json
// @Param payload body dto.SelectCourseRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /selection [put]
func (h *CourseHandler) Select(c *gin.Context) {
	var req dto.SelectCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Select(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeResult(c, http.StatusOK, result)
}

// ClearSelection godoc
// @Summary Clear the selection
// @Tags Selection
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /selection [delete]
func (h *CourseHandler) ClearSelection(c *gin.Context) {
	writeResult(c, http.StatusOK, h.service.ClearSelection(c.Request.Context()))
}

// Export godoc
// @Summary Download the course list
// @Tags Courses
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /courses/export [get]
func (h *CourseHandler) Export(c *gin.Context) {
	if !h.exportsEnabled {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, "course exports are disabled"))
		return
	}
	out, err := h.service.Export(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, out.Filename, out.ContentType, out.Body)
}

func writeResult(c *gin.Context, status int, result *dto.CourseMutationResult) {
	meta := versionMeta(result.Snapshot.Version)
	meta["changed"] = result.Changed
	response.JSON(c, status, result.Snapshot, meta)
}

func versionMeta(version uint64) map[string]interface{} {
	return map[string]interface{}{"version": version}
}
