package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-viewer/internal/dto"
	"github.com/noah-isme/course-viewer/internal/models"
	appErrors "github.com/noah-isme/course-viewer/pkg/errors"
	"github.com/noah-isme/course-viewer/pkg/export"
	"github.com/noah-isme/course-viewer/pkg/middleware/requestid"
)

// Course store operations.
const (
	OpAdd            = "add"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpSelect         = "select"
	OpClearSelection = "clear_selection"
)

type courseStore interface {
	Select(id string)
	ClearSelection()
	AddCourse(department, number, location string)
	UpdateCourse(id, department, number, location string)
	DeleteCourse(id string)
	Snapshot() models.CourseSnapshot
	Find(id string) (models.Course, bool)
	Subscribe(ctx context.Context) <-chan models.CourseSnapshot
}

// Exporter renders a tabular dataset into a downloadable document.
type Exporter interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// CourseService fronts the course store for the HTTP API and the terminal screen.
//
// Store mutations never fail. The service serialises its own calls so the
// snapshot version observed before and after a mutation tells whether that
// call, and no other, changed the state.
type CourseService struct {
	store     courseStore
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	exporters map[string]Exporter
	title     string
	now       func() time.Time

	mu sync.Mutex
}

// CourseServiceOption customises the service.
type CourseServiceOption func(*CourseService)

// WithExporter registers an exporter under a format name such as "csv".
func WithExporter(format string, exporter Exporter) CourseServiceOption {
	return func(s *CourseService) {
		s.exporters[strings.ToLower(format)] = exporter
	}
}

// WithExportTitle sets the heading used for rendered exports.
func WithExportTitle(title string) CourseServiceOption {
	return func(s *CourseService) {
		if title != "" {
			s.title = title
		}
	}
}

// NewCourseService creates a new course service.
func NewCourseService(store courseStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, opts ...CourseServiceOption) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CourseService{
		store:     store,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		exporters: make(map[string]Exporter),
		title:     "Courses",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.SetCourseCount(len(store.Snapshot().Courses))
	return s
}

// Snapshot returns the current store state.
func (s *CourseService) Snapshot(ctx context.Context) models.CourseSnapshot {
	return s.store.Snapshot()
}

// Get returns a course by identifier.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, ok := s.store.Find(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return &course, nil
}

// Selected returns the selected course or nil.
func (s *CourseService) Selected(ctx context.Context) *models.Course {
	return s.store.Snapshot().Selected
}

// Add appends a course. Blank fields leave the store untouched and report Changed=false.
func (s *CourseService) Add(ctx context.Context, req dto.CourseInput) (*dto.CourseMutationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	return s.mutate(ctx, OpAdd, "", func() {
		s.store.AddCourse(req.Department, req.Number, req.Location)
	}), nil
}

// Update rewrites the fields of an existing course and re-resolves the selection.
func (s *CourseService) Update(ctx context.Context, id string, req dto.CourseInput) (*dto.CourseMutationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	return s.mutate(ctx, OpUpdate, id, func() {
		s.store.UpdateCourse(id, req.Department, req.Number, req.Location)
	}), nil
}

// Delete removes a course. Unknown ids are ignored.
func (s *CourseService) Delete(ctx context.Context, id string) *dto.CourseMutationResult {
	return s.mutate(ctx, OpDelete, id, func() {
		s.store.DeleteCourse(id)
	})
}

// Select marks a course as selected. Unknown ids are ignored.
func (s *CourseService) Select(ctx context.Context, req dto.SelectCourseRequest) (*dto.CourseMutationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}
	return s.mutate(ctx, OpSelect, req.ID, func() {
		s.store.Select(req.ID)
	}), nil
}

// ClearSelection drops the selection.
func (s *CourseService) ClearSelection(ctx context.Context) *dto.CourseMutationResult {
	return s.mutate(ctx, OpClearSelection, "", s.store.ClearSelection)
}

// Subscribe streams store snapshots until ctx ends.
func (s *CourseService) Subscribe(ctx context.Context) <-chan models.CourseSnapshot {
	return s.store.Subscribe(ctx)
}

// Export renders the course list in the requested format.
func (s *CourseService) Export(ctx context.Context, format string) (*dto.CourseExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	snap := s.store.Snapshot()
	data := export.Dataset{Headers: []string{"Name", "Department", "Number", "Location"}}
	for _, c := range snap.Courses {
		data.AddRow(c.Name(), c.Department, c.Number, c.Location)
	}

	body, err := exporter.Render(data, s.title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render course export")
	}

	s.logger.Info("course export rendered",
		zap.String("format", format),
		zap.Int("courses", len(snap.Courses)),
		zap.Uint64("version", snap.Version),
		zap.String("request_id", requestid.FromContext(ctx)),
	)

	return &dto.CourseExport{
		Filename:    fmt.Sprintf("courses-%s.%s", s.now().UTC().Format("20060102-150405"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func (s *CourseService) mutate(ctx context.Context, op, id string, apply func()) *dto.CourseMutationResult {
	s.mu.Lock()
	before := s.store.Snapshot().Version
	apply()
	snap := s.store.Snapshot()
	s.mu.Unlock()

	changed := snap.Version != before
	s.metrics.ObserveCourseMutation(op, changed, len(snap.Courses))

	fields := []zap.Field{
		zap.String("operation", op),
		zap.Uint64("version", snap.Version),
		zap.Int("courses", len(snap.Courses)),
		zap.String("selected_id", snap.SelectedID()),
	}
	if id != "" {
		fields = append(fields, zap.String("course_id", id))
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if changed {
		s.logger.Info("course store changed", fields...)
	} else {
		s.logger.Debug("course store unchanged", fields...)
	}

	return &dto.CourseMutationResult{Snapshot: snap, Changed: changed}
}
