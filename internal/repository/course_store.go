package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/course-viewer/internal/models"
)

// DefaultSeed returns the courses every new store starts with.
func DefaultSeed() []models.Course {
	return []models.Course{
		{Department: "CS", Number: "4530", Location: "WEB 105"},
		{Department: "MATH", Number: "1210", Location: "WEB 104"},
	}
}

// CourseStoreOption customises store construction.
type CourseStoreOption func(*CourseStore)

// WithSeed replaces the default seed. Entries without an id receive a generated one.
func WithSeed(courses ...models.Course) CourseStoreOption {
	return func(s *CourseStore) {
		s.seed = courses
	}
}

// WithIDGenerator overrides the id source, mainly for deterministic tests.
func WithIDGenerator(fn func() string) CourseStoreOption {
	return func(s *CourseStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// CourseStore owns the ordered course collection and the current selection.
//
// Mutations are serialised behind a single mutex. Invalid input is dropped
// silently; callers that need to know whether anything happened compare the
// snapshot version before and after the call. Every state change publishes
// exactly one snapshot to subscribers while the lock is still held, so
// observers see changes in mutation order and never a half-applied edit.
type CourseStore struct {
	mu       sync.Mutex
	courses  []models.Course
	selected *models.Course
	version  uint64

	subscribers map[chan models.CourseSnapshot]struct{}

	seed  []models.Course
	newID func() string
}

// NewCourseStore builds a store populated with the seed courses.
func NewCourseStore(opts ...CourseStoreOption) *CourseStore {
	s := &CourseStore{
		subscribers: make(map[chan models.CourseSnapshot]struct{}),
		seed:        DefaultSeed(),
		newID:       func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}

	courses := make([]models.Course, 0, len(s.seed))
	for _, c := range s.seed {
		dept, num, loc, ok := normalize(c.Department, c.Number, c.Location)
		if !ok {
			continue
		}
		id := c.ID
		if id == "" {
			id = s.newID()
		}
		courses = append(courses, models.Course{ID: id, Department: dept, Number: num, Location: loc})
	}
	s.courses = courses
	s.seed = nil
	return s
}

// Select marks the course with the given id as selected. Unknown ids are ignored.
func (s *CourseStore) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.findLocked(id)
	if !ok {
		return
	}
	if s.selected != nil && *s.selected == course {
		return
	}
	s.selected = &course
	s.commitLocked()
}

// ClearSelection drops the current selection.
func (s *CourseStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return
	}
	s.selected = nil
	s.commitLocked()
}

// AddCourse appends a new course. Blank fields after trimming make the call a no-op.
func (s *CourseStore) AddCourse(department, number, location string) {
	dept, num, loc, ok := normalize(department, number, location)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Course, len(s.courses), len(s.courses)+1)
	copy(next, s.courses)
	next = append(next, models.Course{ID: s.newID(), Department: dept, Number: num, Location: loc})
	s.courses = next
	s.commitLocked()
}

// UpdateCourse replaces the fields of the course with the given id in place.
// Blank fields after trimming make the call a no-op. On success the selection
// is re-resolved by id against the updated collection.
func (s *CourseStore) UpdateCourse(id, department, number, location string) {
	dept, num, loc, ok := normalize(department, number, location)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	next := make([]models.Course, len(s.courses))
	for i, c := range s.courses {
		if c.ID == id {
			updated := c.WithFields(dept, num, loc)
			changed = changed || updated != c
			c = updated
		}
		next[i] = c
	}
	if changed {
		s.courses = next
	}

	var selected *models.Course
	if c, found := s.findLocked(id); found {
		selected = &c
	}
	selectionChanged := !sameCourse(s.selected, selected)
	s.selected = selected

	if changed || selectionChanged {
		s.commitLocked()
	}
}

// DeleteCourse removes the course with the given id, clearing the selection if it pointed there.
func (s *CourseStore) DeleteCourse(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	next := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		if c.ID == id {
			changed = true
			continue
		}
		next = append(next, c)
	}
	if changed {
		s.courses = next
	}
	if s.selected != nil && s.selected.ID == id {
		s.selected = nil
		changed = true
	}
	if changed {
		s.commitLocked()
	}
}

// Snapshot returns the current state. The course slice is shared and must not be modified.
func (s *CourseStore) Snapshot() models.CourseSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Courses returns a copy of the ordered collection.
func (s *CourseStore) Courses() []models.Course {
	courses := s.Snapshot().Courses
	out := make([]models.Course, len(courses))
	copy(out, courses)
	return out
}

// Selected returns the selected course, if any.
func (s *CourseStore) Selected() (models.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return models.Course{}, false
	}
	return *s.selected, true
}

// Find looks a course up by id.
func (s *CourseStore) Find(id string) (models.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

// Version reports how many state changes the store has seen.
func (s *CourseStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe returns a channel that yields the current snapshot immediately
// and every later one. Delivery is conflating: a reader that falls behind
// receives only the latest snapshot. The channel closes once ctx is done.
func (s *CourseStore) Subscribe(ctx context.Context) <-chan models.CourseSnapshot {
	ch := make(chan models.CourseSnapshot, 1)

	s.mu.Lock()
	ch <- s.snapshotLocked()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subscribers, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Subscribers reports the number of live subscriptions.
func (s *CourseStore) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *CourseStore) findLocked(id string) (models.Course, bool) {
	for _, c := range s.courses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

// commitLocked advances the version and fans the new snapshot out. Callers hold s.mu.
func (s *CourseStore) commitLocked() {
	s.version++
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Buffer holds a stale snapshot; replace it.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *CourseStore) snapshotLocked() models.CourseSnapshot {
	snap := models.CourseSnapshot{
		Version: s.version,
		Courses: s.courses,
	}
	if s.selected != nil {
		sel := *s.selected
		snap.Selected = &sel
	}
	return snap
}

func normalize(department, number, location string) (string, string, string, bool) {
	dept := strings.TrimSpace(department)
	num := strings.TrimSpace(number)
	loc := strings.TrimSpace(location)
	if dept == "" || num == "" || loc == "" {
		return "", "", "", false
	}
	return dept, num, loc, true
}

func sameCourse(a, b *models.Course) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
