package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-viewer/internal/models"
)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("course-%d", n)
	}
}

func newTestStore() *CourseStore {
	return NewCourseStore(WithIDGenerator(sequentialIDs()))
}

func TestCourseStoreSeed(t *testing.T) {
	store := newTestStore()

	courses := store.Courses()
	require.Len(t, courses, 2)
	assert.Equal(t, "CS 4530", courses[0].Name())
	assert.Equal(t, "WEB 105", courses[0].Location)
	assert.Equal(t, "MATH 1210", courses[1].Name())
	assert.Equal(t, "WEB 104", courses[1].Location)
	assert.NotEqual(t, courses[0].ID, courses[1].ID)

	_, selected := store.Selected()
	assert.False(t, selected)
	assert.Zero(t, store.Version())
}

func TestCourseStoreSeedGeneratesUUIDs(t *testing.T) {
	store := NewCourseStore()
	courses := store.Courses()
	require.Len(t, courses, 2)
	assert.Len(t, courses[0].ID, 36)
	assert.NotEqual(t, courses[0].ID, courses[1].ID)
}

func TestCourseStoreAddRejectsBlankFields(t *testing.T) {
	cases := []struct {
		name                string
		dept, num, location string
	}{
		{name: "blank department", dept: "   ", num: "101", location: "X"},
		{name: "blank number", dept: "BIO", num: "", location: "X"},
		{name: "blank location", dept: "BIO", num: "101", location: "\t"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore()
			store.AddCourse(tc.dept, tc.num, tc.location)
			assert.Len(t, store.Courses(), 2)
			assert.Zero(t, store.Version())
		})
	}
}

func TestCourseStoreAddTrimsFields(t *testing.T) {
	store := newTestStore()
	store.AddCourse("  CS ", " 4530", "WEB 105")

	courses := store.Courses()
	require.Len(t, courses, 3)
	added := courses[2]
	assert.Equal(t, "CS", added.Department)
	assert.Equal(t, "4530", added.Number)
	assert.Equal(t, "WEB 105", added.Location)
	assert.Equal(t, "CS 4530", added.Name())
	assert.NotEmpty(t, added.ID)
}

func TestCourseStoreAddScenario(t *testing.T) {
	store := newTestStore()

	store.AddCourse("  ", "101", "X")
	assert.Len(t, store.Courses(), 2)

	store.AddCourse("BIO", "101", "LIB 2")
	courses := store.Courses()
	require.Len(t, courses, 3)
	assert.Equal(t, "BIO 101", courses[2].Name())
}

func TestCourseStoreAddKeepsSelection(t *testing.T) {
	store := newTestStore()
	first := store.Courses()[0]
	store.Select(first.ID)

	store.AddCourse("BIO", "101", "LIB 2")

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, first, selected)
}

func TestCourseStoreSelectRoundTrip(t *testing.T) {
	store := newTestStore()
	course := store.Courses()[1]

	store.Select(course.ID)

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, course, selected)
}

func TestCourseStoreSelectUnknownIsNoop(t *testing.T) {
	store := newTestStore()
	first := store.Courses()[0]
	store.Select(first.ID)
	version := store.Version()

	store.Select("missing")

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, first.ID, selected.ID)
	assert.Equal(t, version, store.Version())
}

func TestCourseStoreClearSelection(t *testing.T) {
	store := newTestStore()
	store.ClearSelection()
	assert.Zero(t, store.Version())

	store.Select(store.Courses()[0].ID)
	store.ClearSelection()

	_, ok := store.Selected()
	assert.False(t, ok)
	assert.Equal(t, uint64(2), store.Version())
}

func TestCourseStoreUpdateInPlace(t *testing.T) {
	store := newTestStore()
	target := store.Courses()[0]

	store.UpdateCourse(target.ID, " PHYS ", "2210 ", " WEB 110")

	courses := store.Courses()
	require.Len(t, courses, 2)
	assert.Equal(t, target.ID, courses[0].ID)
	assert.Equal(t, "PHYS", courses[0].Department)
	assert.Equal(t, "2210", courses[0].Number)
	assert.Equal(t, "WEB 110", courses[0].Location)
	assert.Equal(t, "MATH 1210", courses[1].Name())
}

func TestCourseStoreUpdateRefreshesSelection(t *testing.T) {
	store := newTestStore()
	target := store.Courses()[1]
	store.Select(target.ID)

	store.UpdateCourse(target.ID, "MATH", "2270", "JWB 335")

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, target.ID, selected.ID)
	assert.Equal(t, "2270", selected.Number)
	assert.Equal(t, "JWB 335", selected.Location)
}

func TestCourseStoreUpdateSelectsUpdatedCourse(t *testing.T) {
	store := newTestStore()
	target := store.Courses()[0]

	store.UpdateCourse(target.ID, "CS", "5530", "WEB 105")

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, target.ID, selected.ID)
	assert.Equal(t, "5530", selected.Number)
}

func TestCourseStoreUpdateBlankIsNoop(t *testing.T) {
	store := newTestStore()
	target := store.Courses()[0]
	store.Select(target.ID)
	version := store.Version()

	store.UpdateCourse(target.ID, "CS", "   ", "WEB 105")

	assert.Equal(t, target, store.Courses()[0])
	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, target, selected)
	assert.Equal(t, version, store.Version())
}

func TestCourseStoreUpdateUnknownID(t *testing.T) {
	store := newTestStore()
	before := store.Courses()

	require.NotPanics(t, func() {
		store.UpdateCourse("missing", "BIO", "101", "LIB 2")
	})

	assert.Equal(t, before, store.Courses())
	_, ok := store.Selected()
	assert.False(t, ok)
}

func TestCourseStoreUpdateUnknownIDClearsSelection(t *testing.T) {
	store := newTestStore()
	store.Select(store.Courses()[0].ID)

	store.UpdateCourse("missing", "BIO", "101", "LIB 2")

	_, ok := store.Selected()
	assert.False(t, ok)
	assert.Len(t, store.Courses(), 2)
}

func TestCourseStoreDeleteSelectedClearsSelection(t *testing.T) {
	store := newTestStore()
	target := store.Courses()[0]
	store.Select(target.ID)

	store.DeleteCourse(target.ID)

	_, ok := store.Selected()
	assert.False(t, ok)
	courses := store.Courses()
	require.Len(t, courses, 1)
	assert.Equal(t, "MATH 1210", courses[0].Name())
}

func TestCourseStoreDeleteOtherKeepsSelection(t *testing.T) {
	store := newTestStore()
	courses := store.Courses()
	store.Select(courses[0].ID)

	store.DeleteCourse(courses[1].ID)

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, courses[0], selected)
	assert.Len(t, store.Courses(), 1)
}

func TestCourseStoreDeleteUnknownIsNoop(t *testing.T) {
	store := newTestStore()
	store.DeleteCourse("missing")
	assert.Len(t, store.Courses(), 2)
	assert.Zero(t, store.Version())
}

func TestCourseStoreCoursesReturnsCopy(t *testing.T) {
	store := newTestStore()
	courses := store.Courses()
	courses[0].Department = "HACK"

	assert.Equal(t, "CS", store.Courses()[0].Department)
}

func TestCourseStoreWithSeed(t *testing.T) {
	store := NewCourseStore(
		WithIDGenerator(sequentialIDs()),
		WithSeed(
			models.Course{ID: "fixed", Department: " ART ", Number: "1010", Location: "FA 100"},
			models.Course{Department: "", Number: "1", Location: "X"},
			models.Course{Department: "HIST", Number: "2100", Location: "CTIHB 101"},
		),
	)

	courses := store.Courses()
	require.Len(t, courses, 2)
	assert.Equal(t, "fixed", courses[0].ID)
	assert.Equal(t, "ART", courses[0].Department)
	assert.Equal(t, "course-1", courses[1].ID)
}

func receive(t *testing.T, ch <-chan models.CourseSnapshot) models.CourseSnapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return models.CourseSnapshot{}
}

func TestCourseStoreSubscribeReceivesCurrentState(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snap := receive(t, store.Subscribe(ctx))
	assert.Zero(t, snap.Version)
	assert.Len(t, snap.Courses, 2)
	assert.Nil(t, snap.Selected)
}

func TestCourseStoreSubscribeObservesUpdateAtomically(t *testing.T) {
	store := newTestStore()
	target := store.Courses()[0]
	store.Select(target.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := store.Subscribe(ctx)
	receive(t, ch)

	store.UpdateCourse(target.ID, "CS", "6530", "MEB 101")

	snap := receive(t, ch)
	updated, ok := snap.Find(target.ID)
	require.True(t, ok)
	require.NotNil(t, snap.Selected)
	assert.Equal(t, updated, *snap.Selected)
	assert.Equal(t, "6530", updated.Number)
}

func TestCourseStoreSubscribeConflates(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := store.Subscribe(ctx)

	store.AddCourse("BIO", "101", "LIB 2")
	store.AddCourse("CHEM", "1210", "HEB 2008")
	store.AddCourse("PHYS", "2210", "JFB 101")

	snap := receive(t, ch)
	assert.Equal(t, uint64(3), snap.Version)
	assert.Len(t, snap.Courses, 5)
}

func TestCourseStoreSubscribeSkipsRejectedMutations(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := store.Subscribe(ctx)
	receive(t, ch)

	store.AddCourse("", "", "")
	store.DeleteCourse("missing")

	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot %d", snap.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCourseStoreSubscribeClosesOnCancel(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	ch := store.Subscribe(ctx)
	receive(t, ch)

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, store.Subscribers())
}

func TestCourseStoreConcurrentMutations(t *testing.T) {
	store := newTestStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.AddCourse("DEPT", fmt.Sprintf("%d", i), "ROOM")
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Courses(), 52)
	assert.Equal(t, uint64(50), store.Version())
}
