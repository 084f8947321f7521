package tui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-viewer/internal/repository"
)

func newStore() *repository.CourseStore {
	n := 0
	return repository.NewCourseStore(repository.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}))
}

func TestCourseFormAddMode(t *testing.T) {
	store := newStore()
	var form CourseForm
	form.Sync(store.Snapshot().Selected)

	assert.False(t, form.Editing())
	assert.Equal(t, "Add a course", form.Title())
	assert.Equal(t, "Save", form.SubmitLabel())

	form.SetValue(FieldDepartment, "BIO")
	form.SetValue(FieldNumber, "101")
	form.SetValue(FieldLocation, "LIB 2")
	form.Submit(store)

	courses := store.Courses()
	require.Len(t, courses, 3)
	assert.Equal(t, "BIO 101", courses[2].Name())
	assert.Empty(t, form.Department)
	assert.Empty(t, form.Number)
	assert.Empty(t, form.Location)
}

func TestCourseFormBlankSubmitStillResets(t *testing.T) {
	store := newStore()
	var form CourseForm
	form.SetValue(FieldDepartment, "BIO")
	form.Submit(store)

	assert.Len(t, store.Courses(), 2)
	assert.Empty(t, form.Department)
}

func TestCourseFormLoadsSelection(t *testing.T) {
	store := newStore()
	var form CourseForm
	form.SetValue(FieldDepartment, "typed")

	store.Select("c2")
	form.Sync(store.Snapshot().Selected)

	assert.True(t, form.Editing())
	assert.Equal(t, "Edit course", form.Title())
	assert.Equal(t, "Update", form.SubmitLabel())
	assert.Equal(t, "MATH", form.Department)
	assert.Equal(t, "1210", form.Number)
	assert.Equal(t, "WEB 104", form.Location)
}

func TestCourseFormKeepsEditsForSameSelection(t *testing.T) {
	store := newStore()
	var form CourseForm
	store.Select("c1")
	form.Sync(store.Snapshot().Selected)

	form.SetValue(FieldNumber, "5530")
	form.Sync(store.Snapshot().Selected)
	assert.Equal(t, "5530", form.Number)

	store.ClearSelection()
	form.Sync(store.Snapshot().Selected)
	assert.False(t, form.Editing())
	assert.Equal(t, "5530", form.Number)

	store.Select("c1")
	form.Sync(store.Snapshot().Selected)
	assert.Equal(t, "4530", form.Number)
}

func TestCourseFormUpdateClearsSelection(t *testing.T) {
	store := newStore()
	var form CourseForm
	store.Select("c1")
	form.Sync(store.Snapshot().Selected)

	form.SetValue(FieldLocation, "WEB 110")
	form.Submit(store)

	snap := store.Snapshot()
	assert.Nil(t, snap.Selected)
	assert.Equal(t, "WEB 110", snap.Courses[0].Location)
	assert.False(t, form.Editing())
	assert.Empty(t, form.Location)
}

func TestCourseFormClear(t *testing.T) {
	store := newStore()
	var form CourseForm
	store.Select("c2")
	form.Sync(store.Snapshot().Selected)

	form.Clear(store)

	_, ok := store.Selected()
	assert.False(t, ok)
	assert.False(t, form.Editing())
	assert.Empty(t, form.Department)
	assert.Len(t, store.Courses(), 2)
}

func TestFieldLabels(t *testing.T) {
	assert.Equal(t, "Department (e.g., CS)", FieldDepartment.Label())
	assert.Equal(t, "Course Number (e.g., 4530)", FieldNumber.Label())
	assert.Equal(t, "Location (e.g., WEB 105)", FieldLocation.Label())
}
