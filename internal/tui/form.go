// Package tui renders the course viewer and editor in a terminal.
//
// The screen is a bubbletea program over a course store. All store access
// happens from the bubbletea event loop; snapshots arrive as messages.
package tui

import "github.com/noah-isme/course-viewer/internal/models"

// DetailsHint is shown in the details pane when nothing is selected.
const DetailsHint = "Select a course to view or edit details."

// Field identifies one of the form inputs.
type Field int

const (
	FieldDepartment Field = iota
	FieldNumber
	FieldLocation
)

// Fields lists the form inputs in tab order.
var Fields = []Field{FieldDepartment, FieldNumber, FieldLocation}

// Label returns the input label shown next to the field.
func (f Field) Label() string {
	switch f {
	case FieldDepartment:
		return "Department (e.g., CS)"
	case FieldNumber:
		return "Course Number (e.g., 4530)"
	case FieldLocation:
		return "Location (e.g., WEB 105)"
	default:
		return ""
	}
}

// Mutator is the subset of the course store the form drives.
type Mutator interface {
	AddCourse(department, number, location string)
	UpdateCourse(id, department, number, location string)
	ClearSelection()
}

// CourseForm holds the add/edit form state. It mirrors the selection of the
// most recent snapshot passed to Sync.
type CourseForm struct {
	Department string
	Number     string
	Location   string

	selected *models.Course
	loadedID string
}

// Sync observes the latest selection. Fields are loaded from the selection
// only when its id changes to a course; deselecting keeps typed text.
func (f *CourseForm) Sync(selected *models.Course) {
	f.selected = selected
	if selected == nil {
		f.loadedID = ""
		return
	}
	if selected.ID == f.loadedID {
		return
	}
	f.loadedID = selected.ID
	f.Department = selected.Department
	f.Number = selected.Number
	f.Location = selected.Location
}

// Editing reports whether submit will update the selected course.
func (f *CourseForm) Editing() bool {
	return f.selected != nil
}

// Selected returns the course the form is editing, if any.
func (f *CourseForm) Selected() *models.Course {
	return f.selected
}

// Title is the form heading.
func (f *CourseForm) Title() string {
	if f.Editing() {
		return "Edit course"
	}
	return "Add a course"
}

// SubmitLabel is the caption of the submit button.
func (f *CourseForm) SubmitLabel() string {
	if f.Editing() {
		return "Update"
	}
	return "Save"
}

// Value returns the text of a field.
func (f *CourseForm) Value(field Field) string {
	switch field {
	case FieldDepartment:
		return f.Department
	case FieldNumber:
		return f.Number
	case FieldLocation:
		return f.Location
	default:
		return ""
	}
}

// SetValue replaces the text of a field.
func (f *CourseForm) SetValue(field Field, value string) {
	switch field {
	case FieldDepartment:
		f.Department = value
	case FieldNumber:
		f.Number = value
	case FieldLocation:
		f.Location = value
	}
}

// Submit adds a course, or updates the selected one and clears the
// selection. The fields are reset either way; blank input is left to the
// store to ignore.
func (f *CourseForm) Submit(store Mutator) {
	if sel := f.selected; sel != nil {
		store.UpdateCourse(sel.ID, f.Department, f.Number, f.Location)
		store.ClearSelection()
		f.Sync(nil)
	} else {
		store.AddCourse(f.Department, f.Number, f.Location)
	}
	f.Reset()
}

// Clear drops the selection and empties the fields.
func (f *CourseForm) Clear(store Mutator) {
	store.ClearSelection()
	f.Sync(nil)
	f.Reset()
}

// Reset empties the fields without touching the store.
func (f *CourseForm) Reset() {
	f.Department = ""
	f.Number = ""
	f.Location = ""
}
