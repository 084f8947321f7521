package models

import (
	"encoding/json"
	"strings"
)

// Course is a single course offering. Values are immutable once admitted to the store.
type Course struct {
	ID         string `json:"id"`
	Department string `json:"department"`
	Number     string `json:"number"`
	Location   string `json:"location"`
}

// Name is the display label, e.g. "CS 4530".
func (c Course) Name() string {
	return strings.TrimSpace(c.Department) + " " + strings.TrimSpace(c.Number)
}

// WithFields returns a copy carrying new field values under the same id.
func (c Course) WithFields(department, number, location string) Course {
	c.Department = department
	c.Number = number
	c.Location = location
	return c
}

// MarshalJSON adds the derived name to the wire representation.
func (c Course) MarshalJSON() ([]byte, error) {
	type course Course
	return json.Marshal(struct {
		course
		Name string `json:"name"`
	}{course: course(c), Name: c.Name()})
}

// CourseSnapshot is an immutable view of the store at a given version.
type CourseSnapshot struct {
	Version  uint64   `json:"version"`
	Courses  []Course `json:"courses"`
	Selected *Course  `json:"selected"`
}

// Find returns the course with the given id from the snapshot.
func (s CourseSnapshot) Find(id string) (Course, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

// SelectedID returns the id of the selected course or an empty string.
func (s CourseSnapshot) SelectedID() string {
	if s.Selected == nil {
		return ""
	}
	return s.Selected.ID
}
