package catalog

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrCourseNotFound means no course has the requested slug.
	ErrCourseNotFound = errors.New("course not found")
	// ErrLessonNotFound means the course exists but has no lesson with the
	// requested slug.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrBlogNotFound means no blog post has the requested slug.
	ErrBlogNotFound = errors.New("blog post not found")
	// ErrConflict means the slug is already taken, either at the explicit
	// check or by the storage unique constraint.
	ErrConflict = errors.New("slug already exists")
	// ErrCourseIncomplete means the course row was inserted but its lessons
	// were not. The course has been deleted again unless that delete failed
	// too; either way pages rendered in between may show it.
	ErrCourseIncomplete = errors.New("course lessons not saved")
	// ErrUpload means the image could not be written to object storage.
	ErrUpload = errors.New("image upload failed")
)

// ValidationError reports malformed or missing input, keyed by field name.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k].Error())
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// FieldMessages flattens the per-field errors for JSON responses.
func (e *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for k, err := range e.Fields {
		out[k] = err.Error()
	}
	return out
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: validation.Errors{field: errors.New(msg)}}
}

// wrapValidation converts ozzo validation.Errors into a *ValidationError and
// passes anything else through.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return &ValidationError{Fields: errs}
	}
	return err
}
