package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"coursepress/internal/slug"
)

// ImageUpload is an uploaded image file held in memory.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validate checks that the upload is a non-empty image.
func (u ImageUpload) Validate() error {
	if len(u.Data) == 0 {
		return errors.New("file is empty")
	}
	if !strings.HasPrefix(u.ContentType, "image/") {
		return fmt.Errorf("unsupported file type %q", u.ContentType)
	}
	return nil
}

// imageExts maps the accepted image types to their stored file extension.
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ext returns the file extension to store the image under. The content
// type is sniffed from the bytes, so it wins over the client's filename;
// the filename only fills in for types outside imageExts.
func (u ImageUpload) ext() string {
	ct, _, _ := mime.ParseMediaType(u.ContentType)
	if ext, ok := imageExts[ct]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if ext := strings.ToLower(filepath.Ext(u.Filename)); ext != "" {
		return ext
	}
	return ""
}

// CourseInput is the authoring form for a new course. Sections is the raw
// JSON array of lessons as submitted.
type CourseInput struct {
	Title       string       `json:"title"`
	Difficulty  string       `json:"difficulty"`
	Description string       `json:"description"`
	Image       *ImageUpload `json:"image"`
	Sections    string       `json:"contentSections"`
}

// Validate checks required fields.
func (in CourseInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Difficulty, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.Image, validation.Required.Error("course image is required")),
		validation.Field(&in.Sections, validation.Required),
	)
}

// SectionInput is one lesson in the contentSections payload.
type SectionInput struct {
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ParseSections decodes the contentSections payload. It must be a JSON
// array; every element needs a title that yields a non-empty slug, or the
// lesson would have no URL of its own. An empty array is allowed.
func ParseSections(raw string) ([]SectionInput, error) {
	var sections []SectionInput
	if err := json.Unmarshal([]byte(raw), &sections); err != nil || sections == nil {
		return nil, fieldError("contentSections", "must be a JSON array of sections")
	}
	for i, s := range sections {
		if strings.TrimSpace(s.Title) == "" {
			return nil, fieldError("contentSections", fmt.Sprintf("section %d: title is required", i+1))
		}
		if slug.Generate(s.Title) == "" {
			return nil, fieldError("contentSections", fmt.Sprintf("section %d: title must contain a letter or digit", i+1))
		}
		if len(s.Metadata) > 0 && string(s.Metadata) == "null" {
			sections[i].Metadata = nil
		}
	}
	return sections, nil
}

// BlogInput is the authoring form for a new blog post.
type BlogInput struct {
	Title    string       `json:"blogTitle"`
	Content  string       `json:"blogContent"`
	Image    *ImageUpload `json:"blogImageFile"`
	Metadata string       `json:"blogMetaData"`
}

// Validate checks required fields. The image is optional.
func (in BlogInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Image),
	)
}
