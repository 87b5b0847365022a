// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"coursepress/internal/catalog"
)

// Request size limits for the authoring endpoints.
const (
	maxUploadSize   = 20 << 20 // whole multipart body
	maxFormMemory   = 8 << 20  // parts above this spill to temp files
	maxImageSize    = 10 << 20
	maxSectionsLen  = 1_000_000
	maxBlogBodyLen  = 200_000
	maxJSONBodySize = 4 << 10
)

// allowedImageTypes lists the sniffed content types accepted for uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var errImageTooLarge = errors.New("image is too large (max 10 MB)")

// formValue returns the first non-empty value among the given field names.
// The authoring page and older clients use different names for the same
// field.
func formValue(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.FormValue(name)); v != "" {
			return v
		}
	}
	return ""
}

// formImage reads the first present file among the given field names. A
// missing file returns (nil, nil) so required-ness is left to the caller.
func formImage(r *http.Request, names ...string) (*catalog.ImageUpload, error) {
	for _, name := range names {
		file, header, err := r.FormFile(name)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		defer file.Close()
		return readImage(file, header)
	}
	return nil, nil
}

func readImage(file multipart.File, header *multipart.FileHeader) (*catalog.ImageUpload, error) {
	if header.Size > maxImageSize {
		return nil, errImageTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, errImageTooLarge
	}

	// Trust the bytes, not the client's Content-Type header.
	contentType := http.DetectContentType(data)
	return &catalog.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// validateImageType returns a message when the upload is not one of the
// accepted image formats.
func validateImageType(img *catalog.ImageUpload) string {
	if img == nil || allowedImageTypes[img.ContentType] {
		return ""
	}
	return "Unsupported image type. Use JPEG, PNG, GIF or WebP."
}

// validateCourseForm checks size limits the catalog does not know about.
func validateCourseForm(sections string) string {
	if len(sections) > maxSectionsLen {
		return "Content sections are too large (max 1 MB)."
	}
	return ""
}

// validateBlogForm checks size limits on the blog form.
func validateBlogForm(content, metadata string) string {
	if utf8.RuneCountInString(content) > maxBlogBodyLen {
		return "Blog content is too long (max 200,000 characters)."
	}
	if utf8.RuneCountInString(metadata) > 10_000 {
		return "Blog metadata is too long (max 10,000 characters)."
	}
	return ""
}
