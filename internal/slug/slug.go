// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and collision resolution against a lookup scope.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// whitespace matches runs of whitespace, replaced by a single hyphen.
	// \p{Z} covers the Unicode spaces that ASCII-only \s misses, such as NBSP.
	whitespace = regexp.MustCompile(`[\s\p{Z}]+`)
	// nonWord matches anything that isn't an ASCII word character or hyphen.
	nonWord = regexp.MustCompile(`[^\w-]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// foldMarks decomposes accented characters and drops the combining marks,
// so "é" becomes "e".
func foldMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Generate creates a URL-friendly slug from the given string.
// Example: "Café au Lait!" → "cafe-au-lait"
func Generate(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(foldMarks(s))
	result = strings.TrimSpace(result)
	result = whitespace.ReplaceAllString(result, "-")
	result = nonWord.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}
