package service

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	slugInvalid   = regexp.MustCompile(`[^a-z0-9_]`)
)

// Slugify lower-cases s, turns whitespace runs into "_" and drops every
// character outside [a-z0-9_].
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRun.ReplaceAllString(s, "_")
	return slugInvalid.ReplaceAllString(s, "")
}

// ChildSlug prefixes a child category slug with its parent's slug.
func ChildSlug(parentSlug, name string) string {
	return parentSlug + "-" + Slugify(name)
}
