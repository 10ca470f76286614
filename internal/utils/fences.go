package utils

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("```[A-Za-z0-9_-]*[ \t]*\n?")

// StripFences removes markdown code fences the model wraps around JSON.
func StripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// ExtractJSONObject strips fences and any prose around the outermost
// JSON object. Text without braces is returned fence-stripped.
func ExtractJSONObject(text string) string {
	s := StripFences(text)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
