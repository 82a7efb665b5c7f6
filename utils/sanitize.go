package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc   = bluemonday.UGCPolicy()
	plain = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks, keeping safe user markup.
func Sanitize(input string) string {
	return ugc.Sanitize(input)
}

// SanitizeText strips all markup and surrounding whitespace, for single-line fields.
func SanitizeText(input string) string {
	return strings.TrimSpace(plain.Sanitize(input))
}
