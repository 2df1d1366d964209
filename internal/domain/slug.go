package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	SlugMinLength = 3
	SlugMaxLength = 50
)

var (
	slugCharset   = regexp.MustCompile(`^[a-z0-9-]+$`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-+`)
)

// SlugValidation is the outcome of ValidateSlugFormat.
type SlugValidation struct {
	Valid   bool
	Message string
}

// ValidateSlugFormat checks slug against the URL slug rules. It is pure and
// runs before any network call.
func ValidateSlugFormat(slug string) SlugValidation {
	switch {
	case slug == "":
		return SlugValidation{Message: "slug is required"}
	case len(slug) < SlugMinLength || len(slug) > SlugMaxLength:
		return SlugValidation{Message: "slug must be between 3 and 50 characters"}
	case !slugCharset.MatchString(slug):
		return SlugValidation{Message: "slug may only contain lowercase letters, numbers and hyphens"}
	case strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-"):
		return SlugValidation{Message: "slug cannot start or end with a hyphen"}
	case strings.Contains(slug, "--"):
		return SlugValidation{Message: "slug cannot contain consecutive hyphens"}
	}
	return SlugValidation{Valid: true}
}

// CheckSlug returns a *SlugFormatError when slug is malformed.
func CheckSlug(slug string) error {
	if v := ValidateSlugFormat(slug); !v.Valid {
		return &SlugFormatError{Slug: slug, Reason: v.Message}
	}
	return nil
}

// GenerateSlugFromName suggests a slug for a barbershop name:
// "Barbearia do João!!" becomes "barbearia-do-joao".
func GenerateSlugFromName(name string) string {
	s := stripMarks(name)
	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > SlugMaxLength {
		s = strings.TrimRight(s[:SlugMaxLength], "-")
	}
	return s
}

// stripMarks decomposes s and drops combining marks, so "ã" becomes "a".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
