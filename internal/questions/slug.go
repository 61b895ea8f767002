package questions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const maxSlugLength = 100

// reservedSlugs collide with fixed routes under /questions.
var reservedSlugs = map[string]struct{}{"search": {}}

// DefaultSlugPattern accepts letters, digits, underscores and hyphens.
const DefaultSlugPattern = `^[a-zA-Z0-9_-]+$`

// slugFor derives a URL slug from title, truncated to the column width.
func slugFor(title string) string {
	s := slug.Make(title)
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	if s == "" {
		s = "question"
	}
	if _, ok := reservedSlugs[s]; ok {
		s += "-question"
	}
	return s
}

const (
	shortSuffixLen = 6
	longSuffixLen  = 16
)

// withSuffix appends n random lowercase letters to base, n at most 16.
// Letters keep the result inside patterns that reject digits.
func withSuffix(base string, n int) string {
	id := uuid.New()
	suffix := make([]byte, n)
	for i := range suffix {
		suffix[i] = 'a' + id[i%len(id)]%26
	}
	if len(base)+1+n > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength-1-n], "-")
	}
	return fmt.Sprintf("%s-%s", base, suffix)
}

func compileSlugPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = DefaultSlugPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("slug pattern: %w", err)
	}
	return re, nil
}
