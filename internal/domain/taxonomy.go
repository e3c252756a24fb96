package domain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Taxonomy validation errors.
var (
	ErrEmptyTaxonomyTitle = errors.New("title cannot be empty")
	ErrInvalidISO3166     = errors.New("iso_3166 must be a 3-digit numeric code")
)

var iso3166Pattern = regexp.MustCompile(`^\d{3}$`)

// Taxonomy is a slugged reference entry (genre, stock status, book format,
// order status, country). Rows are seeded by migrations and read-only over
// the API.
type Taxonomy struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`

	// ISO3166 is set only for countries: the 3-digit numeric country code.
	ISO3166 string `json:"iso_3166,omitempty"`
}

// Slugify lowercases a title and collapses non-alphanumeric runs into single
// hyphens, the conventional URL-safe slug form.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Validate checks the taxonomy entry's invariants.
func (t *Taxonomy) Validate() error {
	if t.Title == "" {
		return ErrEmptyTaxonomyTitle
	}
	if t.ISO3166 != "" && !iso3166Pattern.MatchString(t.ISO3166) {
		return ErrInvalidISO3166
	}
	return nil
}
