// Package keyword scores documents against regex patterns constrained to a
// location (title, body, either or both).
package keyword

import (
	"regexp"

	"github.com/kailas-cloud/jobsift/internal/domain"
)

// Document is the read surface a keyword scores.
type Document interface {
	Title() string
	Body() string
}

// Location describes where a keyword must occur.
type Location string

// Location constants.
const (
	Either Location = "either"
	Title  Location = "title"
	Body   Location = "body"
	Both   Location = "both"
)

// Keyword is an immutable compiled pattern plus location constraints.
type Keyword struct {
	pattern       *regexp.Regexp
	source        string
	mustBeInTitle bool
	mustBeInBody  bool
}

// New compiles pattern and creates a Keyword.
func New(pattern string, mustBeInTitle, mustBeInBody bool) (Keyword, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Keyword{}, domain.NewInvalidPattern(pattern, err)
	}
	return Keyword{
		pattern:       re,
		source:        pattern,
		mustBeInTitle: mustBeInTitle,
		mustBeInBody:  mustBeInBody,
	}, nil
}

// Pattern returns the source pattern.
func (k Keyword) Pattern() string { return k.source }

// MustBeInTitle reports whether matches are required in the title.
func (k Keyword) MustBeInTitle() bool { return k.mustBeInTitle }

// MustBeInBody reports whether matches are required in the body.
func (k Keyword) MustBeInBody() bool { return k.mustBeInBody }

// Location returns the location constraint as a single value.
func (k Keyword) Location() Location {
	switch {
	case k.mustBeInTitle && k.mustBeInBody:
		return Both
	case k.mustBeInTitle:
		return Title
	case k.mustBeInBody:
		return Body
	default:
		return Either
	}
}

// Score returns the number of matches of the keyword in doc.
// Either: title+body. Title: title only. Body: body only.
// Both: min(title, body), zero unless both locations match.
func (k Keyword) Score(doc Document) int {
	if k.pattern == nil {
		return 0
	}
	title := k.count(doc.Title())
	body := k.count(doc.Body())

	switch k.Location() {
	case Title:
		return title
	case Body:
		return body
	case Both:
		return min(title, body)
	default:
		return title + body
	}
}

// Matches reports whether doc scores above zero.
func (k Keyword) Matches(doc Document) bool { return k.Score(doc) > 0 }

func (k Keyword) count(s string) int {
	if s == "" {
		return 0
	}
	return len(k.pattern.FindAllStringIndex(s, -1))
}

// Relevance sums the scores of all keywords for doc.
func Relevance(keywords []Keyword, doc Document) int {
	total := 0
	for _, k := range keywords {
		total += k.Score(doc)
	}
	return total
}

// AnyMatch reports whether doc passes the keyword constraint: an empty list
// always passes, otherwise at least one keyword must score.
func AnyMatch(keywords []Keyword, doc Document) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, k := range keywords {
		if k.Score(doc) > 0 {
			return true
		}
	}
	return false
}
