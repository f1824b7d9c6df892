package autolink

import (
	"regexp"
	"strings"
)

// Attributes are optional link attributes a matcher may attach.
type Attributes struct {
	Rel    string
	Target string
}

// MatchResult describes one candidate link inside a string. Index and
// Length are byte offsets.
type MatchResult struct {
	Index      int
	Length     int
	Text       string
	URL        string
	Attributes *Attributes
}

// Matcher finds the first candidate link in text, or returns nil.
type Matcher func(text string) *MatchResult

var (
	urlPattern = regexp.MustCompile(
		`((https?://(www\.)?)|(www\.))[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&//=]*)`)

	emailPattern = regexp.MustCompile(
		`(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))`)
)

// URLMatcher links http(s) and www. addresses, adding https:// when the
// match has no scheme.
func URLMatcher() Matcher {
	return NewLinkMatcher(urlPattern, func(text string) string {
		if strings.HasPrefix(text, "http") {
			return text
		}
		return "https://" + text
	})
}

// EmailMatcher links e-mail addresses as mailto: URLs.
func EmailMatcher() Matcher {
	return NewLinkMatcher(emailPattern, func(text string) string {
		return "mailto:" + text
	})
}

// DefaultMatchers returns a fresh URL, e-mail matcher list.
func DefaultMatchers() []Matcher {
	return []Matcher{URLMatcher(), EmailMatcher()}
}

// NewLinkMatcher builds a matcher from a regular expression. The URL is the
// matched text passed through urlTransformer; a nil transformer keeps the
// text as is.
func NewLinkMatcher(re *regexp.Regexp, urlTransformer func(text string) string) Matcher {
	if urlTransformer == nil {
		urlTransformer = func(text string) string { return text }
	}
	return func(text string) *MatchResult {
		loc := re.FindStringIndex(text)
		if loc == nil {
			return nil
		}
		matched := text[loc[0]:loc[1]]
		return &MatchResult{
			Index:  loc[0],
			Length: loc[1] - loc[0],
			Text:   matched,
			URL:    urlTransformer(matched),
		}
	}
}

// WithAttributes decorates m so that its results carry attrs.
func WithAttributes(m Matcher, attrs Attributes) Matcher {
	return func(text string) *MatchResult {
		res := m(text)
		if res == nil {
			return nil
		}
		a := attrs
		res.Attributes = &a
		return res
	}
}

// FindFirstMatch returns the result of the first matcher that finds
// anything. Order is the only priority.
func FindFirstMatch(text string, matchers []Matcher) *MatchResult {
	for _, m := range matchers {
		if res := m(text); res != nil {
			return res
		}
	}
	return nil
}
