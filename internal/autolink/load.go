package autolink

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatcherSpec is the file form of a custom matcher.
//
//	include_defaults: true
//	matchers:
//	  - name: tickets
//	    pattern: '\bTKT-[0-9]+\b'
//	    url: 'https://tracker.example.com/browse/{text}'
//	    target: _blank
type MatcherSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	URL     string `yaml:"url"` // "{text}" is replaced by the match; otherwise used as a prefix
	Rel     string `yaml:"rel"`
	Target  string `yaml:"target"`
}

// MatcherFile lists custom matchers in priority order.
type MatcherFile struct {
	IncludeDefaults bool          `yaml:"include_defaults"`
	Matchers        []MatcherSpec `yaml:"matchers"`
}

// LoadMatchers parses a YAML matcher file. Custom matchers come first; the
// defaults follow when include_defaults is set.
func LoadMatchers(r io.Reader) ([]Matcher, error) {
	var f MatcherFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode matchers: %w", err)
	}

	var out []Matcher
	for i, spec := range f.Matchers {
		m, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("matcher %d (%s): %w", i, spec.Name, err)
		}
		out = append(out, m)
	}
	if f.IncludeDefaults {
		out = append(out, DefaultMatchers()...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("matcher file defines no matchers")
	}
	return out, nil
}

// LoadMatchersFile reads LoadMatchers input from path.
func LoadMatchersFile(path string) ([]Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matchers: %w", err)
	}
	defer f.Close()
	return LoadMatchers(f)
}

// Build compiles the spec into a Matcher.
func (s MatcherSpec) Build() (Matcher, error) {
	if s.Pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	re, err := regexp.Compile(s.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	tmpl := s.URL
	var transform func(string) string
	switch {
	case tmpl == "":
	case strings.Contains(tmpl, "{text}"):
		transform = func(text string) string { return strings.ReplaceAll(tmpl, "{text}", text) }
	default:
		transform = func(text string) string { return tmpl + text }
	}
	m := NewLinkMatcher(re, transform)
	if s.Rel != "" || s.Target != "" {
		m = WithAttributes(m, Attributes{Rel: s.Rel, Target: s.Target})
	}
	return m, nil
}
