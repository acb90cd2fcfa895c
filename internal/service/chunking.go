package service

import (
	"regexp"
	"strings"
)

// DocSection is one heading-delimited part of the documentation corpus.
type DocSection struct {
	// Title is the first line of the section, empty when the section
	// starts with a line break.
	Title string
	Body  string
	// Path is the first official menu path found in the section, if any.
	Path string
}

var (
	sectionBoundary     = regexp.MustCompile(`\n####|\n###`)
	officialPathPattern = regexp.MustCompile(`قائمة\s*\[([^\]]+)\]`)
	bulletLinePattern   = regexp.MustCompile(`(?m)^-\s+.+$`)
	stepLinePattern     = regexp.MustCompile(`^\d+\.|^-|^•`)
)

// SplitSections cuts doc on "###" and "####" headings. The text before the
// first heading is kept as its own section.
func SplitSections(doc string) []DocSection {
	if doc == "" {
		return nil
	}
	parts := sectionBoundary.Split(doc, -1)
	out := make([]DocSection, 0, len(parts))
	for _, part := range parts {
		out = append(out, DocSection{
			Title: sectionTitle(part),
			Body:  part,
			Path:  ExtractOfficialPath(part),
		})
	}
	return out
}

func sectionTitle(section string) string {
	if section == "" || section[0] == '\n' {
		return ""
	}
	if i := strings.IndexByte(section, '\n'); i >= 0 {
		return section[:i]
	}
	return section
}

// ExtractOfficialPath returns the first "قائمة [X]" marker in content,
// rewritten in canonical spacing, or "" when there is none.
func ExtractOfficialPath(content string) string {
	m := officialPathPattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return "قائمة [" + m[1] + "]"
}

// substantialLines keeps lines whose trimmed length exceeds minLen characters.
func substantialLines(text string, minLen int) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if runeLen(strings.TrimSpace(l)) > minLen {
			out = append(out, l)
		}
	}
	return out
}

func firstLines(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
