package extraction

import (
	"regexp"
	"strings"
)

// sectionHeaderPatterns recognize label phrases that act as section headers
// once OCR has stripped the bold formatting that visually marked them.
var sectionHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)customer\s*information`),
	regexp.MustCompile(`(?i)billing\s*details`),
	regexp.MustCompile(`(?i)product\s*information`),
	regexp.MustCompile(`(?i)order\s*summary`),
	regexp.MustCompile(`(?i)payment\s*details`),
	regexp.MustCompile(`(?i)customer\s*details`),
	regexp.MustCompile(`(?i)order\s*information`),
	regexp.MustCompile(`(?i)invoice\s*details`),
	regexp.MustCompile(`(?i)shipping\s*information`),
	regexp.MustCompile(`(?i)contact\s*information`),
}

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// slugifyHeader derives a section key from a header line: lowercase, every
// non-alphanumeric character replaced with an underscore.
func slugifyHeader(line string) string {
	return reNonAlnum.ReplaceAllString(strings.ToLower(line), "_")
}

// Segment partitions a line-normalized document into ordered sections. A line
// containing a header phrase starts a new section keyed by its slug; lines
// before the first header fall into the implicit "header" section, which is
// only created if such lines exist. Header lines are included in their own
// section's content; blank lines are kept out of content but stay inside the
// enclosing section's line range. Line ranges are half-open: each section's
// EndLine is the next section's StartLine, and the last section's EndLine is
// the document's line count, so the ranges cover every line exactly once.
func Segment(normalized string) []Section {
	lines := strings.Split(normalized, "\n")

	var sections []Section
	cur := -1
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		for _, p := range sectionHeaderPatterns {
			if p.MatchString(line) {
				sections = append(sections, Section{Key: slugifyHeader(line), StartLine: i})
				cur = len(sections) - 1
				break
			}
		}
		if cur == -1 {
			sections = append(sections, Section{Key: "header", StartLine: 0})
			cur = 0
		}
		sections[cur].Content = append(sections[cur].Content, line)
	}

	for i := range sections {
		if i+1 < len(sections) {
			sections[i].EndLine = sections[i+1].StartLine
		} else {
			sections[i].EndLine = len(lines)
		}
	}
	return sections
}

// sectionsMatching returns, in document order, the sections whose key
// contains any of the given substrings. Used by field extractors to build
// their preferred-scope lists.
func sectionsMatching(sections []Section, subs ...string) []Section {
	var out []Section
	for _, s := range sections {
		for _, sub := range subs {
			if strings.Contains(s.Key, sub) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// joinedContent is a section's content as one newline-joined scope. Line
// boundaries are kept because several field patterns capture "up to end of
// line" and must not run across lines.
func joinedContent(s Section) string {
	return strings.Join(s.Content, "\n")
}
