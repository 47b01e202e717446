package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Each field has an ordered pattern table compiled once at init. Order is
// priority: the first pattern with a non-empty trimmed capture wins, and
// scopes are tried in preference order before patterns advance.

var customerNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)customer\s*name\s*:\s*([^,\n.]+)`),
	regexp.MustCompile(`(?i)name\s*:\s*([^,\n.]+)`),
	regexp.MustCompile(`(?i)bill\s*to\s*:\s*([^,\n.]+)`),
	regexp.MustCompile(`(?i)sold\s*to\s*:\s*([^,\n.]+)`),
	regexp.MustCompile(`(?i)customer\s*:\s*([^,\n.]+)`),
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)phone\s*(?:number|#)?\s*:\s*(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`),
	regexp.MustCompile(`(?i)tel\s*:\s*(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`),
	regexp.MustCompile(`(?i)mobile\s*:\s*(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`),
	regexp.MustCompile(`(?i)contact\s*:\s*(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`),
	regexp.MustCompile(`(?:^|\s)(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})(?:\s|$)`),
}

var storeLocationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)store\s*(?:location|name)?\s*:\s*([^,\n.]+)`),
	regexp.MustCompile(`(?i)location\s*:\s*([^,\n.]+)`),
	regexp.MustCompile(`(?i)branch\s*:\s*([^,\n.]+)`),
	regexp.MustCompile(`(?i)outlet\s*:\s*([^,\n.]+)`),
}

var orderNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)order\s*(?:number|#|no|num)\s*:\s*([^,\n.\s]+)`),
	regexp.MustCompile(`(?i)invoice\s*(?:number|#|no|num)\s*:\s*([^,\n.\s]+)`),
	regexp.MustCompile(`(?i)receipt\s*(?:number|#|no|num)\s*:\s*([^,\n.\s]+)`),
	regexp.MustCompile(`(?i)confirmation\s*(?:number|#|no|num)\s*:\s*([^,\n.\s]+)`),
	regexp.MustCompile(`(?i)transaction\s*(?:number|#|no|num)\s*:\s*([^,\n.\s]+)`),
	regexp.MustCompile(`(?i)reference\s*(?:number|#|no|num)\s*:\s*([^,\n.\s]+)`),
	regexp.MustCompile(`(?i)order\s*id\s*:\s*([^,\n.\s]+)`),
	regexp.MustCompile(`(?i)order\s*:\s*([^,\n.\s]+)`),
	regexp.MustCompile(`#\s*:\s*([^,\n.\s]+)`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)date\s*:\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)date\s*:\s*(\w+\s+\d{1,2},?\s*\d{2,4})`),
	regexp.MustCompile(`(?i)date\s*:\s*(\d{1,2}\s+\w+\s+\d{2,4})`),
	regexp.MustCompile(`(?i)invoice\s*date\s*:\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)order\s*date\s*:\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)receipt\s*date\s*:\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)transaction\s*date\s*:\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)purchase\s*date\s*:\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
}

var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)total\s*(?:amount|price|cost)?\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)grand\s*total\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)order\s*total\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)amount\s*due\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)balance\s*(?:due)?\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)total\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)\$\s*(\d+[.,]\d{2})\s*total`),
}

// Reduced tables for the flat fallback: looser captures (to end of line) and
// fewer labels, run against the whole unsegmented document.

var customerNameFlatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)customer\s*:\s*([^\n]+)`),
	regexp.MustCompile(`(?i)customer\s*name\s*:\s*([^\n]+)`),
	regexp.MustCompile(`(?i)bill\s*to\s*:\s*([^\n]+)`),
	regexp.MustCompile(`(?i)sold\s*to\s*:\s*([^\n]+)`),
	regexp.MustCompile(`(?i)name\s*:\s*([^\n]+)`),
}

var phoneFlatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\(\d{3}\)\s*\d{3}[-\s]\d{4}|\d{3}[-\s]\d{3}[-\s]\d{4})`),
}

var storeLocationFlatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)store\s*:\s*([^\n]+)`),
	regexp.MustCompile(`(?i)location\s*:\s*([^\n]+)`),
	regexp.MustCompile(`(?i)branch\s*:\s*([^\n]+)`),
}

var orderNumberFlatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)order\s*#\s*:\s*([^\s\n]+)`),
	regexp.MustCompile(`(?i)order\s*number\s*:\s*([^\s\n]+)`),
	regexp.MustCompile(`(?i)invoice\s*#\s*:\s*([^\s\n]+)`),
	regexp.MustCompile(`(?i)receipt\s*#\s*:\s*([^\s\n]+)`),
	regexp.MustCompile(`(?i)transaction\s*:\s*([^\s\n]+)`),
}

var dateFlatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)date\s*:\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
}

var totalFlatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)total\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)total\s*amount\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)amount\s*due\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)grand\s*total\s*:\s*\$?\s*(\d+[.,]\d{2})`),
	regexp.MustCompile(`(?i)\btotal\b.*?\$\s*(\d+[.,]\d{2})`),
}

// dateLayouts are tried in order against date candidates. US month-first
// forms come before anything ambiguous; four-digit years before two-digit.
var dateLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"1.2.2006",
	"1/2/06",
	"1-2-06",
	"1.2.06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2 January 06",
	"2 Jan 06",
}

// matchFirst returns the first non-empty trimmed capture across all
// (scope, pattern) pairs, scopes outermost.
func matchFirst(scopes []string, patterns []*regexp.Regexp) string {
	for _, scope := range scopes {
		for _, p := range patterns {
			if m := p.FindStringSubmatch(scope); m != nil {
				if v := strings.TrimSpace(m[1]); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// matchDate returns the first candidate that both matches a date pattern and
// parses as a real calendar date. A regex match alone is not enough: OCR text
// is full of date-shaped tokens that no calendar accepts ("13/45/2024"), so
// candidates that fail every layout are skipped and the search continues.
func matchDate(scopes []string, patterns []*regexp.Regexp) (time.Time, bool) {
	for _, scope := range scopes {
		for _, p := range patterns {
			m := p.FindStringSubmatch(scope)
			if m == nil {
				continue
			}
			if t, ok := parseDate(strings.TrimSpace(m[1])); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// matchAmount runs a total-pattern table over the scopes and parses the first
// captured amount. Comma decimal separators are accepted ("145,50").
func matchAmount(scopes []string, patterns []*regexp.Regexp) (float64, bool) {
	for _, scope := range scopes {
		for _, p := range patterns {
			m := p.FindStringSubmatch(scope)
			if m == nil {
				continue
			}
			if v, ok := parsePrice(m[1]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
