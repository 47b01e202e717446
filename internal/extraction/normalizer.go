package extraction

import (
	"regexp"
	"strings"
)

var (
	reCRLF         = regexp.MustCompile(`\r\n?`)
	reSplitDecimal = regexp.MustCompile(`(\d)\s*\.\s*(\d)`)
	reDollarGap    = regexp.MustCompile(`\$\s+`)
	reDoubleDollar = regexp.MustCompile(`\${2,}`)
	reDoublePeriod = regexp.MustCompile(`\.{2,}`)
	reDoubleDash   = regexp.MustCompile(`-{2,}`)
	reIntraSpace   = regexp.MustCompile(`[ \t]{2,}`)
	reMultiBlank   = regexp.MustCompile(`\n{3,}`)
	reAllSpace     = regexp.MustCompile(`\s+`)
)

// reSectionMarker matches keywords that mark section boundaries in receipts
// once bold/heading formatting has been lost to OCR or PDF text extraction.
// Longer alternatives come first so SUBTOTAL wins over TOTAL.
var reSectionMarker = regexp.MustCompile(
	`(?i)\b((?:SUBTOTAL|BILL\s*TO|SHIP\s*TO|ACCESSORIES|CUSTOMER|PRODUCTS|INVOICE|RECEIPT|PAYMENT|TOTAL|ITEMS|PHONE|DATE|TAX)\b:?)`,
)

// NormalizeLines cleans raw OCR/PDF text while preserving line structure for
// the segmenter. It collapses intra-line whitespace, repairs split decimal
// points ("12 . 99") and spaced dollar signs ("$ 12.99"), collapses doubled
// punctuation, and starts a fresh paragraph before each section-marker
// keyword so that inline headers land on their own line. The break goes
// before the keyword only, never after it, so multi-word headers like
// "CUSTOMER INFORMATION" stay on one line. The whole pass is idempotent:
// normalizing already-normalized text is a no-op.
func NormalizeLines(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	s := reCRLF.ReplaceAllString(raw, "\n")
	s = reSplitDecimal.ReplaceAllString(s, "$1.$2")
	s = reDollarGap.ReplaceAllString(s, "$$")
	s = reDoubleDollar.ReplaceAllString(s, "$$")
	s = reDoublePeriod.ReplaceAllString(s, ".")
	s = reDoubleDash.ReplaceAllString(s, "-")
	s = reSectionMarker.ReplaceAllString(s, "\n\n$1")
	s = reIntraSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// NormalizeAggressive is the fallback-path variant of NormalizeLines. It
// additionally collapses runs of repeated letters, an artifact of broken PDF
// font encodings that double every glyph ("LLSSPP" for "LSP"). The
// section-aware path must not use it: legitimate doubled letters in names
// ("Bill", "Allen") would be destroyed.
func NormalizeAggressive(raw string) string {
	return NormalizeLines(collapseDoubledLetters(raw))
}

// Flatten collapses all whitespace, newlines included, to single spaces.
// Field extractors match against flattened scopes so that labels and values
// separated by paragraph-break injection rejoin into one logical line.
func Flatten(text string) string {
	return strings.TrimSpace(reAllSpace.ReplaceAllString(text, " "))
}

// collapseDoubledLetters drops each ASCII letter immediately followed by the
// same letter, keeping the last of every run.
func collapseDoubledLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIILetter(c) && i+1 < len(s) && s[i+1] == c {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
