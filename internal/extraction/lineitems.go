package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// reProductLine is the composite product-line shape: a name, an optional
// separate quantity column, then a price at end of line with an optional
// currency sign. "12,99" style comma decimals are accepted.
var reProductLine = regexp.MustCompile(`^(.+?)(?:\s+(\d+)\s+)?[ \t]*\$?\s*(\d+[.,]\d{2})\s*$`)

// reLineExclusion filters lines that look like running totals or charges
// rather than products. Checked against the whole line before matching and
// against the captured name afterwards (reNameExclusion), because OCR
// formatting lets total lines slip past either check alone.
var (
	reLineExclusion = regexp.MustCompile(`(?i)total|subtotal|tax|shipping|discount|grand`)
	reNameExclusion = regexp.MustCompile(`(?i)total|subtotal|tax`)
)

// Embedded quantity prefixes, "2 x Widget" preferred over "2 Widget".
var (
	reQuantityX    = regexp.MustCompile(`^(\d+)\s*x\s*(.+)$`)
	reQuantityBare = regexp.MustCompile(`^(\d+)\s+(.+)$`)
)

// Category keyword rules, evaluated top-down, first match wins. Kept as data
// so new keywords slot in without touching the parse loop.
var (
	rePhoneKeyword      = regexp.MustCompile(`(?i)phone|iphone|samsung|pixel|galaxy|android|apple`)
	reUpgradeKeyword    = regexp.MustCompile(`(?i)upgrade`)
	reServiceKeyword    = regexp.MustCompile(`(?i)plan|service|contract`)
	reProtectionKeyword = regexp.MustCompile(`(?i)protection|insurance|warranty|coverage`)
)

var categoryRules = []struct {
	applies  func(string) bool
	category Category
}{
	{func(n string) bool { return rePhoneKeyword.MatchString(n) && reUpgradeKeyword.MatchString(n) }, CategoryUpgrade},
	{rePhoneKeyword.MatchString, CategoryActivation},
	{reServiceKeyword.MatchString, CategoryService},
	{reProtectionKeyword.MatchString, CategoryProtection},
}

func categorize(name string) Category {
	for _, rule := range categoryRules {
		if rule.applies(name) {
			return rule.category
		}
	}
	return CategoryAccessory
}

// ParseLineItems scans lines for product entries. skipFirst drops the first
// line of the range, used when the range is a detected product section whose
// first line is the section title itself.
//
// Per line: too-short, blank, and exclusion-keyword lines are skipped; the
// rest must match the composite product shape. Quantity comes from the
// separate column if present, else from a "2 x Widget"/"2 Widget" prefix
// stripped out of the name, else defaults to 1.
func ParseLineItems(lines []string, skipFirst bool) []LineItem {
	if skipFirst && len(lines) > 0 {
		lines = lines[1:]
	}

	var items []LineItem
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if len(line) < 5 || reLineExclusion.MatchString(line) {
			continue
		}

		m := reProductLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		if reNameExclusion.MatchString(strings.ToLower(name)) {
			continue
		}

		price, ok := parsePrice(m[3])
		if !ok {
			continue
		}

		quantity := 1
		if m[2] != "" {
			if q, err := strconv.Atoi(m[2]); err == nil && q > 0 {
				quantity = q
			}
		} else if qm := reQuantityX.FindStringSubmatch(name); qm != nil {
			if q, err := strconv.Atoi(qm[1]); err == nil && q > 0 {
				quantity = q
				name = strings.TrimSpace(qm[2])
			}
		} else if qm := reQuantityBare.FindStringSubmatch(name); qm != nil {
			if q, err := strconv.Atoi(qm[1]); err == nil && q > 0 {
				quantity = q
				name = strings.TrimSpace(qm[2])
			}
		}

		items = append(items, LineItem{
			Name:     name,
			Quantity: quantity,
			Price:    price,
			Category: categorize(name),
		})
	}
	return items
}

// sumLineItems is the computed-total fallback used when no total pattern
// matched anywhere in the document.
func sumLineItems(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}
