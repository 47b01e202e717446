package extraction

import (
	"log"
	"strings"
)

// Engine turns raw OCR/PDF text into a Sale. It is stateless and performs no
// I/O, so a single Engine is safe for concurrent use from request handlers.
//
// Extraction runs up to three strategies in order. The section-aware
// strategy has higher precision when header phrases survive OCR; the flat
// fallback has higher recall on unstructured dumps; the empty default is the
// safety net that keeps Extract total.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Extract is the full pipeline: structured first, flat fallback if the
// structured result carries no usable data, empty default if both strategies
// fail internally. It never panics and never returns a malformed record,
// whatever the input.
func (e *Engine) Extract(raw string) Sale {
	if strings.TrimSpace(raw) == "" {
		return EmptySale()
	}

	if sale, ok := runStrategy("structured", func() Sale { return e.ExtractStructured(raw) }); ok && hasUsableData(sale) {
		return sale
	}

	if sale, ok := runStrategy("flat", func() Sale { return e.ExtractFlat(raw) }); ok {
		return sale
	}

	return EmptySale()
}

// ExtractStructured is the section-aware strategy: normalize preserving
// lines, segment on header phrases, then run every field extractor against
// its preferred sections.
func (e *Engine) ExtractStructured(raw string) Sale {
	sale := EmptySale()

	text := NormalizeLines(raw)
	if text == "" {
		return sale
	}
	sections := Segment(text)

	customerScopes := scopeContents(sectionsMatching(sections, "customer", "contact", "billing"))
	sale.CustomerName = matchFirst(customerScopes, customerNamePatterns)
	sale.PhoneNumber = matchFirst(customerScopes, phonePatterns)

	storeScopes := scopeContents(sectionsMatching(sections, "store", "location", "branch", "header"))
	sale.StoreLocation = matchFirst(storeScopes, storeLocationPatterns)

	orderScopes := scopeContents(sectionsMatching(sections, "order", "invoice", "receipt", "header"))
	sale.OrderNumber = matchFirst(orderScopes, orderNumberPatterns)

	if d, ok := matchDate(scopeContents(sections), datePatterns); ok {
		sale.Date = d
	}

	// Line items come from the first product-ish section, skipping its
	// title line. With no such section the whole document is scanned, so
	// a missed header never means zero products.
	if productSections := sectionsMatching(sections, "product", "item", "order_summary"); len(productSections) > 0 {
		sale.Products = ParseLineItems(productSections[0].Content, true)
	} else {
		sale.Products = ParseLineItems(strings.Split(text, "\n"), false)
	}
	if sale.Products == nil {
		sale.Products = []LineItem{}
	}

	// Total: summary-ish sections first, then the whole flattened
	// document, then the computed sum. An explicit match always beats
	// the sum.
	totalScopes := scopeContents(sectionsMatching(sections, "total", "summary"))
	if v, ok := matchAmount(totalScopes, totalPatterns); ok {
		sale.TotalAmount = v
	} else if v, ok := matchAmount([]string{Flatten(text)}, totalPatterns); ok {
		sale.TotalAmount = v
	} else {
		sale.TotalAmount = sumLineItems(sale.Products)
	}

	return sale
}

// ExtractFlat is the fallback strategy: aggressive normalization (doubled
// letters collapsed), no segmentation, reduced pattern tables run against
// the whole document, every line scanned for products.
func (e *Engine) ExtractFlat(raw string) Sale {
	sale := EmptySale()

	text := NormalizeAggressive(raw)
	if text == "" {
		return sale
	}
	doc := []string{text}

	sale.CustomerName = matchFirst(doc, customerNameFlatPatterns)
	sale.PhoneNumber = matchFirst(doc, phoneFlatPatterns)
	sale.StoreLocation = matchFirst(doc, storeLocationFlatPatterns)
	sale.OrderNumber = matchFirst(doc, orderNumberFlatPatterns)

	if d, ok := matchDate(doc, dateFlatPatterns); ok {
		sale.Date = d
	}

	sale.Products = ParseLineItems(strings.Split(text, "\n"), false)
	if sale.Products == nil {
		sale.Products = []LineItem{}
	}

	if v, ok := matchAmount([]string{Flatten(text)}, totalFlatPatterns); ok {
		sale.TotalAmount = v
	} else {
		sale.TotalAmount = sumLineItems(sale.Products)
	}

	return sale
}

// hasUsableData is the fallback trigger: a structured result counts only if
// it found a customer, at least one product, or a positive total.
func hasUsableData(s Sale) bool {
	return s.CustomerName != "" || len(s.Products) > 0 || s.TotalAmount > 0
}

// runStrategy executes one strategy with panic isolation. The strategies are
// written to be total, but a panic in one must mean falling through to the
// next, not a crashed request.
func runStrategy(name string, fn func() Sale) (sale Sale, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[extraction] %s strategy panicked: %v", name, r)
			ok = false
		}
	}()
	return fn(), true
}

func scopeContents(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, joinedContent(s))
	}
	return out
}
