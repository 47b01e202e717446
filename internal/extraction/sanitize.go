package extraction

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Boundary limits applied before an extracted record leaves the service.
// OCR misreads produce absurd numbers ("quantity 20000" from a zip code);
// clamping here means downstream consumers never see them.
const (
	maxNameLen     = 100
	maxPhoneLen    = 20
	maxLocationLen = 50
	maxQuantity    = 1000
	maxPrice       = 10000
	maxTotal       = 100000
	maxProducts    = 20
)

// Confidence labels one extracted field as high, medium, or low. Labels are
// derived from presence, not from match quality: the regex engine has no
// notion of a partial match.
type Confidence struct {
	Overall       string `json:"overall"`
	CustomerName  string `json:"customerName"`
	PhoneNumber   string `json:"phoneNumber"`
	Products      string `json:"products"`
	TotalAmount   string `json:"totalAmount"`
	Date          string `json:"date"`
	StoreLocation string `json:"storeLocation"`
}

// SanitizedSale is the boundary form of an extraction result: every field
// clamped and defaulted, plus per-field confidence labels.
type SanitizedSale struct {
	Sale       Sale       `json:"saleInfo"`
	Confidence Confidence `json:"confidence"`
}

const placeholderProductName = "Unknown Product"

// Sanitize clamps an extracted sale into the guaranteed boundary shape:
// capped string lengths, quantity in [1,1000], price in [0,10000], total in
// [0,100000], at most 20 products, and a placeholder product when nothing
// was extracted. All-caps shouting from OCR is re-cased for display.
func Sanitize(s Sale) SanitizedSale {
	out := s

	out.CustomerName = displayName(truncate(strings.TrimSpace(s.CustomerName), maxNameLen))
	out.PhoneNumber = truncate(strings.TrimSpace(s.PhoneNumber), maxPhoneLen)
	out.StoreLocation = truncate(strings.TrimSpace(s.StoreLocation), maxLocationLen)
	out.OrderNumber = truncate(strings.TrimSpace(s.OrderNumber), maxLocationLen)

	products := s.Products
	if len(products) > maxProducts {
		products = products[:maxProducts]
	}
	out.Products = make([]LineItem, 0, len(products))
	for _, p := range products {
		out.Products = append(out.Products, sanitizeItem(p))
	}
	if len(out.Products) == 0 {
		out.Products = []LineItem{{
			Name:     placeholderProductName,
			Quantity: 1,
			Price:    0,
			Category: CategoryAccessory,
		}}
	}

	out.TotalAmount = clampFloat(s.TotalAmount, 0, maxTotal)

	dateDefaulted := s.Date.IsZero() || hasClockTime(s.Date)
	if s.Date.IsZero() {
		out.Date = time.Now()
	}

	conf := Confidence{
		CustomerName:  presence(out.CustomerName),
		PhoneNumber:   presence(out.PhoneNumber),
		StoreLocation: presence(out.StoreLocation),
		Products:      "low",
		TotalAmount:   "low",
		Date:          "high",
	}
	if len(s.Products) > 0 && out.Products[0].Name != placeholderProductName {
		conf.Products = "high"
	}
	if out.TotalAmount > 0 {
		conf.TotalAmount = "high"
	}
	if dateDefaulted {
		conf.Date = "low"
	}
	conf.Overall = "medium"
	if out.CustomerName != "" && conf.Products == "high" && out.TotalAmount > 0 {
		conf.Overall = "high"
	}

	return SanitizedSale{Sale: out, Confidence: conf}
}

func sanitizeItem(p LineItem) LineItem {
	name := truncate(strings.TrimSpace(p.Name), maxNameLen)
	if name == "" {
		name = placeholderProductName
	}
	q := p.Quantity
	if q < 1 {
		q = 1
	} else if q > maxQuantity {
		q = maxQuantity
	}
	cat := p.Category
	switch cat {
	case CategoryActivation, CategoryUpgrade, CategoryService, CategoryProtection, CategoryAccessory:
	default:
		cat = CategoryAccessory
	}
	return LineItem{
		Name:     name,
		Quantity: q,
		Price:    clampFloat(p.Price, 0, maxPrice),
		Category: cat,
	}
}

// displayName re-cases a fully shouting name ("JANE DOE") for display.
// Mixed-case names pass through untouched.
func displayName(name string) string {
	if name == "" || name != strings.ToUpper(name) || !strings.ContainsFunc(name, unicode.IsLetter) {
		return name
	}
	caser := cases.Title(language.English)
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = caser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}

// hasClockTime reports whether a date carries a time of day. Every date the
// pattern tables can parse is date-only (midnight), so a nonzero clock means
// the value is the extraction-time wall clock default, not a parsed date.
func hasClockTime(t time.Time) bool {
	h, m, s := t.Clock()
	return h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0
}

func presence(s string) string {
	if s != "" {
		return "high"
	}
	return "low"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	// Do not split a multibyte rune at the cap.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
