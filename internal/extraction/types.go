// Package extraction recovers structured sale records from noisy OCR/PDF text.
package extraction

import "time"

// Category classifies a line item into the store's commission taxonomy.
type Category string

const (
	CategoryActivation Category = "activation"
	CategoryUpgrade    Category = "upgrade"
	CategoryService    Category = "service"
	CategoryProtection Category = "protection"
	CategoryAccessory  Category = "accessory"
)

// LineItem is one parsed product entry from a receipt.
type LineItem struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
	Category Category `json:"category"`
}

// Sale is the extraction engine's output contract. All fields are best-effort:
// a field the text did not yield is left at its zero value (empty string, 0,
// empty slice) rather than failing the extraction.
type Sale struct {
	CustomerName  string     `json:"customerName"`
	PhoneNumber   string     `json:"phoneNumber"`
	Products      []LineItem `json:"products"`
	TotalAmount   float64    `json:"totalAmount"`
	Date          time.Time  `json:"date"`
	StoreLocation string     `json:"storeLocation"`
	OrderNumber   string     `json:"orderNumber"`
}

// EmptySale returns the zero-value record every failure path shares.
// Date defaults to the wall clock so downstream consumers always see a
// valid calendar date; the sanitizer marks such dates low-confidence.
func EmptySale() Sale {
	return Sale{
		Products: []LineItem{},
		Date:     time.Now(),
	}
}

// Section is one named block of a segmented document. StartLine and EndLine
// index into the normalized document's lines; Content holds the section's
// non-empty lines (header line included) in order.
type Section struct {
	Key       string
	StartLine int
	EndLine   int
	Content   []string
}
