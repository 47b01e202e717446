// Benchmark tests for the receipt extraction pipeline.
//
// These benchmarks measure the CPU-bound portions of extraction (normalizer,
// segmenter, line-item parser, full engine) using synthetic receipts so they
// run without any network dependency.
//
// Usage:
//
//	# Run all benchmarks
//	go test ./internal/extraction/... -bench=. -benchtime=5s
//
//	# Run a single benchmark with memory profiling
//	go test ./internal/extraction/... -bench=BenchmarkExtract -benchmem
//
//	# Compare two commits (requires benchstat):
//	go test ./internal/extraction/... -bench=. -count=6 -benchtime=3s | tee before.txt
//	# (make your change)
//	go test ./internal/extraction/... -bench=. -count=6 -benchtime=3s | tee after.txt
//	benchstat before.txt after.txt
package extraction

import (
	"fmt"
	"strings"
	"testing"
)

// syntheticReceipt builds a sectioned receipt with n line items.
func syntheticReceipt(n int) string {
	var b strings.Builder
	b.WriteString("ACME Wireless\n")
	b.WriteString("Store Location: Downtown Plaza\n")
	b.WriteString("Order Number: INV-9001\n")
	b.WriteString("Date: 03/15/2024\n\n")
	b.WriteString("CUSTOMER INFORMATION\n")
	b.WriteString("Customer Name: Jane Doe\n")
	b.WriteString("Phone: 555-123-4567\n\n")
	b.WriteString("PRODUCT INFORMATION\n")

	names := []string{"Screen Protector", "USB-C Cable", "Wall Charger", "Car Mount", "Wireless Earbuds"}
	var total float64
	for i := 0; i < n; i++ {
		price := float64((i%40)+1) + 0.99
		fmt.Fprintf(&b, "%s %d %.2f\n", names[i%len(names)], (i%3)+1, price)
		total += price * float64((i%3)+1)
	}

	b.WriteString("\nORDER SUMMARY\n")
	fmt.Fprintf(&b, "Total: $%.2f\n", total)
	return b.String()
}

// garble doubles every ASCII letter, simulating the common OCR failure mode.
func garble(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if isASCIILetter(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func BenchmarkNormalizeLines(b *testing.B) {
	text := syntheticReceipt(25)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeLines(text)
	}
}

func BenchmarkNormalizeAggressive(b *testing.B) {
	text := garble(syntheticReceipt(25))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeAggressive(text)
	}
}

func BenchmarkSegment(b *testing.B) {
	text := NormalizeLines(syntheticReceipt(25))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Segment(text)
	}
}

func BenchmarkParseLineItems(b *testing.B) {
	lines := strings.Split(NormalizeLines(syntheticReceipt(50)), "\n")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseLineItems(lines, false)
	}
}

func BenchmarkExtract(b *testing.B) {
	for _, n := range []int{5, 25, 100} {
		b.Run(fmt.Sprintf("items_%d", n), func(b *testing.B) {
			engine := NewEngine()
			text := syntheticReceipt(n)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				engine.Extract(text)
			}
		})
	}
}

func BenchmarkExtract_FlatFallback(b *testing.B) {
	engine := NewEngine()
	text := garble("Customer: Jane Doe\nPhone: 555-123-4567\nThank you")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Extract(text)
	}
}

func BenchmarkSanitize(b *testing.B) {
	engine := NewEngine()
	sale := engine.Extract(syntheticReceipt(25))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sanitize(sale)
	}
}
