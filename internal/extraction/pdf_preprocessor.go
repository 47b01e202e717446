package extraction

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	maxTextBytes     = 100 * 1024 // 100KB cap for extracted text
	defaultMaxTokens = 4096
	minMaxTokens     = 1024
	maxMaxTokens     = 16384
	tokenRoundTo     = 1024
	scannedThreshold = 50 // chars per page below which the PDF is considered scanned
)

// PDFAnalysis is the result of pre-processing an uploaded receipt PDF.
type PDFAnalysis struct {
	PageCount          int
	ExtractedText      string
	TextLines          []string
	EstimatedItemCount int
	IsScanned          bool
	MaxOutputTokens    int
	Error              error
}

// AnalyzePDF extracts text and metadata from a receipt PDF. It is wrapped in
// recover() and never panics or blocks the upload pipeline; on any error it
// returns conservative defaults with IsScanned set, so the caller falls
// through to the vision path.
func AnalyzePDF(data []byte) (result *PDFAnalysis) {
	result = &PDFAnalysis{
		PageCount:       1,
		IsScanned:       true,
		MaxOutputTokens: defaultMaxTokens,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[pdf-preprocessor] recovered from panic: %v", r)
			result.Error = fmt.Errorf("panic during PDF analysis: %v", r)
			result.IsScanned = true
			result.MaxOutputTokens = defaultMaxTokens
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		result.Error = fmt.Errorf("open PDF reader: %w", err)
		return result
	}

	result.PageCount = reader.NumPage()
	if result.PageCount < 1 {
		result.PageCount = 1
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		result.Error = fmt.Errorf("extract plain text: %w", err)
		return result
	}

	textBytes, err := io.ReadAll(io.LimitReader(plainText, int64(maxTextBytes)))
	if err != nil {
		result.Error = fmt.Errorf("read plain text: %w", err)
		return result
	}

	result.ExtractedText = string(textBytes)
	result.IsScanned = isLikelyScanned(result.ExtractedText, result.PageCount)

	for _, line := range strings.Split(result.ExtractedText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			result.TextLines = append(result.TextLines, trimmed)
		}
	}

	result.EstimatedItemCount = countProductLines(result.TextLines)
	result.MaxOutputTokens = estimateOutputTokens(result.EstimatedItemCount)

	return result
}

// countProductLines counts lines shaped like product entries (trailing
// price). Used to size the refiner's output budget before any LLM call.
func countProductLines(lines []string) int {
	count := 0
	for _, line := range lines {
		if len(line) < 5 || reLineExclusion.MatchString(line) {
			continue
		}
		if reProductLine.MatchString(line) {
			count++
		}
	}
	return count
}

// estimateOutputTokens calculates a recommended maxOutputTokens for the
// Gemini refiner based on the estimated line-item count.
// Formula: (200 + itemCount * 60) * 1.5, clamped to [1024, 16384], rounded
// up to the nearest 1024.
func estimateOutputTokens(itemCount int) int {
	if itemCount <= 0 {
		return defaultMaxTokens
	}

	tokens := int(float64(200+itemCount*60) * 1.5)

	if tokens < minMaxTokens {
		tokens = minMaxTokens
	}
	if tokens > maxMaxTokens {
		tokens = maxMaxTokens
	}

	if tokens%tokenRoundTo != 0 {
		tokens = ((tokens / tokenRoundTo) + 1) * tokenRoundTo
	}

	return tokens
}

// isLikelyScanned returns true if the PDF appears to be a scanned image
// (very little extractable text per page).
func isLikelyScanned(text string, pages int) bool {
	if pages <= 0 {
		pages = 1
	}
	charsPerPage := len(text) / pages
	return charsPerPage < scannedThreshold
}
