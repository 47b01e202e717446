// Package eval provides an evaluation framework for comparing extraction
// strategies (structured, flat, auto) against ground-truth receipt fixtures.
package eval

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/retailtally/backend/internal/extraction"
)

// GroundTruth represents the expected extraction output for a fixture.
type GroundTruth struct {
	Name          string    `json:"name"`
	CustomerName  string    `json:"customerName"`
	PhoneNumber   string    `json:"phoneNumber"`
	Products      []Product `json:"products"`
	TotalAmount   float64   `json:"totalAmount"`
	Date          string    `json:"date"`
	StoreLocation string    `json:"storeLocation"`
	OrderNumber   string    `json:"orderNumber"`
}

// Product is a single expected line item.
type Product struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// EvalResult holds metrics from running one strategy on one fixture.
type EvalResult struct {
	Strategy     string
	Fixture      string
	ProductCount CountMetrics
	CustomerSim  float64
	PhoneMatch   float64
	TotalMatch   float64
	DateMatch    float64
	StoreSim     float64
	OrderMatch   float64
	OverallScore float64
	Duration     time.Duration
	Error        string // non-empty if the strategy failed
}

// CountMetrics measures line-item detection performance.
type CountMetrics struct {
	Expected  int
	Extracted int
	Matched   int
	Precision float64
	Recall    float64
	F1        float64
}

// itemPair is a matched pair of extracted and ground-truth line items.
type itemPair struct {
	extracted extraction.LineItem
	truth     Product
}

// StrategyFunc is the signature for an extraction strategy.
type StrategyFunc func(text string) extraction.Sale

// ComputeMetrics compares an extracted sale against ground truth.
func ComputeMetrics(
	strategy string,
	fixture string,
	sale extraction.Sale,
	truth *GroundTruth,
	duration time.Duration,
) *EvalResult {
	result := &EvalResult{
		Strategy: strategy,
		Fixture:  fixture,
		Duration: duration,
	}

	matched := matchProducts(sale.Products, truth.Products)

	result.ProductCount = CountMetrics{
		Expected:  len(truth.Products),
		Extracted: len(sale.Products),
		Matched:   len(matched),
	}
	if len(sale.Products) == 0 && len(truth.Products) == 0 {
		// Nothing to find and nothing found counts as perfect detection.
		result.ProductCount.Precision = 1.0
		result.ProductCount.Recall = 1.0
		result.ProductCount.F1 = 1.0
	} else {
		if len(sale.Products) > 0 {
			result.ProductCount.Precision = float64(len(matched)) / float64(len(sale.Products))
		}
		if len(truth.Products) > 0 {
			result.ProductCount.Recall = float64(len(matched)) / float64(len(truth.Products))
		}
		p := result.ProductCount.Precision
		r := result.ProductCount.Recall
		if p+r > 0 {
			result.ProductCount.F1 = 2 * p * r / (p + r)
		}
	}

	result.CustomerSim = stringSimilarity(sale.CustomerName, truth.CustomerName)
	result.PhoneMatch = boolScore(digitsOnly(sale.PhoneNumber) == digitsOnly(truth.PhoneNumber))
	result.TotalMatch = boolScore(amountMatch(sale.TotalAmount, truth.TotalAmount))
	result.DateMatch = boolScore(dateMatch(sale.Date.Format("2006-01-02"), truth.Date))
	result.StoreSim = stringSimilarity(sale.StoreLocation, truth.StoreLocation)
	result.OrderMatch = boolScore(strings.EqualFold(
		strings.TrimSpace(sale.OrderNumber), strings.TrimSpace(truth.OrderNumber)))

	result.OverallScore = 0.30*result.ProductCount.F1 +
		0.20*result.CustomerSim +
		0.20*result.TotalMatch +
		0.10*result.PhoneMatch +
		0.10*result.DateMatch +
		0.05*result.StoreSim +
		0.05*result.OrderMatch

	return result
}

// matchProducts pairs extracted line items to ground truth using price
// matching first, then name similarity as a tiebreaker.
func matchProducts(extracted []extraction.LineItem, truth []Product) []itemPair {
	truthUsed := make([]bool, len(truth))
	var matched []itemPair

	for _, ext := range extracted {
		bestIdx := -1
		bestScore := -1.0

		for j, tr := range truth {
			if truthUsed[j] {
				continue
			}
			if !amountMatch(ext.Price, tr.Price) {
				continue
			}
			score := 1.0 + stringSimilarity(ext.Name, tr.Name)
			if ext.Quantity == tr.Quantity {
				score += 0.5
			}
			if score > bestScore {
				bestScore = score
				bestIdx = j
			}
		}

		if bestIdx >= 0 {
			truthUsed[bestIdx] = true
			matched = append(matched, itemPair{extracted: ext, truth: truth[bestIdx]})
		}
	}

	return matched
}

// amountMatch returns true if amounts are within $0.10 or 1%.
func amountMatch(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= 0.10 {
		return true
	}
	if b != 0 && diff/math.Abs(b) < 0.01 {
		return true
	}
	return false
}

// dateMatch compares YYYY-MM-DD date strings.
func dateMatch(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

func boolScore(ok bool) float64 {
	if ok {
		return 1.0
	}
	return 0.0
}

// digitsOnly strips everything but digits, so formatting differences in
// phone numbers don't count as mismatches.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// stringSimilarity returns a 0-1 score using normalized Levenshtein distance.
func stringSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}

	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	if lenA == 0 && lenB == 0 {
		return 1.0
	}

	dist := levenshtein(a, b)
	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}

	return 1.0 - float64(dist)/float64(maxLen)
}

// levenshtein computes the Levenshtein edit distance between two strings.
func levenshtein(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)
	la := len(runesA)
	lb := len(runesB)

	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev = curr
	}

	return prev[lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// RunEval executes all strategies against all fixtures and returns results.
func RunEval(strategies map[string]StrategyFunc, fixtures []*Fixture) []*EvalResult {
	var results []*EvalResult

	for _, fixture := range fixtures {
		for name, strategy := range strategies {
			start := time.Now()
			sale := strategy(fixture.Text)
			elapsed := time.Since(start)

			results = append(results, ComputeMetrics(
				name,
				fixture.Name,
				sale,
				fixture.GroundTruth,
				elapsed,
			))
		}
	}

	return results
}

// DefaultStrategies returns the built-in strategy set over one engine.
func DefaultStrategies(engine *extraction.Engine) map[string]StrategyFunc {
	return map[string]StrategyFunc{
		"structured": func(text string) extraction.Sale {
			return engine.ExtractStructured(text)
		},
		"flat": func(text string) extraction.Sale {
			return engine.ExtractFlat(text)
		},
		"auto": func(text string) extraction.Sale {
			return engine.Extract(text)
		},
	}
}

// PrintSummary outputs a formatted comparison table to an io.Writer.
func PrintSummary(w io.Writer, results []*EvalResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Strategy\tFixture\tF1\tCust~\tPhone\tTotal\tDate\tScore\tTime\tMatch\tError")
	fmt.Fprintln(tw, "--------\t-------\t--\t-----\t-----\t-----\t----\t-----\t----\t-----\t-----")

	for _, r := range results {
		errStr := ""
		if r.Error != "" {
			errStr = truncate(r.Error, 30)
		}

		matchStr := fmt.Sprintf("%d/%d", r.ProductCount.Matched, r.ProductCount.Expected)

		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.0f%%\t%.0f%%\t%.0f%%\t%.2f\t%s\t%s\t%s\n",
			r.Strategy,
			r.Fixture,
			r.ProductCount.F1,
			r.CustomerSim,
			r.PhoneMatch*100,
			r.TotalMatch*100,
			r.DateMatch*100,
			r.OverallScore,
			r.Duration.Round(time.Millisecond),
			matchStr,
			errStr,
		)
	}

	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Strategy Averages ===")

	strategyScores := make(map[string][]float64)
	strategyF1s := make(map[string][]float64)
	for _, r := range results {
		if r.Error == "" {
			strategyScores[r.Strategy] = append(strategyScores[r.Strategy], r.OverallScore)
			strategyF1s[r.Strategy] = append(strategyF1s[r.Strategy], r.ProductCount.F1)
		}
	}

	tw2 := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw2, "Strategy\tAvg Score\tAvg F1\tFixtures")
	fmt.Fprintln(tw2, "--------\t---------\t------\t--------")

	for strategy, scores := range strategyScores {
		avgScore := avg(scores)
		avgF1 := avg(strategyF1s[strategy])
		fmt.Fprintf(tw2, "%s\t%.3f\t%.3f\t%d/%d\n",
			strategy, avgScore, avgF1, len(scores), len(results)/len(strategyScores))
	}
	tw2.Flush()
}

func avg(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
