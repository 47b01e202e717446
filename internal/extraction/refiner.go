package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Refiner re-extracts a sale with Gemini when the regex engine's result is
// judged low-value. It is strictly optional: with no API key configured the
// upload pipeline simply keeps the regex result.
type Refiner struct {
	apiKey      string
	httpClient  *http.Client
	baseURL     string
	RetryConfig RetryConfig

	schema *jsonschema.Schema
}

// NewRefiner creates a refiner. An empty apiKey yields a disabled refiner
// whose Available() reports false.
func NewRefiner(apiKey string) *Refiner {
	return &Refiner{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:     defaultGeminiBaseURL,
		RetryConfig: DefaultGeminiRetryConfig,
		schema:      mustCompileSaleSchema(),
	}
}

// Available returns true if the Gemini API is configured.
func (r *Refiner) Available() bool {
	return r.apiKey != ""
}

// refinedSale is the JSON shape Gemini is asked for. Dates come back as
// YYYY-MM-DD strings; everything else mirrors Sale.
type refinedSale struct {
	CustomerName  string `json:"customerName"`
	PhoneNumber   string `json:"phoneNumber"`
	Products      []struct {
		Name     string  `json:"name"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
		Category string  `json:"category"`
	} `json:"products"`
	TotalAmount   float64 `json:"totalAmount"`
	Date          string  `json:"date"`
	StoreLocation string  `json:"storeLocation"`
	OrderNumber   string  `json:"orderNumber"`
}

const refinerPrompt = `Extract the sale from this retail receipt or invoice.
Return ONLY a valid JSON object with this structure:
{
  "customerName": "",
  "phoneNumber": "",
  "products": [
    {"name": "", "quantity": 1, "price": 0.00, "category": "accessory"}
  ],
  "totalAmount": 0.00,
  "date": "YYYY-MM-DD",
  "storeLocation": "",
  "orderNumber": ""
}
Rules:
- category must be one of: activation, upgrade, service, protection, accessory
- price is the unit price, not the line total
- leave unknown string fields empty; leave unknown numbers as 0
- do not invent products that are not on the receipt`

// RefineText asks Gemini to extract a sale from already-acquired text.
func (r *Refiner) RefineText(ctx context.Context, rawText string, maxTokens int) (Sale, error) {
	parts := []map[string]interface{}{
		{"text": refinerPrompt},
		{"text": "Receipt text:\n" + rawText},
	}
	return r.refine(ctx, parts, maxTokens)
}

// RefineDocument asks Gemini to extract a sale directly from image or PDF
// bytes. This is the vision path for photos and scanned PDFs that yield no
// machine text.
func (r *Refiner) RefineDocument(ctx context.Context, data []byte, maxTokens int) (Sale, error) {
	parts := []map[string]interface{}{
		{"text": refinerPrompt},
		{
			"inline_data": map[string]string{
				"mime_type": detectMimeType(data),
				"data":      base64.StdEncoding.EncodeToString(data),
			},
		},
	}
	return r.refine(ctx, parts, maxTokens)
}

func (r *Refiner) refine(ctx context.Context, parts []map[string]interface{}, maxTokens int) (Sale, error) {
	if !r.Available() {
		return Sale{}, &ExtractionError{
			Code:      ErrRefinementFailed,
			Message:   "Gemini API key not configured",
			Method:    "gemini",
			Retryable: false,
		}
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	refined, err := WithRetry(ctx, r.RetryConfig, func(ctx context.Context) (*refinedSale, error) {
		return r.callGemini(ctx, parts, maxTokens)
	})
	if err != nil {
		return Sale{}, err
	}
	return r.toSale(refined), nil
}

func (r *Refiner) callGemini(ctx context.Context, parts []map[string]interface{}, maxTokens int) (*refinedSale, error) {
	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.1,
			"maxOutputTokens": maxTokens,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/gemini-1.5-flash:generateContent?key=%s", r.baseURL, r.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, classifyGeminiHTTPError(resp.StatusCode, string(body))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	text := geminiResp.Candidates[0].Content.Parts[0].Text

	payload, err := extractJSON(text)
	if err != nil {
		return nil, &ExtractionError{
			Code:      ErrRefinementFailed,
			Message:   "no JSON object in Gemini response",
			Method:    "gemini",
			Retryable: false,
			Cause:     err,
		}
	}

	// Validate before trusting the shape; a malformed response must not
	// reach the merge step.
	var generic interface{}
	if err := json.Unmarshal(payload, &generic); err != nil {
		return nil, fmt.Errorf("unmarshal Gemini result: %w", err)
	}
	if err := r.schema.Validate(generic); err != nil {
		return nil, &ExtractionError{
			Code:      ErrRefinementFailed,
			Message:   "Gemini result does not match sale schema",
			Method:    "gemini",
			Retryable: false,
			Cause:     err,
		}
	}

	var result refinedSale
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("parse Gemini result: %w", err)
	}
	return &result, nil
}

// toSale converts the refiner's wire shape into the engine's Sale. The
// caller passes it through the same Sanitize as the regex result, so no
// clamping happens here.
func (r *Refiner) toSale(in *refinedSale) Sale {
	sale := EmptySale()
	sale.CustomerName = in.CustomerName
	sale.PhoneNumber = in.PhoneNumber
	sale.TotalAmount = in.TotalAmount
	sale.StoreLocation = in.StoreLocation
	sale.OrderNumber = in.OrderNumber

	if t, err := time.Parse("2006-01-02", in.Date); err == nil {
		sale.Date = t
	} else if t, ok := parseDate(in.Date); ok {
		sale.Date = t
	}

	for _, p := range in.Products {
		sale.Products = append(sale.Products, LineItem{
			Name:     p.Name,
			Quantity: p.Quantity,
			Price:    p.Price,
			Category: Category(p.Category),
		})
	}
	return sale
}

// saleSchema constrains the refiner's JSON output (draft 2020-12 subset).
func saleSchema() map[string]interface{} {
	categoryEnum := []interface{}{"activation", "upgrade", "service", "protection", "accessory"}
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"products", "totalAmount"},
		"properties": map[string]interface{}{
			"customerName":  map[string]interface{}{"type": "string"},
			"phoneNumber":   map[string]interface{}{"type": "string"},
			"totalAmount":   map[string]interface{}{"type": "number", "minimum": 0},
			"date":          map[string]interface{}{"type": "string"},
			"storeLocation": map[string]interface{}{"type": "string"},
			"orderNumber":   map[string]interface{}{"type": "string"},
			"products": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"name", "quantity", "price"},
					"properties": map[string]interface{}{
						"name":     map[string]interface{}{"type": "string"},
						"quantity": map[string]interface{}{"type": "integer", "minimum": 0},
						"price":    map[string]interface{}{"type": "number", "minimum": 0},
						"category": map[string]interface{}{"type": "string", "enum": categoryEnum},
					},
				},
			},
		},
	}
}

func mustCompileSaleSchema() *jsonschema.Schema {
	b, err := json.Marshal(saleSchema())
	if err != nil {
		panic(fmt.Sprintf("marshal sale schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("sale.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add sale schema: %v", err))
	}
	schema, err := compiler.Compile("sale.json")
	if err != nil {
		panic(fmt.Sprintf("compile sale schema: %v", err))
	}
	return schema
}

// detectMimeType returns the MIME type based on document magic bytes.
func detectMimeType(data []byte) string {
	if len(data) >= 4 && string(data[:4]) == "%PDF" {
		return "application/pdf"
	}
	if len(data) >= 4 && string(data[:4]) == "\x89PNG" {
		return "image/png"
	}
	return "image/jpeg"
}

// classifyGeminiError converts Gemini network errors to ExtractionErrors.
func classifyGeminiError(err error) *ExtractionError {
	return &ExtractionError{
		Code:      ErrGeminiUnavailable,
		Message:   "Gemini API request failed",
		Method:    "gemini",
		Retryable: true,
		Cause:     err,
	}
}

// classifyGeminiHTTPError converts Gemini HTTP errors to ExtractionErrors.
func classifyGeminiHTTPError(statusCode int, body string) *ExtractionError {
	if statusCode == http.StatusTooManyRequests {
		return &ExtractionError{
			Code:      ErrGeminiRateLimited,
			Message:   "Gemini API rate limited",
			Method:    "gemini",
			Retryable: true,
		}
	}
	return &ExtractionError{
		Code:      ErrGeminiUnavailable,
		Message:   fmt.Sprintf("Gemini API error (HTTP %d): %s", statusCode, body),
		Method:    "gemini",
		Retryable: statusCode >= 500,
	}
}

// extractJSON finds the first balanced JSON object in an LLM text response,
// which may wrap it in prose or a code fence.
func extractJSON(text string) ([]byte, error) {
	start := -1
	braceCount := 0
	for i, c := range text {
		if c == '{' {
			if start == -1 {
				start = i
			}
			braceCount++
		} else if c == '}' {
			braceCount--
			if braceCount == 0 && start != -1 {
				return []byte(text[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("no JSON object found in response")
}
