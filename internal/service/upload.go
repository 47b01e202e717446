package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/retailtally/backend/internal/extraction"
	"github.com/retailtally/backend/internal/store"
)

// Upload size and type limits enforced before the pipeline runs.
const (
	MaxUploadBytes = 15 << 20
	uploadTimeout  = 2 * time.Minute
)

// ErrUnsupportedFileType is returned for anything other than JPEG, PNG,
// or PDF uploads.
var ErrUnsupportedFileType = fmt.Errorf("%w: only JPEG, PNG, and PDF receipts are supported", ErrInvalidInput)

// UploadResult is what the pipeline hands back for a processed receipt:
// the sanitized record with confidence labels, the raw text it was parsed
// from (empty for image uploads), and where the original file was kept.
type UploadResult struct {
	Sale        extraction.SanitizedSale `json:"sale"`
	RawText     string                   `json:"rawText,omitempty"`
	ReceiptPath string                   `json:"receiptPath,omitempty"`
}

// UploadService runs the receipt processing pipeline: store the file,
// acquire text, extract, optionally refine, sanitize.
type UploadService struct {
	engine    *extraction.Engine
	refiner   *extraction.Refiner
	jobs      *extraction.JobStore
	uploadDir string
}

// NewUploadService creates the pipeline. refiner may be nil when no Gemini
// API key is configured; uploads then rely on local extraction alone.
func NewUploadService(engine *extraction.Engine, refiner *extraction.Refiner, jobs *extraction.JobStore, uploadDir string) *UploadService {
	return &UploadService{
		engine:    engine,
		refiner:   refiner,
		jobs:      jobs,
		uploadDir: uploadDir,
	}
}

// Process runs the pipeline synchronously and returns the extracted record.
func (s *UploadService) Process(ctx context.Context, userID, filename string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidInput)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalidInput, MaxUploadBytes)
	}

	kind := sniffFileType(data)
	if kind == "" {
		return nil, ErrUnsupportedFileType
	}

	receiptPath, err := s.saveReceipt(userID, filename, kind, data)
	if err != nil {
		log.Printf("[upload] failed to save receipt file: %v", err)
		receiptPath = ""
	}

	result := &UploadResult{ReceiptPath: receiptPath}

	var sale extraction.Sale
	switch kind {
	case "pdf":
		sale, result.RawText = s.processPDF(ctx, data)
	default:
		sale = s.processImage(ctx, data)
	}

	result.Sale = extraction.Sanitize(sale)
	return result, nil
}

// StartJob enqueues an async upload and returns the pending job. The
// pipeline runs in a goroutine; callers poll the job endpoint for the
// result.
func (s *UploadService) StartJob(userID, filename string, data []byte) (*extraction.UploadJob, error) {
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalidInput, MaxUploadBytes)
	}
	if sniffFileType(data) == "" {
		return nil, ErrUnsupportedFileType
	}

	job := extraction.NewUploadJob(uuid.New().String(), userID, filename)
	if err := s.jobs.Create(job); err != nil {
		return nil, err
	}

	// runJob works on its own copy; the job returned to the caller is
	// never written again.
	go s.runJob(*job, data)
	return job, nil
}

// GetJob returns an upload job, but only to its owner.
func (s *UploadService) GetJob(userID, jobID string) (*extraction.UploadJob, error) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
	}
	if job.UserID != userID {
		return nil, fmt.Errorf("%w: job belongs to another user", ErrForbidden)
	}
	return job, nil
}

func (s *UploadService) runJob(job extraction.UploadJob, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	job.Status = extraction.JobProcessing
	if err := s.jobs.Update(&job); err != nil {
		log.Printf("[upload] job %s: %v", job.ID, err)
		return
	}

	result, err := s.Process(ctx, job.UserID, job.Filename, data)
	if err != nil {
		job.Status = extraction.JobFailed
		job.Error = err.Error()
	} else {
		job.Status = extraction.JobCompleted
		job.Result = &result.Sale
		job.RawText = result.RawText
	}
	if err := s.jobs.Update(&job); err != nil {
		log.Printf("[upload] job %s: %v", job.ID, err)
	}
}

// processPDF extracts text locally, falls back to the refiner for scanned
// documents or low-value extractions.
func (s *UploadService) processPDF(ctx context.Context, data []byte) (extraction.Sale, string) {
	analysis := extraction.AnalyzePDF(data)

	if analysis.IsScanned {
		if s.refinerAvailable() {
			sale, err := s.refiner.RefineDocument(ctx, data, analysis.MaxOutputTokens)
			if err == nil {
				return sale, analysis.ExtractedText
			}
			log.Printf("[upload] document refinement failed: %v", err)
		}
		return s.engine.Extract(analysis.ExtractedText), analysis.ExtractedText
	}

	sale := s.engine.Extract(analysis.ExtractedText)
	if isLowValue(sale) && s.refinerAvailable() {
		refined, err := s.refiner.RefineText(ctx, analysis.ExtractedText, analysis.MaxOutputTokens)
		if err == nil {
			return refined, analysis.ExtractedText
		}
		log.Printf("[upload] text refinement failed: %v", err)
	}
	return sale, analysis.ExtractedText
}

// processImage has no local OCR; the refiner's vision path is the only
// source of fields. Without it the record comes back empty for manual entry.
func (s *UploadService) processImage(ctx context.Context, data []byte) extraction.Sale {
	if s.refinerAvailable() {
		sale, err := s.refiner.RefineDocument(ctx, data, 0)
		if err == nil {
			return sale
		}
		log.Printf("[upload] image refinement failed: %v", err)
	}
	return extraction.EmptySale()
}

func (s *UploadService) refinerAvailable() bool {
	return s.refiner != nil && s.refiner.Available()
}

func (s *UploadService) saveReceipt(userID, filename, kind string, data []byte) (string, error) {
	if s.uploadDir == "" {
		return "", nil
	}
	dir := filepath.Join(s.uploadDir, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = "." + kind
	}
	path := filepath.Join(dir, uuid.New().String()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	return path, nil
}

// isLowValue reports whether a local extraction is too thin to trust:
// nothing positively priced and no total means the text defeated the
// regex engine.
func isLowValue(sale extraction.Sale) bool {
	if sale.TotalAmount > 0 {
		return false
	}
	for _, p := range sale.Products {
		if p.Price > 0 {
			return false
		}
	}
	return true
}

// sniffFileType identifies the upload by magic bytes. Returns "pdf", "png",
// "jpeg", or "" for anything else.
func sniffFileType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return "pdf"
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "png"
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return "jpeg"
	default:
		return ""
	}
}
