package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retailtally/backend/internal/auth"
	"github.com/retailtally/backend/internal/extraction"
	"github.com/retailtally/backend/internal/model"
	"github.com/retailtally/backend/internal/store"
)

// Validation ceilings for manually entered sales. OCR paths are clamped by
// the extraction sanitizer; these reject rather than clamp because a human
// typed the value.
const (
	maxSaleQuantity  = 1000
	maxSalePrice     = 10000
	maxSaleLineTotal = 1000000
)

// SalesService owns the sale lifecycle: create, read, update, delete,
// listing, and the admin approval flow.
type SalesService struct {
	store store.Store
}

func NewSalesService(st store.Store) *SalesService {
	return &SalesService{store: st}
}

// Create records a new sale for the authenticated user. Employees may only
// record sales against themselves; admins may record for anyone.
func (s *SalesService) Create(ctx context.Context, sale *model.Sale) (*model.Sale, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if sale.EmployeeID == "" {
		sale.EmployeeID = claims.UID
	}
	if sale.EmployeeID != claims.UID && !claims.IsAdmin() {
		return nil, fmt.Errorf("%w: cannot record a sale for another employee", ErrForbidden)
	}
	if err := validateSale(sale); err != nil {
		return nil, err
	}

	now := time.Now()
	sale.ID = uuid.New().String()
	sale.Status = model.StatusPending
	sale.ReviewedBy = ""
	sale.Category = primaryCategory(sale.Products)
	if sale.TotalAmount == 0 {
		sale.TotalAmount = sumProducts(sale.Products)
	}
	if sale.Date.IsZero() {
		sale.Date = now
	}
	sale.CreatedAt = now
	sale.UpdatedAt = now

	if err := s.store.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return sale, nil
}

// Get returns a sale if the caller owns it or is an admin.
func (s *SalesService) Get(ctx context.Context, id string) (*model.Sale, error) {
	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.RequireSaleAccess(ctx, sale.EmployeeID); err != nil {
		return nil, err
	}
	return sale, nil
}

// Update replaces the mutable fields of an existing sale. A non-admin edit
// sends the sale back through review.
func (s *SalesService) Update(ctx context.Context, sale *model.Sale) (*model.Sale, error) {
	existing, err := s.store.GetSale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	claims, err := auth.RequireSaleAccess(ctx, existing.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := validateSale(sale); err != nil {
		return nil, err
	}

	existing.CustomerName = sale.CustomerName
	existing.PhoneNumber = sale.PhoneNumber
	existing.Products = sale.Products
	existing.TotalAmount = sale.TotalAmount
	existing.StoreLocation = sale.StoreLocation
	existing.OrderNumber = sale.OrderNumber
	existing.Category = primaryCategory(sale.Products)
	if !sale.Date.IsZero() {
		existing.Date = sale.Date
	}
	if existing.TotalAmount == 0 {
		existing.TotalAmount = sumProducts(existing.Products)
	}
	if !claims.IsAdmin() {
		existing.Status = model.StatusPending
		existing.ReviewedBy = ""
	}
	existing.UpdatedAt = time.Now()

	if err := s.store.UpdateSale(ctx, existing); err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}
	return existing, nil
}

// Delete removes a sale the caller owns (or any sale, for admins).
func (s *SalesService) Delete(ctx context.Context, id string) error {
	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		return err
	}
	if _, err := auth.RequireSaleAccess(ctx, sale.EmployeeID); err != nil {
		return err
	}
	return s.store.DeleteSale(ctx, id)
}

// List returns sales matching the filter. Employees are pinned to their own
// records regardless of the requested filter.
func (s *SalesService) List(ctx context.Context, filter model.SaleFilter, pageSize int32, pageToken string) ([]*model.Sale, string, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, "", err
	}
	if !claims.IsAdmin() {
		filter.EmployeeID = claims.UID
	}
	return s.store.ListSales(ctx, filter, pageSize, pageToken)
}

// ListPending returns sales awaiting review. Admin only.
func (s *SalesService) ListPending(ctx context.Context, pageSize int32, pageToken string) ([]*model.Sale, string, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, "", err
	}
	return s.store.ListSales(ctx, model.SaleFilter{Status: model.StatusPending}, pageSize, pageToken)
}

// SetApproval moves a pending sale to approved or rejected. Admin only;
// already-reviewed sales cannot be re-reviewed.
func (s *SalesService) SetApproval(ctx context.Context, id string, status model.ApprovalStatus) (*model.Sale, error) {
	claims, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if status != model.StatusApproved && status != model.StatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidInput)
	}

	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: sale is already %s", ErrConflict, sale.Status)
	}

	sale.Status = status
	sale.ReviewedBy = claims.UID
	sale.UpdatedAt = time.Now()
	if err := s.store.UpdateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}
	return sale, nil
}

func validateSale(sale *model.Sale) error {
	if strings.TrimSpace(sale.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if len(sale.Products) == 0 {
		return fmt.Errorf("%w: at least one product is required", ErrInvalidInput)
	}
	if sale.TotalAmount < 0 {
		return fmt.Errorf("%w: total amount cannot be negative", ErrInvalidInput)
	}
	for i, p := range sale.Products {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: product %d has no name", ErrInvalidInput, i+1)
		}
		if p.Quantity < 1 || p.Quantity > maxSaleQuantity {
			return fmt.Errorf("%w: product %q quantity must be between 1 and %d", ErrInvalidInput, p.Name, maxSaleQuantity)
		}
		if p.Price < 0 || p.Price > maxSalePrice {
			return fmt.Errorf("%w: product %q price must be between 0 and %d", ErrInvalidInput, p.Name, maxSalePrice)
		}
		if p.Price*float64(p.Quantity) > maxSaleLineTotal {
			return fmt.Errorf("%w: product %q line total exceeds %d", ErrInvalidInput, p.Name, maxSaleLineTotal)
		}
	}
	return nil
}

func sumProducts(products []extraction.LineItem) float64 {
	var sum float64
	for _, p := range products {
		sum += p.Price * float64(p.Quantity)
	}
	return sum
}

// primaryCategory picks the sale-level category from its line items.
// Activations dominate upgrades, which dominate everything else; a sale of
// one activation and five accessories is still an activation sale.
func primaryCategory(products []extraction.LineItem) extraction.Category {
	precedence := []extraction.Category{
		extraction.CategoryActivation,
		extraction.CategoryUpgrade,
		extraction.CategoryService,
		extraction.CategoryProtection,
		extraction.CategoryAccessory,
	}
	for _, cat := range precedence {
		for _, p := range products {
			if p.Category == cat {
				return cat
			}
		}
	}
	return extraction.CategoryAccessory
}
