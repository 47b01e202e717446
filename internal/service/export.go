package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/retailtally/backend/internal/auth"
	"github.com/retailtally/backend/internal/model"
	"github.com/retailtally/backend/internal/store"
)

// ExportService produces XLSX workbooks of recorded sales.
type ExportService struct {
	store store.Store
}

func NewExportService(st store.Store) *ExportService {
	return &ExportService{store: st}
}

// SalesXLSX returns an XLSX workbook of the employee's sales for the
// optional date window. If only a start is given, the window runs to today.
// Employees can only export their own sales.
func (s *ExportService) SalesXLSX(ctx context.Context, employeeID string, from, to *time.Time) ([]byte, error) {
	if _, err := auth.RequireSaleAccess(ctx, employeeID); err != nil {
		return nil, err
	}

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		now := time.Now().UTC()
		t := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	filter := model.SaleFilter{EmployeeID: employeeID, StartDate: fromDate, EndDate: toDate}
	var sales []*model.Sale
	var pageToken string
	for {
		page, nextToken, err := s.store.ListSales(ctx, filter, 500, pageToken)
		if err != nil {
			return nil, fmt.Errorf("list sales: %w", err)
		}
		sales = append(sales, page...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	f := excelize.NewFile()
	const sheet = "Sales"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Date",
		"Customer",
		"Phone",
		"Products",
		"Category",
		"Total",
		"Status",
		"Order Number",
		"Store Location",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, sale := range sales {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !sale.Date.IsZero() {
			write(1, sale.Date.Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, sale.CustomerName)
		write(3, sale.PhoneNumber)
		write(4, productSummary(sale))
		write(5, string(sale.Category))
		write(6, sale.TotalAmount)
		write(7, string(sale.Status))
		write(8, sale.OrderNumber)
		write(9, sale.StoreLocation)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 24)
	_ = f.SetColWidth(sheet, "C", "C", 16)
	_ = f.SetColWidth(sheet, "D", "D", 48)
	_ = f.SetColWidth(sheet, "E", "E", 12)
	_ = f.SetColWidth(sheet, "F", "G", 12)
	_ = f.SetColWidth(sheet, "H", "I", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// productSummary flattens a sale's line items into one readable cell,
// "2x Wall Charger; Aux Cable".
func productSummary(sale *model.Sale) string {
	parts := make([]string, 0, len(sale.Products))
	for _, p := range sale.Products {
		if p.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", p.Quantity, p.Name))
		} else {
			parts = append(parts, p.Name)
		}
	}
	return strings.Join(parts, "; ")
}
