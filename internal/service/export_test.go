package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/retailtally/backend/internal/extraction"
	"github.com/retailtally/backend/internal/model"
	"github.com/retailtally/backend/internal/store"
)

func TestSalesXLSX(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewExportService(st)

	seedSale(t, st, &model.Sale{
		EmployeeID:   "emp-1",
		CustomerName: "Jane Doe",
		PhoneNumber:  "555-123-4567",
		TotalAmount:  52.48,
		Date:         time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:       model.StatusApproved,
		Category:     extraction.CategoryAccessory,
		OrderNumber:  "INV-2041",
		Products: []extraction.LineItem{
			{Name: "Screen Protector", Quantity: 2, Price: 19.99, Category: extraction.CategoryAccessory},
			{Name: "USB-C Cable", Quantity: 1, Price: 12.50, Category: extraction.CategoryAccessory},
		},
	})

	data, err := svc.SalesXLSX(employeeContext("emp-1"), "emp-1", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one sale")

	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2025-03-15", rows[1][0])
	assert.Equal(t, "Jane Doe", rows[1][1])
	assert.Equal(t, "2x Screen Protector; USB-C Cable", rows[1][3])
	assert.Equal(t, "approved", rows[1][6])
	assert.Equal(t, "INV-2041", rows[1][7])
}

func TestSalesXLSX_DateWindow(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewExportService(st)

	for i, date := range []time.Time{
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	} {
		seedSale(t, st, &model.Sale{
			ID:           string(rune('a' + i)),
			EmployeeID:   "emp-1",
			CustomerName: "Jane Doe",
			TotalAmount:  100,
			Date:         date,
			Status:       model.StatusApproved,
			Products: []extraction.LineItem{
				{Name: "Phone Case", Quantity: 1, Price: 100, Category: extraction.CategoryAccessory},
			},
		})
	}

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	data, err := svc.SalesXLSX(employeeContext("emp-1"), "emp-1", &from, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-10", rows[1][0])
}

func TestSalesXLSX_Access(t *testing.T) {
	svc := NewExportService(store.NewMemoryStore())

	_, err := svc.SalesXLSX(employeeContext("emp-2"), "emp-1", nil, nil)
	assert.Error(t, err, "employees cannot export another employee's sales")

	data, err := svc.SalesXLSX(adminContext("admin-1"), "emp-1", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "empty windows still produce a workbook with headers")
}
