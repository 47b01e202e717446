package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailtally/backend/internal/extraction"
	"github.com/retailtally/backend/internal/model"
)

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	user := &model.User{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Role:  model.RoleEmployee,
	}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID, "CreateUser should assign an ID")

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)

	byEmail, err := s.GetUserByEmail(ctx, "JANE@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID, "email lookup should be case-insensitive")

	dup := &model.User{Name: "Other", Email: "jane@example.com"}
	assert.Error(t, s.CreateUser(ctx, dup), "duplicate email should be rejected")

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func makeSale(employeeID string, status model.ApprovalStatus, date time.Time) *model.Sale {
	return &model.Sale{
		EmployeeID:   employeeID,
		CustomerName: "Customer",
		Products: []extraction.LineItem{
			{Name: "Widget", Quantity: 1, Price: 10.00, Category: extraction.CategoryAccessory},
		},
		TotalAmount: 10.00,
		Date:        date,
		Status:      status,
	}
}

func TestMemoryStore_SaleCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	sale := makeSale("emp-1", model.StatusPending, time.Now())
	require.NoError(t, s.CreateSale(ctx, sale))
	require.NotEmpty(t, sale.ID)

	got, err := s.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", got.EmployeeID)

	got.Status = model.StatusApproved
	require.NoError(t, s.UpdateSale(ctx, got))
	updated, err := s.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, updated.Status)

	require.NoError(t, s.DeleteSale(ctx, sale.ID))
	_, err = s.GetSale(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.UpdateSale(ctx, sale), ErrNotFound)
	assert.ErrorIs(t, s.DeleteSale(ctx, sale.ID), ErrNotFound)
}

func TestMemoryStore_ListSalesFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateSale(ctx, makeSale("emp-1", model.StatusPending, jan)))
	require.NoError(t, s.CreateSale(ctx, makeSale("emp-1", model.StatusApproved, feb)))
	require.NoError(t, s.CreateSale(ctx, makeSale("emp-2", model.StatusPending, mar)))

	all, _, err := s.ListSales(ctx, model.SaleFilter{}, 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	emp1, _, err := s.ListSales(ctx, model.SaleFilter{EmployeeID: "emp-1"}, 0, "")
	require.NoError(t, err)
	assert.Len(t, emp1, 2)

	pending, _, err := s.ListSales(ctx, model.SaleFilter{Status: model.StatusPending}, 0, "")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	febOnly, _, err := s.ListSales(ctx, model.SaleFilter{StartDate: &start, EndDate: &end}, 0, "")
	require.NoError(t, err)
	require.Len(t, febOnly, 1)
	assert.Equal(t, model.StatusApproved, febOnly[0].Status)
}

func TestMemoryStore_ListSalesPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 5; i++ {
		sale := makeSale("emp-1", model.StatusPending, time.Now())
		sale.ID = fmt.Sprintf("sale-%d", i)
		require.NoError(t, s.CreateSale(ctx, sale))
	}

	page1, token, err := s.ListSales(ctx, model.SaleFilter{}, 2, "")
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	require.NotEmpty(t, token)

	page2, token2, err := s.ListSales(ctx, model.SaleFilter{}, 2, token)
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	require.NotEmpty(t, token2)

	page3, token3, err := s.ListSales(ctx, model.SaleFilter{}, 2, token2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.Empty(t, token3)

	seen := map[string]bool{}
	for _, sale := range append(append(page1, page2...), page3...) {
		assert.False(t, seen[sale.ID], "sale %s returned twice", sale.ID)
		seen[sale.ID] = true
	}
	assert.Len(t, seen, 5)
}
