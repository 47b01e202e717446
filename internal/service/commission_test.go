package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailtally/backend/internal/extraction"
	"github.com/retailtally/backend/internal/model"
	"github.com/retailtally/backend/internal/store"
)

func commissionFixture(t *testing.T) (*CommissionService, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(context.Background(), &model.User{
		ID: "emp-1", Name: "Jane Doe", Email: "jane@test.local", Role: model.RoleEmployee,
	}))
	return NewCommissionService(st), st
}

func TestCommissionReport_Tier1(t *testing.T) {
	svc, st := commissionFixture(t)

	seedSale(t, st, &model.Sale{
		EmployeeID:   "emp-1",
		CustomerName: "Jane Doe",
		TotalAmount:  145,
		Date:         time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:       model.StatusApproved,
		Products: []extraction.LineItem{
			{Name: "Phone Case", Quantity: 2, Price: 25, Category: extraction.CategoryAccessory},
			{Name: "Basic Plan Activation", Quantity: 1, Price: 30, Category: extraction.CategoryActivation},
			{Name: "Premium Plan Activation", Quantity: 1, Price: 65, Category: extraction.CategoryActivation},
		},
	})

	report, err := svc.Report(adminContext("admin-1"), "emp-1", nil, nil)
	require.NoError(t, err)

	// $50 accessories stays below the $500 tier 1 target, so tier 1 rates:
	// 50*0.08 + 1*$10 (<=30 band) + 1*$25 (>55 band) = 39.00
	assert.Equal(t, 1, report.Tier)
	assert.InDelta(t, 50, report.AccessoryRevenue, 0.001)
	assert.Equal(t, 1, report.Activations.Type30)
	assert.Equal(t, 1, report.Activations.Type60)
	assert.Equal(t, 2, report.Activations.Total)
	assert.InDelta(t, 4.0, report.AccessoryCommission, 0.001)
	assert.InDelta(t, 35.0, report.ActivationCommission, 0.001)
	assert.InDelta(t, 39.0, report.TotalCommission, 0.001)
	assert.Equal(t, 1, report.TotalSales)
	assert.InDelta(t, 145, report.TotalAmount, 0.001)
}

func TestCommissionReport_TierPromotion(t *testing.T) {
	svc, st := commissionFixture(t)

	seedSale(t, st, &model.Sale{
		EmployeeID:   "emp-1",
		CustomerName: "Bulk Buyer",
		TotalAmount:  1100,
		Date:         time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC),
		Status:       model.StatusApproved,
		Products: []extraction.LineItem{
			{Name: "Wireless Earbuds", Quantity: 10, Price: 110, Category: extraction.CategoryAccessory},
		},
	})

	report, err := svc.Report(adminContext("admin-1"), "emp-1", nil, nil)
	require.NoError(t, err)

	// $1100 in accessories clears the $1000 tier 3 target but not $1750.
	assert.Equal(t, 3, report.Tier)
	assert.Equal(t, "Tier 3", report.TierName)
	assert.InDelta(t, 110.0, report.AccessoryCommission, 0.001, "10% of 1100")
}

func TestCommissionReport_CPAndAPO(t *testing.T) {
	svc, st := commissionFixture(t)

	seedSale(t, st, &model.Sale{
		EmployeeID:   "emp-1",
		CustomerName: "Jane Doe",
		TotalAmount:  275,
		Date:         time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		Status:       model.StatusApproved,
		Products: []extraction.LineItem{
			{Name: "Device Protection Plan", Quantity: 1, Price: 15, Category: extraction.CategoryProtection},
			{Name: "APO Bundle", Quantity: 2, Price: 80, Category: extraction.CategoryService},
			{Name: "APO Lite", Quantity: 1, Price: 40, Category: extraction.CategoryService},
		},
	})

	report, err := svc.Report(adminContext("admin-1"), "emp-1", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.CPCount)
	assert.InDelta(t, 15.0, report.CPCommission, 0.001, "tier 1 CP rate")
	assert.InDelta(t, 160.0, report.APORevenue, 0.001, "APO under $60 is excluded")
	assert.InDelta(t, 16.0, report.APOCommission, 0.001, "10% of 160")
}

func TestCommissionReport_DateWindow(t *testing.T) {
	svc, st := commissionFixture(t)

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

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.Report(adminContext("admin-1"), "emp-1", &start, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalSales, "january sale is outside the window")
	assert.InDelta(t, 100, report.AccessoryRevenue, 0.001)
}

func TestCommissionReport_Access(t *testing.T) {
	svc, _ := commissionFixture(t)

	_, err := svc.Report(employeeContext("emp-2"), "emp-1", nil, nil)
	assert.Error(t, err, "employees cannot read another employee's report")

	report, err := svc.Report(employeeContext("emp-1"), "emp-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", report.EmployeeID)
	assert.Len(t, report.TierDetails, 4)
}

func TestCommissionReport_UnknownEmployee(t *testing.T) {
	svc, _ := commissionFixture(t)

	_, err := svc.Report(adminContext("admin-1"), "ghost", nil, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
