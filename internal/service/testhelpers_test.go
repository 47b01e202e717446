package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/retailtally/backend/internal/auth"
	"github.com/retailtally/backend/internal/extraction"
	"github.com/retailtally/backend/internal/model"
	"github.com/retailtally/backend/internal/store"
)

func employeeContext(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:   userID,
		Email: userID + "@test.local",
		Role:  model.RoleEmployee,
	})
}

func adminContext(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:   userID,
		Email: userID + "@test.local",
		Role:  model.RoleAdmin,
	})
}

func validSale(employeeID string) *model.Sale {
	return &model.Sale{
		EmployeeID:   employeeID,
		CustomerName: "Jane Doe",
		PhoneNumber:  "555-123-4567",
		Products: []extraction.LineItem{
			{Name: "Screen Protector", Quantity: 2, Price: 19.99, Category: extraction.CategoryAccessory},
			{Name: "USB-C Cable", Quantity: 1, Price: 12.50, Category: extraction.CategoryAccessory},
		},
		Date: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

// seedSale creates an approved or pending sale directly in the store,
// bypassing service validation.
func seedSale(t *testing.T, st store.Store, sale *model.Sale) *model.Sale {
	t.Helper()
	require.NoError(t, st.CreateSale(context.Background(), sale))
	return sale
}
