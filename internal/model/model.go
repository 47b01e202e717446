// Package model holds the persisted entities shared by the store, services,
// and API layers.
package model

import (
	"time"

	"github.com/retailtally/backend/internal/extraction"
)

// Role controls what a user may do. Admins approve sales and see every
// employee's records; employees see only their own.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// ApprovalStatus is the review state of a recorded sale.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// User is an employee or admin account.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	StoreLocation string    `json:"storeLocation,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Sale is a recorded sale, either entered manually or built from an
// extracted receipt. Products reuses the extraction line-item shape so the
// upload pipeline's output persists without conversion.
type Sale struct {
	ID            string                `json:"id"`
	EmployeeID    string                `json:"employeeId"`
	CustomerName  string                `json:"customerName"`
	PhoneNumber   string                `json:"phoneNumber,omitempty"`
	Products      []extraction.LineItem `json:"products"`
	TotalAmount   float64               `json:"totalAmount"`
	Date          time.Time             `json:"date"`
	StoreLocation string                `json:"storeLocation,omitempty"`
	OrderNumber   string                `json:"orderNumber,omitempty"`
	Category      extraction.Category   `json:"category"`
	Status        ApprovalStatus        `json:"status"`
	ReviewedBy    string                `json:"reviewedBy,omitempty"`
	ReceiptPath   string                `json:"receiptPath,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// SaleFilter narrows a sales listing. Zero values mean "no filter".
type SaleFilter struct {
	EmployeeID string
	Status     ApprovalStatus
	StartDate  *time.Time
	EndDate    *time.Time
}
