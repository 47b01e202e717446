package store

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/retailtally/backend/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the database operations used by the services.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)

	// Sale operations
	CreateSale(ctx context.Context, sale *model.Sale) error
	GetSale(ctx context.Context, saleID string) (*model.Sale, error)
	UpdateSale(ctx context.Context, sale *model.Sale) error
	DeleteSale(ctx context.Context, saleID string) error
	ListSales(ctx context.Context, filter model.SaleFilter, pageSize int32, pageToken string) ([]*model.Sale, string, error)
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
