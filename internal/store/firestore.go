package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/retailtally/backend/internal/model"
)

// FirestoreStore implements the Store interface using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// applyDateAwarePagination handles pagination for queries with date range filters.
// Firestore requires OrderBy on inequality fields first, so we use OrderBy("Date") + OrderBy(__name__).
// The cursor must include both the Date value and the document ID.
func (s *FirestoreStore) applyDateAwarePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("Date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["Date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for
// cursor-based pagination. It fetches pageSize+1 docs so the caller can
// detect whether a next page exists.
func (s *FirestoreStore) applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// User operations

func (s *FirestoreStore) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.client.Collection("users").Doc(user.ID).Set(ctx, user)
	return err
}

func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := s.client.Collection("users").Doc(userID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	// Field names match Go struct field names (PascalCase); that is how
	// Firestore serializes structs without tags.
	iter := s.client.Collection("users").Where("Email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	iter := s.client.Collection("users").OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		var user model.User
		if err := doc.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to parse user: %w", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

// Sale operations

func (s *FirestoreStore) CreateSale(ctx context.Context, sale *model.Sale) error {
	_, err := s.client.Collection("sales").Doc(sale.ID).Set(ctx, sale)
	return err
}

func (s *FirestoreStore) GetSale(ctx context.Context, saleID string) (*model.Sale, error) {
	doc, err := s.client.Collection("sales").Doc(saleID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
	}

	var sale model.Sale
	if err := doc.DataTo(&sale); err != nil {
		return nil, fmt.Errorf("failed to parse sale: %w", err)
	}
	return &sale, nil
}

func (s *FirestoreStore) UpdateSale(ctx context.Context, sale *model.Sale) error {
	_, err := s.client.Collection("sales").Doc(sale.ID).Set(ctx, sale)
	return err
}

func (s *FirestoreStore) DeleteSale(ctx context.Context, saleID string) error {
	_, err := s.client.Collection("sales").Doc(saleID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListSales(ctx context.Context, filter model.SaleFilter, pageSize int32, pageToken string) ([]*model.Sale, string, error) {
	query := s.client.Collection("sales").Query

	if filter.EmployeeID != "" {
		query = query.Where("EmployeeID", "==", filter.EmployeeID)
	}
	if filter.Status != "" {
		query = query.Where("Status", "==", string(filter.Status))
	}

	hasDateFilter := filter.StartDate != nil || filter.EndDate != nil
	if filter.StartDate != nil {
		query = query.Where("Date", ">=", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("Date", "<=", *filter.EndDate)
	}

	var err error
	if hasDateFilter {
		query, err = s.applyDateAwarePagination(ctx, query, "sales", pageSize, pageToken)
	} else {
		query, err = s.applyCursorPagination(query, pageSize, pageToken)
	}
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list sales: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	sales := make([]*model.Sale, 0, len(docs))
	for _, doc := range docs {
		var sale model.Sale
		if err := doc.DataTo(&sale); err != nil {
			return nil, "", fmt.Errorf("failed to parse sale: %w", err)
		}
		sales = append(sales, &sale)
	}
	return sales, nextPageToken, nil
}
