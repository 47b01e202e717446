package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/retailtally/backend/internal/model"
)

// MemoryStore implements Store with in-memory maps. It backs local
// development and tests, and mirrors the original deployment's in-process
// storage.
type MemoryStore struct {
	mu sync.RWMutex

	users map[string]*model.User
	sales map[string]*model.Sale
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*model.User),
		sales: make(map[string]*model.Sale),
	}
}

// paginateIDs applies cursor-based pagination to a sorted slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
				// If we've reached the end without finding a greater ID
				if i == len(ids)-1 {
					return nil, ""
				}
			}
		}
	}

	ids = ids[startIdx:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

// User operations

func (m *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("user with email %s already exists", user.Email)
		}
	}

	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*model.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Sale operations

func (m *MemoryStore) CreateSale(ctx context.Context, sale *model.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}

	m.sales[sale.ID] = sale
	return nil
}

func (m *MemoryStore) GetSale(ctx context.Context, saleID string) (*model.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sale, ok := m.sales[saleID]
	if !ok {
		return nil, fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
	}
	return sale, nil
}

func (m *MemoryStore) UpdateSale(ctx context.Context, sale *model.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sales[sale.ID]; !ok {
		return fmt.Errorf("sale %s: %w", sale.ID, ErrNotFound)
	}
	m.sales[sale.ID] = sale
	return nil
}

func (m *MemoryStore) DeleteSale(ctx context.Context, saleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sales[saleID]; !ok {
		return fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
	}
	delete(m.sales, saleID)
	return nil
}

func (m *MemoryStore) ListSales(ctx context.Context, filter model.SaleFilter, pageSize int32, pageToken string) ([]*model.Sale, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, sale := range m.sales {
		if !saleMatches(sale, filter) {
			continue
		}
		ids = append(ids, id)
	}

	ids, nextToken := paginateIDs(ids, pageSize, pageToken)

	sales := make([]*model.Sale, 0, len(ids))
	for _, id := range ids {
		sales = append(sales, m.sales[id])
	}
	return sales, nextToken, nil
}

func saleMatches(sale *model.Sale, filter model.SaleFilter) bool {
	if filter.EmployeeID != "" && sale.EmployeeID != filter.EmployeeID {
		return false
	}
	if filter.Status != "" && sale.Status != filter.Status {
		return false
	}
	if filter.StartDate != nil && sale.Date.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && sale.Date.After(*filter.EndDate) {
		return false
	}
	return true
}
