package cart

import (
	"sync"

	"github.com/ma-enterprise/storefront-backend/internal/user"
)

// Repository stores per-user carts as productID -> quantity maps.
// Quantities are deltas on write so duplicates increment.
type Repository interface {
	AddToCart(userID int, productID int, qty int, updatedAt string) (map[int]int, error)
	GetCart(userID int) (map[int]int, error)
	ClearCart(userID int, updatedAt string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users []user.User
}

func NewInMemoryRepository(seed []user.User) *InMemoryRepository {
	r := &InMemoryRepository{users: make([]user.User, 0, len(seed))}
	r.users = append(r.users, seed...)
	return r
}

func (r *InMemoryRepository) AddToCart(userID int, productID int, qty int, updatedAt string) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == userID {
			if u.Cart == nil {
				u.Cart = make(map[int]int)
			}
			u.Cart[productID] += qty
			// zero or negative quantity removes the line
			if u.Cart[productID] <= 0 {
				delete(u.Cart, productID)
			}
			if updatedAt != "" {
				u.UpdatedAt = updatedAt
			}
			r.users[i] = u
			return copyCart(u.Cart), nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *InMemoryRepository) GetCart(userID int) (map[int]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == userID {
			return copyCart(u.Cart), nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *InMemoryRepository) ClearCart(userID int, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == userID {
			u.Cart = make(map[int]int)
			if updatedAt != "" {
				u.UpdatedAt = updatedAt
			}
			r.users[i] = u
			return nil
		}
	}
	return user.ErrNotFound
}

func copyCart(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
