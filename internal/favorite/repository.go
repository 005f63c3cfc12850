package favorite

import (
	"errors"
	"sync"

	"github.com/ma-enterprise/storefront-backend/internal/user"
)

var (
	ErrAlreadyFavorite = errors.New("product already in favorites")
	ErrNotFavorite     = errors.New("product not in favorites")
)

// Repository provides access to favorite operations.
type Repository interface {
	AddFavorite(userID int, productID int, updatedAt string) ([]int, error)
	RemoveFavorite(userID int, productID int, updatedAt string) ([]int, error)
	GetFavorites(userID int) ([]int, error)
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

func (r *InMemoryRepository) AddFavorite(userID int, productID int, updatedAt string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == userID {
			for _, pid := range u.FavoriteProductIDs {
				if pid == productID {
					return nil, ErrAlreadyFavorite
				}
			}
			u.FavoriteProductIDs = append(u.FavoriteProductIDs, productID)
			if updatedAt != "" {
				u.UpdatedAt = updatedAt
			}
			r.users[i] = u
			res := make([]int, len(u.FavoriteProductIDs))
			copy(res, u.FavoriteProductIDs)
			return res, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *InMemoryRepository) RemoveFavorite(userID int, productID int, updatedAt string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == userID {
			found := false
			kept := make([]int, 0, len(u.FavoriteProductIDs))
			for _, pid := range u.FavoriteProductIDs {
				if pid == productID {
					found = true
					continue
				}
				kept = append(kept, pid)
			}
			if !found {
				return nil, ErrNotFavorite
			}
			u.FavoriteProductIDs = kept
			if updatedAt != "" {
				u.UpdatedAt = updatedAt
			}
			r.users[i] = u
			res := make([]int, len(u.FavoriteProductIDs))
			copy(res, u.FavoriteProductIDs)
			return res, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *InMemoryRepository) GetFavorites(userID int) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == userID {
			out := make([]int, len(u.FavoriteProductIDs))
			copy(out, u.FavoriteProductIDs)
			return out, nil
		}
	}
	return nil, user.ErrNotFound
}
