package order

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrOrderClosed is returned when an operation targets an order that
	// already reached a terminal status.
	ErrOrderClosed = errors.New("order already completed or cancelled")
	// ErrEmptyCart rejects checkout on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrAuthRequired rejects checkout without an authenticated buyer.
	ErrAuthRequired = errors.New("sign in required")
	// ErrUnknownProduct rejects a cart line whose product no longer exists.
	ErrUnknownProduct = errors.New("cart references an unknown product")
	// ErrStoreUnavailable stands in for any failed order-store call; the
	// underlying cause is logged, the caller only needs to know a retry
	// is appropriate.
	ErrStoreUnavailable = errors.New("order store unavailable")
)

// Repository defines persistence operations for orders. The mark
// operations report whether a pending row was actually transitioned so
// the service can distinguish terminal orders from missing ones.
type Repository interface {
	Create(ord Order) (Order, error)
	GetByID(id int) (Order, error)
	ListByUser(userID int) ([]Order, error)
	MarkPaid(id int, method, paidAt, updatedAt string) (bool, error)
	MarkCancelled(id int, updatedAt string) (bool, error)
	DeleteByUser(userID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders []Order
	nextID int
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make([]Order, 0, len(seed)), nextID: 1}
	maxID := 0
	for _, ord := range seed {
		r.orders = append(r.orders, ord)
		if ord.OrderID > maxID {
			maxID = ord.OrderID
		}
	}
	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) Create(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ord.OrderID == 0 {
		ord.OrderID = r.nextID
		r.nextID++
	}
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ord := range r.orders {
		if ord.OrderID == id {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) MarkPaid(id int, method, paidAt, updatedAt string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ord := range r.orders {
		if ord.OrderID == id && ord.Status == StatusPending {
			ord.Status = StatusPaid
			ord.PaymentMethod = method
			ord.PaymentDate = paidAt
			ord.UpdatedAt = updatedAt
			r.orders[i] = ord
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) MarkCancelled(id int, updatedAt string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ord := range r.orders {
		if ord.OrderID == id && ord.Status == StatusPending {
			ord.Status = StatusCancelled
			ord.UpdatedAt = updatedAt
			r.orders[i] = ord
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) DeleteByUser(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]Order, 0, len(r.orders))
	for _, ord := range r.orders {
		if ord.UserID != userID {
			kept = append(kept, ord)
		}
	}
	r.orders = kept
	return nil
}
