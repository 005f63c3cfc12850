package cart

import (
	"time"

	"github.com/ma-enterprise/storefront-backend/internal/product"
	"github.com/ma-enterprise/storefront-backend/internal/user"
)

// Service orchestrates cart operations and enriches lines with product
// details.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) AddToCart(userID int, productID int, qty int) ([]Item, error) {
	if userID <= 0 {
		return nil, user.ErrNotFound
	}
	// the product must exist before it can be carted
	if _, err := s.products.GetByID(productID); err != nil {
		return nil, err
	}
	// zero qty does nothing, but still returns the current cart
	if qty == 0 {
		return s.GetCart(userID)
	}

	m, err := s.repo.AddToCart(userID, productID, qty, now())
	if err != nil {
		return nil, err
	}
	return s.enrich(m)
}

func (s *Service) GetCart(userID int) ([]Item, error) {
	if userID <= 0 {
		return nil, user.ErrNotFound
	}
	m, err := s.repo.GetCart(userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(m)
}

// Lines returns the raw productID -> quantity map, used at checkout time.
func (s *Service) Lines(userID int) (map[int]int, error) {
	if userID <= 0 {
		return nil, user.ErrNotFound
	}
	return s.repo.GetCart(userID)
}

// ClearCart empties a user's cart.
func (s *Service) ClearCart(userID int) error {
	if userID <= 0 {
		return user.ErrNotFound
	}
	return s.repo.ClearCart(userID, now())
}

func (s *Service) enrich(m map[int]int) ([]Item, error) {
	ids := make([]int, 0, len(m))
	for pid := range m {
		ids = append(ids, pid)
	}
	if len(ids) == 0 {
		return []Item{}, nil
	}

	products, err := s.products.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	out := make([]Item, 0, len(products))
	for _, p := range products {
		out = append(out, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  m[p.ID],
		})
	}
	return out, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
