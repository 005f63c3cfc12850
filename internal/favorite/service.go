package favorite

import (
	"time"

	"github.com/ma-enterprise/storefront-backend/internal/product"
	"github.com/ma-enterprise/storefront-backend/internal/user"
)

type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) AddFavorite(userID int, productID int) ([]int, error) {
	if userID <= 0 || productID <= 0 {
		return nil, user.ErrNotFound
	}
	if _, err := s.products.GetByID(productID); err != nil {
		return nil, err
	}
	return s.repo.AddFavorite(userID, productID, now())
}

func (s *Service) RemoveFavorite(userID int, productID int) ([]int, error) {
	if userID <= 0 || productID <= 0 {
		return nil, user.ErrNotFound
	}
	return s.repo.RemoveFavorite(userID, productID, now())
}

// GetFavorites returns the favorited products with full details.
func (s *Service) GetFavorites(userID int) ([]product.Product, error) {
	if userID <= 0 {
		return nil, user.ErrNotFound
	}
	ids, err := s.repo.GetFavorites(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []product.Product{}, nil
	}
	return s.products.ListByIDs(ids)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
