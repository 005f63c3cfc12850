package product

import "strings"

// Service provides catalog queries for the storefront.
type Service struct {
	repo Repository
}

// ServiceInterface is what other packages depend on when they need
// product details (cart enrichment, order line snapshots).
type ServiceInterface interface {
	GetByID(id int) (Product, error)
	ListByIDs(ids []int) ([]Product, error)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

// List returns the catalog narrowed by the given filter. Category "all"
// on a product matches every category page, mirroring the storefront
// navigation behaviour.
func (s *Service) List(f Filter) ([]Product, error) {
	all, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	out := make([]Product, 0, len(all))
	category := strings.ToLower(strings.TrimSpace(f.Category))
	query := strings.ToLower(strings.TrimSpace(f.Query))

	for _, p := range all {
		if category != "" {
			pc := strings.ToLower(p.Category)
			if pc != category && pc != "all" {
				continue
			}
		}
		if query != "" {
			name := strings.ToLower(p.Name)
			desc := strings.ToLower(p.Description)
			if !strings.Contains(name, query) && !strings.Contains(desc, query) {
				continue
			}
		}
		if p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}
