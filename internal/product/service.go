package product

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

// Update replaces the row. Orders already placed keep their frozen prices.
func (s *Service) Update(ctx context.Context, id int, p Product) (Product, error) {
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, p)
}
