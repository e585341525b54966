package address

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int) ([]Address, error) {
	return s.repo.List(ctx, userID)
}

// Get returns a saved address only when userID owns it.
func (s *Service) Get(ctx context.Context, userID, addressID int) (Address, error) {
	if addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID, addressID)
}

func (s *Service) Add(ctx context.Context, userID int, in Shipping) (Address, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Address{}, err
	}
	return s.repo.Add(ctx, userID, in)
}

func (s *Service) Update(ctx context.Context, userID, addressID int, in Shipping) (Address, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Address{}, err
	}
	return s.repo.Update(ctx, userID, addressID, in)
}

func (s *Service) Delete(ctx context.Context, userID, addressID int) error {
	return s.repo.Delete(ctx, userID, addressID)
}
