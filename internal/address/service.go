package address

import "context"

// Service manages a user's address book. Every lookup is scoped by user id,
// so a foreign address reads as not found.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID uint) ([]Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id uint) (Address, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) Add(ctx context.Context, userID uint, a Address) (Address, error) {
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	a.ID = 0
	a.UserID = userID
	return s.repo.Create(ctx, a)
}

func (s *Service) Update(ctx context.Context, userID, id uint, a Address) (Address, error) {
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	a.ID = id
	a.UserID = userID
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	return s.repo.Delete(ctx, userID, id)
}
