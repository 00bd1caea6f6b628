package sale

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

var (
	ErrNameRequired   = httpx.BadRequest("name is required")
	ErrInvalidPercent = httpx.BadRequest("discountPercent must be between 0 and 100")
	ErrInvalidWindow  = httpx.BadRequest("endsAt must be after startsAt")
	ErrNoCategories   = httpx.BadRequest("at least one category is required")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type Input struct {
	Name            string
	Description     string
	DiscountPercent decimal.Decimal
	StartsAt        time.Time
	EndsAt          time.Time
	Active          bool
	CategoryIDs     []uint
}

func (in Input) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return ErrNameRequired
	case !in.DiscountPercent.IsPositive() || in.DiscountPercent.GreaterThanOrEqual(hundred):
		return ErrInvalidPercent
	case !in.EndsAt.After(in.StartsAt):
		return ErrInvalidWindow
	case len(in.CategoryIDs) == 0:
		return ErrNoCategories
	}
	return nil
}

func (in Input) toSale() Sale {
	return Sale{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		DiscountPercent: in.DiscountPercent,
		StartsAt:        in.StartsAt.UTC(),
		EndsAt:          in.EndsAt.UTC(),
		Active:          in.Active,
		CategoryIDs:     dedupe(in.CategoryIDs),
	}
}

func (s *Service) List(ctx context.Context) ([]Sale, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListActive(ctx context.Context) ([]Sale, error) {
	return s.repo.ListRunning(ctx, s.now())
}

func (s *Service) Get(ctx context.Context, id uint) (Sale, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Sale, error) {
	if err := in.validate(); err != nil {
		return Sale{}, err
	}
	return s.repo.Create(ctx, in.toSale())
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (Sale, error) {
	if err := in.validate(); err != nil {
		return Sale{}, err
	}
	sl := in.toSale()
	sl.ID = id
	return s.repo.Update(ctx, sl)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// Discounts returns the running discounts. Pricing degrades to list prices
// when sales cannot be read.
func (s *Service) Discounts(ctx context.Context) Discounts {
	const op = "sale.Service.Discounts"
	sales, err := s.repo.ListRunning(ctx, s.now())
	if err != nil {
		slog.With("op", op).Error("failed to load running sales", "err", err)
		return Discounts{}
	}
	return Build(sales)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
