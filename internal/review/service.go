package review

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wichananm65/shop-backend/internal/platform/logging"
	"github.com/wichananm65/shop-backend/internal/product"
	"github.com/wichananm65/shop-backend/internal/user"
)

// Purchases answers whether a user has received a product.
type Purchases interface {
	HasDeliveredPurchase(ctx context.Context, userID, productID int) (bool, error)
}

type Users interface {
	Summaries(ctx context.Context, ids []int) (map[int]user.Summary, error)
}

type Service struct {
	repo      Repository
	catalog   product.Provider
	purchases Purchases
	users     Users
	logger    *zap.Logger
}

func NewService(repo Repository, catalog product.Provider, purchases Purchases, users Users, logger *zap.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, purchases: purchases, users: users, logger: logging.OrNop(logger)}
}

type Input struct {
	ProductID int    `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// CreateReview stores a review for a product the user has received.
func (s *Service) CreateReview(ctx context.Context, userID int, in Input) (Review, error) {
	if _, err := s.catalog.Snapshot(ctx, in.ProductID); err != nil {
		return Review{}, err
	}
	if !validRating(in.Rating) {
		return Review{}, ErrInvalidRating
	}
	if err := s.requirePurchase(ctx, userID, in.ProductID); err != nil {
		return Review{}, err
	}
	return s.repo.Create(ctx, Review{
		ProductID: in.ProductID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	})
}

// UpdateReview changes rating and comment. A zero rating or empty comment
// keeps the stored value. The purchase is checked again on every update.
func (s *Service) UpdateReview(ctx context.Context, id, userID int, in Input) (Review, error) {
	r, err := s.owned(ctx, id, userID)
	if err != nil {
		return Review{}, err
	}
	if err := s.requirePurchase(ctx, userID, r.ProductID); err != nil {
		return Review{}, err
	}
	if in.Rating != 0 {
		if !validRating(in.Rating) {
			return Review{}, ErrInvalidRating
		}
		r.Rating = in.Rating
	}
	if c := strings.TrimSpace(in.Comment); c != "" {
		r.Comment = c
	}
	return s.repo.Update(ctx, r)
}

func (s *Service) DeleteReview(ctx context.Context, id, userID int) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListForProduct(ctx context.Context, productID int) ([]View, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reviews)
}

func (s *Service) ListAll(ctx context.Context) ([]View, error) {
	reviews, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reviews)
}

func (s *Service) owned(ctx context.Context, id, userID int) (Review, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return Review{}, err
	}
	if r.UserID != userID {
		return Review{}, ErrNotOwner
	}
	return r, nil
}

func (s *Service) requirePurchase(ctx context.Context, userID, productID int) error {
	ok, err := s.purchases.HasDeliveredPurchase(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug("review rejected without delivered purchase",
			zap.Int("user_id", userID), zap.Int("product_id", productID))
		return ErrNotPurchased
	}
	return nil
}

func (s *Service) views(ctx context.Context, reviews []Review) ([]View, error) {
	out := make([]View, 0, len(reviews))
	if len(reviews) == 0 {
		return out, nil
	}
	userIDs := make([]int, 0, len(reviews))
	productIDs := make([]int, 0, len(reviews))
	for _, r := range reviews {
		userIDs = append(userIDs, r.UserID)
		productIDs = append(productIDs, r.ProductID)
	}
	users, err := s.users.Summaries(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	snaps, err := s.catalog.Snapshots(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	for _, r := range reviews {
		out = append(out, View{Review: r, UserName: users[r.UserID].Name, ProductName: snaps[r.ProductID].Name})
	}
	return out, nil
}
