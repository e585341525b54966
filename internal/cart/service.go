package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wichananm65/shop-backend/internal/platform/logging"
	"github.com/wichananm65/shop-backend/internal/product"
)

// Service orchestrates cart operations. Each mutation is one
// read-modify-write guarded by the cart version; a lost race surfaces as
// ErrConflict and is not retried here. Saved carts are written through to
// the cache.
type Service struct {
	repo    Repository
	catalog product.Provider
	cache   Cache
	logger  *zap.Logger
}

func NewService(repo Repository, catalog product.Provider, cache Cache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{repo: repo, catalog: catalog, cache: cache, logger: logging.OrNop(logger)}
}

// AddItem merges qty into an existing line or appends a new line priced from
// the catalog. The cart is created on first add.
func (s *Service) AddItem(ctx context.Context, userID, productID, qty int) (View, error) {
	if productID <= 0 {
		return View{}, ErrInvalidProduct
	}
	if qty < 1 {
		return View{}, ErrInvalidQuantity
	}
	snap, err := s.catalog.Snapshot(ctx, productID)
	if err != nil {
		return View{}, err
	}

	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		c = Cart{UserID: userID}
	} else if err != nil {
		return View{}, err
	}

	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += qty
	} else {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty, Price: snap.Price})
	}
	return s.save(ctx, c)
}

// SetItemQuantity overwrites the quantity of an existing line.
func (s *Service) SetItemQuantity(ctx context.Context, userID, productID, qty int) (View, error) {
	if qty < 1 {
		return View{}, ErrInvalidQuantity
	}
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}
	i := c.indexOf(productID)
	if i < 0 {
		return View{}, ErrItemNotFound
	}
	c.Items[i].Quantity = qty
	return s.save(ctx, c)
}

// RemoveItem drops the line for productID. Removing an absent line succeeds
// without a write.
func (s *Service) RemoveItem(ctx context.Context, userID, productID int) (View, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if c.indexOf(productID) < 0 {
		return s.view(ctx, c)
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return s.save(ctx, c)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, userID int) error {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.ResetIfVersion(ctx, userID, c.Version); err != nil {
		return err
	}
	s.Refresh(ctx, userID)
	return nil
}

// GetCart returns the stored cart with live catalog fields attached.
func (s *Service) GetCart(ctx context.Context, userID int) (View, error) {
	c, err := s.cache.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cart cache read failed", zap.Int("user_id", userID), zap.Error(err))
		}
		c, err = s.repo.Get(ctx, userID)
		if err != nil {
			return View{}, err
		}
		if err := s.cache.Set(ctx, c); err != nil {
			s.logger.Warn("cart cache fill failed", zap.Int("user_id", userID), zap.Error(err))
		}
	}
	return s.view(ctx, c)
}

// Load reads the cart from the store, bypassing the cache. Checkout uses it
// so the version it compares against is current.
func (s *Service) Load(ctx context.Context, userID int) (Cart, error) {
	return s.repo.Get(ctx, userID)
}

// Refresh reloads the cached copy from the store after a write made outside
// this service, such as checkout emptying the cart.
func (s *Service) Refresh(ctx context.Context, userID int) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("cart reload failed", zap.Int("user_id", userID), zap.Error(err))
		s.drop(ctx, userID)
		return
	}
	s.store(ctx, c)
}

func (s *Service) save(ctx context.Context, c Cart) (View, error) {
	saved, err := s.repo.Save(ctx, c)
	if err != nil {
		return View{}, err
	}
	s.store(ctx, saved)
	return s.view(ctx, saved)
}

// store writes c through to the cache. When that fails the cached copy is
// dropped so reads go back to the store.
func (s *Service) store(ctx context.Context, c Cart) {
	if err := s.cache.Set(ctx, c); err != nil {
		s.logger.Warn("cart cache write failed", zap.Int("user_id", c.UserID), zap.Error(err))
		s.drop(ctx, c.UserID)
	}
}

func (s *Service) drop(ctx context.Context, userID int) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidate failed", zap.Int("user_id", userID), zap.Error(err))
	}
}

func (s *Service) view(ctx context.Context, c Cart) (View, error) {
	snaps, err := s.catalog.Snapshots(ctx, c.ProductIDs())
	if err != nil {
		return View{}, err
	}
	v := View{UserID: c.UserID, Items: make([]LineView, 0, len(c.Items)), UpdatedAt: c.UpdatedAt, Version: c.Version}
	for _, it := range c.Items {
		line := LineView{Item: it}
		if snap, ok := snaps[it.ProductID]; ok {
			line.Name = snap.Name
			line.LivePrice = snap.Price
			line.Available = snap.Available
		}
		v.Items = append(v.Items, line)
	}
	return v, nil
}
