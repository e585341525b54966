package product

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// Provider answers "what does product X cost right now". Cart, order and
// review code depend on this instead of the catalog tables.
type Provider interface {
	Snapshot(ctx context.Context, id int) (Snapshot, error)
	Snapshots(ctx context.Context, ids []int) (map[int]Snapshot, error)
}

// lookupTimeout bounds a shared snapshot query once it is detached from the
// caller that started it.
const lookupTimeout = 5 * time.Second

// CatalogProvider reads snapshots from the repository. Concurrent lookups of
// the same product share one query, which no single caller can cancel.
type CatalogProvider struct {
	repo  Repository
	group singleflight.Group
}

func NewCatalogProvider(repo Repository) *CatalogProvider {
	return &CatalogProvider{repo: repo}
}

func (p *CatalogProvider) Snapshot(ctx context.Context, id int) (Snapshot, error) {
	ch := p.group.DoChan(strconv.Itoa(id), func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		prod, err := p.repo.GetByID(lookupCtx, id)
		if err != nil {
			return Snapshot{}, err
		}
		return prod.Snapshot(), nil
	})

	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		return res.Val.(Snapshot), nil
	}
}

// Snapshots resolves many products in one query. Ids that do not exist are
// absent from the result.
func (p *CatalogProvider) Snapshots(ctx context.Context, ids []int) (map[int]Snapshot, error) {
	products, err := p.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int]Snapshot, len(products))
	for _, prod := range products {
		out[prod.ID] = prod.Snapshot()
	}
	return out, nil
}
