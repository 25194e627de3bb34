package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/shop"
	"storefront/internal/wix"

	"github.com/samber/lo"
)

// maxRecommendations caps GetProductRecommendations.
const maxRecommendations = 8

// SortKey orders product listings.
type SortKey string

const (
	SortRelevance   SortKey = "RELEVANCE"
	SortBestSelling SortKey = "BEST_SELLING"
	SortCreatedAt   SortKey = "CREATED_AT"
	SortPrice       SortKey = "PRICE"
)

// field is the Wix sort field for k. Relevance and best selling have no
// upstream equivalent and leave the catalog order alone.
func (k SortKey) field() string {
	switch SortKey(strings.ToUpper(string(k))) {
	case SortCreatedAt:
		return "lastUpdated"
	case SortPrice:
		return "price"
	default:
		return ""
	}
}

// Query filters and orders a product listing.
type Query struct {
	Search  string
	SortKey SortKey
	Reverse bool
}

// Source is the slice of the Wix API the catalog reads from.
type Source interface {
	QueryProducts(ctx context.Context, q wix.ProductQuery) ([]wix.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*wix.Product, error)
	ProductByID(ctx context.Context, id string) (*wix.Product, error)
	QueryCollections(ctx context.Context) ([]wix.Collection, error)
	CollectionBySlug(ctx context.Context, slug string) (*wix.Collection, error)
}

var (
	_ Source = (*wix.Client)(nil)
	_ Source = (*wix.Mock)(nil)
)

// Service reads the catalog and returns it in storefront shape.
type Service struct {
	src          Source
	opts         Options
	hiddenPrefix string
	now          func() time.Time
}

func NewService(src Source, cfg config.StoreConfig) *Service {
	return &Service{
		src: src,
		opts: Options{
			Currency:    cfg.Currency,
			MaxVariants: cfg.MaxVariants,
		},
		hiddenPrefix: cfg.HiddenPrefix,
		now:          time.Now,
	}
}

func (s *Service) GetProducts(ctx context.Context, q Query) ([]shop.Product, error) {
	return s.queryProducts(ctx, wix.ProductQuery{
		NamePrefix: q.Search,
		SortField:  q.SortKey.field(),
		Descending: q.Reverse,
	})
}

// GetProduct returns nil when no product has handle.
func (s *Service) GetProduct(ctx context.Context, handle string) (*shop.Product, error) {
	raw, err := s.src.ProductBySlug(ctx, handle)
	if errors.Is(err, wix.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", handle, err)
	}
	product, err := s.reshape(ctx, *raw)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductRecommendations returns other products from the first collection
// productID belongs to.
func (s *Service) GetProductRecommendations(ctx context.Context, productID string) ([]shop.Product, error) {
	raw, err := s.src.ProductByID(ctx, productID)
	if errors.Is(err, wix.ErrNotFound) {
		return []shop.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %q for recommendations: %w", productID, err)
	}
	if len(raw.CollectionIDs) == 0 {
		return []shop.Product{}, nil
	}

	related, err := s.queryProducts(ctx, wix.ProductQuery{
		CollectionID: raw.CollectionIDs[0],
		Limit:        maxRecommendations + 1,
	})
	if err != nil {
		return nil, err
	}
	related = lo.Filter(related, func(p shop.Product, _ int) bool { return p.ID != raw.ID })
	if len(related) > maxRecommendations {
		related = related[:maxRecommendations]
	}
	return related, nil
}

// GetCollections lists the "All" collection followed by every collection not
// hidden by the configured prefix.
func (s *Service) GetCollections(ctx context.Context) ([]shop.Collection, error) {
	raw, err := s.src.QueryCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	now := s.now()
	collections := make([]shop.Collection, 0, len(raw))
	for _, c := range raw {
		collection, err := ReshapeCollection(c, now)
		if err != nil {
			slog.ErrorContext(ctx, "failed to reshape collection", "collection_id", c.ID, "error", err)
			return nil, err
		}
		collections = append(collections, collection)
	}
	return ListedCollections(AllCollection(now), collections, s.hiddenPrefix), nil
}

// GetCollection looks a collection up by handle, hidden or not. It returns
// nil when none matches.
func (s *Service) GetCollection(ctx context.Context, handle string) (*shop.Collection, error) {
	raw, err := s.src.CollectionBySlug(ctx, handle)
	if errors.Is(err, wix.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection %q: %w", handle, err)
	}
	collection, err := ReshapeCollection(*raw, s.now())
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// GetCollectionProducts lists the products of a collection. The empty handle
// is the "All" collection; an unknown handle lists nothing.
func (s *Service) GetCollectionProducts(ctx context.Context, handle string, sortKey SortKey, reverse bool) ([]shop.Product, error) {
	q := wix.ProductQuery{SortField: sortKey.field(), Descending: reverse}
	if handle != "" {
		raw, err := s.src.CollectionBySlug(ctx, handle)
		if errors.Is(err, wix.ErrNotFound) {
			return []shop.Product{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("get collection %q: %w", handle, err)
		}
		q.CollectionID = raw.ID
	}
	return s.queryProducts(ctx, q)
}

func (s *Service) queryProducts(ctx context.Context, q wix.ProductQuery) ([]shop.Product, error) {
	raw, err := s.src.QueryProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	products := make([]shop.Product, 0, len(raw))
	for _, p := range raw {
		product, err := s.reshape(ctx, p)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (s *Service) reshape(ctx context.Context, raw wix.Product) (shop.Product, error) {
	product, err := ReshapeProduct(raw, s.opts)
	if err != nil {
		slog.ErrorContext(ctx, "failed to reshape product", "product_id", raw.ID, "slug", raw.Slug, "error", err)
		return shop.Product{}, fmt.Errorf("reshape product %q: %w", raw.ID, err)
	}
	return product, nil
}

// Ready reports whether the catalog can be read.
func (s *Service) Ready(ctx context.Context) error {
	if _, err := s.src.QueryCollections(ctx); err != nil {
		return fmt.Errorf("catalog not reachable: %w", err)
	}
	return nil
}
