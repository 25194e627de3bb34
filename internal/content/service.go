package content

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/config"
	"storefront/internal/shop"
	"storefront/internal/wix"

	"github.com/samber/lo"
)

// Source reads CMS rows.
type Source interface {
	QueryDataItems(ctx context.Context, q wix.DataQuery) ([]wix.DataItem, error)
}

var (
	_ Source = (*wix.Client)(nil)
	_ Source = (*wix.Mock)(nil)
)

// Service serves storefront pages and navigation menus kept in Wix Data.
type Service struct {
	src   Source
	pages string
	menus string
}

func NewService(src Source, cfg config.StoreConfig) *Service {
	return &Service{
		src:   src,
		pages: lo.CoalesceOrEmpty(cfg.PagesCollection, "Pages"),
		menus: lo.CoalesceOrEmpty(cfg.MenusCollection, "Menus"),
	}
}

// GetPage returns nil when no page has handle.
func (s *Service) GetPage(ctx context.Context, handle string) (*shop.Page, error) {
	items, err := s.src.QueryDataItems(ctx, wix.DataQuery{
		Collection: s.pages,
		Equals:     map[string]string{fieldSlug: handle},
		Limit:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("get page %q: %w", handle, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	page, err := ReshapePage(items[0])
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) GetPages(ctx context.Context) ([]shop.Page, error) {
	items, err := s.src.QueryDataItems(ctx, wix.DataQuery{Collection: s.pages, SortField: fieldTitle})
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	pages := make([]shop.Page, 0, len(items))
	for _, item := range items {
		page, err := ReshapePage(item)
		if err != nil {
			slog.ErrorContext(ctx, "failed to reshape page", "item_id", item.ID, "error", err)
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// GetMenu lists the entries of the menu named handle in display order. An
// unknown menu is empty.
func (s *Service) GetMenu(ctx context.Context, handle string) ([]shop.Menu, error) {
	items, err := s.src.QueryDataItems(ctx, wix.DataQuery{
		Collection: s.menus,
		Equals:     map[string]string{fieldMenu: handle},
		SortField:  fieldOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("get menu %q: %w", handle, err)
	}
	return lo.Map(items, func(item wix.DataItem, _ int) shop.Menu { return ReshapeMenu(item) }), nil
}
