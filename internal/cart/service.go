package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/config"
	"storefront/internal/shop"
	"storefront/internal/wix"

	"github.com/samber/lo"
)

// ErrInvalidLine is returned for line inputs that cannot name a catalog item.
var ErrInvalidLine = errors.New("invalid cart line")

// Upstream is the slice of the Wix API the cart writes through.
type Upstream interface {
	CurrentCart(ctx context.Context) (*wix.Cart, error)
	AddToCart(ctx context.Context, lines []wix.LineItemInput) (*wix.Cart, error)
	RemoveLineItems(ctx context.Context, lineIDs []string) (*wix.Cart, error)
	UpdateLineItemsQuantity(ctx context.Context, lines []wix.LineItemQuantity) (*wix.Cart, error)
	CreateCheckout(ctx context.Context) (string, error)
	CreateRedirectSession(ctx context.Context, checkoutID, postFlowURL string) (string, error)
}

var (
	_ Upstream = (*wix.Client)(nil)
	_ Upstream = (*wix.Mock)(nil)
)

// LineInput names a product variant to add. Managed variants are addressed by
// VariantID. Variants synthesized from options carry shop.SentinelVariantID
// and are addressed by their SelectedOptions instead.
type LineInput struct {
	ProductID       string                `json:"productId"`
	VariantID       string                `json:"variantId"`
	SelectedOptions []shop.SelectedOption `json:"selectedOptions,omitempty"`
	Quantity        int                   `json:"quantity,omitempty"`
}

// LineUpdate sets the quantity of an existing line. Zero removes it.
type LineUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Service reads and mutates the current visitor's cart.
type Service struct {
	up   Upstream
	opts Options
}

func NewService(up Upstream, cfg config.StoreConfig) *Service {
	return &Service{
		up:   up,
		opts: Options{Currency: cfg.Currency},
	}
}

// GetCart returns nil when the visitor has no cart yet.
func (s *Service) GetCart(ctx context.Context) (*shop.Cart, error) {
	raw, err := s.up.CurrentCart(ctx)
	if errors.Is(err, wix.ErrNoCart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current cart: %w", err)
	}
	return s.reshape(raw)
}

func (s *Service) AddToCart(ctx context.Context, lines []LineInput) (*shop.Cart, error) {
	items := make([]wix.LineItemInput, 0, len(lines))
	for _, line := range lines {
		ref, err := catalogReference(line)
		if err != nil {
			return nil, err
		}
		items = append(items, wix.LineItemInput{CatalogReference: ref, Quantity: max(line.Quantity, 1)})
	}
	raw, err := s.up.AddToCart(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return s.reshape(raw)
}

func (s *Service) RemoveFromCart(ctx context.Context, lineIDs []string) (*shop.Cart, error) {
	raw, err := s.up.RemoveLineItems(ctx, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}
	return s.reshape(raw)
}

// UpdateCart applies quantity changes. Lines set to zero or less are removed.
func (s *Service) UpdateCart(ctx context.Context, lines []LineUpdate) (*shop.Cart, error) {
	removed, updated := lo.FilterReject(lines, func(l LineUpdate, _ int) bool { return l.Quantity <= 0 })

	var raw *wix.Cart
	if len(removed) > 0 {
		var err error
		raw, err = s.up.RemoveLineItems(ctx, lo.Map(removed, func(l LineUpdate, _ int) string { return l.ID }))
		if err != nil {
			return nil, fmt.Errorf("update cart: %w", err)
		}
	}
	if len(updated) > 0 {
		var err error
		raw, err = s.up.UpdateLineItemsQuantity(ctx, lo.Map(updated, func(l LineUpdate, _ int) wix.LineItemQuantity {
			return wix.LineItemQuantity{ID: l.ID, Quantity: l.Quantity}
		}))
		if err != nil {
			return nil, fmt.Errorf("update cart: %w", err)
		}
	}
	if raw == nil {
		return s.GetCart(ctx)
	}
	return s.reshape(raw)
}

// CreateCheckoutURL turns the current cart into a hosted checkout and returns
// the URL to send the shopper to. Wix returns them to postFlowURL afterwards.
func (s *Service) CreateCheckoutURL(ctx context.Context, postFlowURL string) (string, error) {
	checkoutID, err := s.up.CreateCheckout(ctx)
	if err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}
	checkoutURL, err := s.up.CreateRedirectSession(ctx, checkoutID, postFlowURL)
	if err != nil {
		return "", fmt.Errorf("create checkout redirect: %w", err)
	}
	return checkoutURL, nil
}

func (s *Service) reshape(raw *wix.Cart) (*shop.Cart, error) {
	cart, err := ReshapeCart(*raw, s.opts)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func catalogReference(line LineInput) (wix.CatalogReference, error) {
	productID := strings.TrimSpace(line.ProductID)
	if productID == "" {
		return wix.CatalogReference{}, fmt.Errorf("%w: product ID is required", ErrInvalidLine)
	}
	ref := wix.CatalogReference{CatalogItemID: productID, AppID: wix.StoresAppID}

	variantID := strings.TrimSpace(line.VariantID)
	switch {
	case variantID != "" && variantID != shop.SentinelVariantID:
		ref.Options = &wix.CatalogOptions{VariantID: variantID}
	case len(line.SelectedOptions) > 0:
		ref.Options = &wix.CatalogOptions{Options: lo.SliceToMap(line.SelectedOptions, func(o shop.SelectedOption) (string, string) {
			return o.Name, o.Value
		})}
	}
	return ref, nil
}
