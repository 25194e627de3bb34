package wix

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ownedCartNotFound is the application code Wix sends with a 404 when the
// visitor has never created a cart.
const ownedCartNotFound = "OWNED_CART_NOT_FOUND"

// LineItemInput adds a catalog item to the current cart.
type LineItemInput struct {
	CatalogReference CatalogReference `json:"catalogReference"`
	Quantity         int              `json:"quantity"`
}

// LineItemQuantity sets the quantity of an existing cart line.
type LineItemQuantity struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type cartResponse struct {
	Cart *Cart `json:"cart"`
}

// CurrentCart returns ErrNoCart when the visitor has no cart yet.
// docs https://dev.wix.com/docs/rest/business-solutions/e-commerce/current-cart/get-current-cart
func (c *Client) CurrentCart(ctx context.Context) (*Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, "get current cart", http.MethodGet, "/ecom/v1/carts/current", nil, &resp); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusNotFound || statusErr.Code == ownedCartNotFound) {
			return nil, ErrNoCart
		}
		return nil, err
	}
	if resp.Cart == nil {
		return nil, ErrNoCart
	}
	return resp.Cart, nil
}

// AddToCart creates the current cart if needed and adds lines to it.
func (c *Client) AddToCart(ctx context.Context, lines []LineItemInput) (*Cart, error) {
	if len(lines) == 0 {
		return nil, errors.New("at least one line item is required")
	}
	body := map[string]any{"lineItems": lines}
	return c.mutateCart(ctx, "add to cart", "/ecom/v1/carts/current/add-to-cart", body)
}

func (c *Client) RemoveLineItems(ctx context.Context, lineIDs []string) (*Cart, error) {
	if len(lineIDs) == 0 {
		return nil, errors.New("at least one line item ID is required")
	}
	body := map[string]any{"lineItemIds": lineIDs}
	return c.mutateCart(ctx, "remove line items", "/ecom/v1/carts/current/remove-line-items", body)
}

func (c *Client) UpdateLineItemsQuantity(ctx context.Context, lines []LineItemQuantity) (*Cart, error) {
	if len(lines) == 0 {
		return nil, errors.New("at least one line item is required")
	}
	body := map[string]any{"lineItems": lines}
	return c.mutateCart(ctx, "update line items quantity", "/ecom/v1/carts/current/update-line-items-quantity", body)
}

func (c *Client) mutateCart(ctx context.Context, op, path string, body any) (*Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, op, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Cart == nil {
		return nil, fmt.Errorf("%s: response carried no cart", op)
	}
	return resp.Cart, nil
}

// CreateCheckout turns the current cart into a checkout and returns its id.
func (c *Client) CreateCheckout(ctx context.Context) (string, error) {
	var resp struct {
		CheckoutID string `json:"checkoutId"`
	}
	body := map[string]string{"channelType": "WEB"}
	if err := c.do(ctx, "create checkout", http.MethodPost, "/ecom/v1/carts/current/create-checkout", body, &resp); err != nil {
		return "", err
	}
	if resp.CheckoutID == "" {
		return "", errors.New("create checkout: response carried no checkout ID")
	}
	return resp.CheckoutID, nil
}

// CreateRedirectSession returns the hosted checkout URL for checkoutID. Wix
// sends the shopper to postFlowURL once the flow completes.
// docs https://dev.wix.com/docs/rest/business-management/headless/redirects/create-redirect-session
func (c *Client) CreateRedirectSession(ctx context.Context, checkoutID, postFlowURL string) (string, error) {
	if checkoutID == "" {
		return "", errors.New("checkout ID is required")
	}
	body := map[string]any{
		"ecomCheckout": map[string]string{"checkoutId": checkoutID},
		"callbacks":    map[string]string{"postFlowUrl": postFlowURL},
	}
	var resp struct {
		RedirectSession struct {
			ID      string `json:"id"`
			FullURL string `json:"fullUrl"`
		} `json:"redirectSession"`
	}
	if err := c.do(ctx, "create redirect session", http.MethodPost, "/redirect-session/v1/redirect-session", body, &resp); err != nil {
		return "", err
	}
	if resp.RedirectSession.FullURL == "" {
		return "", errors.New("create redirect session: response carried no URL")
	}
	return resp.RedirectSession.FullURL, nil
}
