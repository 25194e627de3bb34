package cart

import (
	"context"
	"log/slog"
	"strings"
)

// Messages returned to shoppers by Actions. Upstream detail is logged, never
// shown.
const (
	MsgMissingVariant = "Missing product variant ID"
	MsgAddFailed      = "Error adding item to cart"
	MsgRemoveFailed   = "Error removing item from cart"
	MsgUpdateFailed   = "Error updating item quantity"
)

// Actions wraps the cart service for form-style callers that only need a
// message on failure. Every method returns "" on success.
type Actions struct {
	svc *Service
}

func NewActions(svc *Service) *Actions {
	return &Actions{svc: svc}
}

func (a *Actions) AddItem(ctx context.Context, line LineInput) string {
	if strings.TrimSpace(line.VariantID) == "" {
		return MsgMissingVariant
	}
	line.Quantity = 1
	if _, err := a.svc.AddToCart(ctx, []LineInput{line}); err != nil {
		slog.ErrorContext(ctx, "failed to add item to cart", "product_id", line.ProductID, "variant_id", line.VariantID, "error", err)
		return MsgAddFailed
	}
	return ""
}

func (a *Actions) RemoveItem(ctx context.Context, lineID string) string {
	if _, err := a.svc.RemoveFromCart(ctx, []string{lineID}); err != nil {
		slog.ErrorContext(ctx, "failed to remove item from cart", "line_id", lineID, "error", err)
		return MsgRemoveFailed
	}
	return ""
}

// UpdateItemQuantity sets a line's quantity. Zero removes the line.
func (a *Actions) UpdateItemQuantity(ctx context.Context, lineID string, quantity int) string {
	if quantity <= 0 {
		if msg := a.RemoveItem(ctx, lineID); msg != "" {
			return MsgUpdateFailed
		}
		return ""
	}
	if _, err := a.svc.UpdateCart(ctx, []LineUpdate{{ID: lineID, Quantity: quantity}}); err != nil {
		slog.ErrorContext(ctx, "failed to update item quantity", "line_id", lineID, "quantity", quantity, "error", err)
		return MsgUpdateFailed
	}
	return ""
}
