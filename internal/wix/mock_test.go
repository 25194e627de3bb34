package wix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCartIsPerVisitor(t *testing.T) {
	t.Parallel()

	m := NewMock()
	alice, err := m.AnonymousTokens(context.Background())
	require.NoError(t, err)
	bob, err := m.AnonymousTokens(context.Background())
	require.NoError(t, err)
	aliceCtx := WithTokens(context.Background(), alice)
	bobCtx := WithTokens(context.Background(), bob)

	_, err = m.CurrentCart(aliceCtx)
	assert.ErrorIs(t, err, ErrNoCart)

	line := LineItemInput{
		CatalogReference: CatalogReference{AppID: StoresAppID, CatalogItemID: "prod-hoodie", Options: &CatalogOptions{VariantID: "var-hoodie-s"}},
		Quantity:         1,
	}
	_, err = m.AddToCart(aliceCtx, []LineItemInput{line})
	require.NoError(t, err)
	cart, err := m.AddToCart(aliceCtx, []LineItemInput{line})
	require.NoError(t, err)

	require.Len(t, cart.LineItems, 1)
	assert.Equal(t, 2, cart.LineItems[0].Quantity)
	assert.Equal(t, "55", cart.LineItems[0].Price.Amount)
	require.Len(t, cart.LineItems[0].DescriptionLines, 1)
	assert.Equal(t, "S", cart.LineItems[0].DescriptionLines[0].PlainText.Original)

	_, err = m.CurrentCart(bobCtx)
	assert.ErrorIs(t, err, ErrNoCart)

	cart, err = m.UpdateLineItemsQuantity(aliceCtx, []LineItemQuantity{{ID: cart.LineItems[0].ID, Quantity: 0}})
	require.NoError(t, err)
	assert.Empty(t, cart.LineItems)
}

func TestMockAddToCartRejectsUnknownProduct(t *testing.T) {
	t.Parallel()

	m := NewMock()
	_, err := m.AddToCart(context.Background(), []LineItemInput{{
		CatalogReference: CatalogReference{AppID: StoresAppID, CatalogItemID: "nope"},
		Quantity:         1,
	}})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "CATALOG_ITEM_NOT_FOUND", statusErr.Code)
}

func TestMockQueryProductsSortAndFilter(t *testing.T) {
	t.Parallel()

	m := NewMock()
	products, err := m.QueryProducts(context.Background(), ProductQuery{SortField: "price", Descending: true})
	require.NoError(t, err)
	require.Len(t, products, 4)
	assert.Equal(t, "prototype-jacket", products[0].Slug)
	assert.Equal(t, "acme-mug", products[3].Slug)

	products, err = m.QueryProducts(context.Background(), ProductQuery{CollectionID: "col-shirts"})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = m.QueryProducts(context.Background(), ProductQuery{NamePrefix: "acme m"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "acme-mug", products[0].Slug)
}

func TestMockAddToCartKeepsCartOnInvalidLine(t *testing.T) {
	t.Parallel()

	m := NewMock()
	ctx := WithTokens(context.Background(), Tokens{AccessToken: "visitor"})
	hoodie := LineItemInput{
		CatalogReference: CatalogReference{AppID: StoresAppID, CatalogItemID: "prod-hoodie", Options: &CatalogOptions{VariantID: "var-hoodie-s"}},
		Quantity:         1,
	}
	_, err := m.AddToCart(ctx, []LineItemInput{hoodie})
	require.NoError(t, err)

	mug := LineItemInput{CatalogReference: CatalogReference{AppID: StoresAppID, CatalogItemID: "prod-mug"}, Quantity: 2}
	unknown := LineItemInput{CatalogReference: CatalogReference{AppID: StoresAppID, CatalogItemID: "nope"}, Quantity: 1}
	_, err = m.AddToCart(ctx, []LineItemInput{hoodie, mug, unknown})
	require.Error(t, err)

	cart, err := m.CurrentCart(ctx)
	require.NoError(t, err)
	require.Len(t, cart.LineItems, 1)
	assert.Equal(t, "prod-hoodie", cart.LineItems[0].CatalogReference.CatalogItemID)
	assert.Equal(t, 1, cart.LineItems[0].Quantity)
}

func TestMockQueryDataItemsDescendingIsStable(t *testing.T) {
	t.Parallel()

	m := NewMock()
	m.data["Rows"] = []DataItem{
		{ID: "a", Data: map[string]any{"order": float64(1), "title": "x"}},
		{ID: "b", Data: map[string]any{"order": float64(2), "title": "y"}},
		{ID: "c", Data: map[string]any{"order": float64(2), "title": "y"}},
		{ID: "d", Data: map[string]any{"order": float64(1), "title": "x"}},
	}
	ids := func(items []DataItem) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.ID)
		}
		return out
	}

	items, err := m.QueryDataItems(context.Background(), DataQuery{Collection: "Rows", SortField: "order", Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(items))

	items, err = m.QueryDataItems(context.Background(), DataQuery{Collection: "Rows", SortField: "title", Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(items))

	items, err = m.QueryDataItems(context.Background(), DataQuery{Collection: "Rows", SortField: "order"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d", "b", "c"}, ids(items))
}
