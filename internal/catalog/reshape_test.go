package catalog

import (
	"encoding/json"
	"testing"

	"storefront/internal/shop"
	"storefront/internal/wix"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sizeColorProduct() wix.Product {
	return wix.Product{
		ID:        "p1",
		Name:      "Tee",
		Slug:      "tee",
		PriceData: &wix.PriceData{Currency: "usd", Price: json.Number("19.99")},
		ProductOptions: []wix.ProductOption{
			{Name: "Size", Choices: []wix.Choice{{Value: "S"}, {Value: "M"}}},
			{Name: "Color", OptionType: wix.OptionTypeColor, Choices: []wix.Choice{{Value: "#ff0000", Description: "Red"}}},
		},
	}
}

func TestReshapeProduct_SynthesizedVariants(t *testing.T) {
	t.Parallel()

	product, err := ReshapeProduct(sizeColorProduct(), Options{})
	require.NoError(t, err)

	require.Len(t, product.Variants, 2)
	for _, v := range product.Variants {
		assert.Equal(t, shop.SentinelVariantID, v.ID)
		assert.Equal(t, "00000000-0000-0000-0000-000000000000", v.ID)
		assert.Equal(t, shop.Money{Amount: "19.99", CurrencyCode: "USD"}, v.Price)
		assert.True(t, v.AvailableForSale)
	}
	assert.Equal(t, []shop.SelectedOption{{Name: "Size", Value: "S"}, {Name: "Color", Value: "Red"}}, product.Variants[0].SelectedOptions)
	assert.Equal(t, "M / Red", product.Variants[1].Title)

	require.Len(t, product.Options, 2)
	assert.Equal(t, shop.ProductOption{ID: "Color", Name: "Color", Values: []string{"Red"}}, product.Options[1])
	assert.Equal(t, product.PriceRange.MinVariantPrice, product.PriceRange.MaxVariantPrice)
	assert.Equal(t, "19.99", product.PriceRange.MinVariantPrice.Amount)
}

func TestReshapeProduct_Idempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range wixFixtures(t) {
		first, err := ReshapeProduct(raw, Options{})
		require.NoError(t, err)
		second, err := ReshapeProduct(raw, Options{})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestReshapeProduct_Defaults(t *testing.T) {
	t.Parallel()

	product, err := ReshapeProduct(wix.Product{ID: "p2", Name: "Plain", Slug: "plain"}, Options{Currency: "EUR"})
	require.NoError(t, err)

	assert.True(t, product.AvailableForSale)
	assert.Equal(t, shop.Money{Amount: "0", CurrencyCode: "EUR"}, product.PriceRange.MinVariantPrice)
	assert.NotNil(t, product.Options)
	assert.Empty(t, product.Options)
	assert.NotNil(t, product.Images)
	assert.Empty(t, product.Images)
	assert.NotNil(t, product.Tags)
	assert.Equal(t, shop.Image{AltText: "alt text"}, product.FeaturedImage)

	require.Len(t, product.Variants, 1)
	assert.Equal(t, "Plain", product.Variants[0].Title)
	assert.Empty(t, product.Variants[0].SelectedOptions)
}

func TestReshapeProduct_InvalidCurrencyFallsBack(t *testing.T) {
	t.Parallel()

	raw := wix.Product{ID: "p", Slug: "p", PriceData: &wix.PriceData{Currency: "DOLLARS", Price: "5"}}
	product, err := ReshapeProduct(raw, Options{})
	require.NoError(t, err)
	assert.Equal(t, "USD", product.PriceRange.MaxVariantPrice.CurrencyCode)
}

func TestReshapeProduct_MissingIdentifier(t *testing.T) {
	t.Parallel()

	_, err := ReshapeProduct(wix.Product{Slug: "x"}, Options{})
	assert.ErrorIs(t, err, shop.ErrMissingIdentifier)

	_, err = ReshapeProduct(wix.Product{ID: "x"}, Options{})
	assert.ErrorIs(t, err, shop.ErrMissingIdentifier)
}

func TestReshapeProduct_TooManyVariants(t *testing.T) {
	t.Parallel()

	_, err := ReshapeProduct(sizeColorProduct(), Options{MaxVariants: 1})
	assert.ErrorIs(t, err, ErrTooManyVariants)
}

func TestReshapeProduct_Availability(t *testing.T) {
	t.Parallel()

	no, yes := false, true
	tests := []struct {
		name  string
		stock *wix.Stock
		want  bool
	}{
		{name: "no stock", stock: nil, want: true},
		{name: "in stock", stock: &wix.Stock{InventoryStatus: wix.InventoryInStock}, want: true},
		{name: "partial", stock: &wix.Stock{InventoryStatus: wix.InventoryPartiallyOutOfStock}, want: true},
		{name: "out", stock: &wix.Stock{InventoryStatus: wix.InventoryOutOfStock, InStock: &yes}, want: false},
		{name: "flag false", stock: &wix.Stock{InStock: &no}, want: false},
		{name: "flag true", stock: &wix.Stock{InStock: &yes}, want: true},
	}
	for _, tc := range tests {
		product, err := ReshapeProduct(wix.Product{ID: "p", Slug: "p", Stock: tc.stock}, Options{})
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, product.AvailableForSale, tc.name)
		assert.Equal(t, tc.want, product.Variants[0].AvailableForSale, tc.name)
	}
}

func TestReshapeProduct_ManagedVariants(t *testing.T) {
	t.Parallel()

	qty, none := 4, 0
	raw := wix.Product{
		ID:             "p3",
		Name:           "Hoodie",
		Slug:           "hoodie",
		PriceData:      &wix.PriceData{Currency: "USD", Price: "50"},
		ManageVariants: true,
		ProductOptions: []wix.ProductOption{
			{Name: "Size", Choices: []wix.Choice{{Value: "S"}, {Value: "M"}}},
			{Name: "Color", OptionType: wix.OptionTypeColor, Choices: []wix.Choice{{Value: "#000", Description: "Black"}}},
		},
		Variants: []wix.Variant{
			{
				ID:      "v1",
				Choices: map[string]string{"Color": "Black", "Size": "S", "Edition": "Winter"},
				Variant: &wix.VariantData{PriceData: &wix.PriceData{Currency: "USD", Price: "52.5"}},
				Stock:   &wix.VariantStock{TrackQuantity: true, Quantity: &qty},
			},
			{
				ID:      "v2",
				Choices: map[string]string{"Size": "M", "Color": "Black"},
				Stock:   &wix.VariantStock{TrackQuantity: true, Quantity: &none},
			},
			{ID: "v3", Choices: map[string]string{"Size": "M"}},
		},
	}

	product, err := ReshapeProduct(raw, Options{})
	require.NoError(t, err)
	require.Len(t, product.Variants, 3)

	v1 := product.Variants[0]
	assert.Equal(t, "v1", v1.ID)
	assert.Equal(t, "S / Black / Winter", v1.Title)
	assert.Equal(t, []shop.SelectedOption{{Name: "Size", Value: "S"}, {Name: "Color", Value: "Black"}, {Name: "Edition", Value: "Winter"}}, v1.SelectedOptions)
	assert.Equal(t, "52.5", v1.Price.Amount)
	assert.True(t, v1.AvailableForSale)

	assert.Equal(t, "50", product.Variants[1].Price.Amount)
	assert.False(t, product.Variants[1].AvailableForSale)
	assert.True(t, product.Variants[2].AvailableForSale)
}

func TestReshapeProduct_MediaAndText(t *testing.T) {
	t.Parallel()

	alt := "Front"
	raw := wix.Product{
		ID:          "p4",
		Name:        "Mug",
		Slug:        "mug",
		Description: "<p>Holds <b>hot</b> drinks.</p>",
		Ribbon:      "Sale",
		LastUpdated: "2024-01-02T03:04:05Z",
		Media: &wix.Media{
			Items: []wix.MediaItem{
				{MediaType: "video"},
				{MediaType: "image", Image: &wix.MediaImage{URL: "https://img/1.jpg", Width: 10, Height: 20, AltText: &alt}},
				{MediaType: "image", Image: &wix.MediaImage{URL: "https://img/2.jpg"}},
			},
		},
	}

	product, err := ReshapeProduct(raw, Options{})
	require.NoError(t, err)

	assert.Equal(t, []shop.Image{
		{URL: "https://img/1.jpg", AltText: "Front", Width: 10, Height: 20},
		{URL: "https://img/2.jpg", AltText: "alt text"},
	}, product.Images)
	assert.Equal(t, product.Images[0], product.FeaturedImage)
	assert.Equal(t, "Holds hot drinks.", product.Description)
	assert.Equal(t, raw.Description, product.DescriptionHTML)
	assert.Equal(t, shop.SEO{Title: "Mug", Description: "Holds hot drinks."}, product.SEO)
	assert.Equal(t, []string{"Sale"}, product.Tags)
	assert.Equal(t, "2024-01-02T03:04:05Z", product.UpdatedAt)
}

func wixFixtures(t *testing.T) []wix.Product {
	t.Helper()
	products, err := wix.NewMock().QueryProducts(t.Context(), wix.ProductQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, products)
	return products
}
