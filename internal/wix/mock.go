package wix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Mock is an in-memory stand-in for the Wix APIs. It serves a small fixed
// catalog and keeps one cart per visitor access token.
type Mock struct {
	mu          sync.Mutex
	products    []Product
	collections []Collection
	data        map[string][]DataItem
	carts       map[string]*Cart
}

func NewMock() *Mock {
	return &Mock{
		products:    mockProducts(),
		collections: mockCollections(),
		data:        mockDataItems(),
		carts:       map[string]*Cart{},
	}
}

func (m *Mock) QueryProducts(_ context.Context, q ProductQuery) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	products := lo.Filter(m.products, func(p Product, _ int) bool {
		if q.Slug != "" && p.Slug != q.Slug {
			return false
		}
		if q.NamePrefix != "" && !strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(q.NamePrefix)) {
			return false
		}
		if q.CollectionID != "" && !lo.Contains(p.CollectionIDs, q.CollectionID) {
			return false
		}
		return true
	})

	if q.SortField != "" {
		sort.SliceStable(products, func(i, j int) bool {
			if q.Descending {
				return mockSortKeyLess(products[j], products[i], q.SortField)
			}
			return mockSortKeyLess(products[i], products[j], q.SortField)
		})
	}
	if q.Limit > 0 && len(products) > q.Limit {
		products = products[:q.Limit]
	}
	return products, nil
}

func mockSortKeyLess(a, b Product, field string) bool {
	switch field {
	case "price":
		return mockPrice(a) < mockPrice(b)
	case "lastUpdated":
		return a.LastUpdated < b.LastUpdated
	default:
		return a.Name < b.Name
	}
}

func mockPrice(p Product) float64 {
	if p.PriceData == nil {
		return 0
	}
	f, _ := p.PriceData.Price.Float64()
	return f
}

func (m *Mock) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	products, err := m.QueryProducts(ctx, ProductQuery{Slug: slug, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return &products[0], nil
}

func (m *Mock) ProductByID(_ context.Context, id string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := lo.Find(m.products, func(p Product) bool { return p.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Mock) QueryCollections(_ context.Context) ([]Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Collection(nil), m.collections...), nil
}

func (m *Mock) CollectionBySlug(_ context.Context, slug string) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := lo.Find(m.collections, func(c Collection) bool { return c.Slug == slug })
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Mock) AnonymousTokens(_ context.Context) (Tokens, error) {
	return Tokens{
		AccessToken:  "mock-access-" + uuid.NewString(),
		RefreshToken: "mock-refresh-" + uuid.NewString(),
		ExpiresAt:    time.Now().Add(4 * time.Hour),
	}, nil
}

func (m *Mock) RefreshTokens(ctx context.Context, refreshToken string) (Tokens, error) {
	if !strings.HasPrefix(refreshToken, "mock-refresh-") {
		return Tokens{}, &StatusError{Operation: "refresh token", StatusCode: http.StatusBadRequest}
	}
	return m.AnonymousTokens(ctx)
}

func cartKey(ctx context.Context) string {
	tokens, _ := TokensFromContext(ctx)
	return tokens.AccessToken
}

func (m *Mock) CurrentCart(ctx context.Context) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartKey(ctx)]
	if !ok {
		return nil, ErrNoCart
	}
	return cloneCart(cart), nil
}

func (m *Mock) AddToCart(ctx context.Context, lines []LineItemInput) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cartKey(ctx)
	stored, ok := m.carts[key]
	if !ok {
		stored = &Cart{ID: uuid.NewString(), Currency: "USD"}
	}
	// lines apply to a copy; the stored cart changes only if every line is valid
	cart := cloneCart(stored)

	for _, input := range lines {
		item, err := m.lineItemFor(input)
		if err != nil {
			return nil, err
		}
		idx := lo.IndexOf(lo.Map(cart.LineItems, func(li LineItem, _ int) string { return mockRefKey(li.CatalogReference) }), mockRefKey(item.CatalogReference))
		if idx >= 0 {
			cart.LineItems[idx].Quantity += item.Quantity
			continue
		}
		cart.LineItems = append(cart.LineItems, item)
	}
	m.carts[key] = cart
	return cloneCart(cart), nil
}

func (m *Mock) lineItemFor(input LineItemInput) (LineItem, error) {
	ref := input.CatalogReference
	product, ok := lo.Find(m.products, func(p Product) bool { return p.ID == ref.CatalogItemID })
	if !ok || ref.AppID != StoresAppID {
		return LineItem{}, &StatusError{Operation: "add to cart", StatusCode: http.StatusBadRequest, Code: "CATALOG_ITEM_NOT_FOUND"}
	}
	quantity := max(input.Quantity, 1)

	price := product.PriceData
	var choices map[string]string
	if ref.Options != nil && ref.Options.VariantID != "" {
		variant, ok := lo.Find(product.Variants, func(v Variant) bool { return v.ID == ref.Options.VariantID })
		if !ok {
			return LineItem{}, &StatusError{Operation: "add to cart", StatusCode: http.StatusBadRequest, Code: "VARIANT_NOT_FOUND"}
		}
		choices = variant.Choices
		if variant.Variant != nil && variant.Variant.PriceData != nil {
			price = variant.Variant.PriceData
		}
	} else if ref.Options != nil {
		choices = ref.Options.Options
	}

	item := LineItem{
		ID:               uuid.NewString(),
		Quantity:         quantity,
		CatalogReference: &ref,
		ProductName:      &LocalizedText{Original: product.Name, Translated: product.Name},
		URL:              "https://mock.example/product-page/" + product.Slug,
	}
	if price != nil {
		item.Price = &MultiCurrencyPrice{Amount: price.Price.String()}
	}
	if product.Media != nil && product.Media.MainMedia != nil && product.Media.MainMedia.Image != nil {
		img := product.Media.MainMedia.Image
		item.Image = fmt.Sprintf("%s%s/%s#originWidth=%d&originHeight=%d",
			imageURIPrefix, path.Base(img.URL), url.PathEscape(product.Slug+".jpg"), img.Width, img.Height)
	}
	for _, opt := range product.ProductOptions {
		value, ok := choices[opt.Name]
		if !ok {
			continue
		}
		line := DescriptionLine{Name: &LocalizedText{Original: opt.Name}}
		if opt.OptionType == OptionTypeColor {
			line.ColorInfo = &Color{Original: value}
			line.LineType = "COLOR"
		} else {
			line.PlainText = &LocalizedText{Original: value}
			line.LineType = "PLAIN_TEXT"
		}
		item.DescriptionLines = append(item.DescriptionLines, line)
	}
	return item, nil
}

func mockRefKey(ref *CatalogReference) string {
	if ref == nil {
		return ""
	}
	key := ref.CatalogItemID
	if ref.Options != nil {
		key += "|" + ref.Options.VariantID
		names := lo.Keys(ref.Options.Options)
		sort.Strings(names)
		for _, name := range names {
			key += "|" + name + "=" + ref.Options.Options[name]
		}
	}
	return key
}

func (m *Mock) RemoveLineItems(ctx context.Context, lineIDs []string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartKey(ctx)]
	if !ok {
		return nil, &StatusError{Operation: "remove line items", StatusCode: http.StatusNotFound, Code: ownedCartNotFound}
	}
	cart.LineItems = lo.Filter(cart.LineItems, func(li LineItem, _ int) bool {
		return !lo.Contains(lineIDs, li.ID)
	})
	return cloneCart(cart), nil
}

func (m *Mock) UpdateLineItemsQuantity(ctx context.Context, lines []LineItemQuantity) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartKey(ctx)]
	if !ok {
		return nil, &StatusError{Operation: "update line items quantity", StatusCode: http.StatusNotFound, Code: ownedCartNotFound}
	}
	for _, update := range lines {
		for i := range cart.LineItems {
			if cart.LineItems[i].ID == update.ID {
				cart.LineItems[i].Quantity = update.Quantity
			}
		}
	}
	cart.LineItems = lo.Filter(cart.LineItems, func(li LineItem, _ int) bool { return li.Quantity > 0 })
	return cloneCart(cart), nil
}

func (m *Mock) CreateCheckout(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[cartKey(ctx)]
	if !ok || len(cart.LineItems) == 0 {
		return "", &StatusError{Operation: "create checkout", StatusCode: http.StatusBadRequest, Code: "CART_IS_EMPTY"}
	}
	cart.CheckoutID = "checkout-" + cart.ID
	return cart.CheckoutID, nil
}

func (m *Mock) CreateRedirectSession(_ context.Context, checkoutID, postFlowURL string) (string, error) {
	params := url.Values{}
	params.Set("checkoutId", checkoutID)
	params.Set("postFlowUrl", postFlowURL)
	return "https://mock.example/checkout?" + params.Encode(), nil
}

func (m *Mock) QueryDataItems(_ context.Context, q DataQuery) ([]DataItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := lo.Filter(m.data[q.Collection], func(item DataItem, _ int) bool {
		for field, value := range q.Equals {
			if item.Field(field) != value {
				return false
			}
		}
		return true
	})
	if q.SortField != "" {
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].Data[q.SortField], items[j].Data[q.SortField]
			af, aNum := a.(float64)
			bf, bNum := b.(float64)
			if aNum && bNum {
				if q.Descending {
					return af > bf
				}
				return af < bf
			}
			if q.Descending {
				return items[i].Field(q.SortField) > items[j].Field(q.SortField)
			}
			return items[i].Field(q.SortField) < items[j].Field(q.SortField)
		})
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

func cloneCart(c *Cart) *Cart {
	out := *c
	out.LineItems = append([]LineItem(nil), c.LineItems...)
	return &out
}

func mockProducts() []Product {
	inStock := true
	three, zero := 3, 0
	tee := `{
		"id": "prod-tee",
		"name": "Acme Tee",
		"slug": "acme-tee",
		"description": "<p>Soft <b>cotton</b> tee.</p>",
		"stock": {"trackInventory": false, "inStock": true, "inventoryStatus": "IN_STOCK"},
		"priceData": {"currency": "USD", "price": 25},
		"media": {
			"mainMedia": {"id": "mock_tee", "mediaType": "image", "image": {"url": "https://static.wixstatic.com/media/mock_tee.jpg", "width": 800, "height": 800, "altText": "Acme tee front"}},
			"items": [
				{"id": "mock_tee", "mediaType": "image", "image": {"url": "https://static.wixstatic.com/media/mock_tee.jpg", "width": 800, "height": 800, "altText": "Acme tee front"}},
				{"id": "mock_tee_video", "mediaType": "video"},
				{"id": "mock_tee_back", "mediaType": "image", "image": {"url": "https://static.wixstatic.com/media/mock_tee_back.jpg", "width": 800, "height": 800}}
			]
		},
		"productOptions": [
			{"optionType": "drop_down", "name": "Size", "choices": [{"value": "S", "description": "S"}, {"value": "M", "description": "M"}, {"value": "L", "description": "L"}]},
			{"optionType": "color", "name": "Color", "choices": [{"value": "#ff0000", "description": "Red"}, {"value": "#0000ff", "description": "Blue"}]}
		],
		"manageVariants": false,
		"collectionIds": ["col-shirts"],
		"ribbon": "New",
		"lastUpdated": "2024-05-02T10:00:00Z"
	}`
	var teeProduct Product
	if err := json.Unmarshal([]byte(tee), &teeProduct); err != nil {
		panic(fmt.Errorf("mock tee fixture: %w", err))
	}

	return []Product{
		teeProduct,
		{
			ID:          "prod-hoodie",
			Name:        "Acme Hoodie",
			Slug:        "acme-hoodie",
			Description: "<p>Heavyweight hoodie.</p>",
			Stock:       &Stock{TrackInventory: true, InventoryStatus: InventoryPartiallyOutOfStock},
			PriceData:   &PriceData{Currency: "USD", Price: "55"},
			Media: &Media{
				MainMedia: &MediaItem{ID: "mock_hoodie", MediaType: "image", Image: &MediaImage{URL: "https://static.wixstatic.com/media/mock_hoodie.jpg", Width: 640, Height: 480}},
				Items: []MediaItem{
					{ID: "mock_hoodie", MediaType: "image", Image: &MediaImage{URL: "https://static.wixstatic.com/media/mock_hoodie.jpg", Width: 640, Height: 480}},
				},
			},
			ProductOptions: []ProductOption{
				{OptionType: "drop_down", Name: "Size", Choices: []Choice{{Value: "S", Description: "S", InStock: &inStock}, {Value: "M", Description: "M"}}},
			},
			ManageVariants: true,
			Variants: []Variant{
				{ID: "var-hoodie-s", Choices: map[string]string{"Size": "S"}, Variant: &VariantData{PriceData: &PriceData{Currency: "USD", Price: "55"}}, Stock: &VariantStock{TrackQuantity: true, Quantity: &three}},
				{ID: "var-hoodie-m", Choices: map[string]string{"Size": "M"}, Variant: &VariantData{PriceData: &PriceData{Currency: "USD", Price: "60"}}, Stock: &VariantStock{TrackQuantity: true, Quantity: &zero}},
			},
			CollectionIDs: []string{"col-shirts"},
			LastUpdated:   "2024-04-20T08:30:00Z",
		},
		{
			ID:            "prod-mug",
			Name:          "Acme Mug",
			Slug:          "acme-mug",
			Description:   "Stoneware mug.",
			PriceData:     &PriceData{Currency: "USD", Price: "12.50"},
			Media:         &Media{MainMedia: &MediaItem{ID: "mock_mug", MediaType: "image", Image: &MediaImage{URL: "https://static.wixstatic.com/media/mock_mug.jpg", Width: 500, Height: 500}}},
			CollectionIDs: []string{"col-home"},
			LastUpdated:   "2024-03-01T12:00:00Z",
		},
		{
			ID:            "prod-prototype",
			Name:          "Prototype Jacket",
			Slug:          "prototype-jacket",
			Stock:         &Stock{InventoryStatus: InventoryOutOfStock},
			PriceData:     &PriceData{Currency: "USD", Price: "199"},
			CollectionIDs: []string{"col-hidden-staff"},
			LastUpdated:   "2024-06-01T00:00:00Z",
		},
	}
}

func mockCollections() []Collection {
	return []Collection{
		{ID: "col-shirts", Name: "Shirts", Slug: "shirts", Description: "Tops and hoodies", NumberOfProducts: 2},
		{ID: "col-home", Name: "Home", Slug: "home", Description: "Around the house", NumberOfProducts: 1},
		{ID: "col-hidden-staff", Name: "Staff picks", Slug: "hidden-staff-picks", NumberOfProducts: 1},
	}
}

func mockDataItems() map[string][]DataItem {
	return map[string][]DataItem{
		"Pages": {
			{ID: "page-about", DataCollectionID: "Pages", Data: map[string]any{
				"slug":           "about",
				"title":          "About us",
				"body":           "<p>We make <b>plain</b> clothes.</p>",
				"seoDescription": "Who we are",
				"_createdDate":   map[string]any{"$date": "2024-01-01T00:00:00Z"},
				"_updatedDate":   map[string]any{"$date": "2024-02-01T00:00:00Z"},
			}},
			{ID: "page-shipping", DataCollectionID: "Pages", Data: map[string]any{
				"slug":         "shipping",
				"title":        "Shipping",
				"body":         "Orders ship within two business days.",
				"_createdDate": map[string]any{"$date": "2024-01-05T00:00:00Z"},
				"_updatedDate": map[string]any{"$date": "2024-01-05T00:00:00Z"},
			}},
		},
		"Menus": {
			{ID: "menu-3", DataCollectionID: "Menus", Data: map[string]any{"menu": "footer", "title": "Blog", "url": "https://blog.example.com", "order": float64(3)}},
			{ID: "menu-1", DataCollectionID: "Menus", Data: map[string]any{"menu": "footer", "title": "About", "page": "about", "order": float64(1)}},
			{ID: "menu-2", DataCollectionID: "Menus", Data: map[string]any{"menu": "footer", "title": "Shipping", "page": "shipping", "order": float64(2)}},
			{ID: "menu-4", DataCollectionID: "Menus", Data: map[string]any{"menu": "header", "title": "Shop", "url": "/search", "order": float64(1)}},
		},
	}
}
