package wix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.WixConfig{
		ClientID:   "client-123",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.WixConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client ID or API key")
}

func TestQueryProducts_EncodesQueryAndAuth(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	var body productQueryRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_, _ = w.Write([]byte(`{"products":[{"id":"p1","name":"Tee","slug":"tee","priceData":{"currency":"USD","price":19.99}}],"totalResults":1}`))
	})

	ctx := WithTokens(context.Background(), Tokens{AccessToken: "visitor-token", ExpiresAt: time.Now().Add(time.Hour)})
	products, err := client.QueryProducts(ctx, ProductQuery{NamePrefix: "Te", CollectionID: "c1", SortField: "price", Descending: true})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/stores-reader/v1/products/query", captured.URL.Path)
	assert.Equal(t, "visitor-token", captured.Header.Get("Authorization"))
	assert.NotEmpty(t, captured.Header.Get("X-Request-Id"))
	assert.True(t, body.IncludeVariants)
	assert.Equal(t, defaultPageLimit, body.Query.Paging.Limit)
	assert.JSONEq(t, `{"name":{"$startsWith":"Te"},"collections.id":{"$hasSome":["c1"]}}`, body.Query.Filter)
	assert.JSONEq(t, `[{"price":"desc"}]`, body.Query.Sort)

	require.Len(t, products, 1)
	assert.Equal(t, "tee", products[0].Slug)
	assert.Equal(t, json.Number("19.99"), products[0].PriceData.Price)
}

func TestProductBySlug_NotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[]}`))
	})

	_, err := client.ProductBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductByID_404IsNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores-reader/v1/products/p%201", r.URL.EscapedPath())
		http.Error(w, `{"message":"product not found"}`, http.StatusNotFound)
	})

	_, err := client.ProductByID(context.Background(), "p 1")
	assert.ErrorIs(t, err, ErrNotFound)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestCurrentCart_NoCart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Cart not found","details":{"applicationError":{"code":"OWNED_CART_NOT_FOUND"}}}`))
	})

	_, err := client.CurrentCart(context.Background())
	assert.ErrorIs(t, err, ErrNoCart)
}

func TestCurrentCart_UpstreamFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.CurrentCart(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCart)
	assert.NotErrorIs(t, err, ErrNotFound)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "get current cart request failed: status 500")
}

func TestAPIKeyFallback(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		_, _ = w.Write([]byte(`{"collections":[{"id":"c1","name":"Shirts","slug":"shirts"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.WixConfig{
		APIKey:     "api-key",
		SiteID:     "site-1",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	collections, err := client.QueryCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "api-key", captured.Header.Get("Authorization"))
	assert.Equal(t, "site-1", captured.Header.Get("wix-site-id"))
}

func TestAnonymousTokens(t *testing.T) {
	t.Parallel()

	var body map[string]string
	var auth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/oauth2/token", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":14400,"token_type":"Bearer"}`))
	})

	ctx := WithTokens(context.Background(), Tokens{AccessToken: "stale"})
	tokens, err := client.AnonymousTokens(ctx)
	require.NoError(t, err)

	assert.Empty(t, auth)
	assert.Equal(t, "anonymous", body["grantType"])
	assert.Equal(t, "client-123", body["clientId"])
	assert.Equal(t, "at", tokens.AccessToken)
	assert.Equal(t, "rt", tokens.RefreshToken)
	assert.False(t, tokens.Expired(time.Now()))
	assert.True(t, tokens.Expired(time.Now().Add(5*time.Hour)))
}

func TestRefreshTokens_RequiresToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := client.RefreshTokens(context.Background(), "")
	assert.Error(t, err)
}

func TestQueryDataItems_Body(t *testing.T) {
	t.Parallel()

	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"dataItems":[{"id":"1","data":{"title":"About","_updatedDate":{"$date":"2024-02-01T00:00:00Z"},"order":2}}]}`))
	})

	items, err := client.QueryDataItems(context.Background(), DataQuery{
		Collection: "Menus",
		Equals:     map[string]string{"menu": "footer"},
		SortField:  "order",
	})
	require.NoError(t, err)

	assert.Equal(t, "Menus", body["dataCollectionId"])
	encoded, _ := json.Marshal(body["query"])
	assert.JSONEq(t, `{"filter":{"menu":{"$eq":"footer"}},"sort":[{"fieldName":"order","order":"ASC"}],"paging":{"limit":100}}`, string(encoded))

	require.Len(t, items, 1)
	assert.Equal(t, "About", items[0].Field("title"))
	assert.Equal(t, "2024-02-01T00:00:00Z", items[0].Field("_updatedDate"))
	assert.Equal(t, "2", items[0].Field("order"))
	assert.Equal(t, "", items[0].Field("missing"))
}

func TestCreateRedirectSession(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ecom/v1/carts/current/create-checkout":
			_, _ = w.Write([]byte(`{"checkoutId":"chk-1"}`))
		case "/redirect-session/v1/redirect-session":
			var body struct {
				EcomCheckout struct {
					CheckoutID string `json:"checkoutId"`
				} `json:"ecomCheckout"`
				Callbacks struct {
					PostFlowURL string `json:"postFlowUrl"`
				} `json:"callbacks"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "chk-1", body.EcomCheckout.CheckoutID)
			assert.Equal(t, "https://shop.example/", body.Callbacks.PostFlowURL)
			_, _ = w.Write([]byte(`{"redirectSession":{"id":"rs","fullUrl":"https://checkout.example/rs"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	id, err := client.CreateCheckout(context.Background())
	require.NoError(t, err)
	fullURL, err := client.CreateRedirectSession(context.Background(), id, "https://shop.example/")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/rs", fullURL)
}

func TestNewClient_RetriesWhenConfigured(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"collection":{"id":"c1","name":"Shirts","slug":"shirts"}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.WixConfig{
		APIKey:  "api-key",
		BaseURL: server.URL,
		Retries: 1,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	collection, err := client.CollectionBySlug(context.Background(), "shirts")
	require.NoError(t, err)
	assert.Equal(t, "Shirts", collection.Name)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewClient_NoRetriesByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.WixConfig{APIKey: "api-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.QueryCollections(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

// pagedProducts serves n products honouring paging.limit and paging.offset.
func pagedProducts(t *testing.T, n int, calls *atomic.Int32, pages *[]paging) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body productQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		*pages = append(*pages, body.Query.Paging)
		end := min(body.Query.Paging.Offset+body.Query.Paging.Limit, n)
		products := []Product{}
		for i := body.Query.Paging.Offset; i < end; i++ {
			products = append(products, Product{ID: fmt.Sprintf("p%d", i), Name: "Item", Slug: fmt.Sprintf("item-%d", i)})
		}
		_ = json.NewEncoder(w).Encode(productQueryResponse{Products: products, TotalResults: n})
	}
}

func TestQueryProducts_FollowsPages(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var pages []paging
	client := newTestClient(t, pagedProducts(t, 150, &calls, &pages))

	products, err := client.QueryProducts(context.Background(), ProductQuery{})
	require.NoError(t, err)
	require.Len(t, products, 150)
	assert.Equal(t, "p0", products[0].ID)
	assert.Equal(t, "p149", products[149].ID)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []paging{{Limit: 100}, {Limit: 100, Offset: 100}}, pages)
}

func TestQueryProducts_StopsAtLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var pages []paging
	client := newTestClient(t, pagedProducts(t, 150, &calls, &pages))

	products, err := client.QueryProducts(context.Background(), ProductQuery{Limit: 120})
	require.NoError(t, err)
	assert.Len(t, products, 120)
	assert.Equal(t, []paging{{Limit: 100}, {Limit: 20, Offset: 100}}, pages)

	calls.Store(0)
	pages = nil
	products, err = client.QueryProducts(context.Background(), ProductQuery{Limit: 9})
	require.NoError(t, err)
	assert.Len(t, products, 9)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryProducts_ExactPageEndsOnTotal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var pages []paging
	client := newTestClient(t, pagedProducts(t, 100, &calls, &pages))

	products, err := client.QueryProducts(context.Background(), ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, products, 100)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryCollections_FollowsShortPage(t *testing.T) {
	t.Parallel()

	var offsets []int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query struct {
				Paging paging `json:"paging"`
			} `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		offsets = append(offsets, body.Query.Paging.Offset)
		count := 100
		if body.Query.Paging.Offset > 0 {
			count = 5
		}
		collections := make([]Collection, 0, count)
		for i := range count {
			id := fmt.Sprintf("c%d", body.Query.Paging.Offset+i)
			collections = append(collections, Collection{ID: id, Slug: id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"collections": collections})
	})

	collections, err := client.QueryCollections(context.Background())
	require.NoError(t, err)
	assert.Len(t, collections, 105)
	assert.Equal(t, []int{0, 100}, offsets)
}

func TestQueryDataItems_FollowsPagingMetadata(t *testing.T) {
	t.Parallel()

	const total = 230
	var offsets []int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query struct {
				Paging paging `json:"paging"`
			} `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		offsets = append(offsets, body.Query.Paging.Offset)
		end := min(body.Query.Paging.Offset+body.Query.Paging.Limit, total)
		items := []DataItem{}
		for i := body.Query.Paging.Offset; i < end; i++ {
			items = append(items, DataItem{ID: fmt.Sprintf("row-%d", i), Data: map[string]any{}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"dataItems":      items,
			"pagingMetadata": map[string]int{"total": total},
		})
	})

	items, err := client.QueryDataItems(context.Background(), DataQuery{Collection: "Pages"})
	require.NoError(t, err)
	assert.Len(t, items, total)
	assert.Equal(t, []int{0, 100, 200}, offsets)
}

func TestProductBySlug_ListingNotFoundIsUpstreamFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such route", http.StatusNotFound)
	})

	_, err := client.ProductBySlug(context.Background(), "tee")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestCollectionBySlug_404IsNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"collection not found"}`, http.StatusNotFound)
	})

	_, err := client.CollectionBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
