// Package storefront serves the catalog, cart and content as JSON for the
// storefront UI.
package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/content"
	"storefront/internal/shop"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

type Server struct {
	catalog     *catalog.Service
	cart        *cart.Service
	actions     *cart.Actions
	content     *content.Service
	session     func(http.Handler) http.Handler
	postFlowURL string
}

// NewServer wires the services behind the HTTP routes. session wraps every
// route that talks to Wix on behalf of a visitor; nil leaves them bare.
func NewServer(catalogSvc *catalog.Service, cartSvc *cart.Service, contentSvc *content.Service, session func(http.Handler) http.Handler, cfg config.StoreConfig) *Server {
	if session == nil {
		session = func(h http.Handler) http.Handler { return h }
	}
	return &Server{
		catalog:     catalogSvc,
		cart:        cartSvc,
		actions:     cart.NewActions(cartSvc),
		content:     contentSvc,
		session:     session,
		postFlowURL: cfg.CheckoutCallback,
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"GET /api/products":                      s.handleProducts,
		"GET /api/products/{handle}":             s.handleProduct,
		"GET /api/products/{id}/recommendations": s.handleRecommendations,
		"GET /api/collections":                   s.handleCollections,
		"GET /api/collections/{handle}":          s.handleCollection,
		"GET /api/collections/{handle}/products": s.handleCollectionProducts,
		"GET /api/cart":                          s.handleCart,
		"POST /api/cart/items":                   s.handleAddItem,
		"DELETE /api/cart/lines/{id}":            s.handleRemoveLine,
		"PATCH /api/cart/lines/{id}":             s.handleUpdateLine,
		"GET " + cart.DefaultCheckoutPath:        s.handleCheckout,
		"GET /api/pages":                         s.handlePages,
		"GET /api/pages/{handle}":                s.handlePage,
		"GET /api/menus/{handle}":                s.handleMenu,
	}
	for pattern, handler := range routes {
		mux.Handle(pattern, s.session(handler))
	}
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := s.catalog.GetProducts(r.Context(), catalog.Query{
		Search:  strings.TrimSpace(q.Get("q")),
		SortKey: catalog.SortKey(q.Get("sort")),
		Reverse: parseBool(q.Get("reverse")),
	})
	if err != nil {
		writeUpstreamError(r.Context(), w, "list products", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, products)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.GetProduct(r.Context(), r.PathValue("handle"))
	if err != nil {
		writeUpstreamError(r.Context(), w, "get product", err)
		return
	}
	if product == nil {
		writeMessage(r.Context(), w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, product)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.GetProductRecommendations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUpstreamError(r.Context(), w, "get recommendations", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, products)
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.catalog.GetCollections(r.Context())
	if err != nil {
		writeUpstreamError(r.Context(), w, "list collections", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, collections)
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	collection, err := s.catalog.GetCollection(r.Context(), r.PathValue("handle"))
	if err != nil {
		writeUpstreamError(r.Context(), w, "get collection", err)
		return
	}
	if collection == nil {
		writeMessage(r.Context(), w, http.StatusNotFound, "collection not found")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, collection)
}

func (s *Server) handleCollectionProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := s.catalog.GetCollectionProducts(r.Context(), r.PathValue("handle"), catalog.SortKey(q.Get("sort")), parseBool(q.Get("reverse")))
	if err != nil {
		writeUpstreamError(r.Context(), w, "list collection products", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, products)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	s.writeCart(w, r)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var line cart.LineInput
	if err := decodeJSON(w, r, &line); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := s.actions.AddItem(r.Context(), line); msg != "" {
		writeMessage(r.Context(), w, http.StatusBadRequest, msg)
		return
	}
	s.writeCart(w, r)
}

func (s *Server) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	if msg := s.actions.RemoveItem(r.Context(), r.PathValue("id")); msg != "" {
		writeMessage(r.Context(), w, http.StatusBadRequest, msg)
		return
	}
	s.writeCart(w, r)
}

func (s *Server) handleUpdateLine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.Quantity == nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := s.actions.UpdateItemQuantity(r.Context(), r.PathValue("id"), *body.Quantity); msg != "" {
		writeMessage(r.Context(), w, http.StatusBadRequest, msg)
		return
	}
	s.writeCart(w, r)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	checkoutURL, err := s.cart.CreateCheckoutURL(r.Context(), s.postFlowURL)
	if err != nil {
		writeUpstreamError(r.Context(), w, "create checkout", err)
		return
	}
	http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.content.GetPages(r.Context())
	if err != nil {
		writeUpstreamError(r.Context(), w, "list pages", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, pages)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.content.GetPage(r.Context(), r.PathValue("handle"))
	if err != nil {
		writeUpstreamError(r.Context(), w, "get page", err)
		return
	}
	if page == nil {
		writeMessage(r.Context(), w, http.StatusNotFound, "page not found")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, page)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := s.content.GetMenu(r.Context(), r.PathValue("handle"))
	if err != nil {
		writeUpstreamError(r.Context(), w, "get menu", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, menu)
}

// writeCart answers with the current cart, or 204 when the visitor has none.
func (s *Server) writeCart(w http.ResponseWriter, r *http.Request) {
	current, err := s.cart.GetCart(r.Context())
	if err != nil {
		writeUpstreamError(r.Context(), w, "get cart", err)
		return
	}
	if current == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, current)
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeMessage(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, errorBody{Error: msg})
}

// writeUpstreamError hides upstream detail from the client. Malformed upstream
// records and transport failures both surface as 502.
func writeUpstreamError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	slog.ErrorContext(ctx, "storefront request failed", "operation", op, "error", err)
	msg := "upstream service unavailable"
	if errors.Is(err, shop.ErrMissingIdentifier) || errors.Is(err, catalog.ErrTooManyVariants) {
		msg = "upstream returned an unusable record"
	}
	writeMessage(ctx, w, http.StatusBadGateway, msg)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to write json response", "error", err)
	}
}
