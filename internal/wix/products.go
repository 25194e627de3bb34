package wix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultPageLimit = 100

// ProductQuery narrows a catalog query. Zero fields are not sent.
type ProductQuery struct {
	Slug         string
	NamePrefix   string
	CollectionID string
	SortField    string // "price", "name", "lastUpdated"
	Descending   bool
	Limit        int
}

type productQueryRequest struct {
	Query struct {
		Filter string `json:"filter,omitempty"`
		Sort   string `json:"sort,omitempty"`
		Paging paging `json:"paging"`
	} `json:"query"`
	IncludeVariants bool `json:"includeVariants"`
}

type productQueryResponse struct {
	Products     []Product `json:"products"`
	TotalResults int       `json:"totalResults"`
}

// wire renders one page of q in the stores-reader v1 shape where filter and
// sort travel as JSON encoded strings.
func (q ProductQuery) wire(page paging) (productQueryRequest, error) {
	var req productQueryRequest
	req.IncludeVariants = true
	req.Query.Paging = page

	filter := map[string]any{}
	if slug := strings.TrimSpace(q.Slug); slug != "" {
		filter["slug"] = slug
	}
	if prefix := strings.TrimSpace(q.NamePrefix); prefix != "" {
		filter["name"] = map[string]string{"$startsWith": prefix}
	}
	if id := strings.TrimSpace(q.CollectionID); id != "" {
		filter["collections.id"] = map[string][]string{"$hasSome": {id}}
	}
	if len(filter) > 0 {
		encoded, err := json.Marshal(filter)
		if err != nil {
			return req, fmt.Errorf("encode product filter: %w", err)
		}
		req.Query.Filter = string(encoded)
	}

	if q.SortField != "" {
		order := "asc"
		if q.Descending {
			order = "desc"
		}
		encoded, err := json.Marshal([]map[string]string{{q.SortField: order}})
		if err != nil {
			return req, fmt.Errorf("encode product sort: %w", err)
		}
		req.Query.Sort = string(encoded)
	}
	return req, nil
}

// QueryProducts lists catalog products, following pages until q.Limit
// products are read or the catalog is exhausted.
// docs https://dev.wix.com/docs/rest/business-solutions/stores/catalog/query-products
func (c *Client) QueryProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	return pageAll(q.Limit, func(page paging) ([]Product, int, error) {
		body, err := q.wire(page)
		if err != nil {
			return nil, 0, err
		}
		var resp productQueryResponse
		if err := c.do(ctx, "query products", http.MethodPost, "/stores-reader/v1/products/query", body, &resp); err != nil {
			return nil, 0, err
		}
		return resp.Products, resp.TotalResults, nil
	})
}

// ProductBySlug returns ErrNotFound when no product carries slug.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New("product slug is required")
	}
	products, err := c.QueryProducts(ctx, ProductQuery{Slug: slug, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return &products[0], nil
}

// ProductByID returns ErrNotFound when Wix answers 404.
func (c *Client) ProductByID(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("product ID is required")
	}
	var resp struct {
		Product *Product `json:"product"`
	}
	if err := c.do(ctx, "get product", http.MethodGet, "/stores-reader/v1/products/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, notFound(err)
	}
	if resp.Product == nil {
		return nil, ErrNotFound
	}
	return resp.Product, nil
}
