package wix

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// QueryCollections lists every store collection (categories in the dashboard).
func (c *Client) QueryCollections(ctx context.Context) ([]Collection, error) {
	return pageAll(0, func(page paging) ([]Collection, int, error) {
		body := map[string]any{
			"query": map[string]any{"paging": page},
		}
		var resp struct {
			Collections  []Collection `json:"collections"`
			TotalResults int          `json:"totalResults"`
		}
		if err := c.do(ctx, "query collections", http.MethodPost, "/stores-reader/v1/collections/query", body, &resp); err != nil {
			return nil, 0, err
		}
		return resp.Collections, resp.TotalResults, nil
	})
}

// CollectionBySlug returns ErrNotFound when no collection carries slug.
func (c *Client) CollectionBySlug(ctx context.Context, slug string) (*Collection, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New("collection slug is required")
	}
	var resp struct {
		Collection *Collection `json:"collection"`
	}
	if err := c.do(ctx, "get collection", http.MethodGet, "/stores-reader/v1/collections/slug/"+url.PathEscape(slug), nil, &resp); err != nil {
		return nil, notFound(err)
	}
	if resp.Collection == nil {
		return nil, ErrNotFound
	}
	return resp.Collection, nil
}
