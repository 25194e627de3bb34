package wix

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// DataQuery reads rows from a Wix Data collection, filtered by field equality
// and optionally sorted by one field.
type DataQuery struct {
	Collection string
	Equals     map[string]string
	SortField  string
	Descending bool
	Limit      int
}

func (q DataQuery) wire(page paging) map[string]any {
	query := map[string]any{}
	if len(q.Equals) > 0 {
		filter := make(map[string]any, len(q.Equals))
		for field, value := range q.Equals {
			filter[field] = map[string]string{"$eq": value}
		}
		query["filter"] = filter
	}
	if q.SortField != "" {
		order := "ASC"
		if q.Descending {
			order = "DESC"
		}
		query["sort"] = []map[string]string{{"fieldName": q.SortField, "order": order}}
	}
	query["paging"] = page

	return map[string]any{
		"dataCollectionId": q.Collection,
		"query":            query,
	}
}

// QueryDataItems lists CMS rows, following pages until q.Limit rows are read
// or the collection is exhausted.
// docs https://dev.wix.com/docs/rest/business-solutions/cms/data-items/query-data-items
func (c *Client) QueryDataItems(ctx context.Context, q DataQuery) ([]DataItem, error) {
	if strings.TrimSpace(q.Collection) == "" {
		return nil, errors.New("data collection is required")
	}
	return pageAll(q.Limit, func(page paging) ([]DataItem, int, error) {
		var resp struct {
			DataItems      []DataItem `json:"dataItems"`
			PagingMetadata struct {
				Total int `json:"total"`
			} `json:"pagingMetadata"`
		}
		if err := c.do(ctx, "query data items", http.MethodPost, "/wix-data/v2/items/query", q.wire(page), &resp); err != nil {
			return nil, 0, err
		}
		return resp.DataItems, resp.PagingMetadata.Total, nil
	})
}
