package content

import (
	"strings"

	"storefront/internal/shop"
	"storefront/internal/wix"
)

// summaryLength is the rune budget of Page.BodySummary.
const summaryLength = 160

// Field names of the Pages and Menus data collections.
const (
	fieldSlug           = "slug"
	fieldTitle          = "title"
	fieldBody           = "body"
	fieldSEOTitle       = "seoTitle"
	fieldSEODescription = "seoDescription"
	fieldCreated        = "_createdDate"
	fieldUpdated        = "_updatedDate"

	fieldMenu  = "menu"
	fieldURL   = "url"
	fieldPage  = "page"
	fieldOrder = "order"
)

// ReshapePage maps a row of the Pages collection. Body keeps its markup;
// BodySummary is plain text.
func ReshapePage(item wix.DataItem) (shop.Page, error) {
	if strings.TrimSpace(item.ID) == "" {
		return shop.Page{}, shop.MissingIdentifier("page", "id")
	}
	handle := strings.TrimSpace(item.Field(fieldSlug))
	if handle == "" {
		return shop.Page{}, shop.MissingIdentifier("page "+item.ID, "slug")
	}

	title := item.Field(fieldTitle)
	body := item.Field(fieldBody)
	summary := shop.Summarize(shop.PlainText(body), summaryLength)

	createdAt := item.Field(fieldCreated)
	updatedAt := item.Field(fieldUpdated)
	if updatedAt == "" {
		updatedAt = createdAt
	}

	return shop.Page{
		ID:          item.ID,
		Handle:      handle,
		Title:       title,
		Body:        body,
		BodySummary: summary,
		SEO: shop.SEO{
			Title:       firstNonEmpty(item.Field(fieldSEOTitle), title),
			Description: firstNonEmpty(item.Field(fieldSEODescription), summary),
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// ReshapeMenu maps a row of the Menus collection. An external url wins over
// a page reference; an entry with neither links home.
func ReshapeMenu(item wix.DataItem) shop.Menu {
	path := strings.TrimSpace(item.Field(fieldURL))
	if path == "" {
		path = "/" + strings.TrimPrefix(strings.TrimSpace(item.Field(fieldPage)), "/")
	}
	return shop.Menu{Title: item.Field(fieldTitle), Path: path}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
