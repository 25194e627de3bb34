package catalog

import (
	"strings"
	"time"

	"storefront/internal/shop"
	"storefront/internal/wix"

	"github.com/samber/lo"
)

// AllCollection is the synthetic collection that lists the whole catalog.
func AllCollection(updatedAt time.Time) shop.Collection {
	return shop.Collection{
		Handle:      "",
		Title:       "All",
		Description: "All products",
		SEO: shop.SEO{
			Title:       "All",
			Description: "All products",
		},
		Path:      "/search",
		UpdatedAt: updatedAt.UTC().Format(time.RFC3339),
	}
}

// ReshapeCollection maps a Wix Stores collection. Wix does not report when a
// collection last changed so updatedAt is the time of the read.
func ReshapeCollection(raw wix.Collection, updatedAt time.Time) (shop.Collection, error) {
	slug := strings.TrimSpace(raw.Slug)
	if slug == "" {
		return shop.Collection{}, shop.MissingIdentifier("collection "+raw.ID, "slug")
	}
	return shop.Collection{
		Handle:      slug,
		Title:       raw.Name,
		Description: raw.Description,
		SEO: shop.SEO{
			Title:       raw.Name,
			Description: raw.Description,
		},
		Path:      "/search/" + slug,
		UpdatedAt: updatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// ListedCollections puts the "All" collection first and drops collections
// whose handle starts with hiddenPrefix. An empty prefix hides nothing.
func ListedCollections(all shop.Collection, collections []shop.Collection, hiddenPrefix string) []shop.Collection {
	visible := lo.Filter(collections, func(c shop.Collection, _ int) bool {
		return c.Handle != "" && (hiddenPrefix == "" || !strings.HasPrefix(c.Handle, hiddenPrefix))
	})
	return append([]shop.Collection{all}, visible...)
}
