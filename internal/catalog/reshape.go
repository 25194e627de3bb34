package catalog

import (
	"slices"
	"strings"

	"storefront/internal/shop"
	"storefront/internal/wix"

	"github.com/samber/lo"
)

// placeholderAlt is used for images that come without alt text.
const placeholderAlt = "alt text"

// Options controls product reshaping.
type Options struct {
	Currency    string // fallback when upstream sends no valid currency
	MaxVariants int    // cap on synthesized variants, 0 for no cap
}

func (o Options) currency() string {
	if o.Currency == "" {
		return shop.DefaultCurrency
	}
	return o.Currency
}

// ReshapeProduct maps a Wix Stores product onto the storefront Product. The
// result depends only on raw and opts.
func ReshapeProduct(raw wix.Product, opts Options) (shop.Product, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return shop.Product{}, shop.MissingIdentifier("product", "id")
	}
	if strings.TrimSpace(raw.Slug) == "" {
		return shop.Product{}, shop.MissingIdentifier("product "+raw.ID, "slug")
	}

	currencyCode := opts.currency()
	if raw.PriceData != nil {
		currencyCode = shop.NormalizeCurrency(raw.PriceData.Currency, currencyCode)
	}
	basePrice := priceMoney(raw.PriceData, currencyCode)
	available := productAvailable(raw.Stock)
	options := productOptions(raw.ProductOptions)
	images := productImages(raw.Media)

	var variants []shop.ProductVariant
	if raw.ManageVariants && len(raw.Variants) > 0 {
		variants = lo.Map(raw.Variants, func(v wix.Variant, _ int) shop.ProductVariant {
			return managedVariant(v, raw.Name, options, basePrice)
		})
	} else {
		var err error
		variants, err = synthesizedVariants(options, raw.Name, basePrice, available, opts.MaxVariants)
		if err != nil {
			return shop.Product{}, err
		}
	}

	description := shop.PlainText(raw.Description)
	tags := []string{}
	if ribbon := strings.TrimSpace(raw.Ribbon); ribbon != "" {
		tags = append(tags, ribbon)
	}

	return shop.Product{
		ID:               raw.ID,
		Handle:           raw.Slug,
		AvailableForSale: available,
		Title:            raw.Name,
		Description:      description,
		DescriptionHTML:  raw.Description,
		Options:          options,
		PriceRange: shop.PriceRange{
			MaxVariantPrice: basePrice,
			MinVariantPrice: basePrice,
		},
		Variants:      variants,
		FeaturedImage: featuredImage(raw.Media, images),
		Images:        images,
		SEO: shop.SEO{
			Title:       raw.Name,
			Description: description,
		},
		Tags:      tags,
		UpdatedAt: raw.LastUpdated,
	}, nil
}

func priceMoney(price *wix.PriceData, currencyCode string) shop.Money {
	if price == nil {
		return shop.NewMoney(shop.ParseAmount(""), currencyCode)
	}
	return shop.NewMoney(shop.ParseAmount(price.Price.String()), currencyCode)
}

func productAvailable(stock *wix.Stock) bool {
	if stock == nil {
		return true
	}
	switch stock.InventoryStatus {
	case wix.InventoryInStock, wix.InventoryPartiallyOutOfStock:
		return true
	case wix.InventoryOutOfStock:
		return false
	}
	return lo.FromPtrOr(stock.InStock, true)
}

// productOptions exposes color choices by their description ("Red") rather
// than the hex value Wix stores.
func productOptions(raw []wix.ProductOption) []shop.ProductOption {
	return lo.Map(raw, func(opt wix.ProductOption, _ int) shop.ProductOption {
		values := lo.Map(opt.Choices, func(c wix.Choice, _ int) string {
			if opt.OptionType == wix.OptionTypeColor && c.Description != "" {
				return c.Description
			}
			return c.Value
		})
		return shop.ProductOption{ID: opt.Name, Name: opt.Name, Values: values}
	})
}

func managedVariant(v wix.Variant, title string, options []shop.ProductOption, base shop.Money) shop.ProductVariant {
	price := base
	if v.Variant != nil && v.Variant.PriceData != nil && v.Variant.PriceData.Price != "" {
		price = priceMoney(v.Variant.PriceData, shop.NormalizeCurrency(v.Variant.PriceData.Currency, base.CurrencyCode))
	}

	available := true
	if v.Stock != nil && v.Stock.TrackQuantity {
		available = lo.FromPtr(v.Stock.Quantity) > 0
	}

	selected := selectedOptions(v.Choices, options)
	return shop.ProductVariant{
		ID:               v.ID,
		Title:            variantTitle(selected, title),
		AvailableForSale: available,
		SelectedOptions:  selected,
		Price:            price,
	}
}

// selectedOptions orders a variant's choice map by the product's option order.
// Names the product does not declare follow in sorted order.
func selectedOptions(choices map[string]string, options []shop.ProductOption) []shop.SelectedOption {
	selected := make([]shop.SelectedOption, 0, len(choices))
	for _, opt := range options {
		if value, ok := choices[opt.Name]; ok {
			selected = append(selected, shop.SelectedOption{Name: opt.Name, Value: value})
		}
	}
	known := lo.Map(options, func(o shop.ProductOption, _ int) string { return o.Name })
	extra := lo.Filter(lo.Keys(choices), func(name string, _ int) bool { return !lo.Contains(known, name) })
	slices.Sort(extra)
	for _, name := range extra {
		selected = append(selected, shop.SelectedOption{Name: name, Value: choices[name]})
	}
	return selected
}

func toImage(img *wix.MediaImage) shop.Image {
	alt := strings.TrimSpace(lo.FromPtr(img.AltText))
	if alt == "" {
		alt = placeholderAlt
	}
	return shop.Image{URL: img.URL, AltText: alt, Width: img.Width, Height: img.Height}
}

func productImages(media *wix.Media) []shop.Image {
	if media == nil {
		return []shop.Image{}
	}
	return lo.FilterMap(media.Items, func(item wix.MediaItem, _ int) (shop.Image, bool) {
		if item.Image == nil || item.Image.URL == "" {
			return shop.Image{}, false
		}
		return toImage(item.Image), true
	})
}

func featuredImage(media *wix.Media, images []shop.Image) shop.Image {
	if media != nil && media.MainMedia != nil && media.MainMedia.Image != nil && media.MainMedia.Image.URL != "" {
		return toImage(media.MainMedia.Image)
	}
	if len(images) > 0 {
		return images[0]
	}
	return shop.Image{AltText: placeholderAlt}
}
