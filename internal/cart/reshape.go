package cart

import (
	"net/url"
	"path"
	"strings"

	"storefront/internal/shop"
	"storefront/internal/wix"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DefaultCheckoutPath is the storefront route that redirects a shopper to the
// hosted checkout for their current cart.
const DefaultCheckoutPath = "/cart-checkout"

// Options controls cart reshaping.
type Options struct {
	Currency     string // used when the cart carries no valid currency
	CheckoutPath string
}

func (o Options) currency() string {
	if o.Currency == "" {
		return shop.DefaultCurrency
	}
	return o.Currency
}

func (o Options) checkoutPath() string {
	if o.CheckoutPath == "" {
		return DefaultCheckoutPath
	}
	return o.CheckoutPath
}

// ReshapeCart maps the visitor's Wix cart onto the storefront Cart. Totals
// are the sum of unit price times quantity over every line. Wix does not
// report tax on the current cart so tax is always zero.
func ReshapeCart(raw wix.Cart, opts Options) (shop.Cart, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return shop.Cart{}, shop.MissingIdentifier("cart", "id")
	}
	currencyCode := shop.NormalizeCurrency(raw.Currency, opts.currency())

	total := decimal.Zero
	quantity := 0
	lines := lo.Map(raw.LineItems, func(item wix.LineItem, _ int) shop.CartLine {
		line, lineTotal := reshapeLine(item, currencyCode)
		total = total.Add(lineTotal)
		quantity += line.Quantity
		return line
	})

	return shop.Cart{
		ID:          raw.ID,
		CheckoutURL: opts.checkoutPath(),
		Cost: shop.CartCost{
			SubtotalAmount: shop.NewMoney(total, currencyCode),
			TotalAmount:    shop.NewMoney(total, currencyCode),
			TotalTaxAmount: shop.NewMoney(decimal.Zero, currencyCode),
		},
		Lines:         lines,
		TotalQuantity: quantity,
	}, nil
}

func reshapeLine(item wix.LineItem, currencyCode string) (shop.CartLine, decimal.Decimal) {
	unit := decimal.Zero
	if item.Price != nil {
		unit = shop.ParseAmount(item.Price.Amount)
	}
	lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))

	productName := ""
	if item.ProductName != nil {
		productName = item.ProductName.Original
	}
	handle := handleFromURL(item.URL)
	productURL := ""
	if handle != "" {
		productURL = "/product/" + handle
	}

	return shop.CartLine{
		ID:       item.ID,
		Quantity: item.Quantity,
		Cost: shop.CartLineCost{
			TotalAmount: shop.NewMoney(lineTotal, currencyCode),
		},
		Merchandise: shop.Merchandise{
			ID:              merchandiseID(item),
			Title:           lineTitle(item.DescriptionLines, productName),
			SelectedOptions: lineOptions(item.DescriptionLines),
			Product: shop.CartProduct{
				Handle:        handle,
				FeaturedImage: lineImage(item.Image, productName),
			},
			URL: productURL,
		},
	}, lineTotal
}

func descriptionValue(d wix.DescriptionLine) string {
	if d.ColorInfo != nil {
		return d.ColorInfo.Original
	}
	if d.PlainText != nil {
		return d.PlainText.Original
	}
	return ""
}

// lineTitle joins the option values of a line ("M / Blue") and falls back
// to the product name when the line has none.
func lineTitle(desc []wix.DescriptionLine, productName string) string {
	values := lo.Filter(lo.Map(desc, func(d wix.DescriptionLine, _ int) string {
		return descriptionValue(d)
	}), func(v string, _ int) bool { return v != "" })
	if len(values) == 0 {
		return productName
	}
	return strings.Join(values, " / ")
}

func lineOptions(desc []wix.DescriptionLine) []shop.SelectedOption {
	return lo.FilterMap(desc, func(d wix.DescriptionLine, _ int) (shop.SelectedOption, bool) {
		if d.Name == nil || d.Name.Original == "" {
			return shop.SelectedOption{}, false
		}
		return shop.SelectedOption{Name: d.Name.Original, Value: descriptionValue(d)}, true
	})
}

func merchandiseID(item wix.LineItem) string {
	ref := item.CatalogReference
	if ref == nil {
		return item.ID
	}
	if ref.Options != nil && ref.Options.VariantID != "" {
		return ref.Options.VariantID
	}
	if ref.CatalogItemID != "" {
		return ref.CatalogItemID
	}
	return item.ID
}

// handleFromURL takes the product slug from the last segment of the product
// page URL Wix attaches to a line.
func handleFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(strings.TrimRight(u.Path, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func lineImage(uri, productName string) shop.Image {
	img, ok := wix.ImageFromURI(uri)
	if !ok {
		return shop.Image{AltText: productName}
	}
	alt := lo.FromPtr(img.AltText)
	if alt == "" {
		alt = productName
	}
	return shop.Image{URL: img.URL, AltText: alt, Width: img.Width, Height: img.Height}
}
