package wix

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Inventory statuses reported on Product.Stock.InventoryStatus.
const (
	InventoryInStock             = "IN_STOCK"
	InventoryOutOfStock          = "OUT_OF_STOCK"
	InventoryPartiallyOutOfStock = "PARTIALLY_OUT_OF_STOCK"
)

// OptionTypeColor marks options whose choices carry a hex value code and a
// human readable description.
const OptionTypeColor = "color"

// Product is a Wix Stores catalog product as returned by the stores-reader API.
// Nested objects are pointers because the API omits them freely.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description,omitempty"`
	Stock          *Stock          `json:"stock,omitempty"`
	PriceData      *PriceData      `json:"priceData,omitempty"`
	Media          *Media          `json:"media,omitempty"`
	ProductOptions []ProductOption `json:"productOptions,omitempty"`
	ManageVariants bool            `json:"manageVariants"`
	Variants       []Variant       `json:"variants,omitempty"`
	CollectionIDs  []string        `json:"collectionIds,omitempty"`
	Ribbon         string          `json:"ribbon,omitempty"`
	LastUpdated    string          `json:"lastUpdated,omitempty"`
}

type Stock struct {
	TrackInventory  bool   `json:"trackInventory"`
	Quantity        *int   `json:"quantity,omitempty"`
	InStock         *bool  `json:"inStock,omitempty"`
	InventoryStatus string `json:"inventoryStatus,omitempty"`
}

// PriceData keeps the price as the literal JSON number so no precision is lost
// before it reaches decimal arithmetic.
type PriceData struct {
	Currency        string      `json:"currency,omitempty"`
	Price           json.Number `json:"price,omitempty"`
	DiscountedPrice json.Number `json:"discountedPrice,omitempty"`
}

type Media struct {
	MainMedia *MediaItem  `json:"mainMedia,omitempty"`
	Items     []MediaItem `json:"items,omitempty"`
}

type MediaItem struct {
	ID        string      `json:"id,omitempty"`
	MediaType string      `json:"mediaType,omitempty"`
	Title     string      `json:"title,omitempty"`
	Image     *MediaImage `json:"image,omitempty"`
}

type MediaImage struct {
	URL     string  `json:"url"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
	AltText *string `json:"altText,omitempty"`
}

type ProductOption struct {
	OptionType string   `json:"optionType,omitempty"`
	Name       string   `json:"name"`
	Choices    []Choice `json:"choices,omitempty"`
}

type Choice struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	InStock     *bool  `json:"inStock,omitempty"`
	Visible     *bool  `json:"visible,omitempty"`
}

// Variant is a managed variant. Choices maps option name to the chosen value
// (the description for color options).
type Variant struct {
	ID      string            `json:"id"`
	Choices map[string]string `json:"choices,omitempty"`
	Variant *VariantData      `json:"variant,omitempty"`
	Stock   *VariantStock     `json:"stock,omitempty"`
}

type VariantData struct {
	PriceData *PriceData `json:"priceData,omitempty"`
	SKU       string     `json:"sku,omitempty"`
	Visible   *bool      `json:"visible,omitempty"`
}

type VariantStock struct {
	TrackQuantity bool  `json:"trackQuantity"`
	Quantity      *int  `json:"quantity,omitempty"`
	InStock       *bool `json:"inStock,omitempty"`
}

type Collection struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Description      string `json:"description,omitempty"`
	Visible          *bool  `json:"visible,omitempty"`
	NumberOfProducts int    `json:"numberOfProducts,omitempty"`
}

// Cart is the visitor's current eCommerce cart.
type Cart struct {
	ID         string     `json:"id"`
	Currency   string     `json:"currency,omitempty"`
	CheckoutID string     `json:"checkoutId,omitempty"`
	LineItems  []LineItem `json:"lineItems,omitempty"`
}

type LineItem struct {
	ID               string              `json:"id"`
	Quantity         int                 `json:"quantity"`
	CatalogReference *CatalogReference   `json:"catalogReference,omitempty"`
	ProductName      *LocalizedText      `json:"productName,omitempty"`
	URL              string              `json:"url,omitempty"`
	Price            *MultiCurrencyPrice `json:"price,omitempty"`
	DescriptionLines []DescriptionLine   `json:"descriptionLines,omitempty"`
	Image            string              `json:"image,omitempty"`
}

type CatalogReference struct {
	CatalogItemID string          `json:"catalogItemId"`
	AppID         string          `json:"appId"`
	Options       *CatalogOptions `json:"options,omitempty"`
}

// CatalogOptions selects a managed variant by id or, for products without
// managed variants, by option name/value pairs.
type CatalogOptions struct {
	VariantID string            `json:"variantId,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
}

type LocalizedText struct {
	Original   string `json:"original"`
	Translated string `json:"translated,omitempty"`
}

type MultiCurrencyPrice struct {
	Amount          string `json:"amount"`
	ConvertedAmount string `json:"convertedAmount,omitempty"`
	FormattedAmount string `json:"formattedAmount,omitempty"`
}

type DescriptionLine struct {
	Name      *LocalizedText `json:"name,omitempty"`
	PlainText *LocalizedText `json:"plainText,omitempty"`
	ColorInfo *Color         `json:"colorInfo,omitempty"`
	LineType  string         `json:"lineType,omitempty"`
}

type Color struct {
	Original   string `json:"original"`
	Translated string `json:"translated,omitempty"`
	Code       string `json:"code,omitempty"`
}

// DataItem is a row of a Wix Data (CMS) collection.
type DataItem struct {
	ID               string         `json:"id"`
	DataCollectionID string         `json:"dataCollectionId,omitempty"`
	Data             map[string]any `json:"data"`
}

// Field returns a data field as text. Wix Data wraps dates as {"$date": "..."};
// those are unwrapped. Missing fields are "".
func (d DataItem) Field(name string) string {
	v, ok := d.Data[name]
	if !ok || v == nil {
		return ""
	}
	switch value := v.(type) {
	case string:
		return value
	case map[string]any:
		if date, ok := value["$date"].(string); ok {
			return date
		}
		return ""
	case float64, bool, json.Number:
		return strings.TrimSpace(fmt.Sprint(value))
	default:
		return ""
	}
}
