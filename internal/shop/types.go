package shop

import "github.com/google/uuid"

// SentinelVariantID is the id carried by variants synthesized from option
// combinations. Those variants have no upstream record of their own.
var SentinelVariantID = uuid.Nil.String()

// Image is a displayable picture attached to a product or cart line.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type PriceRange struct {
	MaxVariantPrice Money `json:"maxVariantPrice"`
	MinVariantPrice Money `json:"minVariantPrice"`
}

// ProductOption is a named axis a shopper can choose along (size, color...).
// ID mirrors Name; the upstream catalog does not issue option ids.
type ProductOption struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductVariant is one purchasable configuration of a product. Variants
// synthesized from option combinations carry SentinelVariantID.
type ProductVariant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Price            Money            `json:"price"`
}

type Product struct {
	ID               string           `json:"id"`
	Handle           string           `json:"handle"`
	AvailableForSale bool             `json:"availableForSale"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	DescriptionHTML  string           `json:"descriptionHtml"`
	Options          []ProductOption  `json:"options"`
	PriceRange       PriceRange       `json:"priceRange"`
	Variants         []ProductVariant `json:"variants"`
	FeaturedImage    Image            `json:"featuredImage"`
	Images           []Image          `json:"images"`
	SEO              SEO              `json:"seo"`
	Tags             []string         `json:"tags"`
	UpdatedAt        string           `json:"updatedAt"`
}

type Collection struct {
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SEO         SEO    `json:"seo"`
	Path        string `json:"path"`
	UpdatedAt   string `json:"updatedAt"`
}

// CartProduct is the slice of product identity a cart line needs to link
// back to the catalog. It is not a Product and carries no pricing, options
// or variants.
type CartProduct struct {
	Handle        string `json:"handle"`
	FeaturedImage Image  `json:"featuredImage"`
}

type Merchandise struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	Product         CartProduct      `json:"product"`
	URL             string           `json:"url"`
}

type CartLineCost struct {
	TotalAmount Money `json:"totalAmount"`
}

type CartLine struct {
	ID          string       `json:"id"`
	Quantity    int          `json:"quantity"`
	Cost        CartLineCost `json:"cost"`
	Merchandise Merchandise  `json:"merchandise"`
}

type CartCost struct {
	SubtotalAmount Money `json:"subtotalAmount"`
	TotalAmount    Money `json:"totalAmount"`
	TotalTaxAmount Money `json:"totalTaxAmount"`
}

type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	Cost          CartCost   `json:"cost"`
	Lines         []CartLine `json:"lines"`
	TotalQuantity int        `json:"totalQuantity"`
}

type Page struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	BodySummary string `json:"bodySummary"`
	SEO         SEO    `json:"seo"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type Menu struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}
