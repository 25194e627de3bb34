package catalog

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/shop"

	"github.com/samber/lo"
)

// ErrTooManyVariants is returned when the option combinations of a product
// would exceed the configured variant limit.
var ErrTooManyVariants = errors.New("too many option combinations")

// SynthesizeVariants returns every combination of one value per option.
// Options keep their declared order and the first option varies slowest.
// No options yields a single empty combination; an option without values
// yields none. A positive limit caps the number of combinations and is
// checked before anything is generated.
func SynthesizeVariants(options []shop.ProductOption, limit int) ([][]shop.SelectedOption, error) {
	total := 1
	for _, opt := range options {
		if len(opt.Values) == 0 {
			return [][]shop.SelectedOption{}, nil
		}
		total *= len(opt.Values)
		if limit > 0 && total > limit {
			return nil, fmt.Errorf("%d options exceed %d variants: %w", len(options), limit, ErrTooManyVariants)
		}
	}

	combos := [][]shop.SelectedOption{{}}
	for _, opt := range options {
		next := make([][]shop.SelectedOption, 0, len(combos)*len(opt.Values))
		for _, prefix := range combos {
			for _, value := range opt.Values {
				combo := make([]shop.SelectedOption, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, shop.SelectedOption{Name: opt.Name, Value: value}))
			}
		}
		combos = next
	}
	return combos, nil
}

// variantTitle joins the selected values, e.g. "S / Red". A variant with no
// options takes the product title.
func variantTitle(selected []shop.SelectedOption, productTitle string) string {
	if len(selected) == 0 {
		return productTitle
	}
	return strings.Join(lo.Map(selected, func(o shop.SelectedOption, _ int) string { return o.Value }), " / ")
}

func synthesizedVariants(options []shop.ProductOption, title string, price shop.Money, available bool, limit int) ([]shop.ProductVariant, error) {
	combos, err := SynthesizeVariants(options, limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(combos, func(selected []shop.SelectedOption, _ int) shop.ProductVariant {
		return shop.ProductVariant{
			ID:               shop.SentinelVariantID,
			Title:            variantTitle(selected, title),
			AvailableForSale: available,
			SelectedOptions:  selected,
			Price:            price,
		}
	}), nil
}
