package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/shop"
	"storefront/internal/wix"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

func main() {
	var (
		mocks      = flag.Bool("mocks", false, "read the in-memory mock catalog instead of Wix")
		collection = flag.String("collection", "", "only list products in this collection handle")
		search     = flag.String("q", "", "only list products whose name starts with this")
		sortKey    = flag.String("sort", string(catalog.SortRelevance), "RELEVANCE, BEST_SELLING, CREATED_AT or PRICE")
		reverse    = flag.Bool("reverse", false, "reverse the sort order")
		product    = flag.String("product", "", "print one product by handle as JSON")
		asJSON     = flag.Bool("json", false, "print products as JSON")
		timeout    = flag.Duration("timeout", time.Minute, "overall timeout for Wix calls")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		exitErr(fmt.Errorf("load configuration: %w", err))
	}

	var src catalog.Source
	if *mocks || cfg.Mocks.Enable {
		src = wix.NewMock()
	} else {
		client, err := wix.NewClient(cfg.Wix)
		if err != nil {
			exitErr(fmt.Errorf("create Wix client: %w", err))
		}
		src = client
	}
	svc := catalog.NewService(src, cfg.Store)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *product != "" {
		p, err := svc.GetProduct(ctx, *product)
		if err != nil {
			exitErr(err)
		}
		if p == nil {
			exitErr(fmt.Errorf("no product with handle %q", *product))
		}
		printJSON(p)
		return
	}

	var products []shop.Product
	if *collection != "" {
		products, err = svc.GetCollectionProducts(ctx, *collection, catalog.SortKey(*sortKey), *reverse)
	} else {
		products, err = svc.GetProducts(ctx, catalog.Query{Search: *search, SortKey: catalog.SortKey(*sortKey), Reverse: *reverse})
	}
	if err != nil {
		exitErr(err)
	}
	if *asJSON {
		printJSON(products)
		return
	}

	collections, err := svc.GetCollections(ctx)
	if err != nil {
		slog.Warn("failed to list collections", "error", err)
	}
	fmt.Printf("Collections: %s\n", strings.Join(lo.Map(collections, func(c shop.Collection, _ int) string {
		return lo.Ternary(c.Handle == "", c.Title, c.Handle)
	}), ", "))

	fmt.Printf("Found %d products\n", len(products))
	for _, p := range products {
		available := lo.CountBy(p.Variants, func(v shop.ProductVariant) bool { return v.AvailableForSale })
		fmt.Printf("- %-24s %10s %s  variants %d (%d available)\n",
			p.Handle, p.PriceRange.MinVariantPrice.Amount, p.PriceRange.MinVariantPrice.CurrencyCode, len(p.Variants), available)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		exitErr(err)
	}
}

func exitErr(err error) {
	slog.Error("catalog failed", "error", err)
	os.Exit(1)
}
