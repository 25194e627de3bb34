package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/content"
	"storefront/internal/shop"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Catalog interface {
	GetProducts(ctx context.Context, q catalog.Query) ([]shop.Product, error)
	GetCollections(ctx context.Context) ([]shop.Collection, error)
}

type Pages interface {
	GetPages(ctx context.Context) ([]shop.Page, error)
}

var (
	_ Catalog = (*catalog.Service)(nil)
	_ Pages   = (*content.Service)(nil)
)

type Server struct {
	catalog Catalog
	pages   Pages
	domain  string
	session func(http.Handler) http.Handler
}

const robots = `# Allow all search engines to crawl the site
User-agent: *
Allow: /

# Sitemap location
Sitemap: %s/sitemap.xml
`

// New serves sitemap.xml and robots.txt for domain. session wraps the sitemap
// handler so catalog reads carry visitor tokens.
func New(c Catalog, p Pages, domain string, session func(http.Handler) http.Handler) *Server {
	if session == nil {
		session = func(h http.Handler) http.Handler { return h }
	}
	return &Server{catalog: c, pages: p, domain: domain, session: session}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.Handle("GET /sitemap.xml", s.session(http.HandlerFunc(s.handleSitemap)))
	mux.HandleFunc("GET /robots.txt", s.handleRobots)
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (s *Server) entries(ctx context.Context) ([]urlEntry, error) {
	var (
		collections []shop.Collection
		products    []shop.Product
		pages       []shop.Page
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if collections, err = s.catalog.GetCollections(ctx); err != nil {
			return fmt.Errorf("list collections: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if products, err = s.catalog.GetProducts(ctx, catalog.Query{}); err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if pages, err = s.pages.GetPages(ctx); err != nil {
			return fmt.Errorf("list pages: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]urlEntry, 0, 1+len(collections)+len(products)+len(pages))
	entries = append(entries, urlEntry{Loc: s.domain + "/"})
	entries = append(entries, lo.Map(collections, func(c shop.Collection, _ int) urlEntry {
		return urlEntry{Loc: s.domain + c.Path, LastMod: c.UpdatedAt}
	})...)
	entries = append(entries, lo.Map(products, func(p shop.Product, _ int) urlEntry {
		return urlEntry{Loc: s.domain + "/product/" + p.Handle, LastMod: p.UpdatedAt}
	})...)
	entries = append(entries, lo.Map(pages, func(p shop.Page, _ int) urlEntry {
		return urlEntry{Loc: s.domain + "/" + p.Handle, LastMod: p.UpdatedAt}
	})...)
	return entries, nil
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries(r.Context())
	if err != nil {
		http.Error(w, "failed to load sitemap", http.StatusBadGateway)
		slog.ErrorContext(r.Context(), "failed to read sitemap urls", "error", err)
		return
	}
	slog.InfoContext(r.Context(), "serving sitemap", "count", len(entries))

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write sitemap header", "error", err)
		return
	}
	if err := xml.NewEncoder(w).Encode(urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  entries,
	}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode sitemap", "error", err)
	}
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := fmt.Fprintf(w, robots, s.domain); err != nil {
		slog.ErrorContext(r.Context(), "failed to write robots.txt", "error", err)
	}
}
