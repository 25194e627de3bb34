// Command schemagen writes JSON Schemas for the storefront's response types so
// UI clients can validate or generate bindings against them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/cart"
	"storefront/internal/shop"

	"github.com/invopop/jsonschema"
)

func main() {
	outDir := flag.String("out", "", "directory to write one <name>.schema.json per type (default stdout)")
	flag.Parse()

	schemas, err := render()
	if err != nil {
		log.Fatalf("render schemas: %v", err)
	}

	if *outDir == "" {
		for _, s := range schemas {
			fmt.Printf("// %s\n%s\n", s.name, s.body)
		}
		return
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create %s: %v", *outDir, err)
	}
	for _, s := range schemas {
		path := filepath.Join(*outDir, s.name+".schema.json")
		if err := os.WriteFile(path, s.body, 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
	}
}

type schemaFile struct {
	name string
	body []byte
}

func render() ([]schemaFile, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	types := []struct {
		name string
		v    any
	}{
		{"product", &shop.Product{}},
		{"collection", &shop.Collection{}},
		{"cart", &shop.Cart{}},
		{"page", &shop.Page{}},
		{"menu", &shop.Menu{}},
		{"cart-line-input", &cart.LineInput{}},
	}

	out := make([]schemaFile, 0, len(types))
	for _, t := range types {
		body, err := json.MarshalIndent(r.Reflect(t.v), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		out = append(out, schemaFile{name: t.name, body: body})
	}
	return out, nil
}
