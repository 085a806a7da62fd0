// Package ingest loads the three pipeline inputs: the product catalog, the
// sales log and the inventory snapshot.
//
// The catalog is tried from the product API first, then from a local fallback
// file, and finally derived from the sales log itself. Sales and inventory are
// local CSV files and are required. All three sources load concurrently.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ecompipe/internal/datasource"
	"ecompipe/internal/datasource/file"
	"ecompipe/internal/datasource/httpds"
	"ecompipe/internal/diag"
	"ecompipe/internal/parser"
	pcsv "ecompipe/internal/parser/csv"
	pjson "ecompipe/internal/parser/json"
	"ecompipe/internal/schema"
	"ecompipe/internal/transformer"
	"ecompipe/internal/transformer/builtin"
	"ecompipe/pkg/records"
)

const stage = "ingest"

// Table names given to the loaded inputs.
const (
	CatalogTable   = "catalog"
	SalesTable     = "sales"
	InventoryTable = "inventory"
)

// Origin records where the catalog came from.
type Origin string

const (
	OriginAPI          Origin = "api"
	OriginFallbackFile Origin = "fallback_file"
	OriginDerived      Origin = "derived_from_sales"
)

// Options configures Load.
type Options struct {
	// CatalogURL is the product API endpoint. Empty skips the API.
	CatalogURL     string
	CatalogHeaders http.Header
	// Client fetches CatalogURL. A default client is used when nil.
	Client *httpds.Client

	// FallbackFile is read when the API is unset or fails. Empty skips it.
	FallbackFile  string
	SalesFile     string
	InventoryFile string

	// CSV configures parsing of every CSV input.
	CSV pcsv.Options

	// Normalizer locates product_id, title and category in the sales header
	// when the catalog has to be derived.
	Normalizer schema.Normalizer

	Logger logrus.FieldLogger
}

// Inputs are the loaded, cell-normalized tables. Column names are still raw.
type Inputs struct {
	Catalog       records.Table
	Sales         records.Table
	Inventory     records.Table
	CatalogOrigin Origin
	// LoadTime is the wall time spent in Load.
	LoadTime    time.Duration
	Diagnostics diag.List
}

// cells runs on every freshly parsed table.
var cells = transformer.Chain{builtin.Normalize{}}

// Load reads all three inputs. A missing or unreadable sales or inventory
// file is an error; a catalog that cannot be loaded from any source is
// derived from sales.
func Load(ctx context.Context, opt Options) (*Inputs, error) {
	start := time.Now()
	log := opt.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	var (
		in         Inputs
		salesSt    parser.Stats
		invSt      parser.Stats
		catalog    *records.Table
		catalogErr []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, st, err := loadCSV(gctx, SalesTable, opt.SalesFile, opt.CSV)
		if err != nil {
			return err
		}
		in.Sales, salesSt = t, st
		return nil
	})
	g.Go(func() error {
		t, st, err := loadCSV(gctx, InventoryTable, opt.InventoryFile, opt.CSV)
		if err != nil {
			return err
		}
		in.Inventory, invSt = t, st
		return nil
	})
	g.Go(func() error {
		t, origin, errs := loadCatalog(gctx, opt)
		catalogErr = errs
		if t != nil {
			catalog = t
			in.CatalogOrigin = origin
		}
		// catalog failures fall through to derivation
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range catalogErr {
		log.WithError(err).Warn("catalog source failed")
	}
	in.Diagnostics.Add(stage, "catalog_source_failed", len(catalogErr), "")
	in.Diagnostics.Add(stage, "sales_rows_skipped", salesSt.Skipped, opt.SalesFile)
	in.Diagnostics.Add(stage, "sales_rows_padded", salesSt.Padded, opt.SalesFile)
	in.Diagnostics.Add(stage, "inventory_rows_skipped", invSt.Skipped, opt.InventoryFile)
	in.Diagnostics.Add(stage, "inventory_rows_padded", invSt.Padded, opt.InventoryFile)

	if catalog != nil {
		in.Catalog = *catalog
	} else {
		in.Catalog = DeriveCatalog(in.Sales, opt.Normalizer)
		in.CatalogOrigin = OriginDerived
		in.Diagnostics.Add(stage, "catalog_derived", in.Catalog.Len(), "catalog derived from sales; prices are 0")
		log.WithField("products", in.Catalog.Len()).Warn("no catalog source available, derived catalog from sales")
	}

	in.LoadTime = time.Since(start)
	log.WithFields(logrus.Fields{
		"catalog_origin": in.CatalogOrigin,
		"catalog":        in.Catalog.Len(),
		"sales":          in.Sales.Len(),
		"inventory":      in.Inventory.Len(),
		"took":           in.LoadTime,
	}).Debug("inputs loaded")
	return &in, nil
}

// loadCatalog returns the catalog from the first source that works, plus the
// errors of the sources that were tried and failed.
func loadCatalog(ctx context.Context, opt Options) (*records.Table, Origin, []error) {
	var errs []error
	if opt.CatalogURL != "" {
		c := opt.Client
		if c == nil {
			c = httpds.NewClient(httpds.Config{})
		}
		src := httpds.NewSource(c, opt.CatalogURL, opt.CatalogHeaders)
		t, _, err := parse(ctx, CatalogTable, src, datasource.FormatJSON, opt.CSV)
		if err == nil {
			return &t, OriginAPI, errs
		}
		errs = append(errs, fmt.Errorf("catalog api %s: %w", opt.CatalogURL, err))
	}
	if opt.FallbackFile != "" {
		src := file.NewLocal(opt.FallbackFile)
		t, _, err := parse(ctx, CatalogTable, src, src.Format(), opt.CSV)
		if err == nil {
			return &t, OriginFallbackFile, errs
		}
		errs = append(errs, fmt.Errorf("catalog fallback file: %w", err))
	}
	return nil, "", errs
}

func loadCSV(ctx context.Context, name, path string, opt pcsv.Options) (records.Table, parser.Stats, error) {
	if path == "" {
		return records.Table{}, parser.Stats{}, fmt.Errorf("ingest: %s: no file configured", name)
	}
	t, st, err := parse(ctx, name, file.NewLocal(path), datasource.FormatCSV, opt)
	if err != nil {
		return records.Table{}, st, fmt.Errorf("ingest: %s: %w", name, err)
	}
	return t, st, nil
}

func parse(ctx context.Context, name string, src datasource.Source, format datasource.Format, opt pcsv.Options) (records.Table, parser.Stats, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return records.Table{}, parser.Stats{}, err
	}
	defer rc.Close()

	var p parser.Parser
	switch format {
	case datasource.FormatJSON:
		p = pjson.NewParser(pjson.Options{})
	default:
		p = pcsv.NewParser(opt)
	}
	t, st, err := p.ParseTable(name, rc)
	if err != nil {
		return records.Table{}, st, err
	}
	return cells.ApplyTable(t), st, nil
}

// DeriveCatalog builds a minimal catalog from the sales log: one row per
// distinct product id (first occurrence wins) carrying title and category
// when sales has them, and a price of 0.
func DeriveCatalog(sales records.Table, n schema.Normalizer) records.Table {
	find := func(want string) (string, bool) {
		for _, c := range sales.Columns {
			if n.Canonical(c) == want {
				return c, true
			}
		}
		return "", false
	}

	idCol, ok := find(schema.ProductID)
	cols := []string{schema.ProductID}
	if !ok {
		return records.NewTable(CatalogTable, append(cols, "price"), nil)
	}
	src := map[string]string{}
	for _, c := range []string{"title", "category"} {
		if raw, ok := find(c); ok {
			src[c] = raw
			cols = append(cols, c)
		}
	}
	cols = append(cols, "price")

	var rows []records.Record
	seen := map[string]struct{}{}
	for _, r := range sales.Rows {
		key, ok := records.KeyString(r[idCol])
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out := records.Record{schema.ProductID: r[idCol], "price": int64(0)}
		for c, raw := range src {
			out[c] = r[raw]
		}
		rows = append(rows, out)
	}
	return records.NewTable(CatalogTable, cols, rows)
}
