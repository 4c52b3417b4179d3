// Command census runs the census dwelling preparation stage: pivot the 2021
// shared-dwelling counts to wide format, attach region codes, and write the
// prepared file plus the regional summary.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/census"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/report"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"

	// register all storage backends with the factory.
	_ "github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage/all"
)

func main() {
	var cfg census.Config
	flag.StringVar(&cfg.CensusPath, "census", envOr("CENSUS_FILE", "RM205-2021-2.csv"),
		"long-format census extract")
	flag.StringVar(&cfg.LookupPath, "lookup", envOr("LAD_LOOKUP_FILE", "Local_Authority_District_to_Region_(December_2023)_Lookup_in_England.csv"),
		"LAD-to-region lookup")
	flag.StringVar(&cfg.PreparedPath, "out", envOr("CENSUS_PREPARED_FILE", "census_dwelling_data_prepared.csv"),
		"prepared output path")
	flag.StringVar(&cfg.RegionalPath, "regional_out", envOr("CENSUS_REGIONAL_FILE", "census_dwelling_regional_summary.csv"),
		"regional summary output path")

	var store storage.Config
	flag.StringVar(&store.Kind, "store_kind", envOr("STORE_KIND", ""),
		"storage backend for the prepared table (empty disables)")
	flag.StringVar(&store.DSN, "store_dsn", envOr("STORE_DSN", ""), "storage DSN")
	flag.StringVar(&store.Table, "store_table", envOr("STORE_TABLE", "census_dwelling_prepared"),
		"destination table name")
	flag.Parse()

	res, err := census.Run(cfg, report.New())
	if err != nil {
		log.Fatalf("census: %v", err)
	}
	if err := loadStore(context.Background(), store, res.Prepared); err != nil {
		log.Fatalf("census: %v", err)
	}
}

// envOr resolves a default: environment variable, then fallback.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadStore pushes the table into the configured backend, if any.
func loadStore(ctx context.Context, cfg storage.Config, t *table.Table) error {
	if cfg.Kind == "" {
		return nil
	}
	repo, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()
	n, err := storage.LoadTable(ctx, repo, cfg, t)
	if err != nil {
		return err
	}
	log.Printf("stored %d row(s) in %s table %s", n, cfg.Kind, cfg.Table)
	return nil
}
