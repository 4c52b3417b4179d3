// Command regional runs the final analysis stage: join the regional dwelling
// and sales summaries, derive percentages and sales rates, flag the regional
// maxima, and write the analysis CSV and styled workbook.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/regional"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/report"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage"
	"github.com/martin-ngigi/University-Of-East-London-Assignments/internal/table"

	// register all storage backends with the factory.
	_ "github.com/martin-ngigi/University-Of-East-London-Assignments/internal/storage/all"
)

func main() {
	var cfg regional.Config
	flag.StringVar(&cfg.DwellingsPath, "dwellings", envOr("CENSUS_REGIONAL_FILE", "census_dwelling_regional_summary.csv"),
		"regional dwelling summary from the census stage")
	flag.StringVar(&cfg.SalesPath, "sales", envOr("SALES_REGIONAL_FILE", "regional_property_summary.csv"),
		"regional sales summary from the sales stage")
	flag.StringVar(&cfg.CSVPath, "out", envOr("REGIONAL_ANALYSIS_FILE", "regional_analysis_complete.csv"),
		"analysis CSV output path")
	flag.StringVar(&cfg.WorkbookPath, "workbook_out", envOr("REGIONAL_WORKBOOK_FILE", "regional_analysis_complete.xlsx"),
		"styled workbook output path")

	var store storage.Config
	flag.StringVar(&store.Kind, "store_kind", envOr("STORE_KIND", ""),
		"storage backend for the analysis table (empty disables)")
	flag.StringVar(&store.DSN, "store_dsn", envOr("STORE_DSN", ""), "storage DSN")
	flag.StringVar(&store.Table, "store_table", envOr("STORE_TABLE", "regional_analysis"),
		"destination table name")
	flag.Parse()

	res, err := regional.Run(cfg, report.New())
	if err != nil {
		log.Fatalf("regional: %v", err)
	}
	if err := loadStore(context.Background(), store, res.Analysis); err != nil {
		log.Fatalf("regional: %v", err)
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
