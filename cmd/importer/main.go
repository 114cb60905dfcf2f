// Command importer loads a store catalog file into the locator database,
// or exports the stored catalog as a workbook.
//
//	importer -db ./data/locator.db -file stores.csv
//	importer -db ./data/locator.db -export stores.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/itplace/locator-backend-go/internal/catalog"
	"github.com/itplace/locator-backend-go/internal/database"
	"github.com/itplace/locator-backend-go/internal/repository"
	"github.com/itplace/locator-backend-go/internal/service"
)

func main() {
	dbPath := flag.String("db", "./data/locator.db", "path to the sqlite database")
	file := flag.String("file", "", "catalog file to import (.json, .csv or .xlsx)")
	export := flag.String("export", "", "write the stored catalog to this .xlsx file")
	flag.Parse()

	if (*file == "") == (*export == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -export is required")
		flag.Usage()
		os.Exit(2)
	}

	conn, err := database.Open(database.Config{Path: *dbPath})
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer conn.Close()

	ctx := context.Background()
	stores := service.NewStoreService(repository.NewStoreRepository(conn), catalog.NewHolder(nil), 0, 0)

	if *file != "" {
		c, err := stores.ImportFile(ctx, *file)
		if err != nil {
			log.Fatal("Import failed:", err)
		}
		fmt.Printf("Imported %d stores into %s\n", c.Len(), *dbPath)
		return
	}

	if err := exportCatalog(ctx, stores, *export); err != nil {
		log.Fatal("Export failed:", err)
	}
}

func exportCatalog(ctx context.Context, stores *service.StoreService, path string) error {
	if err := stores.Reload(ctx); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if err := stores.Export(out); err != nil {
		return err
	}
	fmt.Printf("Exported %d stores to %s\n", stores.Catalog().Len(), path)
	return out.Close()
}
