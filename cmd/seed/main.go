package main

import (
	"context"
	"fmt"
	"os"

	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/seed/main.go <xlsx_file_path> [--yes]")
		os.Exit(1)
	}
	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && os.Args[2] == "--yes"

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		logger.Fatal("Failed to open XLSX file", err, map[string]interface{}{
			"path": filePath,
		})
	}
	defer f.Close()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	catalog, err := readCatalog(f)
	if err != nil {
		logger.Fatal("Failed to read catalog", err)
	}
	fmt.Printf("Categories: %d, products: %d, skipped rows: %d\n",
		len(catalog.Categories), len(catalog.Products), catalog.Skipped)

	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	importer := newCatalogImporter(
		repository.NewProductRepository(db.GetDB()),
		repository.NewCategoryRepository(db.GetDB()),
	)
	stats, err := importer.Import(context.Background(), catalog)
	if err != nil {
		logger.Fatal("Import failed", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("  Categories upserted: %d\n", stats.Categories)
	fmt.Printf("  Products upserted:   %d\n", stats.Products)
	fmt.Printf("  Category links:      %d\n", stats.Links)
}
