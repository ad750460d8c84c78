package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/vastrakart/vastrakart-backend/config"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Seeds the catalog from an xlsx sheet. Expected columns:
// sku | name | description | price | original_price | stock | max_qty | hsn_code | gst_rate | sizes
//
// stock and max_qty may be empty (untracked stock, no order cap). The sizes
// cell is "S:10,M:4,XL:-" where the count is per-size stock and "-" marks an
// unavailable size; an empty cell means the product has no size dimension.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open xlsx file:", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		log.Fatal("Failed to read sheet:", err)
	}

	created := 0
	skipped := 0
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		product, err := parseRow(row)
		if err != nil {
			log.Printf("Skipping row %d: %v", i+1, err)
			skipped++
			continue
		}
		if existing, err := productRepo.FindBySKU(product.SKU); err == nil && existing != nil {
			log.Printf("Skipping row %d: SKU %s already exists", i+1, product.SKU)
			skipped++
			continue
		}
		if err := productRepo.Create(product); err != nil {
			log.Printf("Failed to create product from row %d: %v", i+1, err)
			skipped++
			continue
		}
		created++
	}

	log.Printf("Seed complete: %d created, %d skipped", created, skipped)
}

func parseRow(row []string) (*model.Product, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	sku := cell(0)
	name := cell(1)
	if sku == "" || name == "" {
		return nil, fmt.Errorf("missing sku or name")
	}

	price, err := strconv.ParseFloat(cell(3), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", cell(3))
	}
	originalPrice := price
	if v := cell(4); v != "" {
		if originalPrice, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid original_price %q", v)
		}
	}

	product := &model.Product{
		SKU:           sku,
		Name:          name,
		Description:   cell(2),
		Price:         price,
		OriginalPrice: originalPrice,
		HSNCode:       cell(7),
	}

	if v := cell(5); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid stock %q", v)
		}
		product.StockQuantity = &stock
	}
	if v := cell(6); v != "" {
		maxQty, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid max_qty %q", v)
		}
		product.MaxPurchaseQuantity = &maxQty
	}
	if v := cell(8); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid gst_rate %q", v)
		}
		product.GSTRate = &rate
	}

	sizes, err := parseSizes(cell(9))
	if err != nil {
		return nil, err
	}
	if len(sizes) > 0 {
		product.ShowSizes = true
		product.Sizes = sizes
	}

	return product, nil
}

func parseSizes(cell string) ([]model.ProductSize, error) {
	if cell == "" {
		return nil, nil
	}
	var sizes []model.ProductSize
	for pos, part := range strings.Split(cell, ",") {
		label, count, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found || label == "" {
			return nil, fmt.Errorf("invalid sizes entry %q", part)
		}
		size := model.ProductSize{
			Label:       strings.TrimSpace(label),
			IsAvailable: true,
			Position:    pos,
		}
		count = strings.TrimSpace(count)
		if count == "-" {
			size.IsAvailable = false
		} else {
			stock, err := strconv.Atoi(count)
			if err != nil {
				return nil, fmt.Errorf("invalid size stock %q", count)
			}
			size.StockQuantity = stock
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}
