package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	SKU                 string         `gorm:"uniqueIndex" json:"sku"`
	Name                string         `gorm:"not null" json:"name"`
	Description         string         `gorm:"type:text" json:"description"`
	Price               float64        `gorm:"not null" json:"price"`
	OriginalPrice       float64        `json:"original_price"`
	StockQuantity       *int           `json:"stock_quantity"` // nil means stock is not tracked for this product
	ShowSizes           bool           `gorm:"default:false" json:"show_sizes"`
	MaxPurchaseQuantity *int           `json:"max_purchase_quantity"` // per-order cap, independent of stock
	HSNCode             string         `json:"hsn_code"`
	GSTRate             *float64       `json:"gst_rate"`
	ImageURL            string         `json:"image_url"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sizes []ProductSize `gorm:"foreignKey:ProductID" json:"sizes,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type ProductSize struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ProductID     uint           `gorm:"index;not null" json:"product_id"`
	Label         string         `gorm:"not null" json:"label"`
	StockQuantity int            `gorm:"default:0" json:"stock_quantity"`
	IsAvailable   bool           `gorm:"default:true" json:"is_available"`
	Position      int            `gorm:"default:0" json:"position"` // display order
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (ProductSize) TableName() string {
	return "product_sizes"
}

// ProductSnapshot is the read-only catalog view frozen into a cart line item.
// The cart trusts these values as current at call time and never refetches.
type ProductSnapshot struct {
	ID                  uint           `json:"id"`
	SKU                 string         `json:"sku,omitempty"`
	Name                string         `json:"name"`
	Price               float64        `json:"price"`
	OriginalPrice       float64        `json:"original_price,omitempty"`
	Stock               *int           `json:"stock,omitempty"`
	ShowSizes           bool           `json:"show_sizes,omitempty"`
	Sizes               []VariantStock `json:"sizes,omitempty"`
	MaxPurchaseQuantity *int           `json:"max_purchase_quantity,omitempty"`
	HSNCode             string         `json:"hsn_code,omitempty"`
	GSTRate             *float64       `json:"gst_rate,omitempty"`
	ImageURL            string         `json:"image_url,omitempty"`
}

// VariantStock is the per-size stock entry of a ProductSnapshot.
type VariantStock struct {
	Label       string `json:"label"`
	Stock       int    `json:"stock"`
	IsAvailable bool   `json:"is_available"`
}

// Snapshot flattens a catalog product into the form the cart stores.
func (p *Product) Snapshot() ProductSnapshot {
	snap := ProductSnapshot{
		ID:                  p.ID,
		SKU:                 p.SKU,
		Name:                p.Name,
		Price:               p.Price,
		OriginalPrice:       p.OriginalPrice,
		Stock:               p.StockQuantity,
		ShowSizes:           p.ShowSizes,
		MaxPurchaseQuantity: p.MaxPurchaseQuantity,
		HSNCode:             p.HSNCode,
		GSTRate:             p.GSTRate,
		ImageURL:            p.ImageURL,
	}
	if p.ShowSizes {
		snap.Sizes = make([]VariantStock, 0, len(p.Sizes))
		for _, s := range p.Sizes {
			snap.Sizes = append(snap.Sizes, VariantStock{
				Label:       s.Label,
				Stock:       s.StockQuantity,
				IsAvailable: s.IsAvailable,
			})
		}
	}
	return snap
}
