package repository

import (
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindAll(offset, limit int) ([]model.Product, int64, error)
	Update(product *model.Product) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"sku":  product.SKU,
			"name": product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Sizes", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_sizes.position ASC")
	}).First(&product, id).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Sizes", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_sizes.position ASC")
	}).Where("sku = ?", sku).First(&product).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by SKU in database", err, map[string]interface{}{
				"sku": sku,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindAll(offset, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	if err := r.db.Model(&model.Product{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count products in database", err, nil)
		return nil, 0, err
	}

	err := r.db.Preload("Sizes", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_sizes.position ASC")
	}).Offset(offset).Limit(limit).Order("products.id ASC").Find(&products).Error
	if err != nil {
		logger.Error("Failed to list products in database", err, nil)
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product in database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
