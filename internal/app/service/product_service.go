package service

import (
	"errors"

	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// ProductService is the catalog collaborator: it supplies the product
// snapshots the cart reconciles against. Snapshot values are trusted as
// current at call time; the cart never refetches.
type ProductService interface {
	GetProduct(id uint) (*model.Product, error)
	GetSnapshot(id uint) (model.ProductSnapshot, error)
	ListProducts(page, pageSize int) ([]model.Product, int64, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) GetSnapshot(id uint) (model.ProductSnapshot, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return model.ProductSnapshot{}, err
	}
	return product.Snapshot(), nil
}

func (s *productService) ListProducts(page, pageSize int) ([]model.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.FindAll((page-1)*pageSize, pageSize)
}
