package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidItem  = errors.New("invalid item")
)

// StockReport summarises catalog stock for the audit job.
type StockReport struct {
	OutOfStock []model.Item
	Categories []repository.CategoryStock
}

type CatalogService interface {
	ListItems(ctx context.Context, filter repository.ItemFilter) ([]model.Item, error)
	GetItem(ctx context.Context, id uint) (*model.Item, error)
	CreateItem(ctx context.Context, item *model.Item) error
	ImportItems(ctx context.Context, items []model.Item) (int, error)
	AuditStock(ctx context.Context) (*StockReport, error)
}

type catalogService struct {
	itemRepo repository.ItemRepository
}

func NewCatalogService(itemRepo repository.ItemRepository) CatalogService {
	return &catalogService{itemRepo: itemRepo}
}

func (s *catalogService) ListItems(ctx context.Context, filter repository.ItemFilter) ([]model.Item, error) {
	items, err := s.itemRepo.FindWithFilter(ctx, filter)
	if err != nil {
		logger.Error("Failed to list items", err)
		return nil, err
	}
	return items, nil
}

func (s *catalogService) GetItem(ctx context.Context, id uint) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Item not found", map[string]interface{}{
				"item_id": id,
			})
			return nil, ErrItemNotFound
		}
		logger.Error("Failed to fetch item", err, map[string]interface{}{
			"item_id": id,
		})
		return nil, err
	}
	return item, nil
}

func validateItem(item *model.Item) error {
	switch {
	case strings.TrimSpace(item.Name) == "":
		return errors.Join(ErrInvalidItem, errors.New("name is required"))
	case strings.TrimSpace(item.Description) == "":
		return errors.Join(ErrInvalidItem, errors.New("description is required"))
	case strings.TrimSpace(item.Category) == "":
		return errors.Join(ErrInvalidItem, errors.New("category is required"))
	case item.Price < 0:
		return errors.Join(ErrInvalidItem, errors.New("price must not be negative"))
	case item.CountInStock < 0:
		return errors.Join(ErrInvalidItem, errors.New("countInStock must not be negative"))
	}
	return nil
}

func (s *catalogService) CreateItem(ctx context.Context, item *model.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if item.ImageURL == "" {
		item.ImageURL = model.DefaultItemImage
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return err
	}

	logger.Info("Item created", map[string]interface{}{
		"item_id":  item.ID,
		"name":     item.Name,
		"category": item.Category,
	})
	return nil
}

// ImportItems validates every row before inserting any of them.
func (s *catalogService) ImportItems(ctx context.Context, items []model.Item) (int, error) {
	for i := range items {
		if err := validateItem(&items[i]); err != nil {
			logger.Warn("Rejected catalog import row", map[string]interface{}{
				"row":   i,
				"name":  items[i].Name,
				"error": err.Error(),
			})
			return 0, err
		}
		if items[i].ImageURL == "" {
			items[i].ImageURL = model.DefaultItemImage
		}
	}

	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		return 0, err
	}

	logger.Info("Catalog import completed", map[string]interface{}{
		"count": len(items),
	})
	return len(items), nil
}

func (s *catalogService) AuditStock(ctx context.Context) (*StockReport, error) {
	outOfStock, err := s.itemRepo.FindOutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.itemRepo.StockByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return &StockReport{OutOfStock: outOfStock, Categories: categories}, nil
}
