package repository

import (
	"context"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// ItemFilter narrows a catalog listing. Nil fields apply no predicate.
type ItemFilter struct {
	Category *string
	MinPrice *float64
	MaxPrice *float64
}

// IsEmpty reports whether the filter matches the whole catalog.
func (f ItemFilter) IsEmpty() bool {
	return f.Category == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// CategoryStock aggregates stock per category.
type CategoryStock struct {
	Category   string
	Items      int64
	TotalStock int64
}

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	CreateBatch(ctx context.Context, items []model.Item) error
	FindByID(ctx context.Context, id uint) (*model.Item, error)
	FindWithFilter(ctx context.Context, filter ItemFilter) ([]model.Item, error)
	FindOutOfStock(ctx context.Context) ([]model.Item, error)
	StockByCategory(ctx context.Context) ([]CategoryStock, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	logger.Debug("Creating item in database", map[string]interface{}{
		"name":     item.Name,
		"category": item.Category,
	})

	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		logger.Error("Failed to create item in database", err, map[string]interface{}{
			"name":     item.Name,
			"category": item.Category,
		})
		return err
	}

	logger.Debug("Item created in database", map[string]interface{}{
		"item_id": item.ID,
	})
	return nil
}

func (r *itemRepository) CreateBatch(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(items, 500).Error; err != nil {
		logger.Error("Failed to create item batch in database", err, map[string]interface{}{
			"count": len(items),
		})
		return err
	}
	return nil
}

func (r *itemRepository) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		logger.Debug("Item not loaded by ID", map[string]interface{}{
			"item_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindWithFilter(ctx context.Context, filter ItemFilter) ([]model.Item, error) {
	fields := map[string]interface{}{}
	query := r.db.WithContext(ctx).Model(&model.Item{})

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
		fields["category"] = *filter.Category
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
		fields["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
		fields["max_price"] = *filter.MaxPrice
	}

	items := []model.Item{}
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		logger.Error("Failed to find items with filter", err, fields)
		return nil, err
	}

	fields["count"] = len(items)
	logger.Debug("Items found with filter", fields)
	return items, nil
}

func (r *itemRepository) FindOutOfStock(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).Where("count_in_stock <= ?", 0).Order("id ASC").Find(&items).Error
	if err != nil {
		logger.Error("Failed to find out of stock items", err)
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	var rows []CategoryStock
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Select("category, COUNT(*) AS items, COALESCE(SUM(count_in_stock), 0) AS total_stock").
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate stock by category", err)
		return nil, err
	}
	return rows, nil
}
