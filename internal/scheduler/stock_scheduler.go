package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const auditTimeout = time.Minute

// StockScheduler periodically logs out-of-stock items and per-category
// stock so operators can restock. It never modifies the catalog.
type StockScheduler struct {
	cron           *cron.Cron
	schedule       string
	catalogService service.CatalogService
}

func NewStockScheduler(catalogService service.CatalogService, schedule string) *StockScheduler {
	return &StockScheduler{
		cron:           cron.New(),
		schedule:       schedule,
		catalogService: catalogService,
	}
}

func (s *StockScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.RunAudit)
	if err != nil {
		logger.Error("Failed to add cron job for stock audit", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Stock audit scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunAudit performs one audit pass. Errors are logged, not returned, since
// the next scheduled run retries.
func (s *StockScheduler) RunAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	report, err := s.catalogService.AuditStock(ctx)
	if err != nil {
		logger.Error("Stock audit failed", err)
		return
	}

	for _, item := range report.OutOfStock {
		logger.Warn("Item out of stock", map[string]interface{}{
			"item_id":  item.ID,
			"name":     item.Name,
			"category": item.Category,
		})
	}
	for _, category := range report.Categories {
		logger.Info("Category stock", map[string]interface{}{
			"category":    category.Category,
			"items":       category.Items,
			"total_stock": category.TotalStock,
		})
	}

	logger.Info("Stock audit completed", map[string]interface{}{
		"out_of_stock": len(report.OutOfStock),
		"categories":   len(report.Categories),
	})
}

func (s *StockScheduler) Stop() {
	logger.Info("Stopping stock audit scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Stock audit scheduler stopped")
}
