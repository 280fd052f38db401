package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
)

type stockAlertLister interface {
	ListOutOfStock(ctx context.Context) ([]models.Product, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

// LowStockJob scans the catalog once per cycle and logs every product that
// is out of stock or at its alert threshold, so replenishment shows up in
// the operational logs without anyone polling the API.
type LowStockJob struct {
	logg     *logger.Logger
	products stockAlertLister
}

// NewLowStockJob builds the low stock scan job.
func NewLowStockJob(logg *logger.Logger, products stockAlertLister) (*LowStockJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lister required")
	}
	return &LowStockJob{logg: logg, products: products}, nil
}

// Name identifies the job in logs and metrics.
func (j *LowStockJob) Name() string {
	return "low_stock_scan"
}

// Run executes one scan. Both listings are attempted even if one fails; the
// errors are combined.
func (j *LowStockJob) Run(ctx context.Context) error {
	var errs error

	out, err := j.products.ListOutOfStock(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("list out-of-stock products: %w", err))
	} else {
		for _, product := range out {
			pctx := j.logg.WithFields(ctx, map[string]any{
				"product_id":   product.ID.String(),
				"product_name": product.Name,
			})
			j.logg.Warn(pctx, "product out of stock")
		}
	}

	low, err := j.products.ListLowStock(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("list low-stock products: %w", err))
	} else {
		for _, product := range low {
			pctx := j.logg.WithFields(ctx, map[string]any{
				"product_id":      product.ID.String(),
				"product_name":    product.Name,
				"stock_qty":       product.StockQty,
				"alert_threshold": product.AlertThreshold,
			})
			j.logg.Warn(pctx, "product at or below alert threshold")
		}
	}

	if errs != nil {
		return errs
	}

	sctx := j.logg.WithFields(ctx, map[string]any{
		"out_of_stock": len(out),
		"low_stock":    len(low),
	})
	j.logg.Info(sctx, "stock scan complete")
	return nil
}
