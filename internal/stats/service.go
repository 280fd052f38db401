package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/repo"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
)

const salesWindow = 30 * 24 * time.Hour

// DailyCount is the number of invoices cut on one day.
type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// SalesStatsDTO summarizes invoicing over the trailing window.
type SalesStatsDTO struct {
	WindowDays   int             `json:"window_days"`
	InvoiceCount int             `json:"invoice_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	PerDay       []DailyCount    `json:"per_day"`
}

// StockStatsDTO summarizes the catalog's stock position.
type StockStatsDTO struct {
	ProductCount    int             `json:"product_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	LowStockCount   int             `json:"low_stock_count"`
	StockValue      decimal.Decimal `json:"stock_value"`
}

// Service answers reporting queries. Aggregation happens in memory on loaded
// rows; the data set is a single pharmacy's catalog and a 30-day invoice
// window.
type Service interface {
	Sales(ctx context.Context) (*SalesStatsDTO, error)
	Stock(ctx context.Context) (*StockStatsDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a stats service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Sales(ctx context.Context) (*SalesStatsDTO, error) {
	cutoff := s.now().Add(-salesWindow)
	invoices, err := s.repo.ListInvoicesSince(ctx, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent invoices")
	}

	out := &SalesStatsDTO{
		WindowDays:   int(salesWindow / (24 * time.Hour)),
		InvoiceCount: len(invoices),
		TotalAmount:  decimal.Zero,
		FinalAmount:  decimal.Zero,
		AmountPaid:   decimal.Zero,
	}
	perDay := make(map[string]int)
	for _, invoice := range invoices {
		out.TotalAmount = out.TotalAmount.Add(invoice.TotalAmount)
		out.FinalAmount = out.FinalAmount.Add(invoice.FinalAmount())
		out.AmountPaid = out.AmountPaid.Add(invoice.AmountPaid)
		perDay[invoice.CreatedAt.UTC().Format("2006-01-02")]++
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)
	out.PerDay = make([]DailyCount, 0, len(days))
	for _, day := range days {
		out.PerDay = append(out.PerDay, DailyCount{Day: day, Count: perDay[day]})
	}
	return out, nil
}

func (s *service) Stock(ctx context.Context) (*StockStatsDTO, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	out := &StockStatsDTO{
		ProductCount: len(products),
		StockValue:   decimal.Zero,
	}
	for _, product := range products {
		switch enums.ClassifyStock(product.StockQty, product.AlertThreshold) {
		case enums.StockStatusOut:
			out.OutOfStockCount++
		case enums.StockStatusLow:
			out.LowStockCount++
		}
		value := product.UnitPrice.Mul(decimal.NewFromInt(int64(product.StockQty)))
		out.StockValue = out.StockValue.Add(value)
	}
	return out, nil
}

// Repository wraps the read queries behind the reports.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListInvoicesSince returns invoices created at or after the cutoff.
func (r *Repository) ListInvoicesSince(ctx context.Context, cutoff time.Time) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := r.DB(ctx).
		Where("created_at >= ?", cutoff).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListProducts returns the full catalog.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).Find(&rows).Error
	return rows, err
}
