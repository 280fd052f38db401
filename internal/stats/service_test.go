package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
)

func newTestService(t *testing.T, now time.Time) (*service, *gorm.DB) {
	t.Helper()
	dsn := "file:stats_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Invoice{}))

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return now }
	return impl, db
}

func seedInvoice(t *testing.T, db *gorm.DB, createdAt time.Time, total, discount string) {
	t.Helper()
	invoice := models.Invoice{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		TotalAmount: decimal.RequireFromString(total),
		DiscountPct: decimal.RequireFromString(discount),
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&invoice).Error)
}

func TestSalesStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 31, 12, 0, 0, 0, time.UTC)
	svc, db := newTestService(t, now)
	ctx := context.Background()

	seedInvoice(t, db, now.Add(-time.Hour), "100.00", "0")
	seedInvoice(t, db, now.Add(-2*time.Hour), "50.00", "10")
	seedInvoice(t, db, now.AddDate(0, 0, -5), "200.00", "0")
	// Outside the 30-day window.
	seedInvoice(t, db, now.AddDate(0, 0, -31), "999.00", "0")

	stats, err := svc.Sales(ctx)
	require.NoError(t, err)
	require.Equal(t, 30, stats.WindowDays)
	require.Equal(t, 3, stats.InvoiceCount)
	require.True(t, stats.TotalAmount.Equal(decimal.RequireFromString("350.00")))
	// 100 + 45 + 200 after discounts.
	require.True(t, stats.FinalAmount.Equal(decimal.RequireFromString("345.00")))

	require.Len(t, stats.PerDay, 2)
	require.Equal(t, DailyCount{Day: "2026-03-26", Count: 1}, stats.PerDay[0])
	require.Equal(t, DailyCount{Day: "2026-03-31", Count: 2}, stats.PerDay[1])
}

func TestSalesStatsEmpty(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Now())

	stats, err := svc.Sales(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.InvoiceCount)
	require.True(t, stats.TotalAmount.IsZero())
	require.Empty(t, stats.PerDay)
}

func TestStockStats(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t, time.Now())
	products := []models.Product{
		{ID: uuid.New(), Name: "Aspirin", Category: "analgesic", UnitPrice: decimal.RequireFromString("3.00"), StockQty: 0, AlertThreshold: 10},
		{ID: uuid.New(), Name: "Bandages", Category: "first-aid", UnitPrice: decimal.RequireFromString("2.50"), StockQty: 4, AlertThreshold: 10},
		{ID: uuid.New(), Name: "Vitamin C", Category: "supplement", UnitPrice: decimal.RequireFromString("6.00"), StockQty: 80, AlertThreshold: 10},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}

	stats, err := svc.Stock(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.ProductCount)
	require.Equal(t, 1, stats.OutOfStockCount)
	require.Equal(t, 1, stats.LowStockCount)
	// 0*3.00 + 4*2.50 + 80*6.00
	require.True(t, stats.StockValue.Equal(decimal.RequireFromString("490.00")))
}
