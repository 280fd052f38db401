package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
)

type fakeStockAlertLister struct {
	out    []models.Product
	low    []models.Product
	outErr error
	lowErr error
	calls  int
}

func (f *fakeStockAlertLister) ListOutOfStock(context.Context) ([]models.Product, error) {
	f.calls++
	return f.out, f.outErr
}

func (f *fakeStockAlertLister) ListLowStock(context.Context) ([]models.Product, error) {
	f.calls++
	return f.low, f.lowErr
}

func TestLowStockJobScansBothListings(t *testing.T) {
	lister := &fakeStockAlertLister{
		out: []models.Product{{ID: uuid.New(), Name: "Aspirin"}},
		low: []models.Product{{ID: uuid.New(), Name: "Bandages", StockQty: 2, AlertThreshold: 10}},
	}
	job := newLowStockJob(t, lister)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected both listings queried, got %d calls", lister.calls)
	}
	if job.Name() != "low_stock_scan" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
}

func TestLowStockJobCombinesErrors(t *testing.T) {
	lister := &fakeStockAlertLister{
		outErr: errors.New("out boom"),
		lowErr: errors.New("low boom"),
	}
	job := newLowStockJob(t, lister)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	// Both scans ran despite the first failure.
	if lister.calls != 2 {
		t.Fatalf("expected both listings queried, got %d calls", lister.calls)
	}
}

func newLowStockJob(t *testing.T, lister stockAlertLister) *LowStockJob {
	t.Helper()
	job, err := NewLowStockJob(logger.New(logger.Options{ServiceName: "test"}), lister)
	if err != nil {
		t.Fatalf("NewLowStockJob: %v", err)
	}
	return job
}
