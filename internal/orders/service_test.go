package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/clients"
	"github.com/pharmatrack/pharmatrack-backend/internal/products"
	"github.com/pharmatrack/pharmatrack-backend/internal/stock"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	svc      Service
	db       *gorm.DB
	clientID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Client{}, &models.Product{}, &models.Order{}, &models.OrderLine{},
	))

	svc, err := NewService(
		NewRepository(db),
		gormTxRunner{db: db},
		stock.NewLedger(nil),
		products.NewRepository(db),
		clients.NewRepository(db),
	)
	require.NoError(t, err)

	client := models.Client{ID: uuid.New(), FirstName: "Awa", LastName: "Keita"}
	require.NoError(t, db.Create(&client).Error)

	return &fixture{svc: svc, db: db, clientID: client.ID}
}

func (f *fixture) seedProduct(t *testing.T, price string, qty int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:        uuid.New(),
		Name:      "Product " + uuid.NewString()[:8],
		Category:  "general",
		UnitPrice: decimal.RequireFromString(price),
		StockQty:  qty,
	}
	require.NoError(t, f.db.Create(&product).Error)
	return product.ID
}

func (f *fixture) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, f.db.First(&product, "id = ?", productID).Error)
	return product.StockQty
}

func TestCreateOrderReservesStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productA := f.seedProduct(t, "4.50", 10)
	productB := f.seedProduct(t, "10.00", 3)

	order, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines: []LineInput{
			{ProductID: productA, Quantity: 2},
			{ProductID: productB, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Len(t, order.Lines, 2)
	require.True(t, order.Total.Equal(decimal.RequireFromString("39.00")))

	require.Equal(t, 8, f.stockOf(t, productA))
	require.Equal(t, 0, f.stockOf(t, productB))
}

func TestCreateOrderRollsBackOnInsufficientStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productA := f.seedProduct(t, "4.50", 10)
	productB := f.seedProduct(t, "10.00", 3)

	_, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines: []LineInput{
			{ProductID: productA, Quantity: 2},
			{ProductID: productB, Quantity: 4},
		},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	details, ok := typed.Details().(pkgerrors.InsufficientStockDetails)
	require.True(t, ok)
	require.Equal(t, 3, details.Available)

	// The first line's reservation rolled back with the transaction.
	require.Equal(t, 10, f.stockOf(t, productA))
	require.Equal(t, 3, f.stockOf(t, productB))

	orders, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "4.50", 10)

	_, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: product, Quantity: 0}},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines: []LineInput{
			{ProductID: product, Quantity: 1},
			{ProductID: product, Quantity: 2},
		},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, CreateOrderInput{ClientID: uuid.New()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestLineCapturesPriceAtCreation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "4.50", 10)

	order, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: product, Quantity: 2}},
	})
	require.NoError(t, err)

	// A later price change must not affect the captured price.
	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", product).
		Update("unit_price", decimal.RequireFromString("9.99")).Error)

	reloaded, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Lines[0].UnitPrice.Equal(decimal.RequireFromString("4.50")))
	require.True(t, reloaded.Total.Equal(decimal.RequireFromString("9.00")))

	// Quantity updates keep the captured price too.
	updated, err := f.svc.UpdateLine(ctx, order.ID, order.Lines[0].ID, 5)
	require.NoError(t, err)
	require.True(t, updated.Lines[0].UnitPrice.Equal(decimal.RequireFromString("4.50")))
	require.True(t, updated.Total.Equal(decimal.RequireFromString("22.50")))
}

func TestAddLine(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productA := f.seedProduct(t, "4.50", 10)
	productB := f.seedProduct(t, "2.00", 5)

	order, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: productA, Quantity: 1}},
	})
	require.NoError(t, err)

	withLine, err := f.svc.AddLine(ctx, order.ID, LineInput{ProductID: productB, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, withLine.Lines, 2)
	require.Equal(t, 3, f.stockOf(t, productB))

	// Same product twice is a conflict.
	_, err = f.svc.AddLine(ctx, order.ID, LineInput{ProductID: productB, Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = f.svc.AddLine(ctx, order.ID, LineInput{ProductID: uuid.New(), Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateLineMovesReservationByDelta(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "4.50", 10)

	order, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: product, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, f.stockOf(t, product))

	// Shrink: the difference returns to stock.
	_, err = f.svc.UpdateLine(ctx, order.ID, order.Lines[0].ID, 1)
	require.NoError(t, err)
	require.Equal(t, 9, f.stockOf(t, product))

	// Grow: only the delta is reserved.
	_, err = f.svc.UpdateLine(ctx, order.ID, order.Lines[0].ID, 10)
	require.NoError(t, err)
	require.Equal(t, 0, f.stockOf(t, product))

	// Growing past available stock fails and leaves the line untouched.
	_, err = f.svc.UpdateLine(ctx, order.ID, order.Lines[0].ID, 11)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))
	reloaded, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, 10, reloaded.Lines[0].Quantity)

	_, err = f.svc.UpdateLine(ctx, order.ID, order.Lines[0].ID, 0)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRemoveLineReleasesStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "4.50", 10)

	order, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: product, Quantity: 4}},
	})
	require.NoError(t, err)

	emptied, err := f.svc.RemoveLine(ctx, order.ID, order.Lines[0].ID)
	require.NoError(t, err)
	require.Empty(t, emptied.Lines)
	require.True(t, emptied.Total.IsZero())
	require.Equal(t, 10, f.stockOf(t, product))

	_, err = f.svc.RemoveLine(ctx, order.ID, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestValidateShipsWithoutTouchingStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "4.50", 10)

	order, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: product, Quantity: 4}},
	})
	require.NoError(t, err)

	shipped, err := f.svc.Validate(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, shipped.Status)
	// Reserved at creation; shipping is a pure status flip.
	require.Equal(t, 6, f.stockOf(t, product))

	// Shipping twice is an invalid transition.
	_, err = f.svc.Validate(ctx, order.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	details, ok := typed.Details().(pkgerrors.TransitionDetails)
	require.True(t, ok)
	require.Equal(t, "shipped", details.From)
	require.Equal(t, "shipped", details.To)

	// Lines are frozen once shipped.
	_, err = f.svc.UpdateLine(ctx, order.ID, order.Lines[0].ID, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.Validate(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCancelReleasesEveryLine(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	productA := f.seedProduct(t, "4.50", 10)
	productB := f.seedProduct(t, "2.00", 5)

	order, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines: []LineInput{
			{ProductID: productA, Quantity: 3},
			{ProductID: productB, Quantity: 5},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 7, f.stockOf(t, productA))
	require.Equal(t, 0, f.stockOf(t, productB))

	cancelled, err := f.svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	require.Equal(t, 10, f.stockOf(t, productA))
	require.Equal(t, 5, f.stockOf(t, productB))

	// A shipped order cannot be cancelled.
	other, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: productA, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.Validate(ctx, other.ID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, other.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestDeleteOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "4.50", 10)

	// Deleting a pending order returns its reservations.
	pending, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: product, Quantity: 4}},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, pending.ID))
	require.Equal(t, 10, f.stockOf(t, product))
	_, err = f.svc.Get(ctx, pending.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	// Deleting a shipped order leaves consumed stock alone.
	shipped, err := f.svc.Create(ctx, CreateOrderInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{ProductID: product, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = f.svc.Validate(ctx, shipped.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, shipped.ID))
	require.Equal(t, 8, f.stockOf(t, product))
}
