package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/products"
	"github.com/pharmatrack/pharmatrack-backend/internal/stock"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type clientReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// Service exposes the order lifecycle. Lines reserve stock when they are
// created, re-reserve or release on quantity changes, and release when they
// are removed. Validation ships the order without touching stock again.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context) ([]OrderDTO, error)
	AddLine(ctx context.Context, orderID uuid.UUID, input LineInput) (*OrderDTO, error)
	UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, qty int) (*OrderDTO, error)
	RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*OrderDTO, error)
	Validate(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo     *Repository
	tx       txRunner
	stock    stock.Ledger
	products *products.Repository
	clients  clientReader
}

// NewService constructs an order service instance.
func NewService(repo *Repository, tx txRunner, stockLedger stock.Ledger, productRepo *products.Repository, clientRepo clientReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stockLedger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if clientRepo == nil {
		return nil, fmt.Errorf("client repository required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		stock:    stockLedger,
		products: productRepo,
		clients:  clientRepo,
	}, nil
}

// Create opens a pending order and reserves stock for every requested line.
// The whole batch commits or rolls back together, so a refused line leaves
// no partial reservations behind.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("client", input.ClientID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}

	seen := make(map[uuid.UUID]bool, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if seen[line.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product on order")
		}
		seen[line.ProductID] = true
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.Create(ctx, &models.Order{
			ClientID: input.ClientID,
			Status:   enums.OrderStatusPending,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		orderID = order.ID

		for _, line := range input.Lines {
			if err := s.createLine(ctx, tx, order.ID, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("order", orderID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toOrderDTO(order), nil
}

func (s *service) List(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toOrderDTO(&rows[i]))
	}
	return out, nil
}

// AddLine reserves stock for a new line on a pending order. The product's
// current price is captured onto the line.
func (s *service) AddLine(ctx context.Context, orderID uuid.UUID, input LineInput) (*OrderDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.requirePending(ctx, tx, orderID); err != nil {
			return err
		}
		return s.createLine(ctx, tx, orderID, input)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// UpdateLine moves the reservation by the quantity delta. The captured unit
// price stays as it was at line creation.
func (s *service) UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, qty int) (*OrderDTO, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.requirePending(ctx, tx, orderID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, orderID, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound("order line", lineID.String())
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line")
		}

		delta := qty - line.Quantity
		switch {
		case delta > 0:
			if err := s.stock.Reserve(ctx, tx, line.ProductID, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := s.stock.Release(ctx, tx, line.ProductID, -delta); err != nil {
				return err
			}
		}
		if err := repo.UpdateLineQuantity(ctx, line.ID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// RemoveLine releases the line's reservation and deletes it.
func (s *service) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*OrderDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.requirePending(ctx, tx, orderID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, orderID, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound("order line", lineID.String())
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order line")
		}
		if err := s.stock.Release(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return err
		}
		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Validate ships a pending order. Stock was reserved when the lines were
// created, so shipping is a pure status flip.
func (s *service) Validate(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.flipStatus(ctx, tx, orderID, enums.OrderStatusPending, enums.OrderStatusShipped)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Cancel moves a pending order to cancelled and returns every line's
// reservation to stock.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.flipStatus(ctx, tx, orderID, enums.OrderStatusPending, enums.OrderStatusCancelled); err != nil {
			return err
		}
		return s.releaseLines(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Delete removes the order. A pending order gets its reservations back
// first; shipped stock is consumed and cancelled stock was already
// released.
func (s *service) Delete(ctx context.Context, orderID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound("order", orderID.String())
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusPending {
			if err := s.releaseLines(ctx, tx, orderID); err != nil {
				return err
			}
		}
		if err := repo.Delete(ctx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func (s *service) createLine(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, input LineInput) error {
	repo := s.repo.WithTx(tx)
	if _, err := repo.FindLineByProduct(ctx, orderID, input.ProductID); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "product already on order")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order line")
	}

	product, err := s.products.WithTx(tx).FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("product", input.ProductID.String())
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.stock.Reserve(ctx, tx, input.ProductID, input.Quantity); err != nil {
		return err
	}

	_, err = repo.CreateLine(ctx, &models.OrderLine{
		OrderID:   orderID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		UnitPrice: product.UnitPrice,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line")
	}
	return nil
}

// flipStatus performs a guarded status change. When the guard misses, the
// current status decides between not-found and an invalid transition.
func (s *service) flipStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, from, to enums.OrderStatus) error {
	repo := s.repo.WithTx(tx)
	changed, err := repo.UpdateStatusIf(ctx, orderID, from, to)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if changed {
		return nil
	}

	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("order", orderID.String())
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return pkgerrors.InvalidTransition(order.Status.String(), to.String())
}

func (s *service) releaseLines(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	order, err := s.repo.WithTx(tx).FindByID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
	}
	for _, line := range order.Lines {
		if err := s.stock.Release(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// requirePending guards line mutations: lines only change while the order
// is still pending.
func (s *service) requirePending(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	order, err := s.repo.WithTx(tx).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("order", orderID.String())
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order lines can only change while the order is pending")
	}
	return nil
}
