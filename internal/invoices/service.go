package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/credit"
	"github.com/pharmatrack/pharmatrack-backend/internal/orders"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var oneHundred = decimal.NewFromInt(100)

// Service cuts invoices from orders and settles them with payments. An
// invoice freezes the order total at creation; later order changes never
// reprice it.
type Service interface {
	Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceDTO, error)
	Get(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDTO, error)
	List(ctx context.Context) ([]InvoiceDTO, error)
	Pay(ctx context.Context, invoiceID uuid.UUID, input PaymentInput) (*InvoiceDTO, error)
}

type service struct {
	repo   *Repository
	tx     txRunner
	credit credit.Ledger
	orders *orders.Repository
}

// NewService constructs an invoice service instance.
func NewService(repo *Repository, tx txRunner, creditLedger credit.Ledger, orderRepo *orders.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if creditLedger == nil {
		return nil, fmt.Errorf("credit ledger required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo, tx: tx, credit: creditLedger, orders: orderRepo}, nil
}

// Create cuts the invoice, freezing the order's current total. When the
// method is credit the discounted amount is charged to the client's ledger
// in the same transaction, so a refused charge leaves no invoice behind.
func (s *service) Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceDTO, error) {
	if input.DiscountPct.IsNegative() || input.DiscountPct.GreaterThan(oneHundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	var invoiceID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.WithTx(tx).FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound("order", input.OrderID.String())
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot invoice a cancelled order")
		}

		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByOrder(ctx, order.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already invoiced")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing invoice")
		}

		total := decimal.Zero
		for _, line := range order.Lines {
			total = total.Add(line.Subtotal())
		}

		invoice := &models.Invoice{
			OrderID:       order.ID,
			DiscountPct:   input.DiscountPct,
			TotalAmount:   total,
			PaymentMethod: input.PaymentMethod,
		}

		if input.PaymentMethod == enums.PaymentMethodCredit {
			if final := invoice.FinalAmount(); final.IsPositive() {
				if err := s.credit.Charge(ctx, tx, order.ClientID, final); err != nil {
					return err
				}
			}
		}

		created, err := repo.Create(ctx, invoice)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already invoiced")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
		}
		invoiceID = created.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, invoiceID)
}

func (s *service) Get(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("invoice", invoiceID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return toInvoiceDTO(invoice), nil
}

func (s *service) List(ctx context.Context) ([]InvoiceDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	out := make([]InvoiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toInvoiceDTO(&rows[i]))
	}
	return out, nil
}

// Pay records a settlement. The amount may never push amount_paid past the
// final amount; the guard and the increment are one statement, so concurrent
// payments cannot jointly overpay. A credit payment charges the ledger of
// the client who owns the invoiced order.
func (s *service) Pay(ctx context.Context, invoiceID uuid.UUID, input PaymentInput) (*InvoiceDTO, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindByID(ctx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound("invoice", invoiceID.String())
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}

		applied, err := repo.ApplyPayment(ctx, invoice.ID, input.Amount, invoice.FinalAmount())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment")
		}
		if !applied {
			current, err := repo.FindByID(ctx, invoice.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload invoice")
			}
			return pkgerrors.OverpaymentRejected(invoice.ID.String(), current.Remaining(), input.Amount)
		}

		if input.Method == enums.PaymentMethodCredit {
			order, err := s.orders.WithTx(tx).FindByID(ctx, invoice.OrderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoiced order")
			}
			if err := s.credit.Charge(ctx, tx, order.ClientID, input.Amount); err != nil {
				return err
			}
		}

		_, err = repo.CreatePayment(ctx, &models.Payment{
			InvoiceID: invoice.ID,
			Amount:    input.Amount,
			Method:    input.Method,
			IsValid:   true,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, invoiceID)
}
