package credit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
	"github.com/pharmatrack/pharmatrack-backend/pkg/metrics"
)

// Ledger owns the client credit balance. A charge adds to the balance owed
// and is refused when it would push the balance past the client's limit.
// There is no release path; balances only move up through Charge.
type Ledger interface {
	Charge(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) error
	CanCharge(ctx context.Context, db *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) (bool, error)
}

type ledger struct {
	metrics *metrics.LedgerMetrics
}

// NewLedger exposes the default credit ledger implementation.
func NewLedger(m *metrics.LedgerMetrics) Ledger {
	return ledger{metrics: m}
}

// Charge adds amount to the client's balance. The limit check and the
// increment are a single statement, so concurrent charges serialize on the
// row lock and the first committer wins.
func (l ledger) Charge(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for credit charge")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE clients
		SET credit_balance = credit_balance + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND credit_balance + ? <= credit_limit
	`, amount, clientID, amount)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "charge credit")
	}
	if res.RowsAffected == 1 {
		l.metrics.IncCreditCharge(metrics.OutcomeGranted)
		return nil
	}

	l.metrics.IncCreditCharge(metrics.OutcomeRefused)
	client, err := loadClient(ctx, tx, clientID)
	if err != nil {
		return err
	}
	return pkgerrors.CreditLimitExceeded(clientID.String(), client.CreditBalance, client.CreditLimit, amount)
}

// CanCharge reports whether a charge of amount would fit under the client's
// limit right now. It does not reserve headroom; the answer can go stale
// before a later Charge, which re-checks atomically.
func (l ledger) CanCharge(ctx context.Context, db *gorm.DB, clientID uuid.UUID, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if db == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "database required for credit check")
	}
	client, err := loadClient(ctx, db, clientID)
	if err != nil {
		return false, err
	}
	return client.CreditBalance.Add(amount).LessThanOrEqual(client.CreditLimit), nil
}

func loadClient(ctx context.Context, db *gorm.DB, clientID uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := db.WithContext(ctx).First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("client", clientID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return &client, nil
}
