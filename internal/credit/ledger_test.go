package credit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
)

func TestChargeWithinLimit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	client := seedClient(t, db, "0", "1000")
	l := NewLedger(nil)

	if err := l.Charge(ctx, db, client, dec("900")); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if got := loadBalance(t, db, client); !got.Equal(dec("900")) {
		t.Fatalf("expected balance 900, got %s", got)
	}

	// Exactly at the limit is allowed.
	if err := l.Charge(ctx, db, client, dec("100")); err != nil {
		t.Fatalf("charge to limit: %v", err)
	}
	if got := loadBalance(t, db, client); !got.Equal(dec("1000")) {
		t.Fatalf("expected balance 1000, got %s", got)
	}
}

func TestChargeOverLimit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	client := seedClient(t, db, "900", "1000")
	l := NewLedger(nil)

	err := l.Charge(ctx, db, client, dec("150"))
	if err == nil {
		t.Fatal("expected charge to be refused")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeCreditLimit {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(pkgerrors.CreditLimitDetails)
	if !ok {
		t.Fatalf("unexpected details type: %T", typed.Details())
	}
	if !details.Balance.Equal(dec("900")) || !details.Limit.Equal(dec("1000")) || !details.Attempted.Equal(dec("150")) {
		t.Fatalf("unexpected details: %+v", details)
	}

	if got := loadBalance(t, db, client); !got.Equal(dec("900")) {
		t.Fatalf("expected balance untouched, got %s", got)
	}
}

func TestChargeInvalidAmount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	client := seedClient(t, db, "0", "1000")
	l := NewLedger(nil)

	for _, amount := range []string{"0", "-5"} {
		err := l.Charge(context.Background(), db, client, dec(amount))
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("amount %s: unexpected error: %v", amount, err)
		}
	}
}

func TestChargeUnknownClient(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	l := NewLedger(nil)

	err := l.Charge(context.Background(), db, uuid.New(), dec("10"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCanCharge(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	client := seedClient(t, db, "900", "1000")
	l := NewLedger(nil)

	ok, err := l.CanCharge(ctx, db, client, dec("100"))
	if err != nil {
		t.Fatalf("can charge: %v", err)
	}
	if !ok {
		t.Fatal("expected charge of 100 to fit")
	}

	ok, err = l.CanCharge(ctx, db, client, dec("100.01"))
	if err != nil {
		t.Fatalf("can charge: %v", err)
	}
	if ok {
		t.Fatal("expected charge of 100.01 to be refused")
	}

	// The predicate does not mutate the balance.
	if got := loadBalance(t, db, client); !got.Equal(dec("900")) {
		t.Fatalf("expected balance untouched, got %s", got)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedClient(t *testing.T, db *gorm.DB, balance, limit string) uuid.UUID {
	t.Helper()
	client := models.Client{
		ID:            uuid.New(),
		FirstName:     "Amina",
		LastName:      "Diallo",
		CreditBalance: dec(balance),
		CreditLimit:   dec(limit),
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client.ID
}

func loadBalance(t *testing.T, db *gorm.DB, clientID uuid.UUID) decimal.Decimal {
	t.Helper()
	var client models.Client
	if err := db.First(&client, "id = ?", clientID).Error; err != nil {
		t.Fatalf("load client: %v", err)
	}
	return client.CreditBalance
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:credit_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Client{}); err != nil {
		t.Fatalf("migrate clients: %v", err)
	}
	return db
}
