package errors

import "github.com/shopspring/decimal"

// InsufficientStockDetails reports how much stock was on hand when a
// reservation or adjustment was refused.
type InsufficientStockDetails struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// CreditLimitDetails reports the ledger state when a charge was refused.
type CreditLimitDetails struct {
	ClientID  string          `json:"client_id"`
	Balance   decimal.Decimal `json:"balance"`
	Limit     decimal.Decimal `json:"limit"`
	Attempted decimal.Decimal `json:"attempted"`
}

// TransitionDetails names the refused order status transition.
type TransitionDetails struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// OverpaymentDetails reports the remaining balance when a payment was refused.
type OverpaymentDetails struct {
	InvoiceID string          `json:"invoice_id"`
	Remaining decimal.Decimal `json:"remaining"`
	Attempted decimal.Decimal `json:"attempted"`
}

// NotFoundDetails names the missing entity.
type NotFoundDetails struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// InsufficientStock builds the error a stock mutation returns when the
// requested quantity does not fit the on-hand quantity.
func InsufficientStock(productID string, available, requested int) *Error {
	return New(CodeInsufficientStock, "insufficient stock").WithDetails(InsufficientStockDetails{
		ProductID: productID,
		Available: available,
		Requested: requested,
	})
}

// CreditLimitExceeded builds the error a credit charge returns when the
// charge would push the balance past the limit.
func CreditLimitExceeded(clientID string, balance, limit, attempted decimal.Decimal) *Error {
	return New(CodeCreditLimit, "credit limit exceeded").WithDetails(CreditLimitDetails{
		ClientID:  clientID,
		Balance:   balance,
		Limit:     limit,
		Attempted: attempted,
	})
}

// InvalidTransition builds the error returned for a disallowed status change.
func InvalidTransition(from, to string) *Error {
	return New(CodeStateConflict, "invalid status transition").WithDetails(TransitionDetails{
		From: from,
		To:   to,
	})
}

// OverpaymentRejected builds the error returned when a payment exceeds the
// invoice's remaining balance.
func OverpaymentRejected(invoiceID string, remaining, attempted decimal.Decimal) *Error {
	return New(CodeOverpayment, "payment exceeds remaining balance").WithDetails(OverpaymentDetails{
		InvoiceID: invoiceID,
		Remaining: remaining,
		Attempted: attempted,
	})
}

// NotFound builds the error returned when an entity lookup misses.
func NotFound(entity, id string) *Error {
	return New(CodeNotFound, entity+" not found").WithDetails(NotFoundDetails{
		Entity: entity,
		ID:     id,
	})
}
