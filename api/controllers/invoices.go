package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/api/responses"
	"github.com/pharmatrack/pharmatrack-backend/api/validators"
	invoicesvc "github.com/pharmatrack/pharmatrack-backend/internal/invoices"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
)

func CreateInvoice(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

func GetInvoice(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := pathID(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Get(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

func ListInvoices(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoices, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoices)
	}
}

func PayInvoice(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := pathID(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Pay(r.Context(), invoiceID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

type createInvoiceRequest struct {
	OrderID       uuid.UUID       `json:"order_id" validate:"required"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
}

func (c createInvoiceRequest) toInput() (invoicesvc.CreateInvoiceInput, error) {
	method, err := enums.ParsePaymentMethod(c.PaymentMethod)
	if err != nil {
		return invoicesvc.CreateInvoiceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_method")
	}
	return invoicesvc.CreateInvoiceInput{
		OrderID:       c.OrderID,
		DiscountPct:   c.DiscountPct,
		PaymentMethod: method,
	}, nil
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"required"`
}

func (p paymentRequest) toInput() (invoicesvc.PaymentInput, error) {
	method, err := enums.ParsePaymentMethod(p.Method)
	if err != nil {
		return invoicesvc.PaymentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid method")
	}
	return invoicesvc.PaymentInput{Amount: p.Amount, Method: method}, nil
}
