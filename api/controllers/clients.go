package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/api/responses"
	"github.com/pharmatrack/pharmatrack-backend/api/validators"
	clientsvc "github.com/pharmatrack/pharmatrack-backend/internal/clients"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
)

func CreateClient(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createClientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}

func GetClient(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := pathID(r, "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.Get(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, client)
	}
}

func ListClients(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, clients)
	}
}

func ToggleClientRegular(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := pathID(r, "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client, err := svc.ToggleRegular(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, client)
	}
}

func GetClientCredit(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := pathID(r, "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := svc.CreditInfo(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, info)
	}
}

func GetClientOrders(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := pathID(r, "clientID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.OrderHistory(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

type createClientRequest struct {
	FirstName   string          `json:"first_name" validate:"required"`
	LastName    string          `json:"last_name" validate:"required"`
	Address     *string         `json:"address,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	IsRegular   bool            `json:"is_regular"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

func (c createClientRequest) toInput() clientsvc.CreateClientInput {
	input := clientsvc.CreateClientInput{
		FirstName:   validators.SanitizeString(c.FirstName, 255),
		LastName:    validators.SanitizeString(c.LastName, 255),
		IsRegular:   c.IsRegular,
		CreditLimit: c.CreditLimit,
	}
	if c.Address != nil {
		address := validators.SanitizeString(*c.Address, 500)
		input.Address = &address
	}
	if c.Phone != nil {
		phone := validators.SanitizeString(*c.Phone, 50)
		input.Phone = &phone
	}
	return input
}
