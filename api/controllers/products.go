package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/api/responses"
	"github.com/pharmatrack/pharmatrack-backend/api/validators"
	productsvc "github.com/pharmatrack/pharmatrack-backend/internal/products"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
)

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func AdjustProductStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Adjust(r.Context(), productID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func ListOutOfStockProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListOutOfStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func ListLowStockProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

type createProductRequest struct {
	Name           string          `json:"name" validate:"required"`
	Category       string          `json:"category" validate:"required"`
	UnitPrice      decimal.Decimal `json:"unit_price" validate:"required"`
	StockQty       int             `json:"stock_qty" validate:"min=0"`
	AlertThreshold int             `json:"alert_threshold" validate:"min=0"`
}

func (p createProductRequest) toInput() productsvc.CreateProductInput {
	return productsvc.CreateProductInput{
		Name:           validators.SanitizeString(p.Name, 255),
		Category:       validators.SanitizeString(p.Category, 255),
		UnitPrice:      p.UnitPrice,
		StockQty:       p.StockQty,
		AlertThreshold: p.AlertThreshold,
	}
}

type updateProductRequest struct {
	Name           *string          `json:"name,omitempty"`
	Category       *string          `json:"category,omitempty"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	AlertThreshold *int             `json:"alert_threshold,omitempty" validate:"omitempty,min=0"`
}

func (p updateProductRequest) toInput() productsvc.UpdateProductInput {
	input := productsvc.UpdateProductInput{
		UnitPrice:      p.UnitPrice,
		AlertThreshold: p.AlertThreshold,
	}
	if p.Name != nil {
		name := validators.SanitizeString(*p.Name, 255)
		input.Name = &name
	}
	if p.Category != nil {
		category := validators.SanitizeString(*p.Category, 255)
		input.Category = &category
	}
	return input
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}
