package controllers

import (
	"net/http"

	"github.com/pharmatrack/pharmatrack-backend/api/responses"
	statsvc "github.com/pharmatrack/pharmatrack-backend/internal/stats"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
)

func SalesStats(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Sales(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func StockStats(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
