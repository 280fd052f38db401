package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmatrack/pharmatrack-backend/api/controllers"
	"github.com/pharmatrack/pharmatrack-backend/api/middleware"
	"github.com/pharmatrack/pharmatrack-backend/api/responses"
	"github.com/pharmatrack/pharmatrack-backend/internal/clients"
	"github.com/pharmatrack/pharmatrack-backend/internal/invoices"
	"github.com/pharmatrack/pharmatrack-backend/internal/orders"
	"github.com/pharmatrack/pharmatrack-backend/internal/products"
	"github.com/pharmatrack/pharmatrack-backend/internal/stats"
	"github.com/pharmatrack/pharmatrack-backend/pkg/config"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
	"github.com/pharmatrack/pharmatrack-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	productService products.Service,
	clientService clients.Service,
	orderService orders.Service,
	invoiceService invoices.Service,
	statsService stats.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Get("/out-of-stock", controllers.ListOutOfStockProducts(productService, logg))
			r.Get("/low-stock", controllers.ListLowStockProducts(productService, logg))
			r.Get("/{productID}", controllers.GetProduct(productService, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(productService, logg))
			r.Post("/{productID}/stock-adjustments", controllers.AdjustProductStock(productService, logg))
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ListClients(clientService, logg))
			r.Post("/", controllers.CreateClient(clientService, logg))
			r.Get("/{clientID}", controllers.GetClient(clientService, logg))
			r.Post("/{clientID}/toggle-regular", controllers.ToggleClientRegular(clientService, logg))
			r.Get("/{clientID}/credit", controllers.GetClientCredit(clientService, logg))
			r.Get("/{clientID}/orders", controllers.GetClientOrders(clientService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(orderService, logg))
			r.Post("/", controllers.CreateOrder(orderService, logg))
			r.Get("/{orderID}", controllers.GetOrder(orderService, logg))
			r.Delete("/{orderID}", controllers.DeleteOrder(orderService, logg))
			r.Post("/{orderID}/validate", controllers.ValidateOrder(orderService, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(orderService, logg))
			r.Post("/{orderID}/lines", controllers.AddOrderLine(orderService, logg))
			r.Patch("/{orderID}/lines/{lineID}", controllers.UpdateOrderLine(orderService, logg))
			r.Delete("/{orderID}/lines/{lineID}", controllers.RemoveOrderLine(orderService, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.ListInvoices(invoiceService, logg))
			r.Post("/", controllers.CreateInvoice(invoiceService, logg))
			r.Get("/{invoiceID}", controllers.GetInvoice(invoiceService, logg))
			r.Post("/{invoiceID}/payments", controllers.PayInvoice(invoiceService, logg))
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/sales", controllers.SalesStats(statsService, logg))
			r.Get("/stock", controllers.StockStats(statsService, logg))
		})
	})

	return r
}
