package metrics

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics counts the outcomes of stock and credit ledger mutations.
type LedgerMetrics struct {
	stockReservations *prometheus.CounterVec
	creditCharges     *prometheus.CounterVec
}

const (
	OutcomeGranted = "granted"
	OutcomeRefused = "refused"
)

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	stockReservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reservations_total",
		Help: "Stock reservation attempts by outcome.",
	}, []string{"outcome"})
	creditCharges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_charges_total",
		Help: "Credit charge attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(stockReservations, creditCharges)
	return &LedgerMetrics{
		stockReservations: stockReservations,
		creditCharges:     creditCharges,
	}
}

// IncStockReservation records a reservation attempt.
func (l *LedgerMetrics) IncStockReservation(outcome string) {
	if l == nil || l.stockReservations == nil {
		return
	}
	l.stockReservations.WithLabelValues(outcome).Inc()
}

// IncCreditCharge records a charge attempt.
func (l *LedgerMetrics) IncCreditCharge(outcome string) {
	if l == nil || l.creditCharges == nil {
		return
	}
	l.creditCharges.WithLabelValues(outcome).Inc()
}
