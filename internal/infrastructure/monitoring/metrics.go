package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomersRegisteredTotal prometheus.Counter
	AccountsOpenedTotal      prometheus.Counter
	DepositsTotal            *prometheus.CounterVec
	WithdrawalsTotal         *prometheus.CounterVec
	LoansIssuedTotal         *prometheus.CounterVec
	ExpiredActiveLoans       prometheus.Gauge
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minibank_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name"},
		),
	}

	Business = BusinessMetrics{
		CustomersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "minibank_customers_registered_total",
				Help: "Total number of customers successfully registered.",
			},
		),
		AccountsOpenedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "minibank_accounts_opened_total",
				Help: "Total number of accounts successfully opened.",
			},
		),
		DepositsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_deposits_total",
				Help: "Total number of deposit attempts by outcome.",
			},
			[]string{"status"},
		),
		WithdrawalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_withdrawals_total",
				Help: "Total number of withdrawal attempts by outcome.",
			},
			[]string{"status"},
		),
		LoansIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minibank_loans_issued_total",
				Help: "Total number of loan issuance attempts by outcome.",
			},
			[]string{"status"},
		),
		ExpiredActiveLoans: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "minibank_expired_active_loans",
				Help: "Number of uncancelled loans past their expiry date, from the last report run.",
			},
		),
	}
)

func RecordDBQuery(queryName string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName).Observe(duration.Seconds())
}

func RecordCustomerRegistered() {
	Business.CustomersRegisteredTotal.Inc()
}

func RecordAccountOpened() {
	Business.AccountsOpenedTotal.Inc()
}

func RecordDeposit(status string) {
	Business.DepositsTotal.WithLabelValues(status).Inc()
}

func RecordWithdrawal(status string) {
	Business.WithdrawalsTotal.WithLabelValues(status).Inc()
}

func RecordLoanIssued(status string) {
	Business.LoansIssuedTotal.WithLabelValues(status).Inc()
}

func RecordExpiredActiveLoans(count int64) {
	Business.ExpiredActiveLoans.Set(float64(count))
}
