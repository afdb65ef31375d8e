package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbmesports_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rbmesports_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbmesports_registrations_total",
			Help: "Total number of tournament registrations",
		},
		[]string{"mode", "settled"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbmesports_payments_total",
			Help: "Total number of payment settlements",
		},
		[]string{"status", "gateway"},
	)

	RefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbmesports_refunds_total",
			Help: "Total number of processed refunds",
		},
	)

	WalletTopUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbmesports_wallet_topups_total",
			Help: "Total number of wallet top-ups",
		},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbmesports_withdrawals_total",
			Help: "Total number of withdrawal resolutions",
		},
		[]string{"status"},
	)

	PrizePayoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbmesports_prize_payouts_total",
			Help: "Total number of prize payouts settled",
		},
	)

	PrizeAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbmesports_prize_amount_rupees_total",
			Help: "Total prize money paid out in rupees",
		},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbmesports_notifications_queued_total",
			Help: "Total number of notifications queued",
		},
		[]string{"kind"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rbmesports_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRegistration(mode string, settled bool) {
	label := "false"
	if settled {
		label = "true"
	}
	RegistrationsTotal.WithLabelValues(mode, label).Inc()
}

func RecordPayment(status, gateway string) {
	PaymentsTotal.WithLabelValues(status, gateway).Inc()
}

func RecordRefund() {
	RefundsTotal.Inc()
}

func RecordWalletTopUp() {
	WalletTopUpsTotal.Inc()
}

func RecordWithdrawal(status string) {
	WithdrawalsTotal.WithLabelValues(status).Inc()
}

func RecordPrizePayout(amount int64) {
	PrizePayoutsTotal.Inc()
	PrizeAmountTotal.Add(float64(amount))
}

func RecordNotification(kind string) {
	NotificationsQueuedTotal.WithLabelValues(kind).Inc()
}
