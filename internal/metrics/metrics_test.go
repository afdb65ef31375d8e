package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/tournaments/1/register", "201", 0.25)
	RecordHTTPRequest("POST", "/api/tournaments/1/register", "201", 0.1)
	RecordHTTPRequest("POST", "/api/tournaments/1/register", "409", 0.05)

	success := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/tournaments/1/register", "201"))
	conflict := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/tournaments/1/register", "409"))

	assert.Equal(t, float64(2), success)
	assert.Equal(t, float64(1), conflict)
}

func TestRecordRegistration(t *testing.T) {
	RegistrationsTotal.Reset()

	RecordRegistration("solo", true)
	RecordRegistration("solo", false)
	RecordRegistration("squad", false)

	settledSolo := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("solo", "true"))
	pendingSolo := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("solo", "false"))
	pendingSquad := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("squad", "false"))

	assert.Equal(t, float64(1), settledSolo)
	assert.Equal(t, float64(1), pendingSolo)
	assert.Equal(t, float64(1), pendingSquad)
}

func TestRecordPayment(t *testing.T) {
	PaymentsTotal.Reset()

	RecordPayment("success", "razorpay")
	RecordPayment("success", "wallet")
	RecordPayment("failed", "razorpay")

	razorpaySuccess := testutil.ToFloat64(PaymentsTotal.WithLabelValues("success", "razorpay"))
	walletSuccess := testutil.ToFloat64(PaymentsTotal.WithLabelValues("success", "wallet"))
	razorpayFailed := testutil.ToFloat64(PaymentsTotal.WithLabelValues("failed", "razorpay"))

	assert.Equal(t, float64(1), razorpaySuccess)
	assert.Equal(t, float64(1), walletSuccess)
	assert.Equal(t, float64(1), razorpayFailed)
}

func TestRecordWithdrawal(t *testing.T) {
	WithdrawalsTotal.Reset()

	RecordWithdrawal("completed")
	RecordWithdrawal("completed")
	RecordWithdrawal("rejected")

	completed := testutil.ToFloat64(WithdrawalsTotal.WithLabelValues("completed"))
	rejected := testutil.ToFloat64(WithdrawalsTotal.WithLabelValues("rejected"))

	assert.Equal(t, float64(2), completed)
	assert.Equal(t, float64(1), rejected)
}

func TestRecordNotification(t *testing.T) {
	NotificationsQueuedTotal.Reset()

	RecordNotification("registration_confirmed")
	RecordNotification("prize_won")
	RecordNotification("prize_won")

	regCount := testutil.ToFloat64(NotificationsQueuedTotal.WithLabelValues("registration_confirmed"))
	prizeCount := testutil.ToFloat64(NotificationsQueuedTotal.WithLabelValues("prize_won"))

	assert.Equal(t, float64(1), regCount)
	assert.Equal(t, float64(2), prizeCount)
}

func TestNotificationQueueLength(t *testing.T) {
	NotificationQueueLength.Set(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(NotificationQueueLength))

	NotificationQueueLength.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(NotificationQueueLength))
}
