package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"pending straight to success", StatusPending, StatusSuccess, true},
		{"pending to on_hold", StatusPending, StatusOnHold, true},
		{"processing to success", StatusProcessing, StatusSuccess, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"on_hold to success", StatusOnHold, StatusSuccess, true},
		{"success to partially_refunded", StatusSuccess, StatusPartiallyRefunded, true},
		{"success to refunded", StatusSuccess, StatusRefunded, true},
		{"partially_refunded to refunded", StatusPartiallyRefunded, StatusRefunded, true},
		{"success back to pending", StatusSuccess, StatusPending, false},
		{"failed is terminal", StatusFailed, StatusSuccess, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"refunded is terminal", StatusRefunded, StatusSuccess, false},
		{"processing cannot hold", StatusProcessing, StatusOnHold, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestNewInvoiceID_Prefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewInvoiceID(TypeIndividual), "INV-"))
	assert.True(t, strings.HasPrefix(NewInvoiceID(TypeTeam), "INV-"))
	assert.True(t, strings.HasPrefix(NewInvoiceID(TypePrizePayout), "POUT-"))
}

func TestNewTransactionRef(t *testing.T) {
	ref := NewTransactionRef()
	assert.True(t, strings.HasPrefix(ref, "TXN"))
	assert.Len(t, ref, len("TXN")+13)
}

func TestMetadata_ScanNil(t *testing.T) {
	var m Metadata
	assert.NoError(t, m.Scan(nil))
	assert.NotNil(t, m)
}

func TestMetadata_RoundTrip(t *testing.T) {
	m := Metadata{"gateway_order_id": "order_1"}
	v, err := m.Value()
	assert.NoError(t, err)

	var out Metadata
	assert.NoError(t, out.Scan(v.([]byte)))
	assert.Equal(t, "order_1", out["gateway_order_id"])
}
