package wallet

import "time"

// Transaction kinds. The kind decides which aggregate counter moves.
type Kind string

const (
	KindDeposit       Kind = "deposit"
	KindWithdrawal    Kind = "withdrawal"
	KindTournamentFee Kind = "tournament_fee"
	KindPrizeWon      Kind = "prize_won"
	KindRefund        Kind = "refund"
)

// Withdrawal hold states.
const (
	WithdrawalPending   = "pending"
	WithdrawalCompleted = "completed"
	WithdrawalRejected  = "rejected"
)

type Wallet struct {
	ID      int   `db:"id" json:"id"`
	UserID  int   `db:"user_id" json:"user_id"`
	Balance int64 `db:"balance" json:"balance"`

	TotalDeposited int64 `db:"total_deposited" json:"total_deposited"`
	TotalWithdrawn int64 `db:"total_withdrawn" json:"total_withdrawn"`
	TotalEarned    int64 `db:"total_earned" json:"total_earned"`
	TotalSpent     int64 `db:"total_spent" json:"total_spent"`

	IsLocked   bool   `db:"is_locked" json:"is_locked"`
	LockReason string `db:"lock_reason" json:"lock_reason,omitempty"`

	// Saved payout destination, editable by the user.
	WithdrawalMethod      string `db:"withdrawal_method" json:"withdrawal_method,omitempty"`
	WithdrawalAccountName string `db:"withdrawal_account_name" json:"withdrawal_account_name,omitempty"`
	WithdrawalAccountNo   string `db:"withdrawal_account_no" json:"withdrawal_account_no,omitempty"`
	WithdrawalIFSC        string `db:"withdrawal_ifsc" json:"withdrawal_ifsc,omitempty"`
	WithdrawalUPIID       string `db:"withdrawal_upi_id" json:"withdrawal_upi_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction rows are append-only; nothing updates or deletes them.
// Amount is positive for credits and negative for debits.
type Transaction struct {
	ID           int    `db:"id" json:"id"`
	WalletID     int    `db:"wallet_id" json:"wallet_id"`
	Kind         Kind   `db:"kind" json:"kind"`
	Amount       int64  `db:"amount" json:"amount"`
	BalanceAfter int64  `db:"balance_after" json:"balance_after"`
	Description  string `db:"description" json:"description"`
	Status       string `db:"status" json:"status"`

	TournamentID     *int   `db:"tournament_id" json:"tournament_id,omitempty"`
	PaymentID        *int   `db:"payment_id" json:"payment_id,omitempty"`
	GatewayOrderID   string `db:"gateway_order_id" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Meta carries provenance references for a ledger entry.
type Meta struct {
	TournamentID     *int
	PaymentID        *int
	GatewayOrderID   string
	GatewayPaymentID string
}

// Withdrawal is a hold: the amount already left the spendable balance when
// the request was accepted and stays out until an admin resolves it.
type Withdrawal struct {
	ID       int    `db:"id" json:"id"`
	WalletID int    `db:"wallet_id" json:"wallet_id"`
	UserID   int    `db:"user_id" json:"user_id"`
	Amount   int64  `db:"amount" json:"amount"`
	Method   string `db:"method" json:"method"`
	// Free-form destination details captured at request time.
	AccountDetails string `db:"account_details" json:"account_details"`
	Status         string `db:"status" json:"status"`

	RequestedAt     time.Time  `db:"requested_at" json:"requested_at"`
	ProcessedAt     *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	ProcessedBy     *int       `db:"processed_by" json:"processed_by,omitempty"`
	RejectionReason string     `db:"rejection_reason" json:"rejection_reason,omitempty"`
	TransactionRef  string     `db:"transaction_ref" json:"transaction_ref,omitempty"`
}

// Stats aggregates across all wallets, for admin dashboards.
type Stats struct {
	TotalWallets            int   `db:"total_wallets" json:"total_wallets"`
	TotalBalance            int64 `db:"total_balance" json:"total_balance"`
	TotalDeposited          int64 `db:"total_deposited" json:"total_deposited"`
	TotalWithdrawn          int64 `db:"total_withdrawn" json:"total_withdrawn"`
	TotalEarned             int64 `db:"total_earned" json:"total_earned"`
	PendingWithdrawalCount  int   `db:"pending_withdrawal_count" json:"pending_withdrawal_count"`
	PendingWithdrawalAmount int64 `db:"pending_withdrawal_amount" json:"pending_withdrawal_amount"`
}
