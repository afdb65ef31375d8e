package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Ledger is the wallet surface other domains compose with. The Tx variants
// run against a caller-owned transaction so a wallet move and its
// consequential state change commit or roll back together.
type Ledger interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error)
	Credit(ctx context.Context, userID int, amount int64, kind Kind, description string, meta Meta) (*Transaction, error)
	Debit(ctx context.Context, userID int, amount int64, kind Kind, description string, meta Meta) (*Transaction, error)
	CreditTx(ctx context.Context, tx *sqlx.Tx, userID int, amount int64, kind Kind, description string, meta Meta) (*Transaction, error)
	DebitTx(ctx context.Context, tx *sqlx.Tx, userID int, amount int64, kind Kind, description string, meta Meta) (*Transaction, error)
	CreditFromGateway(ctx context.Context, userID int, amount int64, orderID, paymentID string) (*Transaction, error)
	RequestWithdrawal(ctx context.Context, userID int, amount int64, method, accountDetails string) (*Withdrawal, error)
	ResolveWithdrawal(ctx context.Context, withdrawalID, adminID int, approve bool, transactionRef, rejectionReason string) (*Withdrawal, error)
	GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
	GetWithdrawals(ctx context.Context, userID int) ([]Withdrawal, error)
	ListWithdrawals(ctx context.Context, status string, limit, offset int) ([]Withdrawal, error)
	UpdateWithdrawalInfo(ctx context.Context, userID int, method, accountName, accountNo, ifsc, upiID string) (*Wallet, error)
	GetStats(ctx context.Context) (*Stats, error)
}
