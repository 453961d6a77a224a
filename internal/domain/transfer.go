package domain

import (
	"time"
)

var (
	// ErrUnknownSenderAccount indicates that the sender account does not exist.
	ErrUnknownSenderAccount = newError(KindNotFound, "unknown_sender_account", "sender account not found")
	// ErrSenderInactive indicates that the sender account is deactivated.
	ErrSenderInactive = newError(KindState, "sender_inactive", "sender account is not active")
	// ErrUnknownReceiverAccount indicates that the receiver account does not exist.
	ErrUnknownReceiverAccount = newError(KindNotFound, "unknown_receiver_account", "receiver account not found")
	// ErrReceiverInactive indicates that the receiver account is deactivated.
	ErrReceiverInactive = newError(KindState, "receiver_inactive", "receiver account is not active")
	// ErrSelfTransferForbidden indicates that sender and receiver are the same account.
	ErrSelfTransferForbidden = newError(KindValidation, "self_transfer_forbidden", "cannot transfer funds to the same account")
	// ErrNonPositiveAmount indicates that the amount is zero or negative.
	ErrNonPositiveAmount = newError(KindValidation, "non_positive_amount", "amount must be greater than zero")
	// ErrNoHistoryFound indicates that the account has not sent any transfer yet.
	ErrNoHistoryFound = newError(KindNotFound, "no_history_found", "no transfers found for the account")
)

// Transfer is the immutable ledger record of one committed transfer.
type Transfer struct {
	ID                int64     `json:"id"`
	SenderUserID      int64     `json:"sender_user_id"`
	FromAccountNumber string    `json:"numero_cuenta_enviar"`
	ToAccountNumber   string    `json:"numero_cuenta_recibe"`
	Amount            int64     `json:"cantidad_dinero"`
	CreatedAt         time.Time `json:"fecha"`
}

// CreateTransferParams is the input data for the transfer transaction.
type CreateTransferParams struct {
	SenderUserID      int64  `json:"sender_user_id"`
	FromAccountNumber string `json:"numero_cuenta_enviar"`
	ToAccountNumber   string `json:"numero_cuenta_recibe"`
	Amount            int64  `json:"cantidad_dinero"`
}

// TransferResult echoes the accounts of a committed transfer.
//
// It carries no balances.
type TransferResult struct {
	FromAccountNumber string `json:"numero_cuenta_enviar"`
	ToAccountNumber   string `json:"numero_cuenta_recibe"`
}

// HistoryRecord is a Transfer as shown to its sender.
type HistoryRecord struct {
	FromAccountNumber string    `json:"numero_cuenta_enviar"`
	ToAccountNumber   string    `json:"numero_cuenta_recibe"`
	Amount            int64     `json:"cantidad_dinero"`
	CreatedAt         time.Time `json:"fecha"`
}

// Record returns the history view of the transfer.
func (t Transfer) Record() HistoryRecord {
	return HistoryRecord{
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		Amount:            t.Amount,
		CreatedAt:         t.CreatedAt,
	}
}
