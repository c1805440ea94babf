package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/google/uuid"
)

// TxState is the stage of a facilitated transaction.
type TxState string

const (
	StateWaitingForAddress  TxState = "waiting_address"
	StateWaitingForPayment  TxState = "waiting_payment"
	StatePaymentBroadcasted TxState = "payment_broadcasted"
)

// TxRole says which side of which flow the local party is on. An "rpr" flow
// starts with a request for an address (the payer asks), a "pr" flow with a
// payment request carrying an address (the payee asks).
type TxRole string

const (
	RoleRprInitiator TxRole = "rpr_initiator"
	RoleRprReceiver  TxRole = "rpr_receiver"
	RolePrInitiator  TxRole = "pr_initiator"
	RolePrReceiver   TxRole = "pr_receiver"
)

// FacilitatedTransaction tracks a payment negotiated over messages.
// Records are never deleted; PaymentBroadcasted is terminal.
type FacilitatedTransaction struct {
	ID             string  `json:"id"`
	State          TxState `json:"state"`
	IntendedAmount int64   `json:"intended_amount"`
	Address        string  `json:"address,omitempty"`
	TxHash         string  `json:"tx_hash,omitempty"`
	Role           TxRole  `json:"role"`
	Created        int64   `json:"created"`
	Note           string  `json:"note,omitempty"`
	Counterpart    string  `json:"counterpart,omitempty"`
}

var nowFn = time.Now

// NewFacilitatedTransaction starts a transaction waiting for an address.
func NewFacilitatedTransaction(role TxRole, amount int64, note string) *FacilitatedTransaction {
	return &FacilitatedTransaction{
		ID:             uuid.NewString(),
		State:          StateWaitingForAddress,
		IntendedAmount: amount,
		Role:           role,
		Created:        nowFn().UnixMilli(),
		Note:           note,
	}
}

// SetAddress records the receive address and moves to WaitingForPayment.
func (t *FacilitatedTransaction) SetAddress(address string) error {
	if t.State != StateWaitingForAddress {
		return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, t.State, StateWaitingForPayment)
	}
	if address == "" {
		return fmt.Errorf("%w: empty address", common.ErrInvalidTransition)
	}
	t.Address = address
	t.State = StateWaitingForPayment
	return nil
}

// SetBroadcast records the payment transaction hash. The state is terminal
// afterwards.
func (t *FacilitatedTransaction) SetBroadcast(txHash string) error {
	if t.State != StateWaitingForPayment {
		return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, t.State, StatePaymentBroadcasted)
	}
	if txHash == "" {
		return fmt.Errorf("%w: empty tx hash", common.ErrInvalidTransition)
	}
	t.TxHash = txHash
	t.State = StatePaymentBroadcasted
	return nil
}

// CreatedAt converts the millisecond timestamp.
func (t *FacilitatedTransaction) CreatedAt() time.Time {
	return time.UnixMilli(t.Created)
}

// BitcoinURI renders a BIP21 payment URI for the recorded address.
func (t *FacilitatedTransaction) BitcoinURI() string {
	uri := "bitcoin:" + t.Address
	if t.IntendedAmount > 0 {
		btc := btcutil.Amount(t.IntendedAmount).ToBTC()
		uri += "?amount=" + strconv.FormatFloat(btc, 'f', -1, 64)
	}
	return uri
}
