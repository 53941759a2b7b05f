package models

import (
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
)

// TransferKind labels journal entries.
type TransferKind string

const (
	TransferDeposit    TransferKind = "deposit"
	TransferWithdrawal TransferKind = "withdrawal"
	TransferSweep      TransferKind = "sweep"
	TransferRent       TransferKind = "rent"
	TransferRefund     TransferKind = "refund"
	TransferAirdrop    TransferKind = "airdrop"
)

// Transfer is one journal entry of the value ledger. Airdrops have a zero From.
type Transfer struct {
	ID        string
	From      cryptox.Address
	To        cryptox.Address
	Amount    uint64
	Kind      TransferKind
	CreatedAt time.Time
}
