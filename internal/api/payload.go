package api

import (
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/nspcc-dev/neo-go/pkg/io"
)

// payloadDomain prefixes every signed payload so a signature made for
// PotKeeper can never be replayed against another system.
const payloadDomain = "potkeeper/v1"

// Operation tags of signed payloads.
const (
	OpInitializeUser = "initialize_user"
	OpUpdateUser     = "update_user"
	OpCreatePot      = "create_savings_pot"
	OpDeposit        = "deposit_to_pot"
	OpWithdraw       = "withdraw_from_pot"
	OpClose          = "close_savings_pot"
)

func newPayload(op string, signer cryptox.Address, issuedAt uint64) *io.BufBinWriter {
	w := io.NewBufBinWriter()
	w.WriteString(payloadDomain)
	w.WriteString(op)
	w.WriteBytes(signer[:])
	w.WriteU64LE(issuedAt)
	return w
}

func writeFields(w *io.BufBinWriter, f ProfileFields) {
	w.WriteString(f.Username)
	w.WriteString(f.Emoji)
	w.WriteString(f.Gender)
	w.WriteString(f.Pin)
}

func InitializeUserPayload(signer cryptox.Address, issuedAt uint64, f ProfileFields) []byte {
	w := newPayload(OpInitializeUser, signer, issuedAt)
	writeFields(w, f)
	return w.Bytes()
}

func UpdateUserPayload(signer cryptox.Address, issuedAt uint64, f ProfileFields) []byte {
	w := newPayload(OpUpdateUser, signer, issuedAt)
	writeFields(w, f)
	return w.Bytes()
}

func CreatePotPayload(signer cryptox.Address, issuedAt uint64, name string, unlockTime uint64) []byte {
	w := newPayload(OpCreatePot, signer, issuedAt)
	w.WriteString(name)
	w.WriteU64LE(unlockTime)
	return w.Bytes()
}

func DepositPayload(signer cryptox.Address, issuedAt uint64, pot cryptox.Address, amount uint64) []byte {
	w := newPayload(OpDeposit, signer, issuedAt)
	w.WriteBytes(pot[:])
	w.WriteU64LE(amount)
	return w.Bytes()
}

func WithdrawPayload(signer cryptox.Address, issuedAt uint64, pot, recipient cryptox.Address, amount uint64) []byte {
	w := newPayload(OpWithdraw, signer, issuedAt)
	w.WriteBytes(pot[:])
	w.WriteBytes(recipient[:])
	w.WriteU64LE(amount)
	return w.Bytes()
}

func ClosePayload(signer cryptox.Address, issuedAt uint64, pot cryptox.Address) []byte {
	w := newPayload(OpClose, signer, issuedAt)
	w.WriteBytes(pot[:])
	return w.Bytes()
}

// LoginMessage is what a client signs to answer a login challenge.
func LoginMessage(address cryptox.Address, nonce string) []byte {
	w := io.NewBufBinWriter()
	w.WriteString(payloadDomain)
	w.WriteString("login")
	w.WriteBytes(address[:])
	w.WriteString(nonce)
	return w.Bytes()
}
