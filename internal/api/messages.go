// Package api is the wire contract between the PotKeeper server and its
// clients: request and response messages, the canonical byte payloads that
// signed requests cover, the gRPC service description and the mapping of
// domain errors to gRPC status.
package api

import "time"

// Signed authenticates a mutating request. Signature is over the canonical
// payload of the request, which embeds Signer and IssuedAt.
type Signed struct {
	Signer    string `json:"signer"`
	IssuedAt  uint64 `json:"issued_at"`
	Signature []byte `json:"signature"`
}

type PingRequest struct{}

type PingResponse struct {
	Status    string `json:"status"`
	ProgramID string `json:"program_id"`
	Time      uint64 `json:"time"`
}

type GetChallengeRequest struct {
	Address string `json:"address"`
}

type GetChallengeResponse struct {
	Nonce string `json:"nonce"`
}

type LoginRequest struct {
	Address   string `json:"address"`
	Signature []byte `json:"signature"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ProfileFields struct {
	Username string `json:"username"`
	Emoji    string `json:"emoji"`
	Gender   string `json:"gender"`
	Pin      string `json:"pin"`
}

type Profile struct {
	Address   string        `json:"address"`
	Authority string        `json:"authority"`
	Fields    ProfileFields `json:"fields"`
	Bump      uint8         `json:"bump"`
	Deposit   uint64        `json:"deposit"`
	CreatedAt uint64        `json:"created_at"`
	UpdatedAt uint64        `json:"updated_at"`
}

type InitializeUserRequest struct {
	Fields ProfileFields `json:"fields"`
	Auth   Signed        `json:"auth"`
}

type InitializeUserResponse struct {
	Profile Profile `json:"profile"`
}

type UpdateUserRequest struct {
	Fields ProfileFields `json:"fields"`
	Auth   Signed        `json:"auth"`
}

type UpdateUserResponse struct {
	Profile Profile `json:"profile"`
}

type GetProfileRequest struct {
	Owner string `json:"owner"`
}

type GetProfileResponse struct {
	Profile Profile `json:"profile"`
}

type Pot struct {
	Address    string `json:"address"`
	Authority  string `json:"authority"`
	Name       string `json:"name"`
	UnlockTime uint64 `json:"unlock_time"`
	Balance    uint64 `json:"balance"`
	CreatedAt  uint64 `json:"created_at"`
	Bump       uint8  `json:"bump"`
	Deposit    uint64 `json:"deposit"`
}

type CreateSavingsPotRequest struct {
	Name       string `json:"name"`
	UnlockTime uint64 `json:"unlock_time"`
	Auth       Signed `json:"auth"`
}

type CreateSavingsPotResponse struct {
	Pot Pot `json:"pot"`
}

type DepositToPotRequest struct {
	Pot    string `json:"pot"`
	Amount uint64 `json:"amount"`
	Auth   Signed `json:"auth"`
}

type DepositToPotResponse struct {
	Pot Pot `json:"pot"`
}

type WithdrawFromPotRequest struct {
	Pot       string `json:"pot"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Auth      Signed `json:"auth"`
}

type WithdrawFromPotResponse struct {
	Pot Pot `json:"pot"`
}

type CloseSavingsPotRequest struct {
	Pot  string `json:"pot"`
	Auth Signed `json:"auth"`
}

type CloseSavingsPotResponse struct {
	Swept    uint64 `json:"swept"`
	Refunded uint64 `json:"refunded"`
}

// GetPotRequest selects a pot by Pot address, or by Owner and Name.
type GetPotRequest struct {
	Pot   string `json:"pot,omitempty"`
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name,omitempty"`
}

type GetPotResponse struct {
	Pot Pot `json:"pot"`
}

type ListPotsRequest struct {
	Owner string `json:"owner"`
}

type ListPotsResponse struct {
	Pots []Pot `json:"pots"`
}

type GetBalanceRequest struct {
	Address string `json:"address"`
}

type GetBalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type AirdropRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type AirdropResponse struct {
	Balance uint64 `json:"balance"`
}

type GetHistoryRequest struct {
	Address string `json:"address"`
	Limit   int    `json:"limit"`
}

type Transfer struct {
	ID        string    `json:"id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Amount    uint64    `json:"amount"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type GetHistoryResponse struct {
	Transfers []Transfer `json:"transfers"`
}
