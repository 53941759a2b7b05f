package grpc

import (
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
)

func parseAddress(field, s string) (cryptox.Address, error) {
	a, err := cryptox.ParseAddress(s)
	if err != nil {
		return cryptox.Address{}, fmt.Errorf("%s: %w", field, err)
	}
	return a, nil
}

func toFields(f api.ProfileFields) models.ProfileFields {
	return models.NewProfileFields(f.Username, f.Emoji, f.Gender, f.Pin)
}

func fromFields(f models.ProfileFields) api.ProfileFields {
	return api.ProfileFields{
		Username: f.UsernameString(),
		Emoji:    f.EmojiString(),
		Gender:   f.GenderString(),
		Pin:      f.PinString(),
	}
}

func fromProfile(p *models.UserProfile) api.Profile {
	return api.Profile{
		Address:   p.Address.String(),
		Authority: p.Authority.String(),
		Fields:    fromFields(p.ProfileFields),
		Bump:      p.Bump,
		Deposit:   p.Deposit,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromPot(p *models.SavingsPot) api.Pot {
	return api.Pot{
		Address:    p.Address.String(),
		Authority:  p.Authority.String(),
		Name:       p.Name,
		UnlockTime: p.UnlockTime,
		Balance:    p.Balance,
		CreatedAt:  p.CreatedAt,
		Bump:       p.Bump,
		Deposit:    p.Deposit,
	}
}

func fromTransfer(t *models.Transfer) api.Transfer {
	out := api.Transfer{
		ID:        t.ID,
		To:        t.To.String(),
		Amount:    t.Amount,
		Kind:      string(t.Kind),
		CreatedAt: t.CreatedAt,
	}
	if !t.From.IsZero() {
		out.From = t.From.String()
	}
	return out
}
