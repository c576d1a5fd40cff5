package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/talobank/backend/internal/models"
)

func (e *Engine) enterCardType(ctx context.Context, p *models.Party) error {
	rows := [][]Button{
		{{Label: "Credit card", Payload: "card_credit"}},
		{{Label: "Debit card", Payload: "card_debit"}},
	}
	return e.msgr.SendOptions(ctx, p.ExternalID, "Which card would you like?", rows)
}

func (e *Engine) handleCardType(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	switch ev.Payload {
	case "card_credit":
		if err := e.provision(ctx, p, models.CardTypeCredit, e.cfg.CreditCurrency, e.cfg.CreditOpeningBalance); err != nil {
			return "", err
		}
		return StateMenu, nil

	case "card_debit":
		return StateDebitCurrency, nil

	default:
		if err := e.msgr.SendText(ctx, p.ExternalID, "Pick one of the card types."); err != nil {
			return "", err
		}
		return StateCardType, nil
	}
}

func (e *Engine) enterDebitCurrency(ctx context.Context, p *models.Party) error {
	row := make([]Button, 0, len(e.cfg.DebitCurrencies))
	for _, currency := range e.cfg.DebitCurrencies {
		row = append(row, Button{Label: currency, Payload: "currency_" + currency})
	}
	return e.msgr.SendOptions(ctx, p.ExternalID, "Pick the account currency:", [][]Button{row})
}

func (e *Engine) handleDebitCurrency(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	currency := strings.TrimPrefix(ev.Input(), "currency_")
	for _, allowed := range e.cfg.DebitCurrencies {
		if currency == allowed {
			if err := e.provision(ctx, p, models.CardTypeDebit, currency, 0); err != nil {
				return "", err
			}
			return StateMenu, nil
		}
	}

	if err := e.msgr.SendText(ctx, p.ExternalID, "Pick one of the offered currencies."); err != nil {
		return "", err
	}
	return StateDebitCurrency, nil
}

// provision creates one account and one card linked to it, then reports the
// new card's details back to the party. For credit cards the opening balance
// doubles as the credit limit.
func (e *Engine) provision(ctx context.Context, p *models.Party, cardType, currency string, opening float64) error {
	number, err := e.issuer.AccountNumber(ctx)
	if err != nil {
		return err
	}

	now := e.now()
	account := &models.Account{
		OwnerID:        p.ID,
		Number:         number,
		Currency:       currency,
		Balance:        opening,
		CreatedAt:      now,
		LastInterestAt: now,
	}
	if cardType == models.CardTypeCredit {
		account.CreditLimit = opening
	}
	if err := e.accounts.CreateAccount(ctx, account); err != nil {
		return err
	}

	cardNumber, err := e.issuer.CardNumber(ctx, cardType)
	if err != nil {
		return err
	}
	card := &models.Card{
		OwnerID:   p.ID,
		AccountID: account.ID,
		Number:    cardNumber,
		CVV:       e.issuer.CVV(),
		CardType:  cardType,
		ExpiresAt: e.issuer.Expiry(now),
		CreatedAt: now,
	}
	if err := e.cards.CreateCard(ctx, card); err != nil {
		return err
	}

	return e.msgr.SendText(ctx, p.ExternalID, fmt.Sprintf(
		"Your new %s card is ready:\nCard: %s\nExpires: %s\nCVV: %s\nAccount: %s (%s)",
		strings.ToLower(cardType), card.Number, card.ExpiresAt.Format("2006-01-02"),
		card.CVV, account.Number, account.Currency))
}
