package dialog

import (
	"context"

	"github.com/talobank/backend/internal/models"
	"github.com/talobank/backend/internal/services"
)

func (e *Engine) handleTransferCard(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	if ev.Input() == "" {
		if err := e.msgr.SendText(ctx, p.ExternalID, "Please send your card number."); err != nil {
			return "", err
		}
		return StateTransferCard, nil
	}

	p.Draft.SenderCard = ev.Input()
	return StateTransferCVV, nil
}

func (e *Engine) handleTransferCVV(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	e.deleteInput(ctx, p, ev)

	if ev.Input() == "" {
		if err := e.msgr.SendText(ctx, p.ExternalID, "Please send the card's CVV."); err != nil {
			return "", err
		}
		return StateTransferCVV, nil
	}

	p.Draft.SenderCVV = ev.Input()
	return StateTransferExpiry, nil
}

func (e *Engine) handleTransferExpiry(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	if ev.Input() == "" {
		if err := e.msgr.SendText(ctx, p.ExternalID, "Please send the expiry date."); err != nil {
			return "", err
		}
		return StateTransferExpiry, nil
	}

	p.Draft.SenderExpiry = ev.Input()
	return StateTransferRecipient, nil
}

func (e *Engine) handleTransferRecipient(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	if ev.Input() == "" {
		if err := e.msgr.SendText(ctx, p.ExternalID, "Please send the recipient's card number."); err != nil {
			return "", err
		}
		return StateTransferRecipient, nil
	}

	p.Draft.RecipientCard = ev.Input()
	return StateTransferPassword, nil
}

func (e *Engine) handleTransferPassword(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	e.deleteInput(ctx, p, ev)

	if !services.VerifyPassword(ev.Input(), p.PasswordHash) {
		return e.retryOrRepeat(ctx, p, "Wrong password. Try again.", StateTransferPassword, StateMenu)
	}

	p.Retries = 0
	return StateTransferAmount, nil
}

// handleTransferAmount is the final transfer step: parse the amount, run the
// engine end to end, report the outcome and return to the menu either way.
func (e *Engine) handleTransferAmount(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	amount, ok := e.transfer.ParseAmount(ev.Input())
	if !ok {
		p.Draft = models.TransferDraft{}
		if err := e.msgr.SendText(ctx, p.ExternalID, "The amount must be a positive number."); err != nil {
			return "", err
		}
		return StateMenu, nil
	}

	p.Draft.Amount = amount
	result, err := e.transfer.Execute(ctx, p.Draft, amount)
	if err != nil {
		return "", err
	}

	p.Draft = models.TransferDraft{}
	if err := e.msgr.SendText(ctx, p.ExternalID, result.Message); err != nil {
		return "", err
	}
	return StateMenu, nil
}
