package dialog

import (
	"context"
	"errors"
	"log"

	"github.com/talobank/backend/internal/models"
	"github.com/talobank/backend/internal/store"
)

// handleSetPartyBan flips a party's banned flag by external identity.
// Self-targeting is rejected; the flow returns to the menu either way.
func (e *Engine) handleSetPartyBan(banned bool) func(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	return func(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
		target := ev.Input()

		if target == p.ExternalID {
			if err := e.msgr.SendText(ctx, p.ExternalID, "You can't do that to yourself."); err != nil {
				return "", err
			}
			return StateMenu, nil
		}

		victim, err := e.parties.PartyByExternalID(ctx, target)
		if errors.Is(err, store.ErrNotFound) {
			if err := e.msgr.SendText(ctx, p.ExternalID, "User not found."); err != nil {
				return "", err
			}
			return StateMenu, nil
		}
		if err != nil {
			return "", err
		}

		victim.Banned = banned
		if err := e.parties.UpdateParty(ctx, victim); err != nil {
			return "", err
		}

		log.Printf("[DIALOG] Admin %s set banned=%v on party %s", p.ExternalID, banned, target)
		msg := "User banned."
		if !banned {
			msg = "User unbanned."
		}
		if err := e.msgr.SendText(ctx, p.ExternalID, msg); err != nil {
			return "", err
		}
		return StateMenu, nil
	}
}

// handleSetCardBan flips a card's banned flag by card number. An admin's own
// card is off limits.
func (e *Engine) handleSetCardBan(banned bool) func(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	return func(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
		card, err := e.cards.CardByNumber(ctx, ev.Input())
		if errors.Is(err, store.ErrNotFound) {
			if err := e.msgr.SendText(ctx, p.ExternalID, "Card not found."); err != nil {
				return "", err
			}
			return StateMenu, nil
		}
		if err != nil {
			return "", err
		}

		if card.OwnerID == p.ID {
			if err := e.msgr.SendText(ctx, p.ExternalID, "You can't do that to your own card."); err != nil {
				return "", err
			}
			return StateMenu, nil
		}

		card.Banned = banned
		if err := e.cards.UpdateCard(ctx, card); err != nil {
			return "", err
		}

		log.Printf("[DIALOG] Admin %s set banned=%v on card ****%s", p.ExternalID, banned, lastDigits(card.Number))
		msg := "Card banned."
		if !banned {
			msg = "Card unbanned."
		}
		if err := e.msgr.SendText(ctx, p.ExternalID, msg); err != nil {
			return "", err
		}
		return StateMenu, nil
	}
}

func lastDigits(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}
