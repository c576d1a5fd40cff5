package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/talobank/backend/internal/models"
)

func (e *Engine) enterMenu(ctx context.Context, p *models.Party) error {
	rows := [][]Button{
		{{Label: "New card", Payload: "menu_new_card"}},
		{{Label: "Transfer", Payload: "menu_transfer"}},
		{{Label: "Exchange rates", Payload: "menu_rates"}, {Label: "History", Payload: "menu_history"}},
	}
	if p.IsAdmin {
		rows = append(rows,
			[]Button{{Label: "Ban user", Payload: "menu_ban_user"}, {Label: "Unban user", Payload: "menu_unban_user"}},
			[]Button{{Label: "Ban card", Payload: "menu_ban_card"}, {Label: "Unban card", Payload: "menu_unban_card"}},
		)
	}
	return e.msgr.SendOptions(ctx, p.ExternalID, "Main menu, pick an action:", rows)
}

func (e *Engine) handleMenu(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	choice := ev.Payload

	// Admin rows are only rendered for admins; a crafted payload from anyone
	// else falls through to the default branch.
	if !p.IsAdmin && (strings.HasPrefix(choice, "menu_ban") || strings.HasPrefix(choice, "menu_unban")) {
		choice = ""
	}

	switch choice {
	case "menu_new_card":
		return StateCardType, nil

	case "menu_transfer":
		p.Draft = models.TransferDraft{}
		return StateTransferCard, nil

	case "menu_rates":
		summary, err := e.rates.Summary(ctx)
		if err != nil {
			summary = "Exchange rates are unavailable right now, try again later."
		}
		if err := e.msgr.SendText(ctx, p.ExternalID, summary); err != nil {
			return "", err
		}
		return StateMenu, nil

	case "menu_history":
		text, err := e.historyText(ctx, p)
		if err != nil {
			return "", err
		}
		if err := e.msgr.SendText(ctx, p.ExternalID, text); err != nil {
			return "", err
		}
		return StateMenu, nil

	case "menu_ban_user":
		return StateBanParty, nil
	case "menu_unban_user":
		return StateUnbanParty, nil
	case "menu_ban_card":
		return StateBanCard, nil
	case "menu_unban_card":
		return StateUnbanCard, nil

	default:
		if err := e.msgr.SendText(ctx, p.ExternalID, "Please use the menu buttons."); err != nil {
			return "", err
		}
		return StateMenu, nil
	}
}

func (e *Engine) historyText(ctx context.Context, p *models.Party) (string, error) {
	entries, err := e.ledger.RecentEntriesByOwner(ctx, p.ID, 10)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "No transactions yet.", nil
	}

	var b strings.Builder
	b.WriteString("Recent transactions:\n")
	for _, entry := range entries {
		fmt.Fprintf(&b, "%s  %+.2f  %s\n",
			entry.CreatedAt.Format("2006-01-02 15:04"), entry.Amount, entry.EntryType)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
