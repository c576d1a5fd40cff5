package dialog

import (
	"context"
	"log"

	"github.com/talobank/backend/internal/models"
	"github.com/talobank/backend/internal/services"
)

func (e *Engine) enterStart(ctx context.Context, p *models.Party) error {
	return e.msgr.SendText(ctx, p.ExternalID,
		"Welcome to Talobank! Let's get you registered.")
}

func (e *Engine) enterPhone(ctx context.Context, p *models.Party) error {
	return e.msgr.SendText(ctx, p.ExternalID,
		"Enter your phone number in international format (e.g. +380501234567):")
}

func (e *Engine) handlePhone(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	if !e.valid.ValidPhone(ev.Input()) {
		return e.retryOrRepeat(ctx, p,
			"That doesn't look like a phone number. Try again.", StatePhone, StateStart)
	}

	p.PhoneNumber = ev.Input()
	p.Retries = 0
	return StateEmail, nil
}

func (e *Engine) enterEmail(ctx context.Context, p *models.Party) error {
	return e.msgr.SendText(ctx, p.ExternalID, "Enter your email address:")
}

func (e *Engine) handleEmail(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	if !e.valid.ValidEmail(ev.Input()) {
		return e.retryOrRepeat(ctx, p,
			"That doesn't look like an email address. Try again.", StateEmail, StateStart)
	}

	p.Email = ev.Input()
	p.Retries = 0
	return StateApproved, nil
}

func (e *Engine) enterApproved(ctx context.Context, p *models.Party) error {
	return e.msgr.SendText(ctx, p.ExternalID, "Your application has been approved!")
}

func (e *Engine) enterFirstName(ctx context.Context, p *models.Party) error {
	return e.msgr.SendText(ctx, p.ExternalID, "What's your first name?")
}

func (e *Engine) handleFirstName(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	if ev.Input() == "" {
		if err := e.msgr.SendText(ctx, p.ExternalID, "Please send your first name."); err != nil {
			return "", err
		}
		return StateFirstName, nil
	}

	p.FirstName = ev.Input()
	return StateLastName, nil
}

func (e *Engine) enterLastName(ctx context.Context, p *models.Party) error {
	return e.msgr.SendText(ctx, p.ExternalID, "And your last name?")
}

func (e *Engine) handleLastName(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	if ev.Input() == "" {
		if err := e.msgr.SendText(ctx, p.ExternalID, "Please send your last name."); err != nil {
			return "", err
		}
		return StateLastName, nil
	}

	p.LastName = ev.Input()
	return StatePassword, nil
}

func (e *Engine) enterPassword(ctx context.Context, p *models.Party) error {
	return e.msgr.SendText(ctx, p.ExternalID,
		"Create a password: at least 8 characters with an uppercase letter, a lowercase letter, a digit and a special character.")
}

func (e *Engine) handlePassword(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	// Remove the plaintext password from the chat regardless of outcome.
	e.deleteInput(ctx, p, ev)

	if !services.PasswordStrong(ev.Input(), e.cfg.MinPasswordLength) {
		return e.retryOrRepeat(ctx, p,
			"That password is too weak. Try again.", StatePassword, StateStart)
	}

	hash, err := services.HashPassword(ev.Input())
	if err != nil {
		return "", err
	}

	p.PasswordHash = hash
	p.Retries = 0
	if err := e.msgr.SendText(ctx, p.ExternalID, "Registration complete. Welcome aboard!"); err != nil {
		return "", err
	}
	return StateMenu, nil
}

// deleteInput asks the gateway to remove the party's message; failure to
// delete is not worth failing the event over.
func (e *Engine) deleteInput(ctx context.Context, p *models.Party, ev Event) {
	if ev.MessageID == 0 {
		return
	}
	if err := e.msgr.DeleteMessage(ctx, p.ExternalID, ev.MessageID); err != nil {
		log.Printf("[DIALOG] Delete message %d for %s failed: %v", ev.MessageID, p.ExternalID, err)
	}
}
