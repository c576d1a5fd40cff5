package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/talobank/backend/internal/models"
	"github.com/talobank/backend/internal/services"
)

func TestOnboarding_HappyPath(t *testing.T) {
	f := newFixtures()
	ctx := context.Background()

	steps := []Event{
		{ExternalID: "tg:1", Text: "/start"},
		{ExternalID: "tg:1", Text: "+380501234567"},
		{ExternalID: "tg:1", Text: "ada@example.com"},
		{ExternalID: "tg:1", Text: "Ada"},
		{ExternalID: "tg:1", Text: "Lovelace"},
		{ExternalID: "tg:1", Text: "Sup3r#Secret", MessageID: 42},
	}
	for _, ev := range steps {
		assert.NoError(t, f.engine.Handle(ctx, ev))
	}

	p, err := f.parties.PartyByExternalID(ctx, "tg:1")
	assert.NoError(t, err)
	assert.Equal(t, string(StateMenu), p.State)
	assert.Equal(t, "+380501234567", p.PhoneNumber)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "Lovelace", p.LastName)
	assert.True(t, services.VerifyPassword("Sup3r#Secret", p.PasswordHash))

	// The plaintext password message gets deleted from the chat.
	assert.Equal(t, []int{42}, f.msgr.deleted)
	assert.Contains(t, f.msgr.texts, "Registration complete. Welcome aboard!")
	assert.Contains(t, f.msgr.menus, "Main menu, pick an action:")
}

func TestOnboarding_InvalidPhoneRepeatsTheQuestion(t *testing.T) {
	f := newFixtures()
	p := f.parties.seed(models.Party{ExternalID: "tg:1", State: string(StatePhone)})

	assert.NoError(t, f.engine.Handle(context.Background(), Event{ExternalID: "tg:1", Text: "not a phone"}))

	got := f.parties.get(p.ID)
	assert.Equal(t, string(StatePhone), got.State)
	assert.Equal(t, 1, got.Retries)
	assert.Contains(t, f.msgr.texts, "That doesn't look like a phone number. Try again.")
}

func TestOnboarding_ValidInputResetsRetries(t *testing.T) {
	f := newFixtures()
	p := f.parties.seed(models.Party{ExternalID: "tg:1", State: string(StateEmail), Retries: 2})

	assert.NoError(t, f.engine.Handle(context.Background(), Event{ExternalID: "tg:1", Text: "ada@example.com"}))

	got := f.parties.get(p.ID)
	assert.Equal(t, string(StateFirstName), got.State)
	assert.Zero(t, got.Retries)
}

func TestOnboarding_FourthWeakPasswordRestartsFromTheTop(t *testing.T) {
	f := newFixtures()
	ctx := context.Background()
	p := f.parties.seed(models.Party{ExternalID: "tg:1", State: string(StatePassword)})

	for i := 0; i < 3; i++ {
		assert.NoError(t, f.engine.Handle(ctx, Event{ExternalID: "tg:1", Text: "weak"}))
		got := f.parties.get(p.ID)
		assert.Equal(t, string(StatePassword), got.State)
		assert.Equal(t, i+1, got.Retries)
	}

	assert.NoError(t, f.engine.Handle(ctx, Event{ExternalID: "tg:1", Text: "weak"}))

	got := f.parties.get(p.ID)
	assert.Equal(t, string(StatePhone), got.State, "the flow should restart after exhausting retries")
	assert.Zero(t, got.Retries)
	assert.Empty(t, got.PasswordHash)
	assert.Contains(t, f.msgr.texts, "Too many invalid attempts. Let's start over.")
}

func TestOnboarding_EmptyNameIsReasked(t *testing.T) {
	f := newFixtures()
	p := f.parties.seed(models.Party{ExternalID: "tg:1", State: string(StateFirstName)})

	assert.NoError(t, f.engine.Handle(context.Background(), Event{ExternalID: "tg:1", Text: "   "}))

	got := f.parties.get(p.ID)
	assert.Equal(t, string(StateFirstName), got.State)
	assert.Contains(t, f.msgr.texts, "Please send your first name.")
}
