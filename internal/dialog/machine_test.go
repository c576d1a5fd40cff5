package dialog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/talobank/backend/internal/models"
)

func TestEvent_Input(t *testing.T) {
	assert.Equal(t, "menu_rates", Event{Text: "ignored", Payload: "menu_rates"}.Input())
	assert.Equal(t, "hello", Event{Text: "  hello \n"}.Input())
	assert.Equal(t, "", Event{}.Input())
}

func TestHandle_FirstContactCreatesPartyAndStartsOnboarding(t *testing.T) {
	f := newFixtures()

	err := f.engine.Handle(context.Background(), Event{ExternalID: "tg:100", Text: "/start"})
	assert.NoError(t, err)

	p, perr := f.parties.PartyByExternalID(context.Background(), "tg:100")
	assert.NoError(t, perr)
	assert.Equal(t, string(StatePhone), p.State)

	// Welcome, then straight into the phone prompt.
	assert.Len(t, f.msgr.texts, 2)
	assert.Contains(t, f.msgr.texts[0], "Welcome")
	assert.Contains(t, f.msgr.texts[1], "phone number")
}

func TestHandle_BannedPartyIsShutOut(t *testing.T) {
	f := newFixtures()
	p := f.parties.seed(models.Party{ExternalID: "tg:1", State: string(StateMenu), Banned: true})

	err := f.engine.Handle(context.Background(), Event{ExternalID: "tg:1", Payload: "menu_new_card"})
	assert.NoError(t, err)

	assert.Equal(t, "Your access is suspended. Contact support.", f.msgr.lastText())
	assert.Equal(t, string(StateMenu), f.parties.get(p.ID).State)
}

func TestHandle_UnknownStateRestartsConversation(t *testing.T) {
	f := newFixtures()
	p := f.parties.seed(models.Party{ExternalID: "tg:1", State: "no_such_state"})

	err := f.engine.Handle(context.Background(), Event{ExternalID: "tg:1", Text: "hi"})
	assert.NoError(t, err)

	assert.Equal(t, string(StatePhone), f.parties.get(p.ID).State)
}

func TestHandle_EventsForOnePartyAreSerialized(t *testing.T) {
	f := newFixtures()
	f.parties.seed(models.Party{ExternalID: "tg:1", State: string(StateFirstName)})

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			done <- f.engine.Handle(context.Background(), Event{ExternalID: "tg:1", Text: "Ada"})
		}()
	}
	assert.NoError(t, <-done)
	assert.NoError(t, <-done)
}

func TestHandle_LockTableDrainsAfterEvents(t *testing.T) {
	f := newFixtures()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("tg:%d", i)
		f.parties.seed(models.Party{ExternalID: id, State: string(StateFirstName)})
		assert.NoError(t, f.engine.Handle(context.Background(), Event{ExternalID: id, Text: "Ada"}))
	}

	f.engine.mu.Lock()
	defer f.engine.mu.Unlock()
	assert.Empty(t, f.engine.locks, "per-party locks should be released once no event is in flight")
}
