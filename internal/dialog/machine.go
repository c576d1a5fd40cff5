// Package dialog drives the per-party conversation: registration, card
// provisioning, transfers and administrative flows, modeled as a finite-state
// machine whose current state id is persisted on the Party record.
package dialog

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/talobank/backend/internal/config"
	"github.com/talobank/backend/internal/models"
	"github.com/talobank/backend/internal/services"
	"github.com/talobank/backend/internal/store"
)

// Event is one inbound message or button action from the messaging endpoint.
type Event struct {
	ExternalID string
	Text       string
	Payload    string
	MessageID  int
}

// Input returns the button payload when present, otherwise the trimmed text.
func (ev Event) Input() string {
	if ev.Payload != "" {
		return ev.Payload
	}
	return strings.TrimSpace(ev.Text)
}

type PartyStore interface {
	PartyByExternalID(ctx context.Context, externalID string) (*models.Party, error)
	CreateParty(ctx context.Context, p *models.Party) error
	UpdateParty(ctx context.Context, p *models.Party) error
}

type AccountStore interface {
	CreateAccount(ctx context.Context, a *models.Account) error
}

type CardStore interface {
	CreateCard(ctx context.Context, c *models.Card) error
	CardByNumber(ctx context.Context, number string) (*models.Card, error)
	UpdateCard(ctx context.Context, c *models.Card) error
}

type LedgerStore interface {
	RecentEntriesByOwner(ctx context.Context, ownerID, limit int) ([]models.LedgerEntry, error)
}

// Issuer produces unique account/card numbers and card credentials.
type Issuer interface {
	AccountNumber(ctx context.Context) (string, error)
	CardNumber(ctx context.Context, cardType string) (string, error)
	CVV() string
	Expiry(now time.Time) time.Time
}

// Transferer runs a collected transfer draft end to end.
type Transferer interface {
	ParseAmount(text string) (float64, bool)
	Execute(ctx context.Context, draft models.TransferDraft, amount float64) (*services.TransferResult, error)
}

// RateViewer renders the exchange-rate summary for the menu.
type RateViewer interface {
	Summary(ctx context.Context) (string, error)
}

type Deps struct {
	Config    *config.EngineConfig
	Messenger Messenger
	Parties   PartyStore
	Accounts  AccountStore
	Cards     CardStore
	Ledger    LedgerStore
	Issuer    Issuer
	Transfer  Transferer
	Rates     RateViewer
}

// stateDef describes one state: enter emits its prompt or performs its
// automatic action; handle consumes input and picks the successor; states
// with needsInput false auto-chain to next.
type stateDef struct {
	enter      func(ctx context.Context, p *models.Party) error
	handle     func(ctx context.Context, p *models.Party, ev Event) (StateID, error)
	needsInput bool
	next       StateID
}

type Engine struct {
	cfg      *config.EngineConfig
	msgr     Messenger
	parties  PartyStore
	accounts AccountStore
	cards    CardStore
	ledger   LedgerStore
	issuer   Issuer
	transfer Transferer
	rates    RateViewer
	valid    *services.ValidationHelper
	now      func() time.Time

	registry map[StateID]stateDef

	mu    sync.Mutex
	locks map[string]*partyLock
}

// partyLock serializes events for one external identity. Entries are
// reference counted so the lock table stays bounded by the number of
// in-flight events rather than the number of parties ever seen.
type partyLock struct {
	mu   sync.Mutex
	refs int
}

func New(deps Deps) *Engine {
	e := &Engine{
		cfg:      deps.Config,
		msgr:     deps.Messenger,
		parties:  deps.Parties,
		accounts: deps.Accounts,
		cards:    deps.Cards,
		ledger:   deps.Ledger,
		issuer:   deps.Issuer,
		transfer: deps.Transfer,
		rates:    deps.Rates,
		valid:    services.NewValidationHelper(),
		now:      time.Now,
		locks:    make(map[string]*partyLock),
	}
	e.registry = e.buildRegistry()
	return e
}

// Handle processes one inbound event: look the party up (creating it on first
// contact), run the current state's input handler, chain through auto-advancing
// states, and persist the resulting state and party record. Events for the
// same party are serialized; events for different parties run concurrently.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	lock := e.acquire(ev.ExternalID)
	defer e.release(ev.ExternalID, lock)

	p, err := e.parties.PartyByExternalID(ctx, ev.ExternalID)
	if errors.Is(err, store.ErrNotFound) {
		p = &models.Party{ExternalID: ev.ExternalID, State: string(StateStart)}
		if err := e.parties.CreateParty(ctx, p); err != nil {
			return err
		}
		log.Printf("[DIALOG] New party %s", ev.ExternalID)
		return e.advance(ctx, p, StateStart)
	}
	if err != nil {
		return err
	}

	if p.Banned {
		return e.msgr.SendText(ctx, p.ExternalID, "Your access is suspended. Contact support.")
	}

	def, ok := e.registry[StateID(p.State)]
	if !ok {
		log.Printf("[DIALOG] Party %s in unknown state %q, restarting", p.ExternalID, p.State)
		return e.advance(ctx, p, StateStart)
	}

	next, err := def.handle(ctx, p, ev)
	if err != nil {
		log.Printf("[DIALOG] Party %s state %s: %v", p.ExternalID, p.State, err)
		return err
	}

	return e.advance(ctx, p, next)
}

// advance enters next, chains through states that need no input, then
// persists the final state id together with the mutated party record.
func (e *Engine) advance(ctx context.Context, p *models.Party, next StateID) error {
	for {
		def := e.registry[next]
		if err := def.enter(ctx, p); err != nil {
			return err
		}
		if def.needsInput {
			break
		}
		next = def.next
	}

	p.State = string(next)
	return e.parties.UpdateParty(ctx, p)
}

func (e *Engine) acquire(externalID string) *partyLock {
	e.mu.Lock()
	lock, ok := e.locks[externalID]
	if !ok {
		lock = &partyLock{}
		e.locks[externalID] = lock
	}
	lock.refs++
	e.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (e *Engine) release(externalID string, lock *partyLock) {
	lock.mu.Unlock()

	e.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(e.locks, externalID)
	}
	e.mu.Unlock()
}

// prompt builds an enter func that sends a fixed prompt.
func (e *Engine) prompt(text string) func(ctx context.Context, p *models.Party) error {
	return func(ctx context.Context, p *models.Party) error {
		return e.msgr.SendText(ctx, p.ExternalID, text)
	}
}

// handleIgnore is the input handler for auto-chaining states; they are never
// the persisted state, so input arriving here just moves forward.
func (e *Engine) handleIgnore(next StateID) func(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
	return func(ctx context.Context, p *models.Party, ev Event) (StateID, error) {
		return next, nil
	}
}

// retryOrRepeat reports an invalid input, bumps the party's retry counter and
// either repeats the current state or, past the ceiling, abandons the
// sub-flow to the anchor state.
func (e *Engine) retryOrRepeat(ctx context.Context, p *models.Party, msg string, stay, anchor StateID) (StateID, error) {
	p.Retries++
	if p.Retries > e.cfg.RetryCeiling {
		p.Retries = 0
		if err := e.msgr.SendText(ctx, p.ExternalID, "Too many invalid attempts. Let's start over."); err != nil {
			return "", err
		}
		return anchor, nil
	}

	if err := e.msgr.SendText(ctx, p.ExternalID, msg); err != nil {
		return "", err
	}
	return stay, nil
}
