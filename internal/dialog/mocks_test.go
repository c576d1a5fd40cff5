package dialog

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/talobank/backend/internal/config"
	"github.com/talobank/backend/internal/models"
	"github.com/talobank/backend/internal/services"
	"github.com/talobank/backend/internal/store"
)

// fakeMessenger records everything the engine sends.
type fakeMessenger struct {
	texts    []string
	menus    []string
	lastRows [][]Button
	deleted  []int
}

func (m *fakeMessenger) SendText(_ context.Context, _ string, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) SendOptions(_ context.Context, _ string, text string, rows [][]Button) error {
	m.menus = append(m.menus, text)
	m.lastRows = rows
	return nil
}

func (m *fakeMessenger) DeleteMessage(_ context.Context, _ string, messageID int) error {
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *fakeMessenger) lastText() string {
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

// fakeParties is an in-memory PartyStore. Lookups return copies so that any
// mutation not followed by UpdateParty stays invisible, the way a real row
// read would behave.
type fakeParties struct {
	rows   map[int]models.Party
	nextID int
}

func newFakeParties() *fakeParties {
	return &fakeParties{rows: make(map[int]models.Party), nextID: 1}
}

func (s *fakeParties) PartyByExternalID(_ context.Context, externalID string) (*models.Party, error) {
	for _, p := range s.rows {
		if p.ExternalID == externalID {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeParties) CreateParty(_ context.Context, p *models.Party) error {
	p.ID = s.nextID
	s.nextID++
	s.rows[p.ID] = *p
	return nil
}

func (s *fakeParties) UpdateParty(_ context.Context, p *models.Party) error {
	s.rows[p.ID] = *p
	return nil
}

func (s *fakeParties) seed(p models.Party) models.Party {
	p.ID = s.nextID
	s.nextID++
	s.rows[p.ID] = p
	return p
}

func (s *fakeParties) get(id int) models.Party {
	return s.rows[id]
}

type fakeAccounts struct {
	created []models.Account
	nextID  int
}

func (s *fakeAccounts) CreateAccount(_ context.Context, a *models.Account) error {
	s.nextID++
	a.ID = s.nextID
	s.created = append(s.created, *a)
	return nil
}

type fakeCards struct {
	rows    map[string]models.Card
	created []models.Card
	nextID  int
}

func newFakeCards() *fakeCards {
	return &fakeCards{rows: make(map[string]models.Card)}
}

func (s *fakeCards) CreateCard(_ context.Context, c *models.Card) error {
	s.nextID++
	c.ID = s.nextID
	s.rows[c.Number] = *c
	s.created = append(s.created, *c)
	return nil
}

func (s *fakeCards) CardByNumber(_ context.Context, number string) (*models.Card, error) {
	c, ok := s.rows[number]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (s *fakeCards) UpdateCard(_ context.Context, c *models.Card) error {
	s.rows[c.Number] = *c
	return nil
}

type fakeLedger struct {
	entries []models.LedgerEntry
}

func (s *fakeLedger) RecentEntriesByOwner(_ context.Context, ownerID, limit int) ([]models.LedgerEntry, error) {
	if len(s.entries) > limit {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) AccountNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockIssuer) CardNumber(ctx context.Context, cardType string) (string, error) {
	args := m.Called(ctx, cardType)
	return args.String(0), args.Error(1)
}

func (m *mockIssuer) CVV() string {
	return m.Called().String(0)
}

func (m *mockIssuer) Expiry(now time.Time) time.Time {
	return m.Called(now).Get(0).(time.Time)
}

type mockTransfer struct {
	mock.Mock
}

func (m *mockTransfer) ParseAmount(text string) (float64, bool) {
	args := m.Called(text)
	return args.Get(0).(float64), args.Bool(1)
}

func (m *mockTransfer) Execute(ctx context.Context, draft models.TransferDraft, amount float64) (*services.TransferResult, error) {
	args := m.Called(ctx, draft, amount)
	if res := args.Get(0); res != nil {
		return res.(*services.TransferResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRates struct {
	mock.Mock
}

func (m *mockRates) Summary(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// fixtures bundles a fully wired engine with its collaborators.
type fixtures struct {
	engine   *Engine
	cfg      *config.EngineConfig
	msgr     *fakeMessenger
	parties  *fakeParties
	accounts *fakeAccounts
	cards    *fakeCards
	ledger   *fakeLedger
	issuer   *mockIssuer
	transfer *mockTransfer
	rates    *mockRates
}

func newFixtures() *fixtures {
	f := &fixtures{
		cfg:      config.LoadEngineConfig(),
		msgr:     &fakeMessenger{},
		parties:  newFakeParties(),
		accounts: &fakeAccounts{},
		cards:    newFakeCards(),
		ledger:   &fakeLedger{},
		issuer:   &mockIssuer{},
		transfer: &mockTransfer{},
		rates:    &mockRates{},
	}
	f.engine = New(Deps{
		Config:    f.cfg,
		Messenger: f.msgr,
		Parties:   f.parties,
		Accounts:  f.accounts,
		Cards:     f.cards,
		Ledger:    f.ledger,
		Issuer:    f.issuer,
		Transfer:  f.transfer,
		Rates:     f.rates,
	})
	return f
}
