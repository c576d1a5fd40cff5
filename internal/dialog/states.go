package dialog

// StateID names one node of the conversation state machine. The id is what
// gets persisted on the Party row between events.
type StateID string

const (
	// Onboarding
	StateStart     StateID = "start"
	StatePhone     StateID = "phone"
	StateEmail     StateID = "email"
	StateApproved  StateID = "approved"
	StateFirstName StateID = "first_name"
	StateLastName  StateID = "last_name"
	StatePassword  StateID = "password"

	// Anchor
	StateMenu StateID = "menu"

	// Card provisioning
	StateCardType      StateID = "card_type"
	StateDebitCurrency StateID = "debit_currency"

	// Transfer
	StateTransferCard      StateID = "transfer_card"
	StateTransferCVV       StateID = "transfer_cvv"
	StateTransferExpiry    StateID = "transfer_expiry"
	StateTransferRecipient StateID = "transfer_recipient"
	StateTransferPassword  StateID = "transfer_password"
	StateTransferAmount    StateID = "transfer_amount"

	// Administration
	StateBanParty   StateID = "ban_party"
	StateUnbanParty StateID = "unban_party"
	StateBanCard    StateID = "ban_card"
	StateUnbanCard  StateID = "unban_card"
)

// buildRegistry wires every state to its behavior. Built once at startup and
// never mutated afterwards; all per-party mutable data (retry counters, the
// transfer draft) lives on the Party record instead.
func (e *Engine) buildRegistry() map[StateID]stateDef {
	return map[StateID]stateDef{
		StateStart:     {enter: e.enterStart, handle: e.handleIgnore(StatePhone), next: StatePhone},
		StatePhone:     {enter: e.enterPhone, handle: e.handlePhone, needsInput: true},
		StateEmail:     {enter: e.enterEmail, handle: e.handleEmail, needsInput: true},
		StateApproved:  {enter: e.enterApproved, handle: e.handleIgnore(StateFirstName), next: StateFirstName},
		StateFirstName: {enter: e.enterFirstName, handle: e.handleFirstName, needsInput: true},
		StateLastName:  {enter: e.enterLastName, handle: e.handleLastName, needsInput: true},
		StatePassword:  {enter: e.enterPassword, handle: e.handlePassword, needsInput: true},

		StateMenu: {enter: e.enterMenu, handle: e.handleMenu, needsInput: true},

		StateCardType:      {enter: e.enterCardType, handle: e.handleCardType, needsInput: true},
		StateDebitCurrency: {enter: e.enterDebitCurrency, handle: e.handleDebitCurrency, needsInput: true},

		StateTransferCard:      {enter: e.prompt("Enter your card number:"), handle: e.handleTransferCard, needsInput: true},
		StateTransferCVV:       {enter: e.prompt("Enter the card's CVV:"), handle: e.handleTransferCVV, needsInput: true},
		StateTransferExpiry:    {enter: e.prompt("Enter the card's expiry date (YYYY-MM-DD):"), handle: e.handleTransferExpiry, needsInput: true},
		StateTransferRecipient: {enter: e.prompt("Enter the recipient's card number:"), handle: e.handleTransferRecipient, needsInput: true},
		StateTransferPassword:  {enter: e.prompt("Enter your password to confirm the transfer:"), handle: e.handleTransferPassword, needsInput: true},
		StateTransferAmount:    {enter: e.prompt("Enter the amount to send:"), handle: e.handleTransferAmount, needsInput: true},

		StateBanParty:   {enter: e.prompt("Send the user ID to ban:"), handle: e.handleSetPartyBan(true), needsInput: true},
		StateUnbanParty: {enter: e.prompt("Send the user ID to unban:"), handle: e.handleSetPartyBan(false), needsInput: true},
		StateBanCard:    {enter: e.prompt("Send the card number to ban:"), handle: e.handleSetCardBan(true), needsInput: true},
		StateUnbanCard:  {enter: e.prompt("Send the card number to unban:"), handle: e.handleSetCardBan(false), needsInput: true},
	}
}
