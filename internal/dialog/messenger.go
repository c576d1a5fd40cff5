package dialog

import "context"

// Button is one inline option: a visible label and the payload delivered back
// when the party taps it.
type Button struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// Messenger is the outbound side of the messaging endpoint. Delivery
// mechanics (retries, polling, webhooks) belong to the gateway.
type Messenger interface {
	SendText(ctx context.Context, externalID, text string) error
	SendOptions(ctx context.Context, externalID, text string, rows [][]Button) error
	DeleteMessage(ctx context.Context, externalID string, messageID int) error
}
