package services

import (
	"encoding/json"
	"log"
	"time"
)

type AuditEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	ReferenceID string    `json:"reference_id,omitempty"`
	Account     string    `json:"account,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	Status      string    `json:"status"`
	Details     any       `json:"details,omitempty"`
}

// AuditLogger emits one structured event per terminal money-movement outcome.
type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) LogTransfer(referenceID, fromAccount, toAccount string, amount float64, status string) {
	a.log(AuditEvent{
		Timestamp:   time.Now(),
		EventType:   "TRANSFER",
		ReferenceID: referenceID,
		Amount:      amount,
		Status:      status,
		Details: map[string]string{
			"from_account": fromAccount,
			"to_account":   toAccount,
		},
	})
}

func (a *AuditLogger) LogAccrual(account string, interest float64) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "INTEREST_ACCRUAL",
		Account:   account,
		Amount:    interest,
		Status:    "SUCCESS",
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
