package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType discriminates the payload carried by an Envelope.
type MessageType string

const (
	TypeTransactionRecorded MessageType = "transaction.recorded"
	TypePlanApplied         MessageType = "plan.applied"
)

// Envelope is the wire frame for every message on the queue. Payload is the
// type-specific body; consumers dispatch on Type before unmarshaling it.
type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// TransactionRecordedMessage announces a newly persisted transaction. It is
// intentionally light: the worker re-reads the ledger from storage instead of
// trusting the message body.
type TransactionRecordedMessage struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
}

// PlanAppliedMessage announces that an allocation run updated category limits.
type PlanAppliedMessage struct {
	IncomeCents        int64 `json:"income_cents"`
	SavingsRatePercent int   `json:"savings_rate_percent"`
	AssignedCents      int64 `json:"assigned_cents"`
	CategoryCount      int   `json:"category_count"`
}

// Wrap builds an Envelope around a payload.
func Wrap(t MessageType, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Envelope{
		Type:      t,
		Timestamp: time.Now(),
		Payload:   body,
	}, nil
}

func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Decode unmarshals the envelope payload into dst, checking the declared type.
func (e *Envelope) Decode(want MessageType, dst any) error {
	if e.Type != want {
		return fmt.Errorf("unexpected message type %q, want %q", e.Type, want)
	}
	return json.Unmarshal(e.Payload, dst)
}
