package amqp

import (
	"errors"
	"testing"
	"time"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := Wrap(TypeTransactionRecorded, TransactionRecordedMessage{
		ID:          "tx-1",
		AmountCents: -4200,
		Category:    "Food",
	})
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	if env.Timestamp.IsZero() {
		t.Error("envelope timestamp should be set")
	}
	if time.Since(env.Timestamp) > time.Second {
		t.Error("envelope timestamp should be recent")
	}

	body, err := env.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := EnvelopeFromJSON(body)
	if err != nil {
		t.Fatalf("EnvelopeFromJSON() error = %v", err)
	}
	if parsed.Type != TypeTransactionRecorded {
		t.Errorf("type = %q, want %q", parsed.Type, TypeTransactionRecorded)
	}

	var msg TransactionRecordedMessage
	if err := parsed.Decode(TypeTransactionRecorded, &msg); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if msg.ID != "tx-1" || msg.AmountCents != -4200 || msg.Category != "Food" {
		t.Errorf("unexpected payload: %+v", msg)
	}
}

func TestEnvelopeDecodeTypeMismatch(t *testing.T) {
	env, err := Wrap(TypePlanApplied, PlanAppliedMessage{IncomeCents: 100})
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}

	var msg TransactionRecordedMessage
	if err := env.Decode(TypeTransactionRecorded, &msg); err == nil {
		t.Error("Decode() should fail on type mismatch")
	}
}

func TestEnvelopeFromInvalidJSON(t *testing.T) {
	if _, err := EnvelopeFromJSON([]byte(`{"type": 42}`)); err == nil {
		t.Error("EnvelopeFromJSON() should fail on malformed input")
	}
}

func TestDispatchRoutesByType(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	var gotTxn *TransactionRecordedMessage
	var gotPlan *PlanAppliedMessage
	handlers := Handlers{
		OnTransactionRecorded: func(m *TransactionRecordedMessage) error {
			gotTxn = m
			return nil
		},
		OnPlanApplied: func(m *PlanAppliedMessage) error {
			gotPlan = m
			return nil
		},
	}

	env, _ := Wrap(TypeTransactionRecorded, TransactionRecordedMessage{ID: "tx-2", AmountCents: 100})
	if err := client.dispatch(env, handlers); err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	if gotTxn == nil || gotTxn.ID != "tx-2" {
		t.Errorf("transaction handler not invoked correctly: %+v", gotTxn)
	}

	env, _ = Wrap(TypePlanApplied, PlanAppliedMessage{IncomeCents: 5000000, CategoryCount: 4})
	if err := client.dispatch(env, handlers); err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	if gotPlan == nil || gotPlan.CategoryCount != 4 {
		t.Errorf("plan handler not invoked correctly: %+v", gotPlan)
	}
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}
	wantErr := errors.New("boom")

	env, _ := Wrap(TypeTransactionRecorded, TransactionRecordedMessage{ID: "tx-3"})
	err := client.dispatch(env, Handlers{
		OnTransactionRecorded: func(*TransactionRecordedMessage) error { return wantErr },
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("dispatch() error = %v, want %v", err, wantErr)
	}
}

func TestDispatchIgnoresUnknownAndUnhandled(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	// Unknown type is dropped without error.
	env := &Envelope{Type: MessageType("something.else"), Payload: []byte(`{}`)}
	if err := client.dispatch(env, Handlers{}); err != nil {
		t.Errorf("dispatch() unknown type error = %v", err)
	}

	// Known type with nil handler is also a no-op.
	env, _ = Wrap(TypePlanApplied, PlanAppliedMessage{})
	if err := client.dispatch(env, Handlers{}); err != nil {
		t.Errorf("dispatch() nil handler error = %v", err)
	}
}
