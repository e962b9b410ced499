// Package events publishes notifications about transaction mutations.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"saldo/internal/balance"

	"github.com/shopspring/decimal"
)

// Action names the kind of mutation that produced an event.
type Action string

const (
	ActionCreated Action = "transaction.created"
	ActionUpdated Action = "transaction.updated"
	ActionDeleted Action = "transaction.deleted"
)

// TransactionEvent describes a committed transaction mutation and the
// balance adjustments it caused.
type TransactionEvent struct {
	Action         Action               `json:"action"`
	UserID         string               `json:"user_id"`
	TransactionID  string               `json:"transaction_id"`
	Amount         decimal.Decimal      `json:"amount"`
	AccountID      *string              `json:"account_id,omitempty"`
	BalanceChanges []balance.Adjustment `json:"balance_changes,omitempty"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

// ToJSON encodes the event.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher receives committed mutation events.
type Publisher interface {
	Publish(ctx context.Context, event TransactionEvent) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, TransactionEvent) error { return nil }

// Fanout delivers each event to every publisher in order. All publishers are
// attempted; their errors are joined.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, event TransactionEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event TransactionEvent) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, event TransactionEvent) error {
	return f(ctx, event)
}
