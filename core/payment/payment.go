// Package payment is a stand-in for a real gateway integration. It
// issues random intent identifiers and reports every confirmation as
// succeeded, persisting nothing. There is deliberately no idempotency,
// retry, or webhook machinery here because no charge ever happens.
package payment

import (
	"fmt"
	"time"

	"github.com/fitzone/fitzone/random"
)

type Intent struct {
	ID           string   `json:"id"`
	ClientSecret string   `json:"client_secret"`
	Amount       int      `json:"amount"`
	Currency     string   `json:"currency"`
	Status       string   `json:"status"`
	MethodTypes  []string `json:"payment_method_types"`
	Created      int64    `json:"created"`
}

type IntentNew struct {
	Amount   int    `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,oneof=inr usd"`
	Method   string `json:"payment_method" validate:"required,oneof=card upi wallet"`
}

type ConfirmReq struct {
	IntentID string `json:"payment_intent_id" validate:"required"`
}

type Confirmation struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Amount      int       `json:"amount_received"`
	Currency    string    `json:"currency"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// NewIntent synthesizes an identifier pair in the shape a real
// processor would return.
func NewIntent(in IntentNew) Intent {
	now := time.Now().UTC()
	ts := now.Unix()

	return Intent{
		ID:           fmt.Sprintf("pi_%d_%s", ts, random.String(9)),
		ClientSecret: fmt.Sprintf("pi_%d_secret_%s", ts, random.String(9)),
		Amount:       in.Amount,
		Currency:     in.Currency,
		Status:       "requires_payment_method",
		MethodTypes:  []string{in.Method},
		Created:      ts,
	}
}

// Confirm reports success for any identifier. No existence check: the
// simulator holds no state to check against.
func Confirm(req ConfirmReq) Confirmation {
	return Confirmation{
		ID:          req.IntentID,
		Status:      "succeeded",
		Currency:    "inr",
		ConfirmedAt: time.Now().UTC(),
	}
}
