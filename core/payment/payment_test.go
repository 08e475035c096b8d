package payment

import (
	"strings"
	"testing"
)

func TestNewIntent(t *testing.T) {
	in := IntentNew{Amount: 2418, Currency: "inr", Method: "card"}

	intent := NewIntent(in)

	if !strings.HasPrefix(intent.ID, "pi_") {
		t.Errorf("unexpected intent id shape: %s", intent.ID)
	}
	if !strings.Contains(intent.ClientSecret, "_secret_") {
		t.Errorf("unexpected client secret shape: %s", intent.ClientSecret)
	}
	if intent.Amount != 2418 || intent.Currency != "inr" {
		t.Errorf("intent does not echo the request: %+v", intent)
	}
	if intent.Status != "requires_payment_method" {
		t.Errorf("unexpected initial status: %s", intent.Status)
	}
	if len(intent.MethodTypes) != 1 || intent.MethodTypes[0] != "card" {
		t.Errorf("unexpected method types: %v", intent.MethodTypes)
	}

	other := NewIntent(in)
	if other.ID == intent.ID {
		t.Error("intent ids should not repeat")
	}
}

func TestConfirmAlwaysSucceeds(t *testing.T) {
	for _, id := range []string{"pi_123_abc", "never-issued", ""} {
		conf := Confirm(ConfirmReq{IntentID: id})
		if conf.Status != "succeeded" {
			t.Errorf("intent[%s]: expected succeeded, got %s", id, conf.Status)
		}
		if conf.ID != id {
			t.Errorf("confirmation should echo the id, got %s", conf.ID)
		}
	}
}
