package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fitzone/fitzone/core/cart"
)

func TestCart(t *testing.T) {
	env, err := NewTestEnv(t, "cart_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	pt := &programTest{env}
	p1 := pt.createProgramOK(t, 1500)
	p2 := pt.createProgramOK(t, 3000)

	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(env)

	show := func(t *testing.T) cart.Cart {
		t.Helper()

		w, err := env.Client().Get(env.URL + "/cart")
		if err != nil {
			t.Fatal(err)
		}
		defer w.Body.Close()

		if w.StatusCode != http.StatusOK {
			t.Fatalf("can't show cart: status code %s", w.Status)
		}

		var c cart.Cart
		if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
			t.Fatalf("cannot unmarshal cart: %v", err)
		}
		return c
	}

	put := func(t *testing.T, programID string, quantity int) *http.Response {
		t.Helper()

		raw, err := json.Marshal(map[string]any{"programId": programID, "quantity": quantity})
		if err != nil {
			t.Fatal(err)
		}

		r, err := http.NewRequest(http.MethodPut, env.URL+"/cart/items", bytes.NewReader(raw))
		if err != nil {
			t.Fatal(err)
		}
		r.Header.Set("Content-Type", "application/json")

		w, err := env.Client().Do(r)
		if err != nil {
			t.Fatal(err)
		}
		return w
	}

	// A user without a cart sees an empty one, not an error.
	if c := show(t); len(c.Items) != 0 {
		t.Fatalf("expected an empty cart, got %d items", len(c.Items))
	}

	w := put(t, p1.ID, 2)
	w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't put cart item: status code %s", w.Status)
	}

	w = put(t, p2.ID, 1)
	w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't put second cart item: status code %s", w.Status)
	}

	c := show(t)
	if len(c.Items) != 2 {
		t.Fatalf("expected 2 cart items, got %d", len(c.Items))
	}
	if c.Items[0].ProgramID != p1.ID || c.Items[0].Quantity != 2 {
		t.Errorf("unexpected first item: %+v", c.Items[0])
	}
	if c.Items[0].Title != p1.Title || c.Items[0].Price != p1.Price {
		t.Errorf("cart items should carry catalog detail, got %+v", c.Items[0])
	}

	// Putting the same program again replaces the quantity.
	w = put(t, p1.ID, 5)
	w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't update cart item: status code %s", w.Status)
	}

	c = show(t)
	if len(c.Items) != 2 || c.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5 on first item, got %+v", c.Items)
	}

	// Zero quantity is rejected, cart untouched.
	w = put(t, p1.ID, 0)
	w.Body.Close()
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %s", w.Status)
	}

	r, err := http.NewRequest(http.MethodDelete, env.URL+"/cart/items/"+p2.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	w, err = env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't delete cart item: status code %s", w.Status)
	}

	if c := show(t); len(c.Items) != 1 {
		t.Fatalf("expected 1 cart item after delete, got %d", len(c.Items))
	}

	r, err = http.NewRequest(http.MethodDelete, env.URL+"/cart", nil)
	if err != nil {
		t.Fatal(err)
	}
	w, err = env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't clear cart: status code %s", w.Status)
	}

	if c := show(t); len(c.Items) != 0 {
		t.Fatalf("expected an empty cart after clear, got %d items", len(c.Items))
	}
}
