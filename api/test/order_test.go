package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/fitzone/fitzone/core/order"
)

type orderTest struct {
	*TestEnv
}

type orderSummary struct {
	OrderID string       `json:"orderId"`
	Status  order.Status `json:"status"`
	Total   int          `json:"total"`
}

func (ot *orderTest) createOrderOK(t *testing.T, programID string, price int, quantity int) orderSummary {
	t.Helper()

	body := map[string]any{
		"items": []map[string]any{
			{"programId": programID, "price": price, "quantity": quantity},
		},
		"billing": map[string]any{
			"firstName": "Asha",
			"lastName":  "Rao",
			"email":     "asha@test.com",
			"phone":     "9876543210",
		},
		"payment": map[string]any{"method": "card"},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ot.Client().Post(ot.URL+"/orders/create", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't create order: status code %s", w.Status)
	}

	var sum orderSummary
	if err := json.NewDecoder(w.Body).Decode(&sum); err != nil {
		t.Fatalf("cannot unmarshal order summary: %v", err)
	}

	return sum
}

func (ot *orderTest) updateStatus(t *testing.T, orderID string, status order.Status) *http.Response {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"status": status, "note": "moved by test"})
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPut, ot.URL+"/orders/"+orderID+"/status", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/json")

	w, err := ot.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func (ot *orderTest) cancel(t *testing.T, orderID string, reason string) *http.Response {
	t.Helper()

	raw, err := json.Marshal(map[string]any{"reason": reason})
	if err != nil {
		t.Fatal(err)
	}

	w, err := ot.Client().Post(ot.URL+"/orders/"+orderID+"/cancel", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestOrder(t *testing.T) {
	env, err := NewTestEnv(t, "order_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ot := &orderTest{env}
	pt := &programTest{env}

	p1 := pt.createProgramOK(t, 1000)
	p2 := pt.createProgramOK(t, 2500)

	pt.listOwnedOK(t, []string{})

	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}

	sum1 := ot.createOrderOK(t, p1.ID, 1000, 2)
	if sum1.Status != order.Pending {
		t.Fatalf("new order should be pending, got %s", sum1.Status)
	}
	if sum1.Total != 2418 {
		t.Fatalf("expected total 2418 for subtotal 2000, got %d", sum1.Total)
	}

	sum2 := ot.createOrderOK(t, p2.ID, 2500, 1)

	// Validation failures must report every broken field at once.
	raw, _ := json.Marshal(map[string]any{
		"items":   []map[string]any{},
		"billing": map[string]any{"firstName": "Asha"},
		"payment": map[string]any{"method": "cash"},
	})
	wv, err := env.Client().Post(env.URL+"/orders/create", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	var verr struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(wv.Body).Decode(&verr); err != nil {
		t.Fatal(err)
	}
	wv.Body.Close()
	if wv.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on invalid order, got %s", wv.Status)
	}
	if len(verr.Fields) < 3 {
		t.Fatalf("expected several failed fields, got %v", verr.Fields)
	}

	// Pagination over the two orders, newest first.
	wl, err := env.Client().Get(env.URL + "/orders/my-orders?page=2&limit=1")
	if err != nil {
		t.Fatal(err)
	}
	var list struct {
		Orders     []order.Order    `json:"orders"`
		Pagination order.Pagination `json:"pagination"`
	}
	if err := json.NewDecoder(wl.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	wl.Body.Close()

	if len(list.Orders) != 1 {
		t.Fatalf("expected 1 order on page 2, got %d", len(list.Orders))
	}
	if list.Orders[0].ID != sum1.OrderID {
		t.Errorf("expected the older order on page 2, got %s", list.Orders[0].ID)
	}
	want := order.Pagination{Current: 2, Pages: 2, Total: 2, HasNext: false, HasPrev: true}
	if list.Pagination != want {
		t.Errorf("pagination mismatch: want %+v, got %+v", want, list.Pagination)
	}

	// Show includes line items and the status trail.
	ws, err := env.Client().Get(env.URL + "/orders/" + sum1.OrderID)
	if err != nil {
		t.Fatal(err)
	}
	var shown order.Order
	if err := json.NewDecoder(ws.Body).Decode(&shown); err != nil {
		t.Fatal(err)
	}
	ws.Body.Close()
	if len(shown.Items) != 1 || len(shown.History) != 1 {
		t.Fatalf("expected 1 item and 1 history entry, got %d/%d", len(shown.Items), len(shown.History))
	}

	wn, err := env.Client().Get(env.URL + "/orders/FIT-DOES-NOT-EXIST")
	if err != nil {
		t.Fatal(err)
	}
	wn.Body.Close()
	if wn.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %s", wn.Status)
	}

	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	// Walk the first order to completed as the admin.
	if err := Login(env, env.AdminEmail, env.AdminPass); err != nil {
		t.Fatal(err)
	}

	for _, st := range []order.Status{order.Confirmed, order.Completed} {
		w := ot.updateStatus(t, sum1.OrderID, st)
		w.Body.Close()
		if w.StatusCode != http.StatusOK {
			t.Fatalf("transition to %s: status code %s", st, w.Status)
		}
	}

	// Completed is terminal.
	w := ot.updateStatus(t, sum1.OrderID, order.Confirmed)
	w.Body.Close()
	if w.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on transition out of completed, got %s", w.Status)
	}

	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	pt.listOwnedOK(t, []string{p1.ID})

	// A second completed order for the same program must not duplicate it.
	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}
	sum3 := ot.createOrderOK(t, p1.ID, 1000, 1)
	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	if err := Login(env, env.AdminEmail, env.AdminPass); err != nil {
		t.Fatal(err)
	}
	w = ot.updateStatus(t, sum3.OrderID, order.Completed)
	w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("completing second order: status code %s", w.Status)
	}
	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	pt.listOwnedOK(t, []string{p1.ID})

	// Cancel the still-pending second order as its owner.
	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(env)

	wc := ot.cancel(t, sum2.OrderID, "changed my mind")
	var cancelled orderSummary
	if err := json.NewDecoder(wc.Body).Decode(&cancelled); err != nil {
		t.Fatal(err)
	}
	wc.Body.Close()
	if wc.StatusCode != http.StatusOK || cancelled.Status != order.Cancelled {
		t.Fatalf("cancel failed: status code %s, order status %s", wc.Status, cancelled.Status)
	}

	// Neither a cancelled nor a completed order can be cancelled.
	for _, id := range []string{sum2.OrderID, sum1.OrderID} {
		wc := ot.cancel(t, id, "again")
		wc.Body.Close()
		if wc.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 cancelling order[%s], got %s", id, wc.Status)
		}
	}

	// The confirmation mail is fire-and-forget; drain before asserting.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.BG.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	sent := env.Mail.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 confirmation mails, got %v", sent)
	}
}
