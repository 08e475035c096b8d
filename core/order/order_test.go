package order

import (
	"strings"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{Pending, Confirmed, true},
		{Pending, Processing, true},
		{Pending, Completed, true},
		{Pending, Cancelled, true},
		{Confirmed, Pending, false},
		{Confirmed, Completed, true},
		{Processing, Confirmed, false},
		{Processing, Completed, true},
		{Completed, Cancelled, false},
		{Completed, Pending, false},
		{Cancelled, Confirmed, false},
		{Cancelled, Completed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanBecome(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestStatusCancellable(t *testing.T) {
	cancellable := map[Status]bool{
		Pending:    true,
		Confirmed:  true,
		Processing: false,
		Completed:  false,
		Cancelled:  false,
	}

	for s, exp := range cancellable {
		if got := s.Cancellable(); got != exp {
			t.Errorf("%s: expected cancellable=%v, got %v", s, exp, got)
		}
	}
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if !strings.HasPrefix(id, "FIT-") {
			t.Fatalf("unexpected id shape: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id: %s", id)
		}
		seen[id] = true
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
		limit int
		want  Pagination
	}{
		{"second of two", 15, 2, 10, Pagination{Current: 2, Pages: 2, Total: 15, HasNext: false, HasPrev: true}},
		{"first of two", 15, 1, 10, Pagination{Current: 1, Pages: 2, Total: 15, HasNext: true, HasPrev: false}},
		{"no orders", 0, 1, 10, Pagination{Current: 1, Pages: 0, Total: 0, HasNext: false, HasPrev: false}},
		{"exact fit", 20, 2, 10, Pagination{Current: 2, Pages: 2, Total: 20, HasNext: false, HasPrev: true}},
		{"middle page", 25, 2, 10, Pagination{Current: 2, Pages: 3, Total: 25, HasNext: true, HasPrev: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paginate(tt.total, tt.page, tt.limit); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
