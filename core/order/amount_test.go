package order

import "testing"

func TestComputeAmount(t *testing.T) {
	tests := []struct {
		name  string
		items []ItemNew
		want  Amount
	}{
		{
			name:  "single line",
			items: []ItemNew{{Price: 1000, Quantity: 2}},
			want:  Amount{Subtotal: 2000, ProcessingFee: 58, Tax: 360, Discount: 0, Total: 2418},
		},
		{
			name:  "multiple lines",
			items: []ItemNew{{Price: 2500, Quantity: 1}, {Price: 500, Quantity: 3}},
			want:  Amount{Subtotal: 4000, ProcessingFee: 116, Tax: 720, Discount: 0, Total: 4836},
		},
		{
			name:  "fee rounds to nearest",
			items: []ItemNew{{Price: 17, Quantity: 1}},
			want:  Amount{Subtotal: 17, ProcessingFee: 0, Tax: 3, Discount: 0, Total: 20},
		},
		{
			name:  "small subtotal",
			items: []ItemNew{{Price: 100, Quantity: 1}},
			want:  Amount{Subtotal: 100, ProcessingFee: 3, Tax: 18, Discount: 0, Total: 121},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAmount(tt.items)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}

			if got.Total != got.Subtotal+got.ProcessingFee+got.Tax-got.Discount {
				t.Errorf("total %d does not match its own breakdown", got.Total)
			}
		})
	}
}
