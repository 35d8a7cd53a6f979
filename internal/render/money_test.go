package render

import "testing"

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1, "1.00"},
		{3000, "3000.00"},
		{0.5, "0.50"},
		{2.675, "2.68"},
		{1.005, "1.01"},
		{1234.565, "1234.57"},
		{99.994, "99.99"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		quantity int
		want     string
	}{
		{"half cent rounds up", 1500.005, 2, "3000.01"},
		{"plain", 1500, 2, "3000.00"},
		{"zero quantity", 250, 0, "0.00"},
		{"third", 0.1, 3, "0.30"},
		{"odd half cent", 10.005, 1, "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineAmount(tt.price, tt.quantity); got != tt.want {
				t.Errorf("LineAmount(%v, %d) = %q, want %q", tt.price, tt.quantity, got, tt.want)
			}
		})
	}
}
