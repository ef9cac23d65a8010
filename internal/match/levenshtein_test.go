package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "city", 4},
		{"name", "name", 0},
		{"name", "nmae", 2},
		{"quantity", "quantty", 1},
		{"createdat", "updatedat", 3},
		{"Email", "email", 1},
		{"straße", "strasse", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "distance is symmetric")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("OrderID", "order_id"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("CustomerName", "customer_name"), 1e-9)
	assert.InDelta(t, 0.875, Similarity("Quantty", "Quantity"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.Less(t, Similarity("Email", "Password"), DefaultMinScore)
}

func BenchmarkSimilarity(b *testing.B) {
	for b.Loop() {
		Similarity("CustomerOrderID", "customer_order_id")
	}
}
