package keyword

import "testing"

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "jobs", 4},
		{"remote", "", 6},
		{"remote", "remote", 0},
		{"remote", "remte", 1},
		{"remote", "remoet", 1},
		{"engineer", "enginer", 1},
		{"career", "carrier", 2},
		{"kitten", "sitting", 3},
		{"café", "cafe", 1},
		{"ab", "ba", 1},
	}
	for _, tt := range tests {
		if got := EditDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := EditDistance(tt.b, tt.a); got != tt.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d (symmetric)", tt.b, tt.a, got, tt.want)
		}
	}
}

func BenchmarkEditDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		EditDistance("engineering", "enginering")
	}
}
