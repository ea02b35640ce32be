package moments

import "testing"

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 100},
		{-5, 100},
		{1, 1},
		{100, 100},
		{500, 500},
		{501, 500},
		{10000, 500},
	}
	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
