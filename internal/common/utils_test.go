package common

import "testing"

func TestHasAny(t *testing.T) {
	cases := []struct {
		s    string
		subs []string
		want bool
	}{
		{"patchy light rain", []string{"snow", "rain"}, true},
		{"raspberry pi 4 model b", []string{"raspberry pi"}, true},
		{"clear", []string{"cloud"}, false},
		{"clear", nil, false},
		{"clear", []string{""}, false},
	}
	for _, tc := range cases {
		if got := HasAny(tc.s, tc.subs...); got != tc.want {
			t.Fatalf("HasAny(%q, %v) = %v, want %v", tc.s, tc.subs, got, tc.want)
		}
	}
}
