package id

import "testing"

func TestNew(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		v := New()
		if v == "" {
			t.Fatalf("empty id")
		}
		if _, ok := seen[v]; ok {
			t.Fatalf("duplicate id %q", v)
		}
		seen[v] = struct{}{}
	}
}
